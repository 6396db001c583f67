// Package export writes experiment trials as Apache Arrow IPC files, one
// record batch per agent count, for analysis outside sweep.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/nvandessel/sweep/internal/experiment"
)

// Column names of the trial schema.
const (
	ColRunID          = "run_id"
	ColAgents         = "agents"
	ColTrial          = "trial"
	ColTicks          = "ticks"
	ColCleanedPercent = "cleaned_percent"
	ColMoves          = "moves"
	ColInitialDirty   = "initial_dirty"
	ColCompleted      = "completed"
)

// ErrEmptyReport is returned when a report has no trials to write.
var ErrEmptyReport = errors.New("export: report has no trials")

// TrialSchema returns the Arrow schema for trial rows. Run-level settings are
// carried as schema metadata.
func TrialSchema(r *experiment.Report) *arrow.Schema {
	sc := r.Config.Scenario
	md := arrow.NewMetadata(
		[]string{"run_id", "seed", "rows", "cols", "dirty_fraction", "max_ticks"},
		[]string{
			r.ID,
			strconv.FormatUint(r.Seed, 10),
			strconv.Itoa(sc.Rows),
			strconv.Itoa(sc.Cols),
			strconv.FormatFloat(sc.DirtyFraction, 'g', -1, 64),
			strconv.Itoa(sc.MaxTicks),
		},
	)
	return arrow.NewSchema([]arrow.Field{
		{Name: ColRunID, Type: arrow.BinaryTypes.String},
		{Name: ColAgents, Type: arrow.PrimitiveTypes.Int64},
		{Name: ColTrial, Type: arrow.PrimitiveTypes.Int64},
		{Name: ColTicks, Type: arrow.PrimitiveTypes.Int64},
		{Name: ColCleanedPercent, Type: arrow.PrimitiveTypes.Float64},
		{Name: ColMoves, Type: arrow.PrimitiveTypes.Int64},
		{Name: ColInitialDirty, Type: arrow.PrimitiveTypes.Int64},
		{Name: ColCompleted, Type: arrow.FixedWidthTypes.Boolean},
	}, &md)
}

// WriteTrials writes every trial of the report to w in Arrow IPC file format.
// The file footer needs a seekable writer. It returns the number of trial
// rows written.
func WriteTrials(w io.WriteSeeker, r *experiment.Report) (int, error) {
	if r == nil || len(r.Rows) == 0 {
		return 0, ErrEmptyReport
	}

	mem := memory.NewGoAllocator()
	schema := TrialSchema(r)

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err != nil {
		return 0, fmt.Errorf("failed to create arrow writer: %w", err)
	}

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	written := 0
	for _, row := range r.Rows {
		if len(row.Trials) == 0 {
			continue
		}
		for i, tr := range row.Trials {
			b.Field(0).(*array.StringBuilder).Append(r.ID)
			b.Field(1).(*array.Int64Builder).Append(int64(row.Agents))
			b.Field(2).(*array.Int64Builder).Append(int64(i))
			b.Field(3).(*array.Int64Builder).Append(int64(tr.Ticks))
			b.Field(4).(*array.Float64Builder).Append(tr.CleanedPercent)
			b.Field(5).(*array.Int64Builder).Append(int64(tr.Moves))
			b.Field(6).(*array.Int64Builder).Append(int64(tr.InitialDirty))
			b.Field(7).(*array.BooleanBuilder).Append(tr.Completed)
		}

		rec := b.NewRecord()
		err := fw.Write(rec)
		rec.Release()
		if err != nil {
			fw.Close()
			return written, fmt.Errorf("failed to write batch for %d agents: %w", row.Agents, err)
		}
		written += len(row.Trials)
	}

	if written == 0 {
		fw.Close()
		return 0, ErrEmptyReport
	}
	if err := fw.Close(); err != nil {
		return written, fmt.Errorf("failed to finish arrow file: %w", err)
	}
	return written, nil
}

// WriteFile writes the report's trials to path, creating parent directories.
func WriteFile(path string, r *experiment.Report) (int, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	n, err := WriteTrials(f, r)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close %s: %w", path, cerr)
	}
	if err != nil {
		os.Remove(path)
		return 0, err
	}
	return n, nil
}
