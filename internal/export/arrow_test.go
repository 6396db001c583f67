package export

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"

	"github.com/nvandessel/sweep/internal/experiment"
)

func smallReport(t *testing.T) *experiment.Report {
	t.Helper()
	cfg := experiment.DefaultConfig()
	cfg.AgentCounts = []int{1, 2, 4}
	cfg.Trials = 4
	cfg.Seed = 2024
	r, err := experiment.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("experiment.Run: %v", err)
	}
	return r
}

// createFile opens a fresh file under the test's temp dir.
func createFile(t *testing.T, name string) *os.File {
	t.Helper()
	f, err := os.Create(filepath.Join(t.TempDir(), name))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestWriteTrials_RoundTrip(t *testing.T) {
	report := smallReport(t)

	f := createFile(t, "trials.arrow")
	n, err := WriteTrials(f, report)
	if err != nil {
		t.Fatalf("WriteTrials: %v", err)
	}
	if n != 12 {
		t.Errorf("written = %d, want 12", n)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("seek: %v", err)
	}
	rd, err := ipc.NewFileReader(f)
	if err != nil {
		t.Fatalf("NewFileReader: %v", err)
	}
	defer rd.Close()

	if rd.NumRecords() != len(report.Rows) {
		t.Fatalf("batches = %d, want %d", rd.NumRecords(), len(report.Rows))
	}

	md := rd.Schema().Metadata()
	if idx := md.FindKey("seed"); idx < 0 || md.Values()[idx] != strconv.FormatUint(report.Seed, 10) {
		t.Errorf("seed metadata missing or wrong: %v", md)
	}

	for i, row := range report.Rows {
		rec, err := rd.Record(i)
		if err != nil {
			t.Fatalf("Record(%d): %v", i, err)
		}
		if int(rec.NumRows()) != len(row.Trials) {
			t.Fatalf("batch %d rows = %d, want %d", i, rec.NumRows(), len(row.Trials))
		}

		runIDs := rec.Column(0).(*array.String)
		agents := rec.Column(1).(*array.Int64)
		ticks := rec.Column(3).(*array.Int64)
		pct := rec.Column(4).(*array.Float64)
		moves := rec.Column(5).(*array.Int64)
		completed := rec.Column(7).(*array.Boolean)

		for j, tr := range row.Trials {
			if runIDs.Value(j) != report.ID {
				t.Errorf("batch %d row %d run_id = %q", i, j, runIDs.Value(j))
			}
			if agents.Value(j) != int64(row.Agents) {
				t.Errorf("batch %d row %d agents = %d, want %d", i, j, agents.Value(j), row.Agents)
			}
			if ticks.Value(j) != int64(tr.Ticks) || moves.Value(j) != int64(tr.Moves) {
				t.Errorf("batch %d row %d ticks/moves = %d/%d, want %d/%d",
					i, j, ticks.Value(j), moves.Value(j), tr.Ticks, tr.Moves)
			}
			if pct.Value(j) != tr.CleanedPercent {
				t.Errorf("batch %d row %d cleaned = %v, want %v", i, j, pct.Value(j), tr.CleanedPercent)
			}
			if completed.Value(j) != tr.Completed {
				t.Errorf("batch %d row %d completed = %v, want %v", i, j, completed.Value(j), tr.Completed)
			}
		}
	}
}

func TestWriteTrials_Empty(t *testing.T) {
	f := createFile(t, "empty.arrow")
	if _, err := WriteTrials(f, nil); !errors.Is(err, ErrEmptyReport) {
		t.Errorf("nil report: err = %v, want ErrEmptyReport", err)
	}
	if _, err := WriteTrials(f, &experiment.Report{ID: "x"}); !errors.Is(err, ErrEmptyReport) {
		t.Errorf("no rows: err = %v, want ErrEmptyReport", err)
	}
}

func TestWriteFile(t *testing.T) {
	report := smallReport(t)
	path := filepath.Join(t.TempDir(), "out", "trials.arrow")

	n, err := WriteFile(path, report)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if n != 12 {
		t.Errorf("written = %d, want 12", n)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rd, err := ipc.NewFileReader(f)
	if err != nil {
		t.Fatalf("NewFileReader: %v", err)
	}
	defer rd.Close()
	if got := rd.Schema().NumFields(); got != 8 {
		t.Errorf("fields = %d, want 8", got)
	}
}

func TestWriteFile_RemovesPartialOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.arrow")
	if _, err := WriteFile(path, &experiment.Report{ID: "x"}); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("partial file should be removed, stat err = %v", err)
	}
}
