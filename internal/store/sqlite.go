package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nvandessel/sweep/internal/constants"
	"github.com/nvandessel/sweep/internal/experiment"
	"github.com/nvandessel/sweep/internal/simulation"
)

// SQLiteStore implements ResultStore using SQLite for persistence.
type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

var _ ResultStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the history database at
// <projectRoot>/.sweep/sweep.db.
func NewSQLiteStore(projectRoot string) (*SQLiteStore, error) {
	dir, err := EnsureDataDir(projectRoot)
	if err != nil {
		return nil, err
	}
	return OpenSQLiteStore(filepath.Join(dir, constants.DatabaseFile))
}

// OpenSQLiteStore opens the database at dbPath.
func OpenSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.dbPath }

// SaveReport stores a report, replacing any existing run with the same ID.
func (s *SQLiteStore) SaveReport(ctx context.Context, r *experiment.Report) error {
	if r == nil || r.ID == "" {
		return fmt.Errorf("report ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	counts, err := json.Marshal(r.Config.AgentCounts)
	if err != nil {
		return fmt.Errorf("failed to marshal agent counts: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, r.ID); err != nil {
		return fmt.Errorf("failed to replace run: %w", err)
	}

	sc := r.Config.Scenario
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, seed, grid_rows, grid_cols, dirty_fraction, max_ticks, trials, agent_counts, started_at, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, int64(r.Seed), sc.Rows, sc.Cols, sc.DirtyFraction, sc.MaxTicks, r.Config.Trials,
		string(counts), r.StartedAt.UTC().Format(timeLayout), int64(r.Duration),
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	rowStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_rows (run_id, position, agents, avg_ticks, avg_cleaned_percent, avg_moves, completed_trials)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare row insert: %w", err)
	}
	defer rowStmt.Close()

	trialStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trials (run_id, position, trial, ticks, cleaned_percent, moves, initial_dirty, completed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare trial insert: %w", err)
	}
	defer trialStmt.Close()

	for pos, row := range r.Rows {
		if _, err := rowStmt.ExecContext(ctx, r.ID, pos, row.Agents,
			row.AvgTicks, row.AvgCleanedPercent, row.AvgMoves, row.CompletedTrials); err != nil {
			return fmt.Errorf("failed to insert row for %d agents: %w", row.Agents, err)
		}
		for i, tr := range row.Trials {
			if _, err := trialStmt.ExecContext(ctx, r.ID, pos, i,
				tr.Ticks, tr.CleanedPercent, tr.Moves, tr.InitialDirty, boolToInt(tr.Completed)); err != nil {
				return fmt.Errorf("failed to insert trial %d for %d agents: %w", i, row.Agents, err)
			}
		}
	}

	return tx.Commit()
}

// GetReport loads a report with all rows and trials.
func (s *SQLiteStore) GetReport(ctx context.Context, id string) (*experiment.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum, err := scanRun(s.db.QueryRowContext(ctx, selectRun+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	report := &experiment.Report{
		ID:   sum.ID,
		Seed: sum.Seed,
		Config: experiment.Config{
			Scenario: simulation.Scenario{
				Rows:          sum.Rows,
				Cols:          sum.Cols,
				DirtyFraction: sum.DirtyFraction,
				MaxTicks:      sum.MaxTicks,
			},
			AgentCounts: sum.AgentCounts,
			Trials:      sum.Trials,
			Seed:        sum.Seed,
		},
		StartedAt: sum.StartedAt,
		Duration:  sum.Duration,
	}
	if len(sum.AgentCounts) > 0 {
		report.Config.Scenario.Agents = sum.AgentCounts[0]
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT agents, avg_ticks, avg_cleaned_percent, avg_moves, completed_trials
		FROM run_rows WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	for rows.Next() {
		var row experiment.Row
		if err := rows.Scan(&row.Agents, &row.AvgTicks, &row.AvgCleanedPercent, &row.AvgMoves, &row.CompletedTrials); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row.Trials = []simulation.Outcome{}
		report.Rows = append(report.Rows, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	trials, err := s.db.QueryContext(ctx, `
		SELECT position, ticks, cleaned_percent, moves, initial_dirty, completed
		FROM trials WHERE run_id = ? ORDER BY position, trial`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query trials: %w", err)
	}
	defer trials.Close()
	for trials.Next() {
		var (
			pos       int
			out       simulation.Outcome
			completed int
		)
		if err := trials.Scan(&pos, &out.Ticks, &out.CleanedPercent, &out.Moves, &out.InitialDirty, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan trial: %w", err)
		}
		if pos < 0 || pos >= len(report.Rows) {
			return nil, fmt.Errorf("trial references unknown row position %d", pos)
		}
		out.Completed = completed != 0
		report.Rows[pos].Trials = append(report.Rows[pos].Trials, out)
	}
	if err := trials.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trials: %w", err)
	}

	return report, nil
}

// ListRuns returns run summaries, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectRun + ` ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		sum, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// DeleteRun removes a run; rows and trials cascade.
func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// timeLayout is fixed-width so started_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const selectRun = `
	SELECT id, seed, grid_rows, grid_cols, dirty_fraction, max_ticks, trials, agent_counts, started_at, duration_ns
	FROM runs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(sc rowScanner) (RunSummary, error) {
	var (
		sum       RunSummary
		seed      int64
		counts    string
		startedAt string
		duration  int64
	)
	if err := sc.Scan(&sum.ID, &seed, &sum.Rows, &sum.Cols, &sum.DirtyFraction,
		&sum.MaxTicks, &sum.Trials, &counts, &startedAt, &duration); err != nil {
		return RunSummary{}, err
	}
	sum.Seed = uint64(seed)
	sum.Duration = time.Duration(duration)
	if err := json.Unmarshal([]byte(counts), &sum.AgentCounts); err != nil {
		return RunSummary{}, fmt.Errorf("invalid agent_counts: %w", err)
	}
	t, err := time.Parse(timeLayout, startedAt)
	if err != nil {
		return RunSummary{}, fmt.Errorf("invalid started_at: %w", err)
	}
	sum.StartedAt = t
	return sum, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
