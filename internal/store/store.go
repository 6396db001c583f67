// Package store defines the ResultStore interface for persisting experiment
// reports and implements it on SQLite and in memory.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/nvandessel/sweep/internal/experiment"
)

// ErrRunNotFound is returned when a run ID is not in the store.
var ErrRunNotFound = errors.New("store: run not found")

// RunSummary is the listing view of a stored experiment.
type RunSummary struct {
	ID            string        `json:"id"`
	Seed          uint64        `json:"seed"`
	Rows          int           `json:"rows"`
	Cols          int           `json:"cols"`
	DirtyFraction float64       `json:"dirty_fraction"`
	MaxTicks      int           `json:"max_ticks"`
	Trials        int           `json:"trials"`
	AgentCounts   []int         `json:"agent_counts"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration"`
}

// summarize builds the listing view of a report.
func summarize(r *experiment.Report) RunSummary {
	sc := r.Config.Scenario
	return RunSummary{
		ID:            r.ID,
		Seed:          r.Seed,
		Rows:          sc.Rows,
		Cols:          sc.Cols,
		DirtyFraction: sc.DirtyFraction,
		MaxTicks:      sc.MaxTicks,
		Trials:        r.Config.Trials,
		AgentCounts:   append([]int(nil), r.Config.AgentCounts...),
		StartedAt:     r.StartedAt,
		Duration:      r.Duration,
	}
}

// ResultStore persists experiment reports.
type ResultStore interface {
	// SaveReport stores a complete report. Saving an existing ID replaces it.
	SaveReport(ctx context.Context, r *experiment.Report) error

	// GetReport loads a report with all rows and trials.
	GetReport(ctx context.Context, id string) (*experiment.Report, error)

	// ListRuns returns summaries, newest first. limit <= 0 means no limit.
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)

	// DeleteRun removes a report and its trials.
	DeleteRun(ctx context.Context, id string) error

	// Close releases resources.
	Close() error
}
