// Package experiment sweeps the simulation over several agent counts,
// averaging repeated trials for each one.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/nvandessel/sweep/internal/constants"
	"github.com/nvandessel/sweep/internal/logging"
	"github.com/nvandessel/sweep/internal/simulation"
)

// ErrInvalidConfig is returned when a Config fails validation.
var ErrInvalidConfig = errors.New("experiment: invalid config")

// Config describes an experiment. Scenario.Agents is ignored; each entry of
// AgentCounts replaces it in turn.
type Config struct {
	Scenario    simulation.Scenario `json:"scenario"`
	AgentCounts []int               `json:"agent_counts"`
	Trials      int                 `json:"trials"`
	// Seed fixes every random draw of the experiment. Zero draws a fresh seed,
	// which is reported back in Report.Seed.
	Seed uint64 `json:"seed"`
}

// DefaultConfig returns the 5x5 / 20% / 100-tick room swept over 1..5 agents
// with ten trials each.
func DefaultConfig() Config {
	return Config{
		Scenario:    simulation.DefaultScenario(),
		AgentCounts: constants.DefaultAgentCounts(),
		Trials:      constants.DefaultTrials,
	}
}

// Validate checks the config. The scenario is validated with Agents set to
// the first agent count.
func (c Config) Validate() error {
	if len(c.AgentCounts) == 0 {
		return fmt.Errorf("%w: at least one agent count is required", ErrInvalidConfig)
	}
	for _, n := range c.AgentCounts {
		if n < 1 {
			return fmt.Errorf("%w: agent counts must be positive, got %d", ErrInvalidConfig, n)
		}
	}
	if c.Trials < 1 {
		return fmt.Errorf("%w: trials must be positive, got %d", ErrInvalidConfig, c.Trials)
	}
	sc := c.Scenario
	sc.Agents = c.AgentCounts[0]
	if err := sc.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Row holds the averages for one agent count.
type Row struct {
	Agents            int                  `json:"agents"`
	AvgTicks          float64              `json:"avg_ticks"`
	AvgCleanedPercent float64              `json:"avg_cleaned_percent"`
	AvgMoves          float64              `json:"avg_moves"`
	CompletedTrials   int                  `json:"completed_trials"`
	Trials            []simulation.Outcome `json:"trials"`
}

// Report is the result of an experiment.
type Report struct {
	ID        string        `json:"id"`
	Seed      uint64        `json:"seed"`
	Config    Config        `json:"config"`
	Rows      []Row         `json:"rows"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

type options struct {
	logger *slog.Logger
	events *logging.EventLog
}

// Option configures Run.
type Option func(*options)

// WithLogger sets the logger passed down to every simulation runner.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithEventLog records one event per trial.
func WithEventLog(el *logging.EventLog) Option {
	return func(o *options) { o.events = el }
}

// Run executes every trial of the experiment. Trials run sequentially; ctx
// is checked between trials and a cancelled run returns ctx.Err().
func Run(ctx context.Context, cfg Config, opts ...Option) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	seed := cfg.Seed
	for seed == 0 {
		seed = rand.Uint64()
	}

	report := &Report{
		ID:        uuid.NewString(),
		Seed:      seed,
		Config:    cfg,
		Rows:      make([]Row, 0, len(cfg.AgentCounts)),
		StartedAt: time.Now().UTC(),
	}
	report.Config.Seed = seed

	o.logger.Info("experiment started",
		"id", report.ID, "seed", seed,
		"agent_counts", cfg.AgentCounts, "trials", cfg.Trials)

	for _, agents := range cfg.AgentCounts {
		row, err := runRow(ctx, report.ID, cfg, agents, seed, &o)
		if err != nil {
			return nil, err
		}
		report.Rows = append(report.Rows, row)
		o.logger.Debug("agent count finished",
			"agents", agents, "avg_ticks", row.AvgTicks,
			"avg_cleaned_percent", row.AvgCleanedPercent, "avg_moves", row.AvgMoves)
	}

	report.Duration = time.Since(report.StartedAt)
	o.logger.Info("experiment finished", "id", report.ID, "duration", report.Duration)
	return report, nil
}

func runRow(ctx context.Context, runID string, cfg Config, agents int, seed uint64, o *options) (Row, error) {
	sc := cfg.Scenario
	sc.Agents = agents

	row := Row{Agents: agents, Trials: make([]simulation.Outcome, 0, cfg.Trials)}
	var sumTicks, sumPct, sumMoves float64
	for trial := range cfg.Trials {
		if err := ctx.Err(); err != nil {
			return Row{}, err
		}

		runner := simulation.NewRunner(TrialRNG(seed, agents, trial), simulation.WithLogger(o.logger))
		out, err := runner.Run(sc)
		if err != nil {
			return Row{}, fmt.Errorf("agents=%d trial=%d: %w", agents, trial, err)
		}

		row.Trials = append(row.Trials, out)
		sumTicks += float64(out.Ticks)
		sumPct += out.CleanedPercent
		sumMoves += float64(out.Moves)
		if out.Completed {
			row.CompletedTrials++
		}

		o.events.Write(logging.Event{
			RunID:          runID,
			Agents:         agents,
			Trial:          trial,
			Ticks:          out.Ticks,
			CleanedPercent: out.CleanedPercent,
			Moves:          out.Moves,
			InitialDirty:   out.InitialDirty,
			Completed:      out.Completed,
		})
	}

	n := float64(cfg.Trials)
	row.AvgTicks = sumTicks / n
	row.AvgCleanedPercent = sumPct / n
	row.AvgMoves = sumMoves / n
	return row, nil
}
