package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/nvandessel/sweep/internal/agent"
	"github.com/nvandessel/sweep/internal/grid"
	"github.com/nvandessel/sweep/internal/logging"
)

// Runner executes scenarios against a single random source.
// A Runner is not safe for concurrent use because *rand.Rand is not.
type Runner struct {
	rng      *rand.Rand
	logger   *slog.Logger
	observer Observer
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for per-tick trace output.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithObserver registers a callback invoked after every tick.
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// NewRunner creates a runner drawing dirt placement and agent moves from rng.
func NewRunner(rng *rand.Rand, opts ...Option) *Runner {
	r := &Runner{
		rng:    rng,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the scenario and returns its outcome.
func (r *Runner) Run(sc Scenario) (Outcome, error) {
	if err := sc.Validate(); err != nil {
		return Outcome{}, err
	}

	g, err := grid.New(sc.Rows, sc.Cols)
	if err != nil {
		return Outcome{}, fmt.Errorf("create grid: %w", err)
	}
	if _, err := g.Initialize(sc.DirtyFraction, r.rng); err != nil {
		return Outcome{}, fmt.Errorf("initialize grid: %w", err)
	}
	initialDirty := g.DirtyCount()

	agents := make([]*agent.Agent, sc.Agents)
	for i := range agents {
		agents[i] = agent.New(g, r.rng)
	}

	ctx := context.Background()
	ticks, moves := 0, 0
	for ticks < sc.MaxTicks {
		if g.AllClean() {
			break
		}

		cleaned := 0
		for _, a := range agents {
			if a.CleanCurrentCell() {
				cleaned++
			}
			a.Move()
			moves++
		}
		ticks++

		if r.logger.Enabled(ctx, logging.LevelTrace) {
			r.logger.Log(ctx, logging.LevelTrace, "tick",
				"tick", ticks, "cleaned", cleaned, "dirty", g.DirtyCount())
		}
		if r.observer != nil {
			r.observer(snapshot(ticks, cleaned, g, agents))
		}
	}

	out := Outcome{
		Ticks:          ticks,
		CleanedPercent: g.CleanPercent(),
		Moves:          moves,
		InitialDirty:   initialDirty,
		Completed:      g.AllClean(),
	}
	r.logger.Debug("simulation finished",
		"rows", sc.Rows, "cols", sc.Cols, "agents", sc.Agents,
		"ticks", out.Ticks, "cleaned_percent", out.CleanedPercent,
		"moves", out.Moves, "completed", out.Completed)
	return out, nil
}

func snapshot(tick, cleaned int, g *grid.Grid, agents []*agent.Agent) Tick {
	pos := make([][2]int, len(agents))
	for i, a := range agents {
		row, col := a.Position()
		pos[i] = [2]int{row, col}
	}
	return Tick{
		Index:     tick,
		Dirty:     g.DirtyCount(),
		Cleaned:   cleaned,
		Positions: pos,
	}
}
