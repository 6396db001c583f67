package experiment

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/sweep/internal/logging"
	"github.com/nvandessel/sweep/internal/simulation"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.AgentCounts = []int{1, 2, 3}
	cfg.Trials = 4
	cfg.Seed = 12345
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []int{1, 2, 3, 4, 5}, cfg.AgentCounts)
	assert.Equal(t, 10, cfg.Trials)
	assert.Equal(t, 5, cfg.Scenario.Rows)
	assert.Equal(t, 5, cfg.Scenario.Cols)
	assert.InDelta(t, 0.2, cfg.Scenario.DirtyFraction, 1e-12)
	assert.Equal(t, 100, cfg.Scenario.MaxTicks)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no agent counts", func(c *Config) { c.AgentCounts = nil }},
		{"zero agent count", func(c *Config) { c.AgentCounts = []int{1, 0} }},
		{"no trials", func(c *Config) { c.Trials = 0 }},
		{"bad grid", func(c *Config) { c.Scenario.Rows = 0 }},
		{"bad fraction", func(c *Config) { c.Scenario.DirtyFraction = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := smallConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalidConfig)

			_, err = Run(context.Background(), cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestConfigValidate_WrapsScenarioError(t *testing.T) {
	cfg := smallConfig()
	cfg.Scenario.MaxTicks = -1
	err := cfg.Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, simulation.ErrInvalidScenario)
}

func TestRun_RowsAndAverages(t *testing.T) {
	cfg := smallConfig()
	report, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, cfg.Seed, report.Seed)
	require.Len(t, report.Rows, len(cfg.AgentCounts))

	for i, row := range report.Rows {
		assert.Equal(t, cfg.AgentCounts[i], row.Agents)
		require.Len(t, row.Trials, cfg.Trials)

		var ticks, pct, moves float64
		completed := 0
		for _, tr := range row.Trials {
			ticks += float64(tr.Ticks)
			pct += tr.CleanedPercent
			moves += float64(tr.Moves)
			if tr.Completed {
				completed++
			}
			assert.Equal(t, tr.Ticks*row.Agents, tr.Moves)
			assert.LessOrEqual(t, tr.Ticks, cfg.Scenario.MaxTicks)
		}
		n := float64(cfg.Trials)
		assert.InDelta(t, ticks/n, row.AvgTicks, 1e-9)
		assert.InDelta(t, pct/n, row.AvgCleanedPercent, 1e-9)
		assert.InDelta(t, moves/n, row.AvgMoves, 1e-9)
		assert.Equal(t, completed, row.CompletedTrials)
	}
}

func TestRun_SeedReproducesReport(t *testing.T) {
	cfg := smallConfig()
	a, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	b, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Rows, b.Rows)
}

func TestRun_ZeroSeedIsReplayable(t *testing.T) {
	cfg := smallConfig()
	cfg.Seed = 0
	first, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.NotZero(t, first.Seed)
	assert.Equal(t, first.Seed, first.Config.Seed)

	cfg.Seed = first.Seed
	replay, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, first.Rows, replay.Rows)
}

func TestRun_CleanRoom(t *testing.T) {
	cfg := smallConfig()
	cfg.Scenario.DirtyFraction = 0
	report, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	for _, row := range report.Rows {
		assert.Zero(t, row.AvgTicks)
		assert.Zero(t, row.AvgMoves)
		assert.InDelta(t, 100.0, row.AvgCleanedPercent, 1e-9)
		assert.Equal(t, cfg.Trials, row.CompletedTrials)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, smallConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_EventLog(t *testing.T) {
	dir := t.TempDir()
	el := logging.NewEventLog(dir, "debug")
	require.NotNil(t, el)

	cfg := smallConfig()
	_, err := Run(context.Background(), cfg, WithEventLog(el))
	require.NoError(t, err)
	el.Close()

	f, err := os.Open(filepath.Join(dir, "trials.jsonl"))
	require.NoError(t, err)
	defer f.Close()

	lines := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines++
	}
	require.NoError(t, sc.Err())
	assert.Equal(t, len(cfg.AgentCounts)*cfg.Trials, lines)
}

func TestTrialRNG_IndependentStreams(t *testing.T) {
	a := TrialRNG(1, 2, 0).Uint64()
	assert.Equal(t, a, TrialRNG(1, 2, 0).Uint64(), "same inputs give the same stream")
	assert.NotEqual(t, a, TrialRNG(1, 2, 1).Uint64(), "trial index changes the stream")
	assert.NotEqual(t, a, TrialRNG(1, 3, 0).Uint64(), "agent count changes the stream")
	assert.NotEqual(t, a, TrialRNG(2, 2, 0).Uint64(), "seed changes the stream")
}

func TestTable(t *testing.T) {
	r := &Report{Rows: []Row{
		{Agents: 1, AvgTicks: 100, AvgCleanedPercent: 92.4, AvgMoves: 100},
		{Agents: 12, AvgTicks: 37.25, AvgCleanedPercent: 100, AvgMoves: 447},
	}}

	want := "Simulation Results:\n" +
		"Num Agents | Avg Time | Avg Cleaned % | Avg Moves\n" +
		"1          | 100.00   | 92.40         | 100.00   \n" +
		"12         | 37.25    | 100.00        | 447.00   \n"
	assert.Equal(t, want, Table(r))
}
