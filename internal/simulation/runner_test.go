package simulation

import (
	"bytes"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/sweep/internal/logging"
)

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0xda3e39cb94b95bdb))
}

func TestScenarioValidate(t *testing.T) {
	valid := DefaultScenario()
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Scenario)
	}{
		{"zero rows", func(s *Scenario) { s.Rows = 0 }},
		{"negative cols", func(s *Scenario) { s.Cols = -2 }},
		{"fraction below zero", func(s *Scenario) { s.DirtyFraction = -0.01 }},
		{"fraction above one", func(s *Scenario) { s.DirtyFraction = 1.5 }},
		{"no agents", func(s *Scenario) { s.Agents = 0 }},
		{"no ticks", func(s *Scenario) { s.MaxTicks = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := DefaultScenario()
			tt.mutate(&sc)
			assert.ErrorIs(t, sc.Validate(), ErrInvalidScenario)

			_, err := NewRunner(newRNG(1)).Run(sc)
			assert.ErrorIs(t, err, ErrInvalidScenario)
		})
	}
}

func TestRun_CleanGridReturnsImmediately(t *testing.T) {
	out, err := NewRunner(newRNG(1)).Run(Scenario{
		Rows: 5, Cols: 5, DirtyFraction: 0, Agents: 3, MaxTicks: 1000,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, out.Ticks)
	assert.Equal(t, 0, out.Moves)
	assert.InDelta(t, 100.0, out.CleanedPercent, 1e-9)
	assert.True(t, out.Completed)
	assert.Equal(t, 0, out.InitialDirty)
}

// TestRun_SingleDirtyCell covers the 1x1 grid: the agent starts on the only
// cell, cleans it in the first tick, and cannot move.
func TestRun_SingleDirtyCell(t *testing.T) {
	out, err := NewRunner(newRNG(2)).Run(Scenario{
		Rows: 1, Cols: 1, DirtyFraction: 1.0, Agents: 1, MaxTicks: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, out.InitialDirty)
	assert.Equal(t, 1, out.Ticks)
	assert.LessOrEqual(t, out.Ticks, 5)
	assert.Equal(t, 1, out.Moves)
	assert.InDelta(t, 100.0, out.CleanedPercent, 1e-9)
	assert.True(t, out.Completed)
}

func TestRun_Bounded(t *testing.T) {
	for seed := uint64(1); seed <= 50; seed++ {
		sc := Scenario{Rows: 6, Cols: 6, DirtyFraction: 0.8, Agents: int(seed%4) + 1, MaxTicks: 7}
		out, err := NewRunner(newRNG(seed)).Run(sc)
		require.NoError(t, err)

		assert.LessOrEqual(t, out.Ticks, sc.MaxTicks)
		assert.Equal(t, out.Ticks*sc.Agents, out.Moves, "one move per agent per tick")
		assert.GreaterOrEqual(t, out.CleanedPercent, 0.0)
		assert.LessOrEqual(t, out.CleanedPercent, 100.0)
		if !out.Completed {
			assert.Equal(t, sc.MaxTicks, out.Ticks, "an incomplete run must have used its whole budget")
			assert.Less(t, out.CleanedPercent, 100.0)
		}
	}
}

func TestRun_CompletesWithLargeBudget(t *testing.T) {
	out, err := NewRunner(newRNG(3)).Run(Scenario{
		Rows: 4, Cols: 4, DirtyFraction: 0.5, Agents: 2, MaxTicks: 100000,
	})
	require.NoError(t, err)

	assert.True(t, out.Completed)
	assert.InDelta(t, 100.0, out.CleanedPercent, 1e-9)
	assert.Less(t, out.Ticks, 100000)
}

func TestRun_Reproducible(t *testing.T) {
	sc := Scenario{Rows: 5, Cols: 5, DirtyFraction: 0.4, Agents: 2, MaxTicks: 30}

	a, err := NewRunner(newRNG(77)).Run(sc)
	require.NoError(t, err)
	b, err := NewRunner(newRNG(77)).Run(sc)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestRun_Observer(t *testing.T) {
	var ticks []Tick
	sc := Scenario{Rows: 3, Cols: 3, DirtyFraction: 1, Agents: 2, MaxTicks: 10}
	out, err := NewRunner(newRNG(4), WithObserver(func(tk Tick) {
		ticks = append(ticks, tk)
	})).Run(sc)
	require.NoError(t, err)

	require.Len(t, ticks, out.Ticks)
	totalCleaned := 0
	for i, tk := range ticks {
		assert.Equal(t, i+1, tk.Index)
		assert.Len(t, tk.Positions, sc.Agents)
		for _, p := range tk.Positions {
			assert.True(t, p[0] >= 0 && p[0] < sc.Rows && p[1] >= 0 && p[1] < sc.Cols)
		}
		totalCleaned += tk.Cleaned
	}
	last := ticks[len(ticks)-1]
	assert.Equal(t, out.InitialDirty-totalCleaned, last.Dirty)
}

func TestRun_TraceLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger("trace", &buf)

	_, err := NewRunner(newRNG(5), WithLogger(logger)).Run(Scenario{
		Rows: 2, Cols: 2, DirtyFraction: 1, Agents: 1, MaxTicks: 3,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.Contains(out, "level=TRACE"), "expected trace lines, got %q", out)
	assert.Contains(t, out, "simulation finished")
}
