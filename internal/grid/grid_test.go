package grid_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/sweep/internal/grid"
)

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func TestNew_Errors(t *testing.T) {
	cases := []struct {
		name       string
		rows, cols int
	}{
		{"ZeroRows", 0, 3},
		{"ZeroCols", 3, 0},
		{"NegativeRows", -1, 3},
		{"NegativeCols", 2, -5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := grid.New(tc.rows, tc.cols)
			require.ErrorIs(t, err, grid.ErrInvalidDimensions)
			assert.Nil(t, g)
		})
	}
}

func TestNew_StartsClean(t *testing.T) {
	g, err := grid.New(3, 4)
	require.NoError(t, err)

	assert.Equal(t, 3, g.Rows())
	assert.Equal(t, 4, g.Cols())
	assert.Equal(t, 12, g.Cells())
	assert.True(t, g.AllClean())
	assert.Equal(t, 0, g.DirtyCount())
	assert.InDelta(t, 100.0, g.CleanPercent(), 1e-9)
}

func TestInBounds(t *testing.T) {
	g, err := grid.New(2, 3)
	require.NoError(t, err)

	for _, rc := range [][2]int{{0, 0}, {1, 2}, {0, 2}, {1, 0}} {
		assert.Truef(t, g.InBounds(rc[0], rc[1]), "InBounds(%d,%d)", rc[0], rc[1])
	}
	for _, rc := range [][2]int{{-1, 0}, {0, -1}, {2, 0}, {0, 3}, {2, 3}} {
		assert.Falsef(t, g.InBounds(rc[0], rc[1]), "InBounds(%d,%d)", rc[0], rc[1])
	}
}

func TestClean_Idempotent(t *testing.T) {
	g, err := grid.New(2, 2)
	require.NoError(t, err)

	g.MarkDirty(1, 1)
	g.MarkDirty(1, 1)
	require.True(t, g.IsDirty(1, 1))
	require.Equal(t, 1, g.DirtyCount())

	g.Clean(1, 1)
	assert.False(t, g.IsDirty(1, 1))
	g.Clean(1, 1)
	assert.False(t, g.IsDirty(1, 1))
	assert.Equal(t, 0, g.DirtyCount())

	// Cleaning a cell that was never dirty leaves it clean.
	g.Clean(0, 0)
	assert.False(t, g.IsDirty(0, 0))
	assert.True(t, g.AllClean())
}

func TestOutOfBoundsPanics(t *testing.T) {
	g, err := grid.New(2, 2)
	require.NoError(t, err)

	assert.Panics(t, func() { g.IsDirty(2, 0) })
	assert.Panics(t, func() { g.Clean(0, -1) })
	assert.Panics(t, func() { g.MarkDirty(-1, 0) })
}

func TestInitialize_InvalidFraction(t *testing.T) {
	g, err := grid.New(3, 3)
	require.NoError(t, err)

	for _, f := range []float64{-0.1, 1.01, math.NaN(), math.Inf(1)} {
		_, err := g.Initialize(f, newRNG(1))
		assert.ErrorIsf(t, err, grid.ErrInvalidFraction, "fraction %v", f)
	}
	assert.True(t, g.AllClean())
}

// TestInitialize_DirtyCountBound checks that the realized dirty count never
// exceeds floor(rows*cols*fraction) and that draws equal that nominal value.
func TestInitialize_DirtyCountBound(t *testing.T) {
	sizes := [][2]int{{1, 1}, {1, 7}, {3, 3}, {5, 5}, {8, 13}}
	fractions := []float64{0, 0.1, 0.2, 0.5, 0.99, 1}

	seed := uint64(7)
	for _, sz := range sizes {
		for _, f := range fractions {
			seed++
			g, err := grid.New(sz[0], sz[1])
			require.NoError(t, err)

			draws, err := g.Initialize(f, newRNG(seed))
			require.NoError(t, err)

			nominal := int(float64(sz[0]*sz[1]) * f)
			assert.Equalf(t, nominal, draws, "draws for %dx%d f=%v", sz[0], sz[1], f)
			assert.LessOrEqualf(t, g.DirtyCount(), nominal, "dirty for %dx%d f=%v", sz[0], sz[1], f)
			if nominal > 0 {
				assert.GreaterOrEqual(t, g.DirtyCount(), 1)
			}
		}
	}
}

func TestInitialize_ZeroFractionStaysClean(t *testing.T) {
	g, err := grid.New(5, 5)
	require.NoError(t, err)

	draws, err := g.Initialize(0, newRNG(3))
	require.NoError(t, err)
	assert.Equal(t, 0, draws)
	assert.True(t, g.AllClean())
}

func TestInitialize_Reproducible(t *testing.T) {
	a, _ := grid.New(6, 6)
	b, _ := grid.New(6, 6)

	_, err := a.Initialize(0.4, newRNG(42))
	require.NoError(t, err)
	_, err = b.Initialize(0.4, newRNG(42))
	require.NoError(t, err)

	assert.Equal(t, a.String(), b.String())
}

func TestCleanPercent(t *testing.T) {
	g, err := grid.New(2, 2)
	require.NoError(t, err)

	g.MarkDirty(0, 0)
	assert.InDelta(t, 75.0, g.CleanPercent(), 1e-9)
	g.MarkDirty(1, 1)
	assert.InDelta(t, 50.0, g.CleanPercent(), 1e-9)
}

func TestString(t *testing.T) {
	g, err := grid.New(2, 3)
	require.NoError(t, err)
	g.MarkDirty(0, 1)
	g.MarkDirty(1, 2)

	assert.Equal(t, ".#.\n..#\n", g.String())
}
