// Package grid models the room being cleaned: a fixed rows x cols matrix of
// cells, each either dirty or clean.
//
// IsDirty, Clean, and MarkDirty require in-bounds coordinates. Callers check
// InBounds first (agents do); an out-of-range coordinate panics.
package grid

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// Sentinel errors for grid construction.
var (
	// ErrInvalidDimensions indicates rows or cols is less than one.
	ErrInvalidDimensions = errors.New("grid: rows and cols must be positive")
	// ErrInvalidFraction indicates a dirty fraction outside [0, 1].
	ErrInvalidFraction = errors.New("grid: dirty fraction must be within [0, 1]")
)

// Grid is a rows x cols occupancy matrix of dirty/clean cells.
// It is not safe for concurrent use.
type Grid struct {
	rows, cols int
	dirty      []bool // row-major
	dirtyCount int
}

// New returns an all-clean grid with the given dimensions.
func New(rows, cols int) (*Grid, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, rows, cols)
	}
	return &Grid{
		rows:  rows,
		cols:  cols,
		dirty: make([]bool, rows*cols),
	}, nil
}

// Initialize draws floor(rows*cols*fraction) coordinates uniformly at random,
// with replacement, and marks each one dirty. It returns the number of draws.
//
// Because draws may repeat, the realized dirty count can be lower than the
// number returned; DirtyCount reports the realized value.
func (g *Grid) Initialize(fraction float64, rng *rand.Rand) (int, error) {
	if math.IsNaN(fraction) || fraction < 0 || fraction > 1 {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidFraction, fraction)
	}
	draws := int(float64(g.Cells()) * fraction)
	for range draws {
		g.MarkDirty(rng.IntN(g.rows), rng.IntN(g.cols))
	}
	return draws, nil
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Cells returns rows*cols.
func (g *Grid) Cells() int { return g.rows * g.cols }

// InBounds reports whether (row, col) lies inside the grid.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// IsDirty reports whether the cell at (row, col) needs cleaning.
func (g *Grid) IsDirty(row, col int) bool {
	return g.dirty[g.index(row, col)]
}

// Clean marks the cell at (row, col) clean. Cleaning a clean cell is a no-op.
func (g *Grid) Clean(row, col int) {
	i := g.index(row, col)
	if g.dirty[i] {
		g.dirty[i] = false
		g.dirtyCount--
	}
}

// MarkDirty marks the cell at (row, col) dirty. Marking a dirty cell is a no-op.
func (g *Grid) MarkDirty(row, col int) {
	i := g.index(row, col)
	if !g.dirty[i] {
		g.dirty[i] = true
		g.dirtyCount++
	}
}

// DirtyCount returns the number of dirty cells.
func (g *Grid) DirtyCount() int { return g.dirtyCount }

// AllClean reports whether no cell is dirty.
func (g *Grid) AllClean() bool { return g.dirtyCount == 0 }

// CleanPercent returns the share of clean cells as a percentage in [0, 100].
func (g *Grid) CleanPercent() float64 {
	return (1 - float64(g.dirtyCount)/float64(g.Cells())) * 100
}

// String renders the grid with '#' for dirty and '.' for clean cells,
// one row per line.
func (g *Grid) String() string {
	b := make([]byte, 0, g.rows*(g.cols+1))
	for r := range g.rows {
		for c := range g.cols {
			if g.dirty[r*g.cols+c] {
				b = append(b, '#')
			} else {
				b = append(b, '.')
			}
		}
		b = append(b, '\n')
	}
	return string(b)
}

func (g *Grid) index(row, col int) int {
	if !g.InBounds(row, col) {
		panic(fmt.Sprintf("grid: coordinate (%d,%d) out of range for %dx%d grid", row, col, g.rows, g.cols))
	}
	return row*g.cols + col
}
