// Package agent implements the cleaning agent: a position on a grid that
// cleans the cell it stands on and wanders to a random 8-connected neighbor.
package agent

import (
	"math/rand/v2"

	"github.com/nvandessel/sweep/internal/grid"
)

// Offset is a (row, col) step.
type Offset struct {
	DRow, DCol int
}

// Directions lists the eight compass offsets in the order they are shuffled
// from: E, S, W, N, SE, NW, SW, NE.
var Directions = [8]Offset{
	{0, 1}, {1, 0}, {0, -1}, {-1, 0},
	{1, 1}, {-1, -1}, {1, -1}, {-1, 1},
}

// Agent is a cleaner positioned on a Grid. Several agents may share a cell;
// there is no collision rule.
type Agent struct {
	grid     *grid.Grid
	rng      *rand.Rand
	row, col int
}

// New places an agent at (0,0) on g. The agent draws its moves from rng.
func New(g *grid.Grid, rng *rand.Rand) *Agent {
	return &Agent{grid: g, rng: rng}
}

// Position returns the agent's current coordinates.
func (a *Agent) Position() (row, col int) {
	return a.row, a.col
}

// CleanCurrentCell cleans the agent's cell if it is dirty and reports whether
// it did.
func (a *Agent) CleanCurrentCell() bool {
	if !a.grid.IsDirty(a.row, a.col) {
		return false
	}
	a.grid.Clean(a.row, a.col)
	return true
}

// Move shuffles Directions and steps along the first offset that stays on
// the grid. It reports whether the position changed, which is false only on
// a 1x1 grid where every offset is rejected.
func (a *Agent) Move() bool {
	dirs := Directions
	a.rng.Shuffle(len(dirs), func(i, j int) {
		dirs[i], dirs[j] = dirs[j], dirs[i]
	})
	for _, d := range dirs {
		r, c := a.row+d.DRow, a.col+d.DCol
		if a.grid.InBounds(r, c) {
			a.row, a.col = r, c
			return true
		}
	}
	return false
}
