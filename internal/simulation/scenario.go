package simulation

import (
	"errors"
	"fmt"
	"math"

	"github.com/nvandessel/sweep/internal/constants"
)

// ErrInvalidScenario is returned when a Scenario fails validation.
var ErrInvalidScenario = errors.New("simulation: invalid scenario")

// Scenario defines a single simulation run.
type Scenario struct {
	Rows          int     `json:"rows" yaml:"rows"`
	Cols          int     `json:"cols" yaml:"cols"`
	DirtyFraction float64 `json:"dirty_fraction" yaml:"dirty_fraction"`
	Agents        int     `json:"agents" yaml:"agents"`
	MaxTicks      int     `json:"max_ticks" yaml:"max_ticks"`
}

// DefaultScenario returns the 5x5 room, 20% dirt, one agent, 100 ticks.
func DefaultScenario() Scenario {
	return Scenario{
		Rows:          constants.DefaultRows,
		Cols:          constants.DefaultCols,
		DirtyFraction: constants.DefaultDirtyFraction,
		Agents:        1,
		MaxTicks:      constants.DefaultMaxTicks,
	}
}

// Validate checks that the scenario can be run.
func (s Scenario) Validate() error {
	if s.Rows < 1 || s.Cols < 1 {
		return fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", ErrInvalidScenario, s.Rows, s.Cols)
	}
	if math.IsNaN(s.DirtyFraction) || s.DirtyFraction < 0 || s.DirtyFraction > 1 {
		return fmt.Errorf("%w: dirty fraction must be within [0, 1], got %v", ErrInvalidScenario, s.DirtyFraction)
	}
	if s.Agents < 1 {
		return fmt.Errorf("%w: agents must be positive, got %d", ErrInvalidScenario, s.Agents)
	}
	if s.MaxTicks < 1 {
		return fmt.Errorf("%w: max ticks must be positive, got %d", ErrInvalidScenario, s.MaxTicks)
	}
	return nil
}

// Outcome is the result of one run.
type Outcome struct {
	// Ticks is the number of ticks executed, at most MaxTicks.
	Ticks int `json:"ticks"`
	// CleanedPercent is the share of clean cells at the end, in [0, 100].
	CleanedPercent float64 `json:"cleaned_percent"`
	// Moves is the total number of agent moves, one per agent per tick.
	Moves int `json:"moves"`
	// InitialDirty is the realized dirty count after initialization.
	InitialDirty int `json:"initial_dirty"`
	// Completed is true when the grid ended fully clean.
	Completed bool `json:"completed"`
}

// Tick is passed to an Observer after every executed tick.
type Tick struct {
	// Index is the 1-based number of the tick just executed.
	Index int
	// Dirty is the dirty-cell count after the tick.
	Dirty int
	// Cleaned is how many cells agents cleaned during the tick.
	Cleaned int
	// Positions holds each agent's (row, col) after moving.
	Positions [][2]int
}

// Observer receives per-tick snapshots.
type Observer func(Tick)
