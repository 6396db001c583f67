// Package constants provides named constants used throughout the sweep codebase.
// This centralizes magic numbers for better maintainability and documentation.
package constants

// Simulation defaults
const (
	// DefaultRows is the number of grid rows used when none is configured.
	DefaultRows = 5

	// DefaultCols is the number of grid columns used when none is configured.
	DefaultCols = 5

	// DefaultDirtyFraction is the share of cells drawn as dirty at start.
	// Draws are made with replacement, so the realized share can be lower.
	DefaultDirtyFraction = 0.2

	// DefaultMaxTicks bounds a single simulation run.
	DefaultMaxTicks = 100
)

// Experiment defaults
const (
	// DefaultTrials is the number of repeated trials averaged per agent count.
	DefaultTrials = 10

	// MaxTrials caps trials per agent count, from config, flags, or MCP.
	MaxTrials = 1000

	// MaxAgents caps a single agent count, from config, flags, or MCP.
	MaxAgents = 256

	// MaxGridCells caps rows*cols accepted over MCP.
	MaxGridCells = 1 << 16

	// MaxTickBudget caps max_ticks accepted over MCP.
	MaxTickBudget = 100_000

	// MaxRelationPairs caps the size of a relation accepted over MCP.
	MaxRelationPairs = 4096

	// MaxRelationInputBytes caps the raw relation text accepted over MCP.
	MaxRelationInputBytes = 1 << 16

	// MaxExperimentMoves caps trials * max_ticks * sum(agent counts) for one
	// experiment requested over MCP.
	MaxExperimentMoves = 200_000_000
)

// DefaultAgentCounts returns the agent-count sweep used when none is configured.
// A fresh slice is returned so callers may modify it.
func DefaultAgentCounts() []int {
	return []int{1, 2, 3, 4, 5}
}

// Storage constants
const (
	// DataDirName is the directory under the project root holding sweep state.
	DataDirName = ".sweep"

	// DatabaseFile is the SQLite database holding experiment history.
	DatabaseFile = "sweep.db"

	// EventLogFile is the JSONL trial event log written at debug level.
	EventLogFile = "trials.jsonl"

	// DefaultHistoryLimit is how many runs `history list` shows by default.
	DefaultHistoryLimit = 20

	// MaxHistoryLimit caps how many runs one history listing returns over MCP.
	MaxHistoryLimit = 500
)

// Relation rendering constants
const (
	// DefaultGraphFile is where the relation graph image is written. Its
	// extension picks the Graphviz format unless --format is given.
	DefaultGraphFile = "graph.png"
)
