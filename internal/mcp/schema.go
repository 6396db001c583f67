package mcp

import (
	"github.com/nvandessel/sweep/internal/experiment"
	"github.com/nvandessel/sweep/internal/relation"
	"github.com/nvandessel/sweep/internal/simulation"
	"github.com/nvandessel/sweep/internal/store"
)

// SweepSimulateInput defines the input for sweep_simulate tool.
type SweepSimulateInput struct {
	Rows          int      `json:"rows,omitempty" jsonschema:"Grid rows (default from config; 5)"`
	Cols          int      `json:"cols,omitempty" jsonschema:"Grid columns (default from config; 5)"`
	DirtyFraction *float64 `json:"dirty_fraction,omitempty" jsonschema:"Share of cells drawn dirty in [0 1] (default 0.2)"`
	MaxTicks      int      `json:"max_ticks,omitempty" jsonschema:"Tick budget per run (default 100)"`
	Seed          uint64   `json:"seed,omitempty" jsonschema:"Random seed; 0 draws a fresh one"`
	Agents        int      `json:"agents,omitempty" jsonschema:"Number of cleaning agents (default 1)"`
}

// SweepSimulateOutput defines the output for sweep_simulate tool.
type SweepSimulateOutput struct {
	Scenario simulation.Scenario `json:"scenario" jsonschema:"Scenario that was run"`
	Seed     uint64              `json:"seed" jsonschema:"Seed used for the run"`
	Outcome  simulation.Outcome  `json:"outcome" jsonschema:"Ticks and cleaned percentage and moves"`
	Message  string              `json:"message" jsonschema:"Human-readable result message"`
}

// SweepExperimentInput defines the input for sweep_experiment tool.
type SweepExperimentInput struct {
	Rows          int      `json:"rows,omitempty" jsonschema:"Grid rows (default from config; 5)"`
	Cols          int      `json:"cols,omitempty" jsonschema:"Grid columns (default from config; 5)"`
	DirtyFraction *float64 `json:"dirty_fraction,omitempty" jsonschema:"Share of cells drawn dirty in [0 1] (default 0.2)"`
	MaxTicks      int      `json:"max_ticks,omitempty" jsonschema:"Tick budget per run (default 100)"`
	Seed          uint64   `json:"seed,omitempty" jsonschema:"Random seed; 0 draws a fresh one"`
	AgentCounts   []int    `json:"agent_counts,omitempty" jsonschema:"Agent counts to sweep (default 1 through 5)"`
	Trials        int      `json:"trials,omitempty" jsonschema:"Trials averaged per agent count (default 10)"`
	Save          bool     `json:"save,omitempty" jsonschema:"Store the run in the history database"`
}

// ExperimentRow is one line of the experiment table without per-trial detail.
type ExperimentRow struct {
	Agents            int     `json:"agents"`
	AvgTicks          float64 `json:"avg_ticks"`
	AvgCleanedPercent float64 `json:"avg_cleaned_percent"`
	AvgMoves          float64 `json:"avg_moves"`
	CompletedTrials   int     `json:"completed_trials"`
}

// SweepExperimentOutput defines the output for sweep_experiment tool.
type SweepExperimentOutput struct {
	ID      string          `json:"id" jsonschema:"Run ID usable with sweep_history"`
	Seed    uint64          `json:"seed" jsonschema:"Seed used for the run"`
	Trials  int             `json:"trials" jsonschema:"Trials per agent count"`
	Rows    []ExperimentRow `json:"rows" jsonschema:"Averages per agent count"`
	Saved   bool            `json:"saved" jsonschema:"Whether the run was stored"`
	Table   string          `json:"table" jsonschema:"Console-style results table"`
	Message string          `json:"message" jsonschema:"Human-readable summary"`
}

// SweepRelationInput defines the input for sweep_relation tool.
type SweepRelationInput struct {
	Pairs  string `json:"pairs,omitempty" jsonschema:"Relation as pairs like (0 0) (0 1) separated by commas; empty uses the built-in example"`
	Format string `json:"format,omitempty" jsonschema:"Graph format: dot or json (default json)"`
}

// SweepRelationOutput defines the output for sweep_relation tool.
type SweepRelationOutput struct {
	Relation   string          `json:"relation" jsonschema:"Normalized relation"`
	Properties relation.Report `json:"properties" jsonschema:"Property verdicts with counterexamples"`
	Verdicts   []string        `json:"verdicts" jsonschema:"Lines (a) through (d)"`
	Classes    [][]int         `json:"classes,omitempty" jsonschema:"Equivalence classes when the relation is an equivalence"`
	Format     string          `json:"format" jsonschema:"Graph format returned"`
	Graph      interface{}     `json:"graph" jsonschema:"Graph as DOT text or JSON object"`
}

// SweepHistoryInput defines the input for sweep_history tool.
type SweepHistoryInput struct {
	ID    string `json:"id,omitempty" jsonschema:"Run ID to load in full; empty lists recent runs"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum runs to list (default 20)"`
}

// SweepHistoryOutput defines the output for sweep_history tool.
type SweepHistoryOutput struct {
	Runs   []store.RunSummary `json:"runs,omitempty" jsonschema:"Stored runs newest first"`
	Report *experiment.Report `json:"report,omitempty" jsonschema:"Full report when an ID was given"`
	Count  int                `json:"count" jsonschema:"Number of runs returned"`
}
