package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/nvandessel/sweep/internal/config"
	"github.com/nvandessel/sweep/internal/experiment"
	"github.com/nvandessel/sweep/internal/simulation"
	"github.com/spf13/cobra"
)

// addRoomFlags registers the grid flags shared by simulate and experiment.
// Unset flags fall back to the simulation section of the config.
func addRoomFlags(cmd *cobra.Command) {
	cmd.Flags().Int("rows", 0, "Grid rows (default from config)")
	cmd.Flags().Int("cols", 0, "Grid columns (default from config)")
	cmd.Flags().Float64("dirty", 0, "Fraction of cells drawn dirty, in [0, 1] (default from config)")
	cmd.Flags().Int("max-ticks", 0, "Tick budget per run (default from config)")
	cmd.Flags().Uint64("seed", 0, "Random seed (0 draws a fresh one)")
}

// roomScenario builds a scenario from config values overridden by any flag
// the user set explicitly.
func roomScenario(cmd *cobra.Command, cfg *config.SweepConfig, agents int) simulation.Scenario {
	sc := cfg.Scenario(agents)
	if cmd.Flags().Changed("rows") {
		sc.Rows, _ = cmd.Flags().GetInt("rows")
	}
	if cmd.Flags().Changed("cols") {
		sc.Cols, _ = cmd.Flags().GetInt("cols")
	}
	if cmd.Flags().Changed("dirty") {
		sc.DirtyFraction, _ = cmd.Flags().GetFloat64("dirty")
	}
	if cmd.Flags().Changed("max-ticks") {
		sc.MaxTicks, _ = cmd.Flags().GetInt("max-ticks")
	}
	return sc
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a single cleaning simulation",
		Long: `Run one simulation: every agent starts at (0,0), cleans its cell, and
moves to a random in-bounds neighbor each tick until the grid is clean or
the tick budget runs out.

The same seed replays trial 0 of an experiment with the same settings.

Examples:
  sweep simulate                        # 5x5 room, 20% dirty, one agent
  sweep simulate --agents 3 --seed 42   # Reproducible three-agent run
  sweep simulate --rows 10 --cols 10 --dirty 0.5 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			agents, _ := cmd.Flags().GetInt("agents")
			seed, _ := cmd.Flags().GetUint64("seed")

			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			sc := roomScenario(cmd, cfg, agents)
			if err := sc.Validate(); err != nil {
				return err
			}

			for seed == 0 {
				seed = rand.Uint64()
			}
			runner := simulation.NewRunner(experiment.TrialRNG(seed, sc.Agents, 0),
				simulation.WithLogger(newLogger(cmd, cfg)))
			out, err := runner.Run(sc)
			if err != nil {
				return fmt.Errorf("simulation failed: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"scenario": sc,
					"seed":     seed,
					"outcome":  out,
				})
			}

			w := cmd.OutOrStdout()
			status := "Timed out"
			if out.Completed {
				status = "Completed"
			}
			fmt.Fprintf(w, "%s: %d agent(s) on a %dx%d grid\n", status, sc.Agents, sc.Rows, sc.Cols)
			fmt.Fprintf(w, "  Ticks:         %d / %d\n", out.Ticks, sc.MaxTicks)
			fmt.Fprintf(w, "  Initial dirty: %d\n", out.InitialDirty)
			fmt.Fprintf(w, "  Cleaned:       %.2f%%\n", out.CleanedPercent)
			fmt.Fprintf(w, "  Moves:         %d\n", out.Moves)
			fmt.Fprintf(w, "  Seed:          %d\n", seed)
			return nil
		},
	}

	addRoomFlags(cmd)
	cmd.Flags().Int("agents", 1, "Number of agents")

	return cmd
}
