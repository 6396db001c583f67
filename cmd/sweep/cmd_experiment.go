package main

import (
	"fmt"

	"github.com/nvandessel/sweep/internal/config"
	"github.com/nvandessel/sweep/internal/experiment"
	"github.com/nvandessel/sweep/internal/export"
	"github.com/nvandessel/sweep/internal/logging"
	"github.com/nvandessel/sweep/internal/pathutil"
	"github.com/nvandessel/sweep/internal/store"
	"github.com/spf13/cobra"
)

func newExperimentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "experiment",
		Short: "Compare agent counts over repeated trials",
		Long: `Run the simulation for each agent count, repeat it for a number of
trials, and print the averages of time, cleaned percentage, and moves.

Every random draw derives from one seed, so a seed reproduces the whole
table. At debug log level each trial is also appended to
<root>/.sweep/trials.jsonl.

Examples:
  sweep experiment                          # Agents 1-5, ten trials each
  sweep experiment --agents 1,2,4,8 --trials 50
  sweep experiment --agents 1-10 --seed 7 --save
  sweep experiment --arrow trials.arrow     # Export every trial as Arrow IPC`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			root, _ := cmd.Flags().GetString("root")
			save, _ := cmd.Flags().GetBool("save")
			arrowPath, _ := cmd.Flags().GetString("arrow")

			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			expCfg, err := experimentConfig(cmd, cfg)
			if err != nil {
				return err
			}

			if arrowPath != "" {
				if arrowPath, err = pathutil.ResolveOutput(root, arrowPath); err != nil {
					return err
				}
			}

			events := logging.NewEventLog(store.DataDir(root), cfg.Logging.Level)
			defer events.Close()

			report, err := experiment.Run(cmd.Context(), expCfg,
				experiment.WithLogger(newLogger(cmd, cfg)),
				experiment.WithEventLog(events))
			if err != nil {
				return fmt.Errorf("experiment failed: %w", err)
			}

			saved := false
			if save || cfg.Store.Enabled {
				s, err := store.NewSQLiteStore(root)
				if err != nil {
					return fmt.Errorf("failed to open store: %w", err)
				}
				defer s.Close()
				if err := s.SaveReport(cmd.Context(), report); err != nil {
					return fmt.Errorf("failed to save run: %w", err)
				}
				saved = true
			}

			exported := 0
			if arrowPath != "" {
				exported, err = export.WriteFile(arrowPath, report)
				if err != nil {
					return fmt.Errorf("failed to export trials: %w", err)
				}
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"report": report,
					"saved":  saved,
				})
			}

			w := cmd.OutOrStdout()
			if err := experiment.WriteTable(w, report); err != nil {
				return err
			}
			fmt.Fprintln(w)
			fmt.Fprintf(w, "Seed: %d\n", report.Seed)
			if saved {
				fmt.Fprintf(w, "Saved as %s\n", report.ID)
			}
			if arrowPath != "" {
				fmt.Fprintf(w, "Exported %d trials to %s\n", exported, arrowPath)
			}
			return nil
		},
	}

	addRoomFlags(cmd)
	cmd.Flags().String("agents", "", "Agent counts, e.g. 1,2,3 or 1-5 (default from config)")
	cmd.Flags().Int("trials", 0, "Trials per agent count (default from config)")
	cmd.Flags().Bool("save", false, "Save the run to <root>/.sweep/sweep.db")
	cmd.Flags().String("arrow", "", "Write every trial to this Arrow IPC file")

	return cmd
}

// experimentConfig merges flags over the configured experiment.
func experimentConfig(cmd *cobra.Command, cfg *config.SweepConfig) (experiment.Config, error) {
	expCfg := cfg.ExperimentConfig()
	expCfg.Scenario = roomScenario(cmd, cfg, 1)

	if cmd.Flags().Changed("agents") {
		raw, _ := cmd.Flags().GetString("agents")
		counts, err := config.ParseAgentCounts(raw)
		if err != nil {
			return expCfg, fmt.Errorf("invalid --agents: %w", err)
		}
		expCfg.AgentCounts = counts
	}
	if cmd.Flags().Changed("trials") {
		expCfg.Trials, _ = cmd.Flags().GetInt("trials")
	}
	if cmd.Flags().Changed("seed") {
		expCfg.Seed, _ = cmd.Flags().GetUint64("seed")
	}

	if err := config.ValidateExperiment(expCfg); err != nil {
		return expCfg, err
	}
	return expCfg, nil
}
