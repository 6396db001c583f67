package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nvandessel/sweep/internal/constants"
	"github.com/nvandessel/sweep/internal/experiment"
	"github.com/nvandessel/sweep/internal/store"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse saved experiments",
		Long: `Browse experiments saved with 'sweep experiment --save' (or with
store.enabled set in the config). History lives in <root>/.sweep/sweep.db.

Examples:
  sweep history list
  sweep history list --limit 5 --json
  sweep history show <id>
  sweep history delete <id>`,
	}

	cmd.AddCommand(
		newHistoryListCmd(),
		newHistoryShowCmd(),
		newHistoryDeleteCmd(),
	)

	return cmd
}

func openHistory(cmd *cobra.Command) (*store.SQLiteStore, error) {
	root, _ := cmd.Flags().GetString("root")
	s, err := store.NewSQLiteStore(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return s, nil
}

func newHistoryListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved experiments, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			limit, _ := cmd.Flags().GetInt("limit")

			s, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.ListRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"runs":  runs,
					"count": len(runs),
				})
			}

			w := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(w, "No saved experiments. Run 'sweep experiment --save' to record one.")
				return nil
			}

			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTARTED\tGRID\tDIRTY\tAGENTS\tTRIALS\tDURATION")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%.0f%%\t%v\t%d\t%s\n",
					r.ID,
					humanize.Time(r.StartedAt),
					r.Rows, r.Cols,
					r.DirtyFraction*100,
					r.AgentCounts,
					r.Trials,
					r.Duration.Round(time.Millisecond))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().Int("limit", constants.DefaultHistoryLimit, "Maximum runs to list (0 for all)")

	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the results table of a saved experiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			s, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			report, err := s.GetReport(cmd.Context(), args[0])
			if errors.Is(err, store.ErrRunNotFound) {
				return fmt.Errorf("no saved experiment with ID %q", args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to load run: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), report)
			}

			w := cmd.OutOrStdout()
			sc := report.Config.Scenario
			fmt.Fprintf(w, "Experiment %s\n", report.ID)
			fmt.Fprintf(w, "  Started:  %s (%s)\n", report.StartedAt.Format(time.RFC3339), humanize.Time(report.StartedAt))
			fmt.Fprintf(w, "  Grid:     %dx%d, %.0f%% dirty, %d ticks max\n", sc.Rows, sc.Cols, sc.DirtyFraction*100, sc.MaxTicks)
			fmt.Fprintf(w, "  Trials:   %s per agent count\n", humanize.Comma(int64(report.Config.Trials)))
			fmt.Fprintf(w, "  Seed:     %d\n", report.Seed)
			fmt.Fprintln(w)
			return experiment.WriteTable(w, report)
		},
	}
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved experiment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			s, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.DeleteRun(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, store.ErrRunNotFound) {
					return fmt.Errorf("no saved experiment with ID %q", args[0])
				}
				return fmt.Errorf("failed to delete run: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"status": "deleted", "id": args[0]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
