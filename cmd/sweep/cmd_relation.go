package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nvandessel/sweep/internal/constants"
	"github.com/nvandessel/sweep/internal/pathutil"
	"github.com/nvandessel/sweep/internal/relation"
	"github.com/nvandessel/sweep/internal/visualization"
	"github.com/spf13/cobra"
)

func newRelationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relation",
		Short: "Check the properties of a binary relation",
		Long: `Check whether a finite binary relation R on integers is reflexive,
symmetric, transitive, and an equivalence relation.

Without --pairs the built-in relation
{(0,0),(0,1),(0,3),(1,0),(1,1),(2,2),(3,0),(3,3)} is checked. When R is
an equivalence relation its graph is rendered with Graphviz to --render
(graph.png by default).

Examples:
  sweep relation
  sweep relation --pairs "{(0,0),(1,1),(0,1)}"
  sweep relation --dot relation.dot --render ""   # DOT only, no image
  sweep relation --format svg --render graph.svg --open`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			root, _ := cmd.Flags().GetString("root")
			pairs, _ := cmd.Flags().GetString("pairs")
			dotPath, _ := cmd.Flags().GetString("dot")
			renderPath, _ := cmd.Flags().GetString("render")
			format, _ := cmd.Flags().GetString("format")
			openImage, _ := cmd.Flags().GetBool("open")

			rel := relation.Default()
			if strings.TrimSpace(pairs) != "" {
				parsed, err := relation.Parse(pairs)
				if err != nil {
					return err
				}
				rel = parsed
			}

			report := rel.Check()
			dot := visualization.RenderDOT(rel)

			if dotPath != "" {
				out, err := pathutil.ResolveOutput(root, dotPath)
				if err != nil {
					return err
				}
				if err := os.WriteFile(out, []byte(dot), 0644); err != nil {
					return fmt.Errorf("failed to write DOT file: %w", err)
				}
			}

			rendered := ""
			if report.Equivalence && renderPath != "" {
				out, err := pathutil.ResolveOutput(root, renderPath)
				if err != nil {
					return err
				}
				err = visualization.RenderImage(cmd.Context(), dot, format, out)
				switch {
				case errors.Is(err, visualization.ErrGraphvizMissing):
					fmt.Fprintln(cmd.ErrOrStderr(), "warning: graphviz 'dot' not found; graph not rendered")
				case err != nil:
					return fmt.Errorf("failed to render graph: %w", err)
				default:
					rendered = out
				}
			}

			if rendered != "" && openImage {
				if err := visualization.Open(rendered); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not open %s: %v\n", rendered, err)
				}
			}

			if jsonOut {
				result := map[string]interface{}{
					"relation":   rel.String(),
					"properties": report,
					"verdicts":   report.Lines(),
					"graph":      visualization.RenderJSON(rel),
				}
				if rendered != "" {
					result["image"] = rendered
				}
				return writeJSON(cmd.OutOrStdout(), result)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "R = %s\n", rel)
			for _, line := range report.Lines() {
				fmt.Fprintln(w, line)
			}
			for _, v := range []*relation.Violation{
				report.ReflexiveViolation,
				report.SymmetricViolation,
				report.TransitiveViolation,
			} {
				if v != nil {
					fmt.Fprintf(w, "  counterexample: %s\n", v)
				}
			}
			if classes, err := rel.Classes(); err == nil {
				fmt.Fprintf(w, "Equivalence classes: %v\n", classes)
			}
			if rendered != "" {
				fmt.Fprintf(w, "Graph saved as '%s'\n", renderPath)
			}
			return nil
		},
	}

	cmd.Flags().String("pairs", "", `Relation to check, e.g. "{(0,0),(0,1)}" (default: built-in relation)`)
	cmd.Flags().String("dot", "", "Write the Graphviz DOT source to this file")
	cmd.Flags().String("render", constants.DefaultGraphFile, "Render the graph image here when R is an equivalence relation (empty disables)")
	cmd.Flags().String("format", "", "Graphviz output format (png, svg, pdf, ...); defaults to the --render extension")
	cmd.Flags().Bool("open", false, "Open the rendered image in the default viewer")

	return cmd
}
