package experiment

import (
	"fmt"
	"io"
	"strings"
)

// TableHeader is the first line of the results table.
const TableHeader = "Num Agents | Avg Time | Avg Cleaned % | Avg Moves"

// WriteTable prints the "Simulation Results:" table, one line per agent count
// with left-aligned fixed-width columns.
func WriteTable(w io.Writer, r *Report) error {
	if _, err := fmt.Fprintln(w, "Simulation Results:"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, TableHeader); err != nil {
		return err
	}
	for _, row := range r.Rows {
		if _, err := fmt.Fprintf(w, "%-10d | %-8.2f | %-13.2f | %-9.2f\n",
			row.Agents, row.AvgTicks, row.AvgCleanedPercent, row.AvgMoves); err != nil {
			return err
		}
	}
	return nil
}

// Table returns the output of WriteTable as a string.
func Table(r *Report) string {
	var b strings.Builder
	_ = WriteTable(&b, r)
	return b.String()
}
