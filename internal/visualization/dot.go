// Package visualization renders relation graphs as Graphviz DOT, JSON, or an
// image produced by the Graphviz `dot` tool.
package visualization

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nvandessel/sweep/internal/relation"
)

// Format specifies the output format for graph rendering.
type Format string

const (
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"
)

// classColors cycles through fill colors for equivalence classes.
var classColors = []string{
	"steelblue",
	"tomato",
	"mediumseagreen",
	"goldenrod",
	"orchid",
	"lightslategray",
}

// RenderDOT produces a Graphviz DOT digraph with one node per element and one
// edge per pair. When the relation is an equivalence relation, each class is
// drawn as a filled cluster. Output order is deterministic.
func RenderDOT(rel *relation.Relation) string {
	var b strings.Builder
	b.WriteString("digraph relation {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=circle, style=filled, fillcolor=\"lightgray\", fontname=\"Helvetica\"];\n")
	b.WriteString("  edge [arrowsize=0.7];\n\n")

	if classes, err := rel.Classes(); err == nil && len(classes) > 0 {
		for i, class := range classes {
			color := classColors[i%len(classColors)]
			fmt.Fprintf(&b, "  subgraph cluster_%d {\n", i)
			fmt.Fprintf(&b, "    label=%q;\n", classLabel(class))
			b.WriteString("    style=rounded;\n")
			for _, e := range class {
				fmt.Fprintf(&b, "    %q [fillcolor=%q];\n", strconv.Itoa(e), color)
			}
			b.WriteString("  }\n")
		}
	} else {
		for _, e := range rel.Elements() {
			fmt.Fprintf(&b, "  %q;\n", strconv.Itoa(e))
		}
	}
	b.WriteString("\n")

	for _, p := range rel.Pairs() {
		fmt.Fprintf(&b, "  %q -> %q;\n", strconv.Itoa(p.From), strconv.Itoa(p.To))
	}

	b.WriteString("}\n")
	return b.String()
}

// RenderJSON produces a JSON-ready graph with nodes, edges, counts, and the
// property report.
func RenderJSON(rel *relation.Relation) map[string]interface{} {
	elements := rel.Elements()
	nodes := make([]map[string]interface{}, 0, len(elements))
	for _, e := range elements {
		nodes = append(nodes, map[string]interface{}{
			"id":        e,
			"self_loop": rel.Contains(e, e),
		})
	}

	pairs := rel.Pairs()
	edges := make([]map[string]interface{}, 0, len(pairs))
	for _, p := range pairs {
		edges = append(edges, map[string]interface{}{
			"source": p.From,
			"target": p.To,
		})
	}

	result := map[string]interface{}{
		"nodes":      nodes,
		"edges":      edges,
		"node_count": len(nodes),
		"edge_count": len(edges),
		"properties": rel.Check(),
	}
	if classes, err := rel.Classes(); err == nil {
		result["classes"] = classes
	}
	return result
}

// classLabel renders a class as "[a b c]".
func classLabel(class []int) string {
	parts := make([]string, len(class))
	for i, e := range class {
		parts[i] = strconv.Itoa(e)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
