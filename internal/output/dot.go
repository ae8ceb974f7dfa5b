// # internal/output/dot.go
package output

import (
	"depgraph/internal/engine/graph"
	"fmt"
	"strings"
)

type DOTGenerator struct {
	root *graph.Node
}

func NewDOTGenerator(root *graph.Node) *DOTGenerator {
	return &DOTGenerator{root: root}
}

func (d *DOTGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("digraph declarations {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=10, fillcolor=\"white\"];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8];\n\n")

	nodes := flatten(d.root)
	for _, fn := range nodes {
		attrs := []string{fmt.Sprintf("label=%s", dotQuote(fn.node.Label))}
		if fn.node.Color != "" {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%s", dotQuote(fn.node.Color)))
		}
		if fn.node.Path != "" {
			attrs = append(attrs, fmt.Sprintf("tooltip=%s", dotQuote(fn.node.Path)))
		}
		if fn.node.Category == graph.CategoryRoot {
			attrs = append(attrs, "penwidth=2")
		}
		buf.WriteString(fmt.Sprintf("  n%d [%s];\n", fn.id, strings.Join(attrs, ", ")))
	}

	buf.WriteString("\n")
	for _, fn := range nodes {
		if fn.parent < 0 {
			continue
		}
		buf.WriteString(fmt.Sprintf("  n%d -> n%d;\n", fn.parent, fn.id))
	}
	buf.WriteString("}\n")
	return buf.String(), nil
}

func dotQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + singleLine(s) + `"`
}
