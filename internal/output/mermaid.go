package output

import (
	"depgraph/internal/engine/graph"
	"fmt"
	"strings"
)

type MermaidGenerator struct {
	root *graph.Node
}

func NewMermaidGenerator(root *graph.Node) *MermaidGenerator {
	return &MermaidGenerator{root: root}
}

func (m *MermaidGenerator) Generate() (string, error) {
	var buf strings.Builder
	buf.WriteString("graph LR\n")

	nodes := flatten(m.root)
	for _, fn := range nodes {
		buf.WriteString(fmt.Sprintf("  n%d[\"%s\"]\n", fn.id, mermaidLabel(fn.node.Label)))
	}
	for _, fn := range nodes {
		if fn.parent >= 0 {
			buf.WriteString(fmt.Sprintf("  n%d --> n%d\n", fn.parent, fn.id))
		}
	}
	for _, fn := range nodes {
		if fn.node.Color != "" {
			buf.WriteString(fmt.Sprintf("  style n%d fill:%s\n", fn.id, fn.node.Color))
		}
	}
	return buf.String(), nil
}

func mermaidLabel(s string) string {
	s = singleLine(s)
	s = strings.ReplaceAll(s, `"`, "#quot;")
	return s
}
