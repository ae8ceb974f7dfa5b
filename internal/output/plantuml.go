package output

import (
	"depgraph/internal/engine/graph"
	"strings"
)

type PlantUMLGenerator struct {
	root *graph.Node
}

func NewPlantUMLGenerator(root *graph.Node) *PlantUMLGenerator {
	return &PlantUMLGenerator{root: root}
}

func (p *PlantUMLGenerator) Generate() (string, error) {
	var buf strings.Builder
	buf.WriteString("@startmindmap\n")
	for _, fn := range flatten(p.root) {
		buf.WriteString(strings.Repeat("*", fn.depth+1))
		if fn.node.Color != "" && strings.HasPrefix(fn.node.Color, "#") {
			buf.WriteString("[" + fn.node.Color + "]")
		}
		buf.WriteString(" ")
		buf.WriteString(singleLine(fn.node.Label))
		buf.WriteString("\n")
	}
	buf.WriteString("@endmindmap\n")
	return buf.String(), nil
}
