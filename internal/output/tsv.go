// # internal/output/tsv.go
package output

import (
	"depgraph/internal/engine/graph"
	"fmt"
	"strings"
)

type TSVGenerator struct {
	root *graph.Node
}

func NewTSVGenerator(root *graph.Node) *TSVGenerator {
	return &TSVGenerator{root: root}
}

func (t *TSVGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("Depth\tCategory\tLabel\tPath\n")
	for _, fn := range flatten(t.root) {
		buf.WriteString(fmt.Sprintf("%d\t%s\t%s\t%s\n",
			fn.depth, fn.node.Category, tsvField(fn.node.Label), tsvField(fn.node.Path)))
	}
	return buf.String(), nil
}

func tsvField(s string) string {
	return strings.ReplaceAll(singleLine(s), "\t", " ")
}
