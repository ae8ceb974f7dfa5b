package output

import (
	"depgraph/internal/engine/graph"
	"encoding/json"
)

type JSONGenerator struct {
	root *graph.Node
}

func NewJSONGenerator(root *graph.Node) *JSONGenerator {
	return &JSONGenerator{root: root}
}

func (j *JSONGenerator) Generate() (string, error) {
	data, err := json.MarshalIndent(j.root, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}
