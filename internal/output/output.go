package output

import (
	"depgraph/internal/core/errors"
	"depgraph/internal/engine/graph"
	"fmt"
	"io"
	"strings"
)

// Generator renders a declaration tree in one text format.
type Generator interface {
	Generate() (string, error)
}

// NewGenerator returns the generator registered for format.
func NewGenerator(format string, root *graph.Node) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return NewJSONGenerator(root), nil
	case "dot":
		return NewDOTGenerator(root), nil
	case "mermaid":
		return NewMermaidGenerator(root), nil
	case "plantuml":
		return NewPlantUMLGenerator(root), nil
	case "tsv":
		return NewTSVGenerator(root), nil
	case "tree":
		return NewTreeGenerator(root), nil
	default:
		return nil, errors.New(errors.CodeValidationError, fmt.Sprintf("unknown output format %q", format))
	}
}

// Write renders root in format to w.
func Write(w io.Writer, format string, root *graph.Node) error {
	gen, err := NewGenerator(format, root)
	if err != nil {
		return err
	}
	out, err := gen.Generate()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

var fileExtensions = map[string]string{
	"json":     ".json",
	"dot":      ".dot",
	"mermaid":  ".mmd",
	"plantuml": ".puml",
	"tsv":      ".tsv",
	"tree":     ".txt",
}

// FileExtension returns the conventional file suffix for format, or ".txt".
func FileExtension(format string) string {
	if ext, ok := fileExtensions[strings.ToLower(strings.TrimSpace(format))]; ok {
		return ext
	}
	return ".txt"
}

// flatNode is a tree node with its pre-order index and parent index (-1 for the root).
type flatNode struct {
	node   *graph.Node
	id     int
	parent int
	depth  int
}

func flatten(root *graph.Node) []flatNode {
	var out []flatNode
	var visit func(n *graph.Node, parent, depth int)
	visit = func(n *graph.Node, parent, depth int) {
		id := len(out)
		out = append(out, flatNode{node: n, id: id, parent: parent, depth: depth})
		for _, child := range n.Children {
			visit(child, id, depth+1)
		}
	}
	if root != nil {
		visit(root, -1, 0)
	}
	return out
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
