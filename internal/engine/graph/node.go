// # internal/engine/graph/node.go
package graph

import "depgraph/internal/engine/parser"

type Category string

const (
	CategoryRoot     Category = "root"
	CategoryGroup    Category = "category"
	CategoryFile     Category = "file"
	CategoryClass    Category = "class"
	CategoryFunction Category = "function"
	CategoryProperty Category = "property"
)

// Node is one entry of the declaration tree handed to renderers.
type Node struct {
	Label    string   `json:"label"`
	Category Category `json:"category"`
	Color    string   `json:"color,omitempty"`
	Path     string   `json:"path,omitempty"`
	Badge    bool     `json:"badge,omitempty"`
	Source   string   `json:"source,omitempty"`
	// References are the usage locations a reference-file node stands for.
	References []parser.Location `json:"references,omitempty"`
	Children   []*Node           `json:"children,omitempty"`
}

// Walk visits n and its descendants pre-order. Returning false from fn skips
// the node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if n == nil {
		return
	}
	if !fn(n, depth) {
		return
	}
	for _, child := range n.Children {
		child.walk(fn, depth+1)
	}
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	total := 0
	n.Walk(func(*Node, int) bool {
		total++
		return true
	})
	return total
}

// Find returns the first node, pre-order, with the given label and category.
func (n *Node) Find(label string, category Category) *Node {
	var found *Node
	n.Walk(func(node *Node, _ int) bool {
		if found != nil {
			return false
		}
		if node.Label == label && node.Category == category {
			found = node
			return false
		}
		return true
	})
	return found
}
