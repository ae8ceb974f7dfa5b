package output

import (
	"depgraph/internal/engine/graph"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
)

var (
	treeEnumeratorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748B")).MarginRight(1)
	treePathStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748B")).Italic(true)
	treeRootStyle       = lipgloss.NewStyle().Bold(true)
)

// TreeGenerator renders a colored terminal tree.
type TreeGenerator struct {
	root *graph.Node
}

func NewTreeGenerator(root *graph.Node) *TreeGenerator {
	return &TreeGenerator{root: root}
}

func (g *TreeGenerator) Generate() (string, error) {
	if g.root == nil {
		return "", nil
	}
	t := tree.Root(treeRootStyle.Render(g.root.Label)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(treeEnumeratorStyle)
	for _, child := range g.root.Children {
		t.Child(treeChild(child))
	}
	return t.String() + "\n", nil
}

func treeChild(n *graph.Node) any {
	label := treeLabel(n)
	if len(n.Children) == 0 {
		return label
	}
	sub := tree.Root(label).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(treeEnumeratorStyle)
	for _, child := range n.Children {
		sub.Child(treeChild(child))
	}
	return sub
}

func treeLabel(n *graph.Node) string {
	label := singleLine(n.Label)
	if n.Color != "" {
		label = lipgloss.NewStyle().Foreground(lipgloss.Color(n.Color)).Render(label)
	}
	if n.Category == graph.CategoryFile && n.Path != "" && len(n.References) == 0 {
		label += " " + treePathStyle.Render(n.Path)
	}
	return label
}
