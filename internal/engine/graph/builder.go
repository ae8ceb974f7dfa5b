// # internal/engine/graph/builder.go
package graph

import (
	"depgraph/internal/core/config"
	"depgraph/internal/engine/parser"
	"depgraph/internal/shared/util"
	"fmt"
	"strings"
)

const (
	LabelImports = "imports"
	LabelExports = "exports"
	LabelClasses = "classes"
	// LabelAnonymous stands in for an unnamed default-exported class.
	LabelAnonymous = "(anonymous)"
	LabelFunctions = "functions"
)

// Build turns an analysis into the declaration tree. It performs no I/O and
// keeps record order throughout.
func Build(filename, filePath string, a *parser.Analysis, scheme config.ColorScheme) *Node {
	if a == nil {
		a = &parser.Analysis{}
	}
	root := &Node{
		Label:    filename,
		Category: CategoryRoot,
		Path:     filePath,
		Badge:    true,
		Children: []*Node{
			buildImports(a.Imports, scheme),
			buildExports(a.Exports, scheme),
			buildClasses(a.Classes, scheme),
			buildFunctions(a.Functions, scheme),
		},
	}
	return root
}

func group(label, color string, capacity int) *Node {
	return &Node{
		Label:    label,
		Category: CategoryGroup,
		Color:    color,
		Children: make([]*Node, 0, capacity),
	}
}

func buildImports(imports []*parser.ImportRecord, scheme config.ColorScheme) *Node {
	n := group(LabelImports, scheme.Imports, len(imports))
	for _, imp := range imports {
		file := &Node{
			Label:    imp.Specifier,
			Category: CategoryFile,
			Color:    scheme.File,
			Path:     imp.ResolvedPath,
			Badge:    true,
		}
		for _, item := range imp.Items() {
			file.Children = append(file.Children, &Node{
				Label:    item,
				Category: CategoryProperty,
				Color:    scheme.Property,
				Path:     imp.ResolvedPath,
			})
		}
		n.Children = append(n.Children, file)
	}
	return n
}

func buildExports(exports []*parser.ExportRecord, scheme config.ColorScheme) *Node {
	n := group(LabelExports, scheme.Exports, len(exports))
	for _, exp := range exports {
		prop := &Node{
			Label:    exp.Name,
			Category: CategoryProperty,
			Color:    scheme.Exports,
			Source:   exp.Declaration,
		}
		for _, g := range exp.References.Groups() {
			prop.Children = append(prop.Children, &Node{
				Label:      ReferenceLabel(g.Path, len(g.Locations)),
				Category:   CategoryFile,
				Color:      scheme.File,
				Path:       g.Path,
				Badge:      true,
				References: append([]parser.Location(nil), g.Locations...),
			})
		}
		n.Children = append(n.Children, prop)
	}
	return n
}

func buildClasses(classes []*parser.ClassRecord, scheme config.ColorScheme) *Node {
	n := group(LabelClasses, scheme.Classes, len(classes))
	for _, class := range classes {
		label := class.Name
		if label == "" {
			label = LabelAnonymous
		}
		c := &Node{
			Label:    label,
			Category: CategoryClass,
			Color:    scheme.Classes,
		}
		for _, member := range class.Members {
			c.Children = append(c.Children, &Node{
				Label:    member.Name,
				Category: CategoryFunction,
				Color:    scheme.Functions,
				Source:   member.Body,
			})
		}
		n.Children = append(n.Children, c)
	}
	return n
}

func buildFunctions(functions []*parser.FunctionRecord, scheme config.ColorScheme) *Node {
	n := group(LabelFunctions, scheme.Functions, len(functions))
	for _, fn := range functions {
		n.Children = append(n.Children, &Node{
			Label:    fn.Name,
			Category: CategoryFunction,
			Color:    scheme.Functions,
			Source:   fn.Body,
		})
	}
	return n
}

// ReferenceLabel is "<base name> (<count>)".
func ReferenceLabel(path string, count int) string {
	return fmt.Sprintf("%s (%d)", util.BaseName(strings.TrimSpace(path)), count)
}
