package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// NodeHandler inspects a node and may append records to the context.
type NodeHandler func(ctx *ExtractionContext, node *sitter.Node)

// ExtractionContext carries the source and the record accumulator for one walk.
type ExtractionContext struct {
	Source   []byte
	FilePath string
	BaseDir  string
	Resolver ModuleResolver
	Records  *recordBuilder
}

// recordBuilder accumulates records in walk order.
type recordBuilder struct {
	imports   []*ImportRecord
	exports   []*ExportRecord
	classes   []*ClassRecord
	functions []*FunctionRecord
}

func (b *recordBuilder) addImport(r *ImportRecord)     { b.imports = append(b.imports, r) }
func (b *recordBuilder) addExport(r *ExportRecord)     { b.exports = append(b.exports, r) }
func (b *recordBuilder) addClass(r *ClassRecord)       { b.classes = append(b.classes, r) }
func (b *recordBuilder) addFunction(r *FunctionRecord) { b.functions = append(b.functions, r) }

func (b *recordBuilder) analysis(filePath, lang string) *Analysis {
	return &Analysis{
		FilePath:  filePath,
		Language:  lang,
		Imports:   b.imports,
		Exports:   b.exports,
		Classes:   b.classes,
		Functions: b.functions,
	}
}

// ExtractorEngine walks the syntax tree pre-order and runs every handler
// registered for a node's kind.
type ExtractorEngine struct {
	handlers map[string][]NodeHandler
}

func NewExtractorEngine() *ExtractorEngine {
	return &ExtractorEngine{handlers: make(map[string][]NodeHandler)}
}

func (e *ExtractorEngine) Handle(handler NodeHandler, kinds ...string) {
	for _, kind := range kinds {
		e.handlers[kind] = append(e.handlers[kind], handler)
	}
}

func (e *ExtractorEngine) Walk(ctx *ExtractionContext, node *sitter.Node) {
	if node == nil {
		return
	}

	for _, handler := range e.handlers[node.Kind()] {
		handler(ctx, node)
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		e.Walk(ctx, node.Child(i))
	}
}

func (c *ExtractionContext) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(c.Source[node.StartByte():node.EndByte()])
}

func (c *ExtractionContext) Location(node *sitter.Node) Location {
	return Location{
		File:   c.FilePath,
		Line:   int(node.StartPosition().Row) + 1,
		Column: int(node.StartPosition().Column) + 1,
	}
}

// ChildOfKind returns the first direct child with the given kind.
func (c *ExtractionContext) ChildOfKind(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

func (c *ExtractionContext) ChildText(node *sitter.Node, kind string) string {
	return c.Text(c.ChildOfKind(node, kind))
}
