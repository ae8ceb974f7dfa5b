package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// newJavaScriptEngine registers the declaration handlers shared by every
// JavaScript and TypeScript dialect.
func newJavaScriptEngine() *ExtractorEngine {
	e := NewExtractorEngine()
	e.Handle(extractImportStatement, "import_statement")
	e.Handle(extractRequireCall, "call_expression")
	e.Handle(extractExportStatement, "export_statement")
	e.Handle(extractCommonJSExport, "assignment_expression")
	e.Handle(extractClass, "class_declaration", "abstract_class_declaration")
	e.Handle(extractDefaultClass, "class")
	e.Handle(extractFunctionDeclaration,
		"function_declaration",
		"generator_function_declaration",
		"function_expression",
		"function",
		"generator_function",
	)
	e.Handle(extractFunctionVariable, "variable_declarator")
	return e
}

func extractImportStatement(ctx *ExtractionContext, node *sitter.Node) {
	source := node.ChildByFieldName("source")
	if source == nil {
		// import x = require('y')
		if clause := ctx.ChildOfKind(node, "import_require_clause"); clause != nil {
			source = clause.ChildByFieldName("source")
			if source == nil {
				source = ctx.ChildOfKind(clause, "string")
			}
		}
	}
	if source == nil {
		return
	}

	items := WildcardItems
	if clause := ctx.ChildOfKind(node, "import_clause"); clause != nil {
		if named := ctx.ChildText(clause, "named_imports"); named != "" {
			items = named
		}
	}
	addImport(ctx, trimQuoted(ctx.Text(source)), items)
}

func extractRequireCall(ctx *ExtractionContext, node *sitter.Node) {
	callee := node.ChildByFieldName("function")
	if callee == nil || callee.Kind() != "identifier" || ctx.Text(callee) != "require" {
		return
	}
	args := node.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return
	}
	arg := args.NamedChild(0)
	if arg == nil || (arg.Kind() != "string" && arg.Kind() != "template_string") {
		return
	}
	addImport(ctx, trimQuoted(ctx.Text(arg)), WildcardItems)
}

func addImport(ctx *ExtractionContext, specifier, items string) {
	if specifier == "" {
		return
	}
	record := &ImportRecord{Specifier: specifier, ImportedItems: items}
	if ctx.Resolver != nil {
		if resolved, ok := ctx.Resolver.Resolve(specifier, ctx.BaseDir); ok {
			record.ResolvedPath = resolved
		}
	}
	ctx.Records.addImport(record)
}

func extractExportStatement(ctx *ExtractionContext, node *sitter.Node) {
	declaration := ctx.Text(node)
	for _, nameNode := range exportedNameNodes(ctx, node) {
		loc := ctx.Location(nameNode)
		ctx.Records.addExport(&ExportRecord{
			Name:        ctx.Text(nameNode),
			Declaration: declaration,
			Position:    &loc,
		})
	}
}

// exportedNameNodes finds the identifiers an export statement publishes, one
// per declarator or destructured binding. Export clauses, star re-exports and
// anonymous defaults have none.
func exportedNameNodes(ctx *ExtractionContext, node *sitter.Node) []*sitter.Node {
	if decl := node.ChildByFieldName("declaration"); decl != nil {
		return declarationNames(ctx, decl)
	}
	if value := node.ChildByFieldName("value"); value != nil {
		if value.Kind() == "identifier" {
			return []*sitter.Node{value}
		}
		return nil
	}

	// export = target
	for i := uint(0); i+1 < node.ChildCount(); i++ {
		if node.Child(i).Kind() != "=" {
			continue
		}
		if target := node.Child(i + 1); target != nil && target.Kind() == "identifier" {
			return []*sitter.Node{target}
		}
		return nil
	}
	return nil
}

func declarationNames(ctx *ExtractionContext, decl *sitter.Node) []*sitter.Node {
	switch decl.Kind() {
	case "lexical_declaration", "variable_declaration":
		var names []*sitter.Node
		for i := uint(0); i < decl.NamedChildCount(); i++ {
			declarator := decl.NamedChild(i)
			if declarator == nil || declarator.Kind() != "variable_declarator" {
				continue
			}
			names = append(names, bindingNames(declarator.ChildByFieldName("name"))...)
		}
		return names
	case "ambient_declaration":
		var names []*sitter.Node
		for i := uint(0); i < decl.NamedChildCount(); i++ {
			names = append(names, declarationNames(ctx, decl.NamedChild(i))...)
		}
		return names
	}
	if name := decl.ChildByFieldName("name"); name != nil {
		return []*sitter.Node{name}
	}
	return nil
}

// bindingNames flattens a binding target into the identifiers it declares.
func bindingNames(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	switch node.Kind() {
	case "identifier", "shorthand_property_identifier_pattern":
		return []*sitter.Node{node}
	case "pair_pattern":
		return bindingNames(node.ChildByFieldName("value"))
	case "assignment_pattern", "object_assignment_pattern":
		return bindingNames(node.ChildByFieldName("left"))
	case "object_pattern", "array_pattern", "rest_pattern":
		var names []*sitter.Node
		for i := uint(0); i < node.NamedChildCount(); i++ {
			names = append(names, bindingNames(node.NamedChild(i))...)
		}
		return names
	}
	return nil
}

func extractCommonJSExport(ctx *ExtractionContext, node *sitter.Node) {
	left := node.ChildByFieldName("left")
	if left == nil || left.Kind() != "member_expression" {
		return
	}

	var nameNode *sitter.Node
	switch target := ctx.Text(left); {
	case target == "module.exports":
		right := node.ChildByFieldName("right")
		if right != nil && right.Kind() == "identifier" {
			nameNode = right
		}
	default:
		object := ctx.Text(left.ChildByFieldName("object"))
		if object == "module.exports" || object == "exports" {
			nameNode = left.ChildByFieldName("property")
		}
	}
	if nameNode == nil {
		return
	}

	declaration := node
	if parent := node.Parent(); parent != nil && parent.Kind() == "expression_statement" {
		declaration = parent
	}
	loc := ctx.Location(nameNode)
	ctx.Records.addExport(&ExportRecord{
		Name:        ctx.Text(nameNode),
		Declaration: ctx.Text(declaration),
		Position:    &loc,
	})
}

func extractClass(ctx *ExtractionContext, node *sitter.Node) {
	name := ctx.Text(node.ChildByFieldName("name"))
	if name == "" {
		return
	}
	addClass(ctx, node, name)
}

// extractDefaultClass records `export default class {}`. Other class
// expressions are values, not declarations.
func extractDefaultClass(ctx *ExtractionContext, node *sitter.Node) {
	if !node.IsNamed() {
		return
	}
	parent := node.Parent()
	if parent == nil || parent.Kind() != "export_statement" {
		return
	}
	addClass(ctx, node, ctx.Text(node.ChildByFieldName("name")))
}

func addClass(ctx *ExtractionContext, node *sitter.Node, name string) {
	record := &ClassRecord{Name: name}
	body := node.ChildByFieldName("body")
	if body != nil {
		for i := uint(0); i < body.NamedChildCount(); i++ {
			if member, ok := classMember(ctx, body.NamedChild(i)); ok {
				record.Members = append(record.Members, member)
			}
		}
	}
	ctx.Records.addClass(record)
}

func classMember(ctx *ExtractionContext, node *sitter.Node) (FunctionRecord, bool) {
	if node == nil {
		return FunctionRecord{}, false
	}
	switch node.Kind() {
	case "abstract_method_signature", "method_signature":
		// No body: abstract members and overload signatures.
		return FunctionRecord{Name: ctx.Text(node.ChildByFieldName("name"))}, true
	case "method_definition":
		return FunctionRecord{
			Name: ctx.Text(node.ChildByFieldName("name")),
			Body: ctx.Text(node.ChildByFieldName("body")),
		}, true
	case "public_field_definition", "field_definition":
		value := node.ChildByFieldName("value")
		if value == nil || value.Kind() != "arrow_function" {
			return FunctionRecord{}, false
		}
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			nameNode = node.ChildByFieldName("property")
		}
		return FunctionRecord{
			Name: ctx.Text(nameNode),
			Body: ctx.Text(value.ChildByFieldName("body")),
		}, true
	}
	return FunctionRecord{}, false
}

func extractFunctionDeclaration(ctx *ExtractionContext, node *sitter.Node) {
	name := ctx.Text(node.ChildByFieldName("name"))
	if name == "" {
		return
	}
	ctx.Records.addFunction(&FunctionRecord{
		Name: name,
		Body: ctx.Text(node.ChildByFieldName("body")),
	})
}

func extractFunctionVariable(ctx *ExtractionContext, node *sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	value := node.ChildByFieldName("value")
	if nameNode == nil || value == nil || nameNode.Kind() != "identifier" {
		return
	}
	if !isFunctionValue(value.Kind()) {
		return
	}
	ctx.Records.addFunction(&FunctionRecord{
		Name: ctx.Text(nameNode),
		Body: ctx.Text(value.ChildByFieldName("body")),
	})
}

func isFunctionValue(kind string) bool {
	switch kind {
	case "arrow_function", "function_expression", "function", "generator_function":
		return true
	}
	return false
}
