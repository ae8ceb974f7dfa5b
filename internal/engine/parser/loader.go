// # internal/engine/parser/loader.go
package parser

import (
	"depgraph/internal/shared/util"
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

type GrammarLoader struct {
	languages  map[string]*sitter.Language
	registry   map[string]LanguageSpec
	extensions map[string]string
}

func NewGrammarLoader() (*GrammarLoader, error) {
	return NewGrammarLoaderWithRegistry(DefaultLanguageRegistry())
}

func NewGrammarLoaderWithRegistry(registry map[string]LanguageSpec) (*GrammarLoader, error) {
	if registry == nil {
		registry = DefaultLanguageRegistry()
	}
	extensions, err := buildExtensionIndex(registry)
	if err != nil {
		return nil, err
	}

	gl := &GrammarLoader{
		languages:  make(map[string]*sitter.Language),
		registry:   registry,
		extensions: extensions,
	}

	for _, langID := range util.SortedStringKeys(registry) {
		switch langID {
		case "javascript", "jsx":
			gl.languages[langID] = sitter.NewLanguage(tree_sitter_javascript.Language())
		case "typescript":
			gl.languages[langID] = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
		case "tsx":
			gl.languages[langID] = sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
		default:
			return nil, fmt.Errorf("language %q has no tree-sitter grammar", langID)
		}
	}

	return gl, nil
}

func (gl *GrammarLoader) Language(lang string) (*sitter.Language, bool) {
	l, ok := gl.languages[lang]
	return l, ok
}

func (gl *GrammarLoader) Languages() []string {
	return util.SortedStringKeys(gl.languages)
}

func (gl *GrammarLoader) SupportedExtensions() []string {
	return util.SortedStringKeys(gl.extensions)
}
