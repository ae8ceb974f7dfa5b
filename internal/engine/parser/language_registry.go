package parser

import (
	"fmt"
	"strings"
)

type LanguageSpec struct {
	Name       string
	Extensions []string
}

var defaultLanguageSpecs = []LanguageSpec{
	{Name: "javascript", Extensions: []string{".js", ".cjs", ".mjs"}},
	{Name: "jsx", Extensions: []string{".jsx"}},
	{Name: "typescript", Extensions: []string{".ts", ".mts", ".cts"}},
	{Name: "tsx", Extensions: []string{".tsx"}},
}

// DefaultLanguageRegistry returns the JavaScript/TypeScript dialects the analyzer handles.
func DefaultLanguageRegistry() map[string]LanguageSpec {
	registry := make(map[string]LanguageSpec, len(defaultLanguageSpecs))
	for _, spec := range defaultLanguageSpecs {
		registry[spec.Name] = LanguageSpec{
			Name:       spec.Name,
			Extensions: append([]string(nil), spec.Extensions...),
		}
	}
	return registry
}

func buildExtensionIndex(registry map[string]LanguageSpec) (map[string]string, error) {
	index := make(map[string]string)
	for lang, spec := range registry {
		for _, ext := range spec.Extensions {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if !strings.HasPrefix(ext, ".") {
				return nil, fmt.Errorf("language %s: extension %q must start with a dot", lang, ext)
			}
			if owner, ok := index[ext]; ok && owner != lang {
				return nil, fmt.Errorf("extension %s claimed by both %s and %s", ext, owner, lang)
			}
			index[ext] = lang
		}
	}
	return index, nil
}
