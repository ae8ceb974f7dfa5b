// # internal/engine/parser/parser.go
package parser

import (
	"depgraph/internal/core/errors"
	"depgraph/internal/shared/observability"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Analyzer extracts declaration records from JavaScript and TypeScript sources.
type Analyzer struct {
	loader   *GrammarLoader
	pools    map[string]*ParserPool
	engine   *ExtractorEngine
	resolver ModuleResolver
}

func NewAnalyzer(loader *GrammarLoader, resolver ModuleResolver) *Analyzer {
	a := &Analyzer{
		loader:   loader,
		pools:    make(map[string]*ParserPool),
		engine:   newJavaScriptEngine(),
		resolver: resolver,
	}
	for _, lang := range loader.Languages() {
		if grammar, ok := loader.Language(lang); ok {
			a.pools[lang] = NewParserPool(lang, grammar)
		}
	}
	return a
}

// WithResolver returns an analyzer sharing parser pools but resolving
// imports through r.
func (a *Analyzer) WithResolver(r ModuleResolver) *Analyzer {
	clone := *a
	clone.resolver = r
	return &clone
}

// Analyze parses source and returns its imports, exports, classes and
// functions. Import specifiers are resolved relative to filePath's directory.
func (a *Analyzer) Analyze(source []byte, filePath string) (*Analysis, error) {
	lang := a.DetectLanguage(filePath)
	if lang == "" {
		err := errors.New(errors.CodeNotSupported, fmt.Sprintf("unsupported file type %q", filepath.Ext(filePath)))
		return nil, errors.AddContext(err, errors.CtxPath, filePath)
	}
	pool := a.pools[lang]
	if pool == nil {
		err := errors.New(errors.CodeInternal, "grammar not loaded")
		return nil, errors.AddContext(errors.AddContext(err, errors.CtxLanguage, lang), errors.CtxPath, filePath)
	}

	start := time.Now()
	defer func() {
		observability.ParsingDuration.WithLabelValues(lang).Observe(time.Since(start).Seconds())
	}()

	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse(source, nil)
	if tree == nil {
		err := errors.AddContext(errors.New(errors.CodeInternal, "parse failed"), errors.CtxLanguage, lang)
		return nil, errors.AddContext(err, errors.CtxPath, filePath)
	}
	defer tree.Close()

	records := &recordBuilder{}
	ctx := &ExtractionContext{
		Source:   source,
		FilePath: filePath,
		BaseDir:  filepath.Dir(filePath),
		Resolver: a.resolver,
		Records:  records,
	}
	a.engine.Walk(ctx, tree.RootNode())

	return records.analysis(filePath, lang), nil
}

func (a *Analyzer) DetectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	return a.loader.extensions[ext]
}

func (a *Analyzer) IsSupportedPath(path string) bool {
	return a.DetectLanguage(path) != ""
}

func (a *Analyzer) SupportedExtensions() []string {
	return a.loader.SupportedExtensions()
}
