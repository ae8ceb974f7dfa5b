package app

import (
	"depgraph/internal/core/config"
	"depgraph/internal/core/ports"
	"depgraph/internal/engine/parser"
	"depgraph/internal/engine/references"
	"depgraph/internal/engine/resolver"

	"github.com/google/uuid"
)

type App struct {
	Config   *config.Config
	loader   *parser.GrammarLoader
	analyzer *parser.Analyzer
	refs     ports.ReferenceProvider
}

// New wires the analysis pipeline. A nil provider disables reference lookups.
func New(cfg *config.Config, refs ports.ReferenceProvider) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if refs == nil {
		refs = references.NoopService{}
	}
	loader, err := parser.NewGrammarLoader()
	if err != nil {
		return nil, err
	}
	return &App{
		Config:   cfg,
		loader:   loader,
		analyzer: parser.NewAnalyzer(loader, nil),
		refs:     refs,
	}, nil
}

var _ ports.SourceAnalyzer = (*parser.Analyzer)(nil)

// run holds the state of one analysis invocation. Nothing in it outlives the call.
type run struct {
	id         string
	analyzer   ports.SourceAnalyzer
	aggregator *references.Aggregator
}

func (a *App) newRun() *run {
	r := resolver.New(resolver.WithManifestCacheSize(a.Config.Resolver.ManifestCacheSize))
	return &run{
		id:         uuid.NewString(),
		analyzer:   a.analyzer.WithResolver(r),
		aggregator: references.NewAggregator(a.refs),
	}
}

func (a *App) AnalysisService() ports.AnalysisService {
	return NewAnalysisService(a)
}
