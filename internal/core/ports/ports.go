package ports

import (
	"context"
	"depgraph/internal/engine/graph"
	"depgraph/internal/engine/parser"
)

// SourceAnalyzer abstracts parsing a source file into declaration records.
type SourceAnalyzer interface {
	Analyze(source []byte, filePath string) (*parser.Analysis, error)
	IsSupportedPath(filePath string) bool
}

// ReferenceService finds usages of the symbol declared at pos.
type ReferenceService interface {
	FindReferences(ctx context.Context, filePath string, pos parser.Location) ([]parser.Location, error)
}

// DocumentLoader makes files known to a reference service before lookups.
type DocumentLoader interface {
	OpenDocument(ctx context.Context, filePath string, content []byte) error
}

// ReferenceProvider is a reference service that can also be preloaded and shut down.
type ReferenceProvider interface {
	ReferenceService
	DocumentLoader
	Close() error
}

// AnalysisResult is the output of one analysis run.
type AnalysisResult struct {
	RunID    string           `json:"run_id"`
	FilePath string           `json:"file_path"`
	Analysis *parser.Analysis `json:"analysis"`
	Tree     *graph.Node      `json:"tree"`
}

// FileFailure records a file a batch run could not analyze.
type FileFailure struct {
	FilePath string
	Err      error
}

// AnalysisService is the driving port used by the CLI.
type AnalysisService interface {
	Analyze(ctx context.Context, filePath string) (*AnalysisResult, error)
	AnalyzeAll(ctx context.Context, paths []string) ([]*AnalysisResult, []FileFailure)
	Preload(ctx context.Context) (int, error)
	Close() error
}
