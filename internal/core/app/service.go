package app

import (
	"context"
	"depgraph/internal/core/errors"
	"depgraph/internal/core/ports"
	"depgraph/internal/engine/graph"
	"depgraph/internal/engine/parser"
	"depgraph/internal/engine/workspace"
	"depgraph/internal/shared/observability"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type analysisService struct {
	app *App
}

var _ ports.AnalysisService = (*analysisService)(nil)

func NewAnalysisService(app *App) ports.AnalysisService {
	return &analysisService{app: app}
}

// Analyze runs the parse, reference and tree stages for one file.
func (s *analysisService) Analyze(ctx context.Context, filePath string) (*ports.AnalysisResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.Analyze", trace.WithAttributes(attribute.String("file", filePath)))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.app == nil {
		return nil, fmt.Errorf("app is required")
	}

	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "resolve path"), errors.CtxPath, filePath)
	}
	if !s.app.analyzer.IsSupportedPath(abs) {
		observability.FilesAnalyzedTotal.WithLabelValues("unsupported").Inc()
		err := errors.New(errors.CodeNotSupported, fmt.Sprintf("unsupported file type %q", filepath.Ext(abs)))
		return nil, errors.AddContext(err, errors.CtxPath, abs)
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		observability.FilesAnalyzedTotal.WithLabelValues("error").Inc()
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "read source file"), errors.CtxPath, abs)
	}

	r := s.app.newRun()
	span.SetAttributes(attribute.String("run_id", r.id))

	var analysis *parser.Analysis
	err = stage(ctx, "parser.Analyze", func(context.Context) error {
		var err error
		analysis, err = r.analyzer.Analyze(content, abs)
		return err
	})
	if err != nil {
		observability.FilesAnalyzedTotal.WithLabelValues("error").Inc()
		return nil, errors.AddContext(err, errors.CtxOperation, "analyze")
	}

	_ = stage(ctx, "references.Attach", func(ctx context.Context) error {
		if len(analysis.Exports) == 0 {
			return nil
		}
		if err := s.app.refs.OpenDocument(ctx, abs, content); err != nil {
			slog.Warn("failed to sync document with reference service", "file", abs, "error", err)
		}
		r.aggregator.Attach(ctx, analysis.Exports, content, abs)
		return nil
	})

	var tree *graph.Node
	_ = stage(ctx, "graph.Build", func(context.Context) error {
		tree = graph.Build(filepath.Base(abs), abs, analysis, s.app.Config.Colors)
		observability.GraphNodes.Set(float64(tree.Count()))
		return nil
	})

	observability.FilesAnalyzedTotal.WithLabelValues("ok").Inc()
	slog.Debug("file analyzed",
		"run_id", r.id,
		"file", abs,
		"imports", len(analysis.Imports),
		"exports", len(analysis.Exports),
		"classes", len(analysis.Classes),
		"functions", len(analysis.Functions),
	)

	return &ports.AnalysisResult{
		RunID:    r.id,
		FilePath: abs,
		Analysis: analysis,
		Tree:     tree,
	}, nil
}

// AnalyzeAll analyzes each path independently; one failure never stops the batch.
func (s *analysisService) AnalyzeAll(ctx context.Context, paths []string) ([]*ports.AnalysisResult, []ports.FileFailure) {
	var results []*ports.AnalysisResult
	var failures []ports.FileFailure
	for _, path := range paths {
		res, err := s.Analyze(ctx, path)
		if err != nil {
			if errors.IsUnsupported(err) {
				slog.Warn("skipping unsupported file", "file", path)
			} else {
				slog.Warn("analysis failed", "file", path, "error", err)
			}
			failures = append(failures, ports.FileFailure{FilePath: path, Err: err})
			continue
		}
		results = append(results, res)
	}
	return results, failures
}

// Preload opens every discovered workspace source in the reference service.
func (s *analysisService) Preload(ctx context.Context) (int, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.Preload")
	defer span.End()

	cfg := s.app.Config
	root := workspaceRoot(cfg)
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return 0, err
		}
		root = wd
	}

	files, err := workspace.Discover(root, workspace.Options{
		Extensions:   s.app.analyzer.SupportedExtensions(),
		ExcludeDirs:  cfg.Workspace.ExcludeDirs,
		ExcludeFiles: cfg.Workspace.ExcludeFiles,
		MaxFiles:     cfg.Workspace.MaxFiles,
	})
	if err != nil {
		return 0, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "discover workspace"), errors.CtxPath, root)
	}

	opened := 0
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return opened, err
		}
		content, err := os.ReadFile(file)
		if err != nil {
			slog.Debug("skipping unreadable workspace file", "file", file, "error", err)
			continue
		}
		abs, err := filepath.Abs(file)
		if err != nil {
			abs = file
		}
		if err := s.app.refs.OpenDocument(ctx, abs, content); err != nil {
			slog.Warn("failed to preload workspace file", "file", abs, "error", err)
			continue
		}
		opened++
	}
	span.SetAttributes(attribute.Int("files", opened))
	slog.Info("workspace preloaded", "root", root, "files", opened)
	return opened, nil
}

func (s *analysisService) Close() error {
	if s == nil || s.app == nil {
		return nil
	}
	return s.app.refs.Close()
}

func stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := observability.Tracer.Start(ctx, name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	observability.AnalysisDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
