package main

import (
	"bytes"
	"context"
	coreapp "depgraph/internal/core/app"
	"depgraph/internal/core/config"
	"depgraph/internal/core/ports"
	"depgraph/internal/output"
	"depgraph/internal/shared/observability"
	"depgraph/internal/shared/util"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

func run(args []string, stdout io.Writer) int {
	opts, err := parseOptions(args)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Fprintf(stdout, "depgraph v%s\n", versionString)
		return 0
	}

	configureLogging(opts.verbose)

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	if err := applyOptions(opts, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Observability.OTLPEndpoint, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}()

	if cfg.Observability.MetricsAddr != "" {
		metrics := observability.NewMetricsServer(cfg.Observability.MetricsAddr)
		metrics.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metrics.Stop(shutdownCtx)
		}()
	}

	refs := coreapp.NewReferenceProvider(ctx, cfg)
	app, err := coreapp.New(cfg, refs)
	if err != nil {
		_ = refs.Close()
		slog.Error("failed to initialize app", "error", err)
		return 1
	}
	analysis := app.AnalysisService()
	defer func() {
		if err := analysis.Close(); err != nil {
			slog.Warn("failed to close reference service", "error", err)
		}
	}()

	if shouldPreload(cfg) {
		if _, err := analysis.Preload(ctx); err != nil {
			slog.Warn("workspace preload failed", "error", err)
		}
	}

	results, failures := analysis.AnalyzeAll(ctx, opts.files)
	if err := writeResults(stdout, cfg.Output, results); err != nil {
		slog.Error("failed to write output", "error", err)
	}
	slog.Info("analysis complete", "files", len(results), "failed", len(failures))
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if path == defaultConfigPath && errors.Is(err, os.ErrNotExist) {
		slog.Debug("no config file found, using defaults", "path", path)
		return config.DefaultConfig(), nil
	}
	return nil, err
}

// shouldPreload reports whether workspace files are opened in the language
// server before analysis. Without a server there is nothing to index.
func shouldPreload(cfg *config.Config) bool {
	return cfg.Workspace.PreloadEnabled() && cfg.LSP.IsEnabled()
}

// applyOptions layers command-line flags over the loaded config.
func applyOptions(opts cliOptions, cfg *config.Config) error {
	if len(opts.files) == 0 {
		return fmt.Errorf("at least one file argument is required: depgraph [flags] <file>...")
	}
	if opts.format != "" {
		if err := config.ValidateFormat(opts.format); err != nil {
			return err
		}
		cfg.Output.Format = strings.ToLower(strings.TrimSpace(opts.format))
	}
	if opts.out != "" {
		cfg.Output.Path = opts.out
	}
	if opts.noLSP {
		disabled := false
		cfg.LSP.Enabled = &disabled
	}
	return nil
}

// writeResults renders each tree. With a single result the output path is a
// file; with several it is a directory holding one file per source, laid out
// relative to the sources' common directory.
func writeResults(stdout io.Writer, cfg config.Output, results []*ports.AnalysisResult) error {
	if cfg.Path == "" {
		for _, res := range results {
			if err := output.Write(stdout, cfg.Format, res.Tree); err != nil {
				return err
			}
		}
		return nil
	}

	names := outputNames(results, output.FileExtension(cfg.Format))
	for i, res := range results {
		var buf bytes.Buffer
		if err := output.Write(&buf, cfg.Format, res.Tree); err != nil {
			return err
		}
		path := cfg.Path
		if len(results) > 1 {
			path = filepath.Join(cfg.Path, names[i])
		}
		if err := util.WriteFileWithDirs(path, buf.Bytes(), 0o644); err != nil {
			return err
		}
		slog.Info("wrote declaration tree", "file", res.FilePath, "output", path)
	}
	return nil
}

// outputNames maps each result to a distinct relative output file name. The
// same source given twice gets a numeric suffix.
func outputNames(results []*ports.AnalysisResult, ext string) []string {
	paths := make([]string, len(results))
	for i, res := range results {
		paths[i] = res.FilePath
	}
	base := commonDir(paths)

	names := make([]string, len(results))
	seen := make(map[string]int, len(results))
	for i, path := range paths {
		rel, err := filepath.Rel(base, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			rel = filepath.Base(path)
		}
		name := rel + ext
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d%s", rel, n, ext)
		} else {
			seen[name] = 1
		}
		names[i] = name
	}
	return names
}

// commonDir returns the deepest directory containing every path.
func commonDir(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	dir := filepath.Dir(paths[0])
	for _, p := range paths[1:] {
		for !withinDir(dir, p) {
			parent := filepath.Dir(dir)
			if parent == dir {
				return dir
			}
			dir = parent
		}
	}
	return dir
}

func withinDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func configureLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	// stdout carries the rendered trees.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}
