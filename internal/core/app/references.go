package app

import (
	"context"
	"depgraph/internal/core/config"
	"depgraph/internal/core/ports"
	"depgraph/internal/engine/lsp"
	"depgraph/internal/engine/references"
	"log/slog"
)

// NewReferenceProvider starts the configured language server. When it is
// disabled or fails to start, lookups degrade to returning no references.
func NewReferenceProvider(ctx context.Context, cfg *config.Config) ports.ReferenceProvider {
	if cfg == nil || !cfg.LSP.IsEnabled() {
		return references.NoopService{}
	}
	client, err := lsp.Start(ctx, lsp.Config{
		Command:           cfg.LSP.Command,
		Args:              cfg.LSP.Args,
		Root:              workspaceRoot(cfg),
		RequestTimeout:    cfg.LSP.RequestTimeout,
		RequestsPerSecond: cfg.LSP.RequestsPerSecond,
		Burst:             cfg.LSP.Burst,
	})
	if err != nil {
		slog.Warn("reference lookups disabled", "command", cfg.LSP.Command, "error", err)
		return references.NoopService{}
	}
	return client
}

func workspaceRoot(cfg *config.Config) string {
	if cfg.Workspace.Root != "" {
		return cfg.Workspace.Root
	}
	return cfg.LSP.Root
}
