package config

import (
	"fmt"
	"slices"
	"strings"
)

func validateColors(cfg *Config) error {
	colors := map[string]string{
		"imports":   cfg.Colors.Imports,
		"exports":   cfg.Colors.Exports,
		"classes":   cfg.Colors.Classes,
		"functions": cfg.Colors.Functions,
		"file":      cfg.Colors.File,
		"property":  cfg.Colors.Property,
	}
	for name, value := range colors {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("colors.%s must not be empty", name)
		}
	}
	return nil
}

func validateLimits(cfg *Config) error {
	if cfg.Resolver.ManifestCacheSize < 0 {
		return fmt.Errorf("resolver.manifest_cache_size must be >= 0, got %d", cfg.Resolver.ManifestCacheSize)
	}
	if cfg.LSP.RequestTimeout < 0 {
		return fmt.Errorf("lsp.request_timeout must be >= 0, got %s", cfg.LSP.RequestTimeout)
	}
	if cfg.LSP.RequestsPerSecond < 0 {
		return fmt.Errorf("lsp.requests_per_second must be >= 0, got %v", cfg.LSP.RequestsPerSecond)
	}
	if cfg.LSP.Burst < 0 {
		return fmt.Errorf("lsp.burst must be >= 0, got %d", cfg.LSP.Burst)
	}
	if cfg.Workspace.MaxFiles < 0 {
		return fmt.Errorf("workspace.max_files must be >= 0, got %d", cfg.Workspace.MaxFiles)
	}
	return nil
}

func validateOutput(cfg *Config) error {
	if !slices.Contains(OutputFormats, cfg.Output.Format) {
		return fmt.Errorf("output.format must be one of: %s, got %q", strings.Join(OutputFormats, ", "), cfg.Output.Format)
	}
	return nil
}

// ValidateFormat checks a format chosen outside the config file.
func ValidateFormat(format string) error {
	cfg := Config{Output: Output{Format: strings.ToLower(strings.TrimSpace(format))}}
	return validateOutput(&cfg)
}
