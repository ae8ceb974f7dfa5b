package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := validateColors(&cfg); err != nil {
		return nil, err
	}
	if err := validateLimits(&cfg); err != nil {
		return nil, err
	}
	if err := validateOutput(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	defaults := DefaultColorScheme()
	setDefault(&cfg.Colors.Imports, defaults.Imports)
	setDefault(&cfg.Colors.Exports, defaults.Exports)
	setDefault(&cfg.Colors.Classes, defaults.Classes)
	setDefault(&cfg.Colors.Functions, defaults.Functions)
	setDefault(&cfg.Colors.File, defaults.File)
	setDefault(&cfg.Colors.Property, defaults.Property)
	setDefault(&cfg.Colors.Git.Added, defaults.Git.Added)
	setDefault(&cfg.Colors.Git.Deleted, defaults.Git.Deleted)
	setDefault(&cfg.Colors.Git.Modified, defaults.Git.Modified)

	if cfg.Resolver.ManifestCacheSize == 0 {
		cfg.Resolver.ManifestCacheSize = 256
	}

	if strings.TrimSpace(cfg.LSP.Command) == "" {
		cfg.LSP.Command = "typescript-language-server"
		if len(cfg.LSP.Args) == 0 {
			cfg.LSP.Args = []string{"--stdio"}
		}
	}
	if cfg.LSP.RequestTimeout == 0 {
		cfg.LSP.RequestTimeout = 10 * time.Second
	}
	if cfg.LSP.RequestsPerSecond == 0 {
		cfg.LSP.RequestsPerSecond = 20
	}
	if cfg.LSP.Burst == 0 {
		cfg.LSP.Burst = 5
	}

	if cfg.Workspace.MaxFiles == 0 {
		cfg.Workspace.MaxFiles = 1000
	}
	if len(cfg.Workspace.ExcludeDirs) == 0 {
		cfg.Workspace.ExcludeDirs = []string{"node_modules", ".git"}
	}

	if strings.TrimSpace(cfg.Output.Format) == "" {
		cfg.Output.Format = "tree"
	}
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))

	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		cfg.Observability.ServiceName = "depgraph"
	}
}

func setDefault(field *string, value string) {
	if strings.TrimSpace(*field) == "" {
		*field = value
	}
}
