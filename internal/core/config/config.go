// # internal/core/config/config.go
package config

import "time"

type Config struct {
	Colors        ColorScheme   `toml:"colors"`
	Resolver      Resolver      `toml:"resolver"`
	LSP           LSP           `toml:"lsp"`
	Workspace     Workspace     `toml:"workspace"`
	Output        Output        `toml:"output"`
	Observability Observability `toml:"observability"`
}

// ColorScheme maps tree categories to hex colors.
type ColorScheme struct {
	Imports   string    `toml:"imports"`
	Exports   string    `toml:"exports"`
	Classes   string    `toml:"classes"`
	Functions string    `toml:"functions"`
	File      string    `toml:"file"`
	Property  string    `toml:"property"`
	Git       GitColors `toml:"git"`
}

// GitColors are carried for renderers that overlay VCS status.
type GitColors struct {
	Added    string `toml:"added"`
	Deleted  string `toml:"deleted"`
	Modified string `toml:"modified"`
}

type Resolver struct {
	ManifestCacheSize int `toml:"manifest_cache_size"`
}

type LSP struct {
	Enabled           *bool         `toml:"enabled"`
	Command           string        `toml:"command"`
	Args              []string      `toml:"args"`
	Root              string        `toml:"root"`
	RequestTimeout    time.Duration `toml:"request_timeout"`
	RequestsPerSecond float64       `toml:"requests_per_second"`
	Burst             int           `toml:"burst"`
}

// IsEnabled defaults to true when the key is absent.
func (l LSP) IsEnabled() bool {
	return l.Enabled == nil || *l.Enabled
}

type Workspace struct {
	Preload      *bool    `toml:"preload"`
	Root         string   `toml:"root"`
	MaxFiles     int      `toml:"max_files"`
	ExcludeDirs  []string `toml:"exclude_dirs"`
	ExcludeFiles []string `toml:"exclude_files"`
}

// PreloadEnabled defaults to true when the key is absent.
func (w Workspace) PreloadEnabled() bool {
	return w.Preload == nil || *w.Preload
}

type Output struct {
	Format string `toml:"format"`
	Path   string `toml:"path"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
	ServiceName  string `toml:"service_name"`
}

var OutputFormats = []string{"json", "dot", "mermaid", "plantuml", "tsv", "tree"}

func DefaultColorScheme() ColorScheme {
	return ColorScheme{
		Imports:   "#c586b6",
		Exports:   "#c586b6",
		Classes:   "#56bb7f",
		Functions: "#dcdcaa",
		File:      "#d0824d",
		Property:  "#9cdcfe",
		Git: GitColors{
			Added:    "green",
			Deleted:  "red",
			Modified: "yellow",
		},
	}
}

// DefaultConfig is used when no config file is present.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
