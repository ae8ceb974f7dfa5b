// # internal/engine/resolver/resolver.go
package resolver

import (
	"depgraph/internal/shared/observability"
	"log/slog"
	"path/filepath"
	"strings"
)

// DefaultManifestCacheSize bounds the package.json cache of one resolver.
const DefaultManifestCacheSize = 256

var (
	loadAsFileSuffixes  = []string{"", ".js", ".json", ".node"}
	loadIndexFiles      = []string{"index.js", "index.json", "index.node"}
	typeScriptFallbacks = []string{".ts", ".tsx", "/index.ts"}
	packageCandidates   = []string{".d.ts", "/dist/index.d.ts", "/lib/index.d.ts", "/index.d.ts", "/src/index.ts", "/src/index.tsx"}
	packageRoots        = []string{"node_modules", filepath.Join("node_modules", "@types")}
)

// Resolver maps import specifiers to files. It never fails; a miss is a normal outcome.
type Resolver struct {
	fs        FileSystem
	manifests *manifestCache
}

type Option func(*resolverOptions)

type resolverOptions struct {
	fs        FileSystem
	cacheSize int
}

func WithFileSystem(fsys FileSystem) Option {
	return func(o *resolverOptions) { o.fs = fsys }
}

func WithManifestCacheSize(size int) Option {
	return func(o *resolverOptions) { o.cacheSize = size }
}

func New(opts ...Option) *Resolver {
	o := resolverOptions{fs: OSFileSystem(), cacheSize: DefaultManifestCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	return &Resolver{
		fs:        o.fs,
		manifests: newManifestCache(o.fs, o.cacheSize),
	}
}

// Resolve tries, in order: Node-style resolution, TypeScript extension
// fallbacks, then declaration files under node_modules of each ancestor.
func (r *Resolver) Resolve(specifier, baseDir string) (string, bool) {
	specifier = strings.TrimSpace(specifier)
	if specifier == "" {
		return "", false
	}
	if !filepath.IsAbs(baseDir) {
		if abs, err := filepath.Abs(baseDir); err == nil {
			baseDir = abs
		}
	}

	for _, strategy := range []func(string, string) (string, bool){
		r.resolveStandard,
		r.resolveTypeScript,
		r.resolvePackageTypes,
	} {
		if resolved, ok := strategy(specifier, baseDir); ok {
			return resolved, true
		}
	}

	slog.Debug("module resolution miss", "specifier", specifier, "base_dir", baseDir)
	observability.ResolutionMissesTotal.Inc()
	return "", false
}

func (r *Resolver) resolveStandard(specifier, baseDir string) (string, bool) {
	if isPathSpecifier(specifier) {
		target := joinSpecifier(baseDir, specifier)
		if resolved, ok := r.loadAsFile(target); ok {
			return resolved, true
		}
		return r.loadAsDirectory(target)
	}
	if isBuiltinModule(specifier) {
		return "", false
	}
	for dir := baseDir; ; dir = filepath.Dir(dir) {
		target := filepath.Join(dir, "node_modules", filepath.FromSlash(specifier))
		if resolved, ok := r.loadAsFile(target); ok {
			return resolved, true
		}
		if resolved, ok := r.loadAsDirectory(target); ok {
			return resolved, true
		}
		if filepath.Dir(dir) == dir {
			return "", false
		}
	}
}

func (r *Resolver) loadAsFile(target string) (string, bool) {
	for _, suffix := range loadAsFileSuffixes {
		if candidate := target + suffix; r.isFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func (r *Resolver) loadIndex(dir string) (string, bool) {
	for _, name := range loadIndexFiles {
		if candidate := filepath.Join(dir, name); r.isFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func (r *Resolver) loadAsDirectory(dir string) (string, bool) {
	if main, ok := r.manifests.mainField(dir); ok {
		target := filepath.Join(dir, filepath.FromSlash(main))
		if resolved, ok := r.loadAsFile(target); ok {
			return resolved, true
		}
		if resolved, ok := r.loadIndex(target); ok {
			return resolved, true
		}
	}
	return r.loadIndex(dir)
}

func (r *Resolver) resolveTypeScript(specifier, baseDir string) (string, bool) {
	target := joinSpecifier(baseDir, specifier)
	for _, suffix := range typeScriptFallbacks {
		if candidate := filepath.FromSlash(target + suffix); r.isFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// resolvePackageTypes walks from baseDir toward the root, stopping before the root itself.
func (r *Resolver) resolvePackageTypes(specifier, baseDir string) (string, bool) {
	for dir := baseDir; filepath.Dir(dir) != dir; dir = filepath.Dir(dir) {
		for _, root := range packageRoots {
			base := filepath.Join(dir, root, filepath.FromSlash(specifier))
			for _, suffix := range packageCandidates {
				if candidate := filepath.FromSlash(base + suffix); r.isFile(candidate) {
					return candidate, true
				}
			}
		}
	}
	return "", false
}

func (r *Resolver) isFile(path string) bool {
	info, err := r.fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func joinSpecifier(baseDir, specifier string) string {
	spec := filepath.FromSlash(specifier)
	if filepath.IsAbs(spec) {
		return filepath.Clean(spec)
	}
	return filepath.Join(baseDir, spec)
}

func isPathSpecifier(specifier string) bool {
	return specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") ||
		strings.HasPrefix(specifier, "../") ||
		strings.HasPrefix(specifier, "/") ||
		filepath.IsAbs(specifier)
}
