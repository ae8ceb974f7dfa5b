// # internal/engine/workspace/discover.go
package workspace

import (
	"depgraph/internal/shared/util"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

type Options struct {
	// Extensions to keep, lower-case with a leading dot.
	Extensions   []string
	ExcludeDirs  []string
	ExcludeFiles []string
	// MaxFiles stops the walk once reached; zero means unlimited.
	MaxFiles int
}

// Discover lists source files under root in walk order.
func Discover(root string, opts Options) ([]string, error) {
	dirGlobs, err := compilePatterns(opts.ExcludeDirs, "dir")
	if err != nil {
		return nil, err
	}
	fileGlobs, err := compilePatterns(opts.ExcludeFiles, "file")
	if err != nil {
		return nil, err
	}
	extensions := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		extensions[strings.ToLower(ext)] = true
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return walkError(root, path, d, err)
		}
		if opts.MaxFiles > 0 && len(files) >= opts.MaxFiles {
			return filepath.SkipAll
		}

		base := filepath.Base(path)
		rel := util.RelativeSlashPath(root, path)
		if d.IsDir() {
			if path != root && matchAny(dirGlobs, base, rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		if matchAny(fileGlobs, base, rel) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if opts.MaxFiles > 0 && len(files) >= opts.MaxFiles {
		slog.Debug("workspace discovery hit file limit", "root", root, "max_files", opts.MaxFiles)
	}
	return files, nil
}

// walkError keeps the walk going past unreadable entries below root. A
// failure on root itself still ends discovery.
func walkError(root, path string, d fs.DirEntry, err error) error {
	if path == root || d == nil {
		return err
	}
	slog.Warn("skipping unreadable workspace path", "path", path, "error", err)
	if d.IsDir() {
		return filepath.SkipDir
	}
	return nil
}

func compilePatterns(patterns []string, kind string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		p = util.NormalizePatternPath(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude %s pattern %q: %w", kind, p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func matchAny(globs []glob.Glob, base, rel string) bool {
	for _, g := range globs {
		if g.Match(base) || g.Match(rel) {
			return true
		}
	}
	return false
}
