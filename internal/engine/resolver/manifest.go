package resolver

import (
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

type packageManifest struct {
	Main string `json:"main"`
}

type manifestEntry struct {
	main  string
	found bool
}

// manifestCache memoizes package.json lookups by directory.
type manifestCache struct {
	fs    FileSystem
	cache *lru.Cache[string, manifestEntry]
}

func newManifestCache(fsys FileSystem, size int) *manifestCache {
	mc := &manifestCache{fs: fsys}
	if size > 0 {
		if cache, err := lru.New[string, manifestEntry](size); err == nil {
			mc.cache = cache
		}
	}
	return mc
}

// mainField returns the "main" entry of dir/package.json.
func (m *manifestCache) mainField(dir string) (string, bool) {
	if m.cache != nil {
		if entry, ok := m.cache.Get(dir); ok {
			return entry.main, entry.found
		}
	}
	entry := m.read(dir)
	if m.cache != nil {
		m.cache.Add(dir, entry)
	}
	return entry.main, entry.found
}

func (m *manifestCache) read(dir string) manifestEntry {
	data, err := m.fs.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return manifestEntry{}
	}
	var manifest packageManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		slog.Debug("ignoring malformed package manifest", "dir", dir, "error", err)
		return manifestEntry{}
	}
	main := strings.TrimSpace(manifest.Main)
	if main == "" {
		return manifestEntry{}
	}
	return manifestEntry{main: main, found: true}
}

func (m *manifestCache) Len() int {
	if m.cache == nil {
		return 0
	}
	return m.cache.Len()
}
