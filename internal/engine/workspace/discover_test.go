package workspace

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, rel := range paths {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}
}

func relPaths(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

var sourceExts = []string{".js", ".jsx", ".ts", ".tsx"}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"src/a.ts",
		"src/b.JSX",
		"src/c.min.js",
		"src/readme.md",
		"src/gen/out.ts",
		"node_modules/lib/index.js",
		"index.tsx",
	)

	files, err := Discover(root, Options{
		Extensions:   sourceExts,
		ExcludeDirs:  []string{"node_modules", "src/gen"},
		ExcludeFiles: []string{"*.min.js"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"index.tsx", "src/a.ts", "src/b.JSX"}, relPaths(t, root, files))
}

func TestDiscover_MaxFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.js", "b.js", "c.js", "d.js")

	files, err := Discover(root, Options{Extensions: sourceExts, MaxFiles: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.js", "b.js"}, relPaths(t, root, files))
}

func TestDiscover_InvalidPattern(t *testing.T) {
	_, err := Discover(t.TempDir(), Options{ExcludeDirs: []string{"[unclosed"}})
	require.Error(t, err)
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"), Options{Extensions: sourceExts})
	require.Error(t, err)
}

func TestWalkErrorSkipsUnreadableEntries(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "locked/a.ts", "ok.ts")
	boom := errors.New("permission denied")

	dirInfo, err := os.Stat(filepath.Join(root, "locked"))
	require.NoError(t, err)
	fileInfo, err := os.Stat(filepath.Join(root, "ok.ts"))
	require.NoError(t, err)

	assert.Equal(t, filepath.SkipDir, walkError(root, filepath.Join(root, "locked"), fs.FileInfoToDirEntry(dirInfo), boom))
	assert.NoError(t, walkError(root, filepath.Join(root, "ok.ts"), fs.FileInfoToDirEntry(fileInfo), boom))
	assert.Equal(t, boom, walkError(root, root, nil, boom))
}

func TestDiscoverContinuesPastUnreadableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	root := t.TempDir()
	writeFiles(t, root, "locked/hidden.ts", "src/a.ts")
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	files, err := Discover(root, Options{Extensions: sourceExts})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.ts"}, relPaths(t, root, files))
}
