package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestMatchFindsPatternAtRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "nuxt.config.ts")

	found, err := New().Match(context.Background(), root, []string{"nuxt.config.js", "nuxt.config.ts"})
	require.NoError(t, err)
	assert.True(t, found)
}

func TestMatchGlobPatternInSubdirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/components/App.vue")

	found, err := New().Match(context.Background(), root, []string{"**/*.vue"})
	require.NoError(t, err)
	assert.True(t, found)
}

func TestMatchNothingFound(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/main.ts")

	found, err := New().Match(context.Background(), root, []string{"**/*.svelte"})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMatchEmptyPatterns(t *testing.T) {
	found, err := New().Match(context.Background(), t.TempDir(), nil)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMatchSkipsHeavyDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "node_modules/vue/src/App.vue")
	writeFile(t, root, "dist/App.vue")
	writeFile(t, root, ".git/App.vue")

	found, err := New().Match(context.Background(), root, []string{"**/*.vue"})
	require.NoError(t, err)
	assert.False(t, found, "skip-listed directories carry no signal")
}

func TestMatchRespectsDepthBound(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/b/c/d/deep.svelte")

	found, err := New().Match(context.Background(), root, []string{"**/*.svelte"})
	require.NoError(t, err)
	assert.False(t, found, "files below the depth bound are invisible")

	found, err = New(WithMaxDepth(10)).Match(context.Background(), root, []string{"**/*.svelte"})
	require.NoError(t, err)
	assert.True(t, found)
}

func TestMatchDepthBoundaryInclusive(t *testing.T) {
	root := t.TempDir()
	// Depth three below the root is still scanned.
	writeFile(t, root, "a/b/file.svelte")

	found, err := New().Match(context.Background(), root, []string{"**/*.svelte"})
	require.NoError(t, err)
	assert.True(t, found)
}

func TestMatchCancelledContext(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/App.vue")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	found, err := New().Match(ctx, root, []string{"**/*.vue"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, found, "an expired scan reads as not found")
}

func TestMatchCustomSkipList(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "vendor/lib.vue")

	scanner := New(WithSkipDirs([]string{"vendor"}))
	found, err := scanner.Match(context.Background(), root, []string{"**/*.vue"})
	require.NoError(t, err)
	assert.False(t, found)

	// The replacement skip-list drops the defaults.
	writeFile(t, root, "node_modules/pkg/lib.vue")
	found, err = scanner.Match(context.Background(), root, []string{"**/*.vue"})
	require.NoError(t, err)
	assert.True(t, found)
}

func TestDirExists(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	writeFile(t, root, "file.txt")

	assert.True(t, DirExists(root, "src"))
	assert.False(t, DirExists(root, "missing"))
	assert.False(t, DirExists(root, "file.txt"), "files are not directories")
}
