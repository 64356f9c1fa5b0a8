package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		p := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
	return root
}

func TestFindFilesByExtension(t *testing.T) {
	root := writeTree(t, "b.hcl", "a.hcl", "nested/c.hcl", "nested/skip.txt", "d.toml")

	files, err := FindFilesByExtension(root, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.hcl"),
		filepath.Join(root, "b.hcl"),
		filepath.Join(root, "nested", "c.hcl"),
	}, files)

	files, err = FindFilesByExtension(root, ".txt", ".toml")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestFindFilesByExtension_SingleFile(t *testing.T) {
	root := writeTree(t, "only.hcl")

	files, err := FindFilesByExtension(filepath.Join(root, "only.hcl"), ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "only.hcl")}, files)
}

func TestFindFilesByExtension_MissingPath(t *testing.T) {
	_, err := FindFilesByExtension(filepath.Join(t.TempDir(), "nope"), ".hcl")
	assert.Error(t, err)
}

func TestFindFilesByExtension_PanicsWithoutExtension(t *testing.T) {
	assert.Panics(t, func() { _, _ = FindFilesByExtension(".") })
}
