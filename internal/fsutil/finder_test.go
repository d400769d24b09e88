package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesBySuffix(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	for _, rel := range []string{
		"b.stories.hcl",
		"nested/a.stories.hcl",
		"nested/notes.txt",
		"node_modules/dep/c.stories.hcl",
	} {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(""), 0o600))
	}

	// --- Act ---
	files, err := FindFilesBySuffix(root, ".stories.hcl")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "b.stories.hcl"),
		filepath.Join(root, "nested", "a.stories.hcl"),
	}, files)
}

func TestFindFilesBySuffix_MissingRoot(t *testing.T) {
	_, err := FindFilesBySuffix(filepath.Join(t.TempDir(), "missing"), ".hcl")
	require.Error(t, err)
}

func TestIsSkippedPath(t *testing.T) {
	assert.True(t, IsSkippedPath("stories/node_modules/x.stories.hcl"))
	assert.False(t, IsSkippedPath("stories/button.stories.hcl"))
}
