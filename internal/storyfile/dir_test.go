package storyfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/previewgo/internal/loadable"
	"github.com/specialistvlad/previewgo/internal/story"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDir_Observe(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "button.stories.hcl"), `story "Primary" {}`)
	writeFile(t, filepath.Join(root, "forms", "input.stories.hcl"), `story "Empty" {}`)
	writeFile(t, filepath.Join(root, "notes.hcl"), `ignored = true`)
	writeFile(t, filepath.Join(root, "node_modules", "x.stories.hcl"), `story "X" {}`)
	dir := NewDir(root, "")

	// --- Act ---
	obs, err := dir.Observe(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, story.ModuleID("button.stories.hcl"), obs[0].ID)
	assert.Equal(t, story.ModuleID("forms/input.stories.hcl"), obs[1].ID)
	assert.Len(t, obs[0].Revision, 64)
	assert.Contains(t, obs[0].Exports, "Primary")
}

func TestDir_WithHotReload(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	a := filepath.Join(root, "a.stories.hcl")
	b := filepath.Join(root, "b.stories.hcl")
	writeFile(t, a, `story "One" {}`)
	writeFile(t, b, `story "Two" {}`)
	dir := NewDir(root, "")
	hot := loadable.NewHot()
	ctx := context.Background()

	first, err := loadable.ExtractChanges(ctx, dir, hot)
	require.NoError(t, err)
	require.Len(t, first.Added, 2)
	hot.Swap()

	// --- Act ---
	writeFile(t, a, `story "One" { args = { x = 1 } }`)
	require.NoError(t, os.Remove(b))
	second, err := loadable.ExtractChanges(ctx, dir, hot)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []story.ModuleID{"a.stories.hcl"}, second.AddedIDs())
	assert.Equal(t, []story.ModuleID{"b.stories.hcl"}, second.RemovedIDs())
	hot.Swap()

	third, err := loadable.ExtractChanges(ctx, dir, hot)
	require.NoError(t, err)
	assert.True(t, third.Empty(), "untouched files should not be reported again")
}

func TestDir_ParseErrorIsLoadError(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "broken.stories.hcl"), `story "A" {`)

	// --- Act ---
	_, err := loadable.ExtractChanges(context.Background(), NewDir(root, ""), nil)

	// --- Assert ---
	var loadErr *loadable.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, story.ModuleID("broken.stories.hcl"), loadErr.Module)
}

func TestDir_SingleFileRoot(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	path := filepath.Join(root, "only.stories.hcl")
	writeFile(t, path, `story "Solo" {}`)
	dir := NewDir(path, "")

	// --- Act ---
	obs, err := dir.Observe(context.Background())
	require.NoError(t, err)
	exports, importErr := dir.ImportFn(context.Background(), obs[0].ID)

	// --- Assert ---
	require.NoError(t, importErr)
	assert.Equal(t, story.ModuleID("only.stories.hcl"), obs[0].ID)
	assert.Contains(t, exports, "Solo")
}
