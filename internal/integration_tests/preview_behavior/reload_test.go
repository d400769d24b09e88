package preview_behavior

import (
	"testing"
	"time"

	"github.com/specialistvlad/previewgo/internal/config"
	"github.com/specialistvlad/previewgo/internal/preview"
	"github.com/specialistvlad/previewgo/internal/story"
	"github.com/specialistvlad/previewgo/internal/testutil"
	"github.com/specialistvlad/previewgo/modules/print"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReload_EditedStoryIsRerendered validates that saving a story file
// re-renders the current story with the new args.
func TestReload_EditedStoryIsRerendered(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	h := testutil.StartPreview(t, map[string]string{"button.stories.hcl": buttonStories}, nil, &print.Module{})
	h.WaitForOutput(t, "Primary: map[label:Click]")

	// --- Act ---
	h.WriteFile(t, "button.stories.hcl", `
meta {
  title = "Example/Button"
  args  = { label = "Submit" }
}

story "Primary" {}
`)

	// --- Assert ---
	h.WaitForOutput(t, "Primary: map[label:Submit]")
	assert.False(t, h.Preview().Index().Has("example-button--secondary"), "the removed story left the index")
}

// TestReload_NewFileAddsStories validates that a new story file joins the
// index without changing the selection.
func TestReload_NewFileAddsStories(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	h := testutil.StartPreview(t, map[string]string{"button.stories.hcl": buttonStories}, nil, &print.Module{})
	h.WaitForOutput(t, "Primary: map[label:Click]")

	// --- Act ---
	h.WriteFile(t, "forms/input.stories.hcl", inputStories)

	// --- Assert ---
	require.Eventually(t, func() bool {
		return h.Preview().Index().Has("forms-input--empty")
	}, testutil.WaitTimeout, 10*time.Millisecond)
	assert.Equal(t, story.ID("example-button--primary"), h.Preview().Current())
}

// TestReload_DeletedCurrentStoryShowsMissing validates both reload modes:
// hot diffing drops the file, and without it the watcher unloads it.
func TestReload_DeletedCurrentStoryShowsMissing(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		hot  bool
	}{
		{name: "hot", hot: true},
		{name: "full reload", hot: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			files := map[string]string{
				"button.stories.hcl": buttonStories,
				"input.stories.hcl":  inputStories,
			}
			h := testutil.StartPreview(t, files, func(cfg *config.Config) {
				cfg.Hot = tc.hot
				cfg.InitialStory = "forms-input--empty"
			}, &print.Module{})
			h.WaitForOutput(t, "Empty: map[value:]")

			// --- Act ---
			h.RemoveFile(t, "input.stories.hcl")

			// --- Assert ---
			display := h.WaitForDisplay(t, preview.DisplayMissing)
			assert.Equal(t, story.ID("forms-input--empty"), display.StoryID)
			assert.True(t, h.Preview().Index().Has("example-button--primary"))
		})
	}
}

// TestReload_BrokenFileIsShownAndRecovers validates that a parse error is
// displayed by the preview and the next good save recovers.
func TestReload_BrokenFileIsShownAndRecovers(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	h := testutil.StartPreview(t, map[string]string{"button.stories.hcl": buttonStories}, nil, &print.Module{})
	h.WaitForOutput(t, "Primary: map[label:Click]")

	// --- Act & Assert ---
	h.WriteFile(t, "button.stories.hcl", `story "Primary" {`)
	display := h.WaitForDisplay(t, preview.DisplayError)
	require.Error(t, display.Err)
	assert.Contains(t, display.Err.Error(), "button.stories.hcl")

	h.WriteFile(t, "button.stories.hcl", buttonStories)
	h.WaitForDisplay(t, preview.DisplayStory)
	h.WaitForOutput(t, "Primary: map[label:Click]")
}
