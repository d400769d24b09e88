package preview_behavior

import (
	"io"
	"net/http"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/previewgo/internal/story"
	"github.com/specialistvlad/previewgo/internal/testutil"
	"github.com/stretchr/testify/require"
)

// TestIndex_ServedOverHTTP validates that /index.json lists every story in
// the stories directory.
func TestIndex_ServedOverHTTP(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"button.stories.hcl":      buttonStories,
		"forms/input.stories.hcl": inputStories,
	}
	h := testutil.StartPreview(t, files, nil)

	// --- Act ---
	resp, err := http.Get("http://" + h.App.Addr() + "/index.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	// --- Assert ---
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got story.Index
	require.NoError(t, sonic.Unmarshal(body, &got))

	want := story.Index{
		V: story.IndexVersion,
		Entries: map[story.ID]story.IndexEntry{
			"example-button--primary": {
				ID: "example-button--primary", Title: "Example/Button", Name: "Primary",
				ImportPath: "button.stories.hcl", Type: "story",
			},
			"example-button--secondary": {
				ID: "example-button--secondary", Title: "Example/Button", Name: "Secondary",
				ImportPath: "button.stories.hcl", Type: "story",
			},
			"forms-input--empty": {
				ID: "forms-input--empty", Title: "Forms/Input", Name: "Empty",
				ImportPath: "forms/input.stories.hcl", Type: "story",
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("index mismatch (-want +got):\n%s", diff)
	}
}
