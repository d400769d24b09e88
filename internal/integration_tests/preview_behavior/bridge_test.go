package preview_behavior

import (
	"testing"

	"github.com/specialistvlad/previewgo/internal/channel"
	"github.com/specialistvlad/previewgo/internal/preview"
	"github.com/specialistvlad/previewgo/internal/story"
	"github.com/specialistvlad/previewgo/internal/testutil"
	"github.com/specialistvlad/previewgo/modules/print"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBridge_HostForcesReRender validates that a host connected over
// socket.io can ask for a re-render and is told when it finished.
func TestBridge_HostForcesReRender(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	h := testutil.StartPreview(t, map[string]string{"button.stories.hcl": buttonStories}, nil, &print.Module{})
	h.WaitForOutput(t, "Primary: map[label:Click]")
	remote := h.Dial(t)
	events := testutil.Record(remote)

	// --- Act ---
	require.NoError(t, remote.Emit(channel.EventForceReRender))

	// --- Assert ---
	ev := events.WaitFor(t, channel.EventStoryRendered)
	require.Len(t, ev.Args, 1)
	assert.Equal(t, "example-button--primary", ev.Args[0])
	frame, ok := h.App.Canvas().Last()
	require.True(t, ok)
	assert.True(t, frame.ForceRemount, "a forced re-render remounts the story")
}

// TestBridge_HostSelectsStory validates that setCurrentStory from a host
// switches the rendered story.
func TestBridge_HostSelectsStory(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	h := testutil.StartPreview(t, map[string]string{"button.stories.hcl": buttonStories}, nil, &print.Module{})
	h.WaitForOutput(t, "Primary: map[label:Click]")
	remote := h.Dial(t)
	events := testutil.Record(remote)

	// --- Act ---
	require.NoError(t, remote.Emit(channel.EventSetCurrentStory, map[string]any{"storyId": "example-button--secondary"}))

	// --- Assert ---
	ev := events.WaitFor(t, channel.EventCurrentStoryWasSet)
	require.NotEmpty(t, ev.Args)
	assert.Equal(t, "example-button--secondary", ev.Args[0])
	h.WaitForOutput(t, "Secondary: map[label:Cancel]")
	assert.Equal(t, story.ID("example-button--secondary"), h.Preview().Current())
}

// TestBridge_HostSeesMissingStory validates that selecting an unknown story
// is reported to the host instead of failing the preview.
func TestBridge_HostSeesMissingStory(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	h := testutil.StartPreview(t, map[string]string{"button.stories.hcl": buttonStories}, nil, &print.Module{})
	remote := h.Dial(t)
	events := testutil.Record(remote)

	// --- Act ---
	require.NoError(t, remote.Emit(channel.EventSetCurrentStory, "example-button--ghost"))

	// --- Assert ---
	ev := events.WaitFor(t, channel.EventStoryMissing)
	require.NotEmpty(t, ev.Args)
	assert.Equal(t, "example-button--ghost", ev.Args[0])
	h.WaitForDisplay(t, preview.DisplayMissing)
}
