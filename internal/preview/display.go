package preview

import "github.com/specialistvlad/previewgo/internal/story"

// State is the lifecycle state of a Preview.
type State int

const (
	Uninitialized State = iota
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// DisplayKind is what the canvas currently shows.
type DisplayKind int

const (
	DisplayNone DisplayKind = iota
	DisplayStory
	DisplayMissing
	DisplayError
)

func (k DisplayKind) String() string {
	switch k {
	case DisplayNone:
		return "none"
	case DisplayStory:
		return "story"
	case DisplayMissing:
		return "missing"
	case DisplayError:
		return "error"
	default:
		return "unknown"
	}
}

// Display is a snapshot of the canvas.
type Display struct {
	Kind    DisplayKind
	StoryID story.ID
	Err     error
}
