package channel

import "errors"

// Pages identify which side of the bridge a channel belongs to.
const (
	PagePreview = "preview"
	PageManager = "manager"
)

// Well-known events.
const (
	EventForceReRender       = "forceReRender"
	EventSetCurrentStory     = "setCurrentStory"
	EventCurrentStoryWasSet  = "currentStoryWasSet"
	EventSetIndex            = "setIndex"
	EventStoryRendered       = "storyRendered"
	EventStoryMissing        = "storyMissing"
	EventStoryErrored        = "storyErrored"
	EventStoryThrewException = "storyThrewException"
	EventConfigError         = "configError"
	EventStoriesChanged      = "storiesChanged"
)

// ErrClosed is returned when emitting on a closed channel.
var ErrClosed = errors.New("channel closed")

// Handler receives the payload of one event.
type Handler func(args ...any)

// Channel is a named-event bus.
type Channel interface {
	// Emit delivers event to every handler registered for it.
	Emit(event string, args ...any) error
	// On registers h for event.
	On(event string, h Handler)
	// Page reports which side of the bridge this channel serves.
	Page() string
	Close() error
}
