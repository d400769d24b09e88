package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/previewgo/internal/channel"
	"github.com/stretchr/testify/require"
)

// Event is one event seen by a host.
type Event struct {
	Name string
	Args []any
}

// Recorder collects the events a host receives.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Record subscribes a recorder to every event sent to remote.
func Record(remote *channel.Remote) *Recorder {
	r := &Recorder{}
	remote.OnAny(func(args ...any) {
		if len(args) == 0 {
			return
		}
		name, _ := args[0].(string)
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, Event{Name: name, Args: args[1:]})
	})
	return r
}

// Find returns the first recorded event called name.
func (r *Recorder) Find(name string) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev.Name == name {
			return ev, true
		}
	}
	return Event{}, false
}

// WaitFor waits until an event called name has been recorded.
func (r *Recorder) WaitFor(t *testing.T, name string) Event {
	t.Helper()
	require.Eventually(t, func() bool {
		_, ok := r.Find(name)
		return ok
	}, WaitTimeout, 10*time.Millisecond, "host never received %s", name)
	ev, _ := r.Find(name)
	return ev
}
