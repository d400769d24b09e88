package loadable

import (
	"maps"
	"sync"

	"github.com/specialistvlad/previewgo/internal/story"
)

// previousKey is the Hot data slot where ExtractChanges hands its revisions
// to the next cycle.
const previousKey = "previousRevisions"

// Hot is a reload context shared by successive cycles of one entry point.
// Handlers registered with Dispose run synchronously in Swap, before the next
// cycle starts, and may leave data for it.
type Hot struct {
	mu         sync.Mutex
	data       map[string]any
	disposers  []func(data map[string]any)
	generation int
}

// NewHot creates an empty reload context.
func NewHot() *Hot {
	return &Hot{data: make(map[string]any)}
}

// Data returns a copy of what the previous cycle's dispose handlers left.
func (h *Hot) Data() map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return maps.Clone(h.data)
}

// Dispose registers fn to run when the current cycle is swapped out.
func (h *Hot) Dispose(fn func(data map[string]any)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disposers = append(h.disposers, fn)
}

// Swap ends the current cycle: dispose handlers run in registration order
// against a fresh data map, which becomes Data for the next cycle. Accepted
// revisions carry over until a handler replaces them, so a cycle that failed
// before registering one keeps the last baseline.
func (h *Hot) Swap() {
	h.mu.Lock()
	disposers := h.disposers
	h.disposers = nil
	next := make(map[string]any)
	if prev, ok := h.data[previousKey]; ok {
		next[previousKey] = prev
	}
	h.mu.Unlock()

	for _, fn := range disposers {
		fn(next)
	}

	h.mu.Lock()
	h.data = next
	h.generation++
	h.mu.Unlock()
}

// Generation counts completed swaps.
func (h *Hot) Generation() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.generation
}

// Accepted returns the module ids accepted by the previous cycle.
func (h *Hot) Accepted() map[story.ModuleID]struct{} {
	out := make(map[story.ModuleID]struct{})
	for id := range h.previous() {
		out[id] = struct{}{}
	}
	return out
}

func (h *Hot) previous() map[story.ModuleID]string {
	h.mu.Lock()
	defer h.mu.Unlock()
	prev, _ := h.data[previousKey].(map[story.ModuleID]string)
	return prev
}
