package loadable

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/specialistvlad/previewgo/internal/ctxlog"
	"github.com/specialistvlad/previewgo/internal/story"
)

// ChangeSet is the delta between two observations.
type ChangeSet struct {
	Added   map[story.ModuleID]story.Exports
	Removed map[story.ModuleID]struct{}

	discard func()
}

// Discard tells the next cycle to compare against the revisions this set was
// computed from, as if it had never been observed. Call it when the set could
// not be applied.
func (c ChangeSet) Discard() {
	if c.discard != nil {
		c.discard()
	}
}

// handoff holds the revisions a dispose handler passes to the next cycle.
type handoff struct {
	mu        sync.Mutex
	revisions map[story.ModuleID]string
}

func (h *handoff) set(revisions map[story.ModuleID]string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.revisions = revisions
}

func (h *handoff) get() map[story.ModuleID]string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.revisions
}

// AddedIDs returns the added module ids in sorted order.
func (c ChangeSet) AddedIDs() []story.ModuleID {
	ids := make([]story.ModuleID, 0, len(c.Added))
	for id := range c.Added {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// RemovedIDs returns the removed module ids in sorted order.
func (c ChangeSet) RemovedIDs() []story.ModuleID {
	ids := make([]story.ModuleID, 0, len(c.Removed))
	for id := range c.Removed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Empty reports whether nothing was added or removed.
func (c ChangeSet) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0
}

// ExtractChanges observes l and returns what changed. With a nil hot, every
// observed module is added. Otherwise the observation is compared with the
// revisions accepted by the previous cycle, and a dispose handler is
// registered so the next cycle can compare against this one.
func ExtractChanges(ctx context.Context, l Loadable, hot *Hot) (ChangeSet, error) {
	logger := ctxlog.FromContext(ctx)

	observed, err := l.Observe(ctx)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return ChangeSet{}, err
		}
		return ChangeSet{}, &LoadError{Err: err}
	}

	current := make(map[story.ModuleID]string, len(observed))
	exports := make(map[story.ModuleID]story.Exports, len(observed))
	for _, o := range observed {
		if _, dup := current[o.ID]; dup {
			return ChangeSet{}, &LoadError{Module: o.ID, Err: errDuplicateModule}
		}
		rev := o.Revision
		if rev == "" {
			rev, err = story.Fingerprint(o.Exports)
			if err != nil {
				return ChangeSet{}, &LoadError{Module: o.ID, Err: err}
			}
		}
		current[o.ID] = rev
		exports[o.ID] = o.Exports
	}

	changes := ChangeSet{
		Added:   make(map[story.ModuleID]story.Exports),
		Removed: make(map[story.ModuleID]struct{}),
	}

	if hot == nil {
		for id, e := range exports {
			changes.Added[id] = e
		}
		logger.Debug("Observed story modules without reload tracking.", "modules", len(changes.Added))
		return changes, nil
	}

	previous := hot.previous()
	next := &handoff{revisions: current}
	hot.Dispose(func(data map[string]any) {
		data[previousKey] = next.get()
	})
	changes.discard = func() { next.set(previous) }

	for id, rev := range current {
		if prevRev, ok := previous[id]; !ok || prevRev != rev {
			changes.Added[id] = exports[id]
		}
	}
	for id := range previous {
		if _, ok := current[id]; !ok {
			changes.Removed[id] = struct{}{}
		}
	}

	logger.Debug("Extracted story module changes.",
		"observed", len(current), "added", len(changes.Added), "removed", len(changes.Removed))
	return changes, nil
}
