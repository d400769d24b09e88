package loadable

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/specialistvlad/previewgo/internal/story"
)

// Observation is one story module as seen during an observation.
type Observation struct {
	ID      story.ModuleID
	Exports story.Exports
	// Revision changes whenever Exports changes. When empty, it is computed
	// with story.Fingerprint.
	Revision string
}

// Loadable reports the current set of story modules.
type Loadable interface {
	Observe(ctx context.Context) ([]Observation, error)
}

// Modules is a ready-made set of modules keyed by id.
type Modules map[story.ModuleID]story.Exports

// Observe implements Loadable.
func (m Modules) Observe(context.Context) ([]Observation, error) {
	ids := make([]story.ModuleID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]Observation, 0, len(ids))
	for _, id := range ids {
		out = append(out, Observation{ID: id, Exports: m[id]})
	}
	return out, nil
}

// List is a positional list of export maps. Entry i gets the id "exports-map-<i>".
type List []story.Exports

// Observe implements Loadable.
func (l List) Observe(context.Context) ([]Observation, error) {
	out := make([]Observation, 0, len(l))
	for i, exports := range l {
		out = append(out, Observation{ID: ListModuleID(i), Exports: exports})
	}
	return out, nil
}

// ListModuleID returns the id given to the i-th entry of a List.
func ListModuleID(i int) story.ModuleID {
	return story.ModuleID(fmt.Sprintf("exports-map-%d", i))
}

// Func is a factory evaluated eagerly on every observation.
type Func func(ctx context.Context) (Loadable, error)

// Observe implements Loadable. A panic inside the factory or the loadable it
// returns is reported as a *LoadError.
func (f Func) Observe(ctx context.Context) (obs []Observation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &LoadError{Err: fmt.Errorf("panic while loading stories: %v", r)}
		}
	}()

	l, err := f(ctx)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, nil
	}
	return l.Observe(ctx)
}

var errDuplicateModule = errors.New("module id observed more than once")

// LoadError wraps a failure to evaluate story-producing modules.
type LoadError struct {
	Module story.ModuleID
	Err    error
}

func (e *LoadError) Error() string {
	if e.Module != "" {
		return fmt.Sprintf("load story module %s: %v", e.Module, e.Err)
	}
	return fmt.Sprintf("load stories: %v", e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
