package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/specialistvlad/previewgo/internal/ctxlog"
	"github.com/specialistvlad/previewgo/internal/story"
)

// ErrModuleNotFound is returned by ImportFn for ids absent from the table.
var ErrModuleNotFound = errors.New("story module not registered")

// Addon is the interface that all addons must implement to be registered.
type Addon interface {
	Register(r *Registry)
}

// ImportFnChangedFunc is told about a new import function after the table
// changed outside a reload cycle.
type ImportFnChangedFunc func(ctx context.Context, importFn story.ImportFn)

// Option configures a Registry.
type Option func(*Registry)

// WithProcessor replaces story.ProcessModule as the export processor.
func WithProcessor(p story.Processor) Option {
	return func(r *Registry) {
		r.processor = p
	}
}

// WithLogger sets the logger table changes are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger.With("component", "registry")
	}
}

// ModuleError reports the module whose exports could not be processed.
type ModuleError struct {
	Module story.ModuleID
	Err    error
}

func (e *ModuleError) Error() string {
	return fmt.Sprintf("failed to process stories of %s: %v", e.Module, e.Err)
}

func (e *ModuleError) Unwrap() error {
	return e.Err
}

// Registry holds the registration table and the project-wide annotations
// for a single session.
type Registry struct {
	mu                sync.RWMutex
	exports           map[story.ModuleID]story.Exports
	parameters        map[string]any
	decorators        []story.Decorator
	decoratorNames    map[string]struct{}
	processor         story.Processor
	onImportFnChanged ImportFnChangedFunc
	logger            *slog.Logger
}

// New creates and initializes a new Registry instance.
func New(opts ...Option) *Registry {
	r := &Registry{
		exports:        make(map[story.ModuleID]story.Exports),
		parameters:     make(map[string]any),
		decoratorNames: make(map[string]struct{}),
		processor:      story.ProcessModule,
		logger:         slog.Default().With("component", "registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register runs every addon's Register against r.
func (r *Registry) Register(addons ...Addon) {
	for _, a := range addons {
		a.Register(r)
	}
}

// AddStoriesFromExports validates exports with the processor and makes them
// the current exports of id, replacing any previous entry.
func (r *Registry) AddStoriesFromExports(id story.ModuleID, exports story.Exports) error {
	mod, err := r.processor(id, exports)
	if err != nil {
		return &ModuleError{Module: id, Err: err}
	}

	r.mu.Lock()
	_, replaced := r.exports[id]
	r.exports[id] = exports
	r.mu.Unlock()

	r.logger.Debug("Registered story module.", "module", id, "stories", len(mod.Stories), "replaced", replaced)
	return nil
}

// ClearFilenameExports drops the entry for id. Unknown ids are ignored.
func (r *Registry) ClearFilenameExports(id story.ModuleID) {
	r.mu.Lock()
	_, existed := r.exports[id]
	delete(r.exports, id)
	r.mu.Unlock()

	if existed {
		r.logger.Debug("Cleared story module.", "module", id)
	}
}

// ApplyChanges processes every added module before touching the table, then
// replaces the added entries and drops the removed ones. When any module
// fails to process the table is left as it was.
func (r *Registry) ApplyChanges(added map[story.ModuleID]story.Exports, removed []story.ModuleID) error {
	ids := slices.Sorted(maps.Keys(added))
	for _, id := range ids {
		if _, err := r.processor(id, added[id]); err != nil {
			return &ModuleError{Module: id, Err: err}
		}
	}

	r.mu.Lock()
	for _, id := range ids {
		r.exports[id] = added[id]
	}
	cleared := 0
	for _, id := range removed {
		if _, ok := r.exports[id]; ok {
			delete(r.exports, id)
			cleared++
		}
	}
	r.mu.Unlock()

	r.logger.Debug("Applied story module changes.", "added", len(ids), "removed", cleared)
	return nil
}

// Unload clears id outside a reload cycle and, if it was registered, tells
// the import-function listener. It reports whether anything was removed.
func (r *Registry) Unload(ctx context.Context, id story.ModuleID) bool {
	r.mu.Lock()
	_, existed := r.exports[id]
	delete(r.exports, id)
	hook := r.onImportFnChanged
	r.mu.Unlock()

	if !existed {
		return false
	}
	ctxlog.FromContext(ctx).Debug("Unloaded story module.", "module", id)
	if hook != nil {
		hook(ctx, r.ImportFn)
	}
	return true
}

// SetOnImportFnChanged installs the listener fired by Unload.
func (r *Registry) SetOnImportFnChanged(fn ImportFnChangedFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onImportFnChanged = fn
}

// Modules returns the registered module ids in sorted order.
func (r *Registry) Modules() []story.ModuleID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedIDs()
}

// Exports returns the current exports of id.
func (r *Registry) Exports(id story.ModuleID) (story.Exports, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.exports[id]
	return e, ok
}

// ImportFn resolves id against the registration table. It matches
// story.ImportFn.
func (r *Registry) ImportFn(_ context.Context, id story.ModuleID) (story.Exports, error) {
	e, ok := r.Exports(id)
	if !ok {
		return nil, fmt.Errorf("import %s: %w", id, ErrModuleNotFound)
	}
	return e, nil
}

// Processor returns the export processor in use.
func (r *Registry) Processor() story.Processor {
	return r.processor
}

// AddParameters merges params into the project parameters. The last writer
// wins per key; nested maps are merged.
func (r *Registry) AddParameters(params map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parameters = story.MergeParameters(r.parameters, params)
}

// AddDecorator appends a project-wide decorator.
func (r *Registry) AddDecorator(d story.Decorator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decorators = append(r.decorators, d)
}

// RegisterDecorator appends a named project-wide decorator. Registering the
// same name twice is a programming error.
func (r *Registry) RegisterDecorator(name string, d story.Decorator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.decoratorNames[name]; exists {
		panic(fmt.Sprintf("decorator with name '%s' already registered", name))
	}
	r.logger.Debug("Registering decorator.", "name", name)
	r.decoratorNames[name] = struct{}{}
	r.decorators = append(r.decorators, d)
}

// modules folds the table through the processor, in module id order.
func (r *Registry) modules() ([]story.ModuleAnnotations, error) {
	r.mu.RLock()
	ids := r.sortedIDs()
	snapshot := maps.Clone(r.exports)
	r.mu.RUnlock()

	out := make([]story.ModuleAnnotations, 0, len(ids))
	for _, id := range ids {
		mod, err := r.processor(id, snapshot[id])
		if err != nil {
			return nil, fmt.Errorf("failed to process stories of %s: %w", id, err)
		}
		out = append(out, mod)
	}
	return out, nil
}

// ProjectAnnotations folds the registration table into the project-wide
// annotations. Render functions are left to the caller.
func (r *Registry) ProjectAnnotations() (story.ProjectAnnotations, error) {
	mods, err := r.modules()
	if err != nil {
		return story.ProjectAnnotations{}, err
	}

	stories := make(map[story.ID]story.Annotation)
	for _, mod := range mods {
		for _, a := range mod.Stories {
			if other, dup := stories[a.ID]; dup {
				return story.ProjectAnnotations{}, fmt.Errorf("duplicate story id %q in %s and %s", a.ID, other.ImportPath, a.ImportPath)
			}
			stories[a.ID] = a
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return story.ProjectAnnotations{
		Parameters: story.MergeParameters(r.parameters),
		Decorators: append([]story.Decorator(nil), r.decorators...),
		Stories:    stories,
	}, nil
}

// StoryIndex builds the index of every registered story.
func (r *Registry) StoryIndex() (story.Index, error) {
	mods, err := r.modules()
	if err != nil {
		return story.Index{}, err
	}
	return story.NewIndex(mods...), nil
}

func (r *Registry) sortedIDs() []story.ModuleID {
	ids := make([]story.ModuleID, 0, len(r.exports))
	for id := range r.exports {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
