package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/specialistvlad/previewgo/internal/channel"
	"github.com/specialistvlad/previewgo/internal/ctxlog"
	"github.com/specialistvlad/previewgo/internal/story"
)

var (
	// ErrAlreadyInitialized is returned by Initialize on a Ready preview.
	ErrAlreadyInitialized = errors.New("preview already initialized")
	// ErrNotInitialized is returned by OnStoriesChanged before Initialize.
	ErrNotInitialized = errors.New("preview not initialized")
)

// Config is what Initialize needs to render stories.
type Config struct {
	GetStoryIndex         func() (story.Index, error)
	ImportFn              story.ImportFn
	GetProjectAnnotations func(ctx context.Context) (story.ProjectAnnotations, error)
	// InitialStory is selected first when present in the index.
	InitialStory story.ID
}

// Update carries the results of a reload cycle. Nil fields keep the current
// value; a nil StoryIndex is fetched again through GetStoryIndex.
type Update struct {
	StoryIndex         *story.Index
	ImportFn           story.ImportFn
	ProjectAnnotations *story.ProjectAnnotations
}

// Option configures a Preview.
type Option func(*Preview)

// WithProcessor replaces story.ProcessModule when rendering.
func WithProcessor(p story.Processor) Option {
	return func(pv *Preview) {
		pv.processor = p
	}
}

// Preview coordinates rendering for one session.
type Preview struct {
	ch        channel.Channel
	processor story.Processor
	logger    *slog.Logger

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu             sync.Mutex
	state          State
	getIndex       func() (story.Index, error)
	importFn       story.ImportFn
	annotations    story.ProjectAnnotations
	annotationsErr error
	index          story.Index
	current        story.ID
	display        Display
	renderSeq      uint64
	renderCancel   context.CancelFunc
}

// New creates an uninitialized Preview bound to ch and subscribes to the
// host-driven events.
func New(ctx context.Context, ch channel.Channel, opts ...Option) *Preview {
	baseCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p := &Preview{
		ch:        ch,
		processor: story.ProcessModule,
		logger:    ctxlog.FromContext(ctx).With("component", "preview"),
		baseCtx:   baseCtx,
		cancel:    cancel,
		index:     story.Index{V: story.IndexVersion, Entries: map[story.ID]story.IndexEntry{}},
	}
	for _, opt := range opts {
		opt(p)
	}

	ch.On(channel.EventForceReRender, func(...any) { p.forceReRender() })
	ch.On(channel.EventSetCurrentStory, func(args ...any) {
		id, ok := storyIDFromPayload(args)
		if !ok {
			p.logger.Warn("Ignoring setCurrentStory without a story id.", "payload", args)
			return
		}
		p.SelectStory(id)
	})
	return p
}

// Initialized reports whether Initialize has run.
func (p *Preview) Initialized() bool {
	return p.State() == Ready
}

// State returns the lifecycle state.
func (p *Preview) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Display returns a snapshot of the canvas.
func (p *Preview) Display() Display {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.display
}

// Current returns the selected story id.
func (p *Preview) Current() story.ID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Index returns the story index in use.
func (p *Preview) Index() story.Index {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

// Initialize moves the preview to Ready and renders the first story.
// Failures while loading annotations or the index are shown on the canvas
// and emitted as configError; they do not fail Initialize.
func (p *Preview) Initialize(ctx context.Context, cfg Config) error {
	p.mu.Lock()
	if p.state == Ready {
		p.mu.Unlock()
		return ErrAlreadyInitialized
	}
	p.state = Ready
	p.getIndex = cfg.GetStoryIndex
	p.importFn = cfg.ImportFn
	p.mu.Unlock()

	p.logger.Info("Initializing preview.")
	annotations, err := captureAnnotations(ctx, cfg.GetProjectAnnotations)

	var out outbox
	p.mu.Lock()
	p.annotations, p.annotationsErr = annotations, err
	if err != nil {
		p.showErrorLocked(&out, err)
		p.mu.Unlock()
		out.flush(p)
		return nil
	}
	if ok := p.refreshIndexLocked(&out, nil); ok {
		id := cfg.InitialStory
		if id == "" || !p.index.Has(id) {
			if first, found := p.index.First(); found {
				id = first.ID
			}
		}
		p.selectLocked(&out, id, false)
	}
	p.mu.Unlock()
	out.flush(p)
	return nil
}

// OnStoriesChanged applies the results of a reload cycle. The current story
// is rendered again when it still exists, otherwise the canvas switches to
// the missing display.
func (p *Preview) OnStoriesChanged(ctx context.Context, u Update) error {
	var out outbox
	p.mu.Lock()
	if p.state != Ready {
		p.mu.Unlock()
		return ErrNotInitialized
	}
	if u.ImportFn != nil {
		p.importFn = u.ImportFn
	}
	if u.ProjectAnnotations != nil {
		p.annotations, p.annotationsErr = *u.ProjectAnnotations, nil
	}
	out.add(channel.EventStoriesChanged)

	if p.annotationsErr != nil {
		p.showErrorLocked(&out, p.annotationsErr)
		p.mu.Unlock()
		out.flush(p)
		return nil
	}
	if ok := p.refreshIndexLocked(&out, u.StoryIndex); ok {
		id := p.current
		if id == "" {
			if first, found := p.index.First(); found {
				id = first.ID
			}
		}
		p.selectLocked(&out, id, false)
	}
	p.mu.Unlock()

	ctxlog.FromContext(ctx).Debug("Stories changed.", "stories", len(p.Index().Entries))
	out.flush(p)
	return nil
}

// SelectStory makes id the current story and renders it.
func (p *Preview) SelectStory(id story.ID) {
	var out outbox
	p.mu.Lock()
	if p.state != Ready {
		p.mu.Unlock()
		p.logger.Warn("Ignoring story selection before initialization.", "story", id)
		return
	}
	if p.annotationsErr != nil {
		p.current = id
		p.mu.Unlock()
		return
	}
	p.selectLocked(&out, id, false)
	p.mu.Unlock()
	out.flush(p)
}

// ReportError cancels any render and shows err on the canvas.
func (p *Preview) ReportError(err error) {
	var out outbox
	p.mu.Lock()
	p.showErrorLocked(&out, err)
	p.mu.Unlock()
	out.flush(p)
}

// Wait blocks until no render is in flight.
func (p *Preview) Wait() {
	p.wg.Wait()
}

// Close cancels in-flight renders and waits for them to stop.
func (p *Preview) Close() {
	p.cancel()
	p.wg.Wait()
}

func (p *Preview) forceReRender() {
	var out outbox
	p.mu.Lock()
	if p.state != Ready || p.current == "" || p.annotationsErr != nil || !p.index.Has(p.current) {
		p.mu.Unlock()
		p.logger.Debug("Nothing to re-render.")
		return
	}
	p.renderLocked(p.current, true)
	p.mu.Unlock()
	out.flush(p)
}

// refreshIndexLocked installs idx, or fetches a fresh index when idx is nil.
func (p *Preview) refreshIndexLocked(out *outbox, idx *story.Index) bool {
	if idx == nil {
		if p.getIndex == nil {
			p.showErrorLocked(out, fmt.Errorf("no story index accessor"))
			return false
		}
		fetched, err := p.getIndex()
		if err != nil {
			p.showErrorLocked(out, fmt.Errorf("failed to build story index: %w", err))
			return false
		}
		idx = &fetched
	}
	p.index = *idx
	out.add(channel.EventSetIndex, p.index)
	return true
}

func (p *Preview) selectLocked(out *outbox, id story.ID, forceRemount bool) {
	if id != p.current {
		p.current = id
		if id != "" {
			out.add(channel.EventCurrentStoryWasSet, string(id))
		}
	}
	switch {
	case id == "":
		p.cancelRenderLocked()
		p.display = Display{Kind: DisplayNone}
	case p.index.Has(id):
		p.renderLocked(id, forceRemount)
	default:
		p.cancelRenderLocked()
		p.display = Display{Kind: DisplayMissing, StoryID: id}
		out.add(channel.EventStoryMissing, string(id))
	}
}

func (p *Preview) showErrorLocked(out *outbox, err error) {
	p.cancelRenderLocked()
	p.display = Display{Kind: DisplayError, StoryID: p.current, Err: err}
	p.logger.Error("Preview error.", "error", err)
	out.add(channel.EventConfigError, err.Error())
}

func (p *Preview) cancelRenderLocked() {
	p.renderSeq++
	if p.renderCancel != nil {
		p.renderCancel()
		p.renderCancel = nil
	}
}

func storyIDFromPayload(args []any) (story.ID, bool) {
	if len(args) == 0 {
		return "", false
	}
	switch v := args[0].(type) {
	case string:
		return story.ID(v), v != ""
	case story.ID:
		return v, v != ""
	case map[string]any:
		s, _ := v["storyId"].(string)
		return story.ID(s), s != ""
	default:
		return "", false
	}
}

// captureAnnotations turns both errors and panics into an error.
func captureAnnotations(ctx context.Context, get func(context.Context) (story.ProjectAnnotations, error)) (pa story.ProjectAnnotations, err error) {
	if get == nil {
		return story.ProjectAnnotations{}, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while loading project annotations: %v", r)
		}
	}()
	return get(ctx)
}

// outbox collects events while the lock is held so they are emitted after
// it is released.
type outbox struct {
	events []pending
}

type pending struct {
	event string
	args  []any
}

func (o *outbox) add(event string, args ...any) {
	o.events = append(o.events, pending{event: event, args: args})
}

func (o *outbox) flush(p *Preview) {
	for _, e := range o.events {
		p.emit(e.event, e.args...)
	}
	o.events = nil
}

func (p *Preview) emit(event string, args ...any) {
	if err := p.ch.Emit(event, args...); err != nil {
		p.logger.Warn("Failed to emit event.", "event", event, "error", err)
	}
}
