package preview

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/previewgo/internal/channel"
	"github.com/specialistvlad/previewgo/internal/story"
)

// Globals every story sees. "previewgo" lets render functions detect that
// they run inside the preview.
var defaultGlobals = map[string]any{"previewgo": true}

// renderJob is everything one render needs, captured under the lock.
type renderJob struct {
	seq          uint64
	entry        story.IndexEntry
	importFn     story.ImportFn
	annotations  story.ProjectAnnotations
	processor    story.Processor
	forceRemount bool
}

// errNoRenderer is reported when the project annotations carry no canvas.
var errNoRenderer = errors.New("no renderToCanvas configured")

// renderLocked cancels the render in flight and starts a new one for id.
func (p *Preview) renderLocked(id story.ID, forceRemount bool) {
	p.cancelRenderLocked()
	entry, _ := p.index.Get(id)
	ctx, cancel := context.WithCancel(p.baseCtx)
	p.renderCancel = cancel
	p.display = Display{Kind: DisplayStory, StoryID: id}

	job := renderJob{
		seq:          p.renderSeq,
		entry:        entry,
		importFn:     p.importFn,
		annotations:  p.annotations,
		processor:    p.processor,
		forceRemount: forceRemount,
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()
		p.runRender(ctx, job)
	}()
}

func (p *Preview) runRender(ctx context.Context, job renderJob) {
	id := job.entry.ID
	logger := p.logger.With("story", id)
	logger.Debug("Rendering story.", "forceRemount", job.forceRemount)

	panicked, err := renderStory(ctx, job)
	if ctx.Err() != nil {
		logger.Debug("Render superseded.")
		return
	}

	var out outbox
	p.mu.Lock()
	if job.seq != p.renderSeq {
		p.mu.Unlock()
		return
	}
	p.renderCancel = nil
	switch {
	case err == nil:
		p.display = Display{Kind: DisplayStory, StoryID: id}
		out.add(channel.EventStoryRendered, string(id))
	case errors.Is(err, errStoryNotFound):
		p.display = Display{Kind: DisplayMissing, StoryID: id}
		out.add(channel.EventStoryMissing, string(id))
	case panicked:
		p.display = Display{Kind: DisplayError, StoryID: id, Err: err}
		out.add(channel.EventStoryThrewException, errorPayload(id, err))
	default:
		p.display = Display{Kind: DisplayError, StoryID: id, Err: err}
		out.add(channel.EventStoryErrored, errorPayload(id, err))
	}
	p.mu.Unlock()

	if err != nil {
		logger.Warn("Story render failed.", "error", err)
	} else {
		logger.Debug("Story rendered.")
	}
	out.flush(p)
}

var errStoryNotFound = errors.New("story not found in module")

// renderStory runs the render pipeline. panicked reports whether err came
// from a panic.
func renderStory(ctx context.Context, job renderJob) (panicked bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			panicked, err = true, fmt.Errorf("panic while rendering %s: %v", job.entry.ID, r)
		}
	}()

	if job.importFn == nil {
		return false, errors.New("no import function")
	}
	exports, err := job.importFn(ctx, job.entry.ImportPath)
	if err != nil {
		return false, fmt.Errorf("failed to import %s: %w", job.entry.ImportPath, err)
	}
	mod, err := job.processor(job.entry.ImportPath, exports)
	if err != nil {
		return false, err
	}
	a, ok := mod.Find(job.entry.ID)
	if !ok {
		return false, fmt.Errorf("%s: %w", job.entry.ID, errStoryNotFound)
	}

	pa := job.annotations
	sc := story.Context{
		ID:         a.ID,
		Title:      a.Title,
		Name:       a.Name,
		Args:       story.MergeArgs(a.Args),
		Parameters: story.MergeParameters(pa.Parameters, a.Parameters),
		Globals:    story.MergeArgs(defaultGlobals),
		Tags:       a.Tags,
	}

	fn := a.Render
	if fn == nil {
		fn = pa.Render
	}
	if fn == nil {
		fn = story.DefaultRender
	}
	apply := pa.ApplyDecorators
	if apply == nil {
		apply = story.Decorate
	}
	decorators := append(append([]story.Decorator(nil), a.Decorators...), pa.Decorators...)

	if pa.RenderToCanvas == nil {
		return false, errNoRenderer
	}
	return false, pa.RenderToCanvas(ctx, story.RenderContext{
		Story:        sc,
		ImportPath:   a.ImportPath,
		StoryFn:      apply(fn, decorators),
		ForceRemount: job.forceRemount,
	})
}

func errorPayload(id story.ID, err error) map[string]any {
	return map[string]any{"storyId": string(id), "error": err.Error()}
}
