package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/previewgo/internal/channel"
	"github.com/specialistvlad/previewgo/internal/ctxlog"
	"github.com/specialistvlad/previewgo/internal/loadable"
	"github.com/specialistvlad/previewgo/internal/preview"
	"github.com/specialistvlad/previewgo/internal/registry"
	"github.com/specialistvlad/previewgo/internal/story"
)

// Implementation is what a framework contributes to rendering.
type Implementation struct {
	DecorateStory story.DecorateStory
	Render        story.Fn
}

// LegacyAPI is the retired imperative client API.
type LegacyAPI interface {
	StoriesOf(kind string) error
	Raw() ([]story.Annotation, error)
}

// Client is what Start returns to the host.
type Client struct {
	removed        bool
	renderToCanvas story.RenderToCanvas
	impl           Implementation
	channel        channel.Channel
	registry       *registry.Registry
	preview        *preview.Preview
}

// Start prepares the session's singletons for one reload and returns the
// client for it. Calling Start again on the same session reuses them.
func Start(ctx context.Context, s *Session, renderToCanvas story.RenderToCanvas, impl Implementation) *Client {
	logger := ctxlog.FromContext(ctx)
	if s.Features.StoryStoreV7 {
		logger.Debug("Client API is retired in this session.")
		return &Client{removed: true}
	}

	ch := s.channelOrCreate(func() channel.Channel {
		logger.Debug("Creating local preview channel.")
		return channel.NewLocal(channel.PagePreview)
	})
	reg := s.registryOrCreate(func() *registry.Registry {
		return registry.New(registry.WithLogger(logger))
	})
	pv := s.previewOrCreate(func() *preview.Preview {
		return preview.New(ctx, ch, preview.WithProcessor(reg.Processor()))
	})

	reg.SetOnImportFnChanged(func(ctx context.Context, importFn story.ImportFn) {
		err := pv.OnStoriesChanged(ctx, preview.Update{ImportFn: importFn})
		if err != nil {
			ctxlog.FromContext(ctx).Debug("Import function changed before the preview was ready.", "error", err)
		}
	})

	return &Client{
		renderToCanvas: renderToCanvas,
		impl:           impl,
		channel:        ch,
		registry:       reg,
		preview:        pv,
	}
}

// ForceReRender asks the preview to render the current story again.
func (c *Client) ForceReRender() error {
	if c.removed {
		return &RemovedAPIError{Name: "forceReRender"}
	}
	return c.channel.Emit(channel.EventForceReRender)
}

// ClientAPI returns the retired imperative API.
func (c *Client) ClientAPI() LegacyAPI {
	if c.removed {
		return removedLegacyAPI{}
	}
	return c.registry
}

type removedLegacyAPI struct{}

func (removedLegacyAPI) StoriesOf(string) error {
	return &RemovedAPIError{Name: "clientApi.storiesOf"}
}

func (removedLegacyAPI) Raw() ([]story.Annotation, error) {
	return nil, &RemovedAPIError{Name: "raw"}
}

// ConfigureOption adjusts a single Configure call.
type ConfigureOption func(*configureOptions)

type configureOptions struct {
	hot            *loadable.Hot
	backwardCompat bool
	initialStory   story.ID
}

// WithHot enables change tracking across reload cycles through hot.
func WithHot(hot *loadable.Hot) ConfigureOption {
	return func(o *configureOptions) {
		o.hot = hot
	}
}

// WithBackwardCompatibility requests the removed compatibility path.
// Configure always rejects it with ErrInvalidReentry.
func WithBackwardCompatibility() ConfigureOption {
	return func(o *configureOptions) {
		o.backwardCompat = true
	}
}

// WithInitialStory selects id on the first Configure of a session.
func WithInitialStory(id story.ID) ConfigureOption {
	return func(o *configureOptions) {
		o.initialStory = id
	}
}

// Configure feeds the story modules of one reload cycle into the preview.
// The first call of a session initializes the preview; later calls apply
// the change set and notify it. Failures while loading modules are shown
// by the preview and do not fail Configure.
func (c *Client) Configure(ctx context.Context, framework string, l loadable.Loadable, opts ...ConfigureOption) error {
	if c.removed {
		return &RemovedAPIError{Name: "configure"}
	}
	var o configureOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.backwardCompat {
		return ErrInvalidReentry
	}

	ctx, logger := ctxlog.With(ctx, "framework", framework)
	c.registry.AddParameters(map[string]any{"framework": framework})

	getProjectAnnotations := func(ctx context.Context) (story.ProjectAnnotations, error) {
		changes, err := loadable.ExtractChanges(ctx, l, o.hot)
		if err != nil {
			return story.ProjectAnnotations{}, err
		}
		if err := c.registry.ApplyChanges(changes.Added, changes.RemovedIDs()); err != nil {
			changes.Discard()
			var modErr *registry.ModuleError
			if errors.As(err, &modErr) {
				return story.ProjectAnnotations{}, &loadable.LoadError{Module: modErr.Module, Err: modErr.Err}
			}
			return story.ProjectAnnotations{}, &loadable.LoadError{Err: err}
		}
		logger.Debug("Applied story changes.", "added", len(changes.Added), "removed", len(changes.Removed))
		return c.projectAnnotations()
	}

	if !c.preview.Initialized() {
		logger.Info("Initializing preview.")
		err := c.preview.Initialize(ctx, preview.Config{
			GetStoryIndex:         c.registry.StoryIndex,
			ImportFn:              c.registry.ImportFn,
			GetProjectAnnotations: getProjectAnnotations,
			InitialStory:          o.initialStory,
		})
		if err != nil && !errors.Is(err, preview.ErrAlreadyInitialized) {
			return fmt.Errorf("failed to initialize preview: %w", err)
		}
		if err == nil {
			return nil
		}
	}

	pa, err := getProjectAnnotations(ctx)
	if err != nil {
		var loadErr *loadable.LoadError
		if errors.As(err, &loadErr) {
			logger.Warn("Failed to load stories.", "module", loadErr.Module, "error", loadErr.Err)
		} else {
			logger.Warn("Failed to build project annotations.", "error", err)
		}
		c.preview.ReportError(err)
		return nil
	}
	return c.preview.OnStoriesChanged(ctx, preview.Update{
		ImportFn:           c.registry.ImportFn,
		ProjectAnnotations: &pa,
	})
}

// projectAnnotations merges the registry's annotations with the framework
// implementation and the canvas.
func (c *Client) projectAnnotations() (story.ProjectAnnotations, error) {
	pa, err := c.registry.ProjectAnnotations()
	if err != nil {
		return story.ProjectAnnotations{}, err
	}
	if pa.Render == nil {
		pa.Render = c.impl.Render
	}
	pa.RenderToCanvas = c.renderToCanvas
	pa.ApplyDecorators = c.impl.DecorateStory
	return pa, nil
}
