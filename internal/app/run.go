package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/previewgo/internal/bootstrap"
	"github.com/specialistvlad/previewgo/internal/channel"
	"github.com/specialistvlad/previewgo/internal/ctxlog"
	"github.com/specialistvlad/previewgo/internal/loadable"
	"github.com/specialistvlad/previewgo/internal/story"
	"github.com/specialistvlad/previewgo/internal/watch"
)

// Run starts the preview and blocks until ctx is cancelled. With CheckOnly
// set it validates the stories and returns instead.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.")

	if a.config.CheckOnly {
		return a.check(ctx)
	}

	server := channel.NewServer(ctx)
	if !a.session.SetChannel(server) {
		a.logger.Warn("Session already has a channel; socket.io hosts will not see its events.")
	}
	if err := a.startServer(server); err != nil {
		return err
	}
	defer a.shutdown(server)

	// The watcher is created first so edits made during the initial load
	// are picked up by the first batch.
	var w *watch.Watcher
	if a.config.Watch {
		var err error
		w, err = watch.New(a.config.StoriesPath, a.config.Suffix, a.config.Debounce)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", a.config.StoriesPath, err)
		}
	}

	if err := a.reload(ctx); err != nil {
		if w != nil {
			_ = w.Close()
		}
		return fmt.Errorf("initial load failed: %w", err)
	}
	a.logger.Info("🚀 Preview ready.", "stories", a.config.StoriesPath, "count", len(a.session.Preview().Index().Entries))

	if w == nil {
		<-ctx.Done()
		a.logger.Debug("App.Run method finished.")
		return nil
	}

	a.logger.Info("👀 Watching story files.", "path", a.config.StoriesPath)
	err := w.Run(ctx, a.onChange)
	a.logger.Debug("App.Run method finished.")
	return err
}

// reload runs one reload cycle: the reload context is swapped, the client
// is started on the shared session, and the stories are configured.
func (a *App) reload(ctx context.Context) error {
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	var opts []bootstrap.ConfigureOption
	if a.hot != nil {
		a.hot.Swap()
		opts = append(opts, bootstrap.WithHot(a.hot))
	}
	if a.config.InitialStory != "" {
		opts = append(opts, bootstrap.WithInitialStory(story.ID(a.config.InitialStory)))
	}

	client := bootstrap.Start(ctx, a.session, a.canvas.Render, bootstrap.Implementation{
		DecorateStory: story.Decorate,
		Render:        story.DefaultRender,
	})
	return client.Configure(ctx, a.config.Framework, a.stories, opts...)
}

// onChange handles one batch from the watcher. Without hot tracking a full
// reload never drops modules, so deleted files are unloaded first.
func (a *App) onChange(ctx context.Context, b watch.Batch) {
	logger := ctxlog.FromContext(ctx)
	if a.hot == nil {
		if reg := a.session.Registry(); reg != nil {
			for _, path := range b.Removed {
				if reg.Unload(ctx, a.stories.ModuleID(path)) {
					logger.Info("Story file removed.", "path", path)
				}
			}
		}
	}
	if err := a.reload(ctx); err != nil {
		logger.Error("Reload failed.", "error", err)
		return
	}
	logger.Info("🔁 Stories reloaded.", "changed", len(b.Changed), "removed", len(b.Removed))
}

// check loads every story file once and validates the registry.
func (a *App) check(ctx context.Context) error {
	reg := a.session.Registry()
	changes, err := loadable.ExtractChanges(ctx, a.stories, nil)
	if err != nil {
		return fmt.Errorf("failed to load stories: %w", err)
	}
	for _, id := range changes.AddedIDs() {
		if err := reg.AddStoriesFromExports(id, changes.Added[id]); err != nil {
			return fmt.Errorf("failed to load stories: %w", err)
		}
	}
	if err := reg.Validate(ctx); err != nil {
		return err
	}
	idx, err := reg.StoryIndex()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.outW, "✅ %d stories in %d files\n", len(idx.Entries), len(reg.Modules()))
	return nil
}
