package app

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/specialistvlad/previewgo/internal/bootstrap"
	"github.com/specialistvlad/previewgo/internal/config"
	"github.com/specialistvlad/previewgo/internal/loadable"
	"github.com/specialistvlad/previewgo/internal/registry"
	"github.com/specialistvlad/previewgo/internal/storyfile"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx     context.Context
	outW    io.Writer
	logger  *slog.Logger
	config  *config.Config
	session *bootstrap.Session
	stories *storyfile.Dir
	hot     *loadable.Hot
	canvas  *TextCanvas

	// reloadMu serializes reload cycles.
	reloadMu sync.Mutex

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
}

// NewApp is the constructor for the main application. It returns an App
// with its own logger and a session whose registry already carries the
// addons and the project parameters.
func NewApp(outW io.Writer, cfg *config.Config, addons ...registry.Addon) *App {
	logger := newLogger(cfg, outW)
	logger.Debug("Logger configured successfully.")

	reg := registry.New(registry.WithLogger(logger))
	if len(addons) == 0 {
		addons = coreAddons
	}
	reg.Register(addons...)
	logger.Debug("All addons registered.", "count", len(addons))
	if len(cfg.Parameters) > 0 {
		reg.AddParameters(cfg.Parameters)
	}

	session := bootstrap.NewSession(bootstrap.Features{StoryStoreV7: cfg.StoryStoreV7})
	session.SetRegistry(reg)

	var hot *loadable.Hot
	if cfg.Hot {
		hot = loadable.NewHot()
	}

	return &App{
		ctx:     context.Background(),
		outW:    outW,
		logger:  logger,
		config:  cfg,
		session: session,
		stories: storyfile.NewDir(cfg.StoriesPath, cfg.Suffix),
		hot:     hot,
		canvas:  NewTextCanvas(outW),
	}
}

// Session returns the application's session. This is primarily for testing.
func (a *App) Session() *bootstrap.Session {
	return a.session
}

// Canvas returns the canvas stories are rendered to.
func (a *App) Canvas() *TextCanvas {
	return a.canvas
}

// Addr returns the address the HTTP server listens on, or "" when it is
// not running.
func (a *App) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}
