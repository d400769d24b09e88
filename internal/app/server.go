package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/specialistvlad/previewgo/internal/channel"
	"github.com/specialistvlad/previewgo/internal/ctxlog"
)

// shutdownTimeout bounds the graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

// healthHandler answers liveness checks.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// indexHandler serves the story index known to the preview.
func (a *App) indexHandler(w http.ResponseWriter, r *http.Request) {
	pv := a.session.Preview()
	if pv == nil {
		http.Error(w, "preview is not started", http.StatusServiceUnavailable)
		return
	}
	a.writeJSON(w, pv.Index())
}

// canvasHandler serves the last frame painted to the canvas.
func (a *App) canvasHandler(w http.ResponseWriter, r *http.Request) {
	frame, ok := a.canvas.Last()
	if !ok {
		http.Error(w, "nothing rendered yet", http.StatusNotFound)
		return
	}
	a.writeJSON(w, frame)
}

func (a *App) writeJSON(w http.ResponseWriter, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		ctxlog.FromContext(a.ctx).Error("Failed to encode response.", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// startServer mounts the channel and the JSON endpoints and starts serving
// in the background. An empty listen address disables the server.
func (a *App) startServer(server *channel.Server) error {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Configuring HTTP server.")
	if a.config.Listen == "" {
		logger.Warn("HTTP server not started: disabled")
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/index.json", a.indexHandler)
	mux.HandleFunc("/canvas.json", a.canvasHandler)
	mux.Handle("/socket.io/", server.Handler())

	ln, err := net.Listen("tcp", a.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.config.Listen, err)
	}
	srv := &http.Server{Handler: mux}
	a.mu.Lock()
	a.listener = ln
	a.httpServer = srv
	a.mu.Unlock()

	go func() {
		logger.Info("🩺 HTTP server starting", "address", fmt.Sprintf("http://%s", ln.Addr()))
		// Serve returns http.ErrServerClosed on graceful shutdown.
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed unexpectedly", "error", err)
		}
	}()
	return nil
}

// shutdown stops the HTTP server, the preview and the channel.
func (a *App) shutdown(server *channel.Server) {
	logger := ctxlog.FromContext(a.ctx)

	a.mu.Lock()
	srv := a.httpServer
	a.mu.Unlock()
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(a.ctx), shutdownTimeout)
		defer cancel()
		logger.Info("🩺 Shutting down HTTP server...")
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("HTTP server shutdown failed", "error", err)
		}
	}
	if pv := a.session.Preview(); pv != nil {
		pv.Close()
	}
	if err := server.Close(); err != nil {
		logger.Debug("Channel close failed.", "error", err)
	}
	logger.Debug("Shut down gracefully.")
}
