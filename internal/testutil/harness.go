package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/previewgo/internal/app"
	"github.com/specialistvlad/previewgo/internal/channel"
	"github.com/specialistvlad/previewgo/internal/config"
	"github.com/specialistvlad/previewgo/internal/preview"
	"github.com/specialistvlad/previewgo/internal/registry"
	"github.com/stretchr/testify/require"
)

// WaitTimeout bounds every wait in the harness.
const WaitTimeout = 10 * time.Second

// Harness is a running preview over a temporary stories directory.
type Harness struct {
	App  *app.App
	Logs *app.SafeBuffer
	Root string

	stop func() error
}

// StartPreview writes files under a temporary root and runs the app on a
// random local port with the watcher enabled. mutate may adjust the
// configuration before the app is created.
func StartPreview(t *testing.T, files map[string]string, mutate func(*config.Config), addons ...registry.Addon) *Harness {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		writeFile(t, filepath.Join(root, name), content)
	}

	cfg := config.Defaults()
	cfg.StoriesPath = root
	cfg.Listen = "127.0.0.1:0"
	cfg.Debounce = 20 * time.Millisecond
	if mutate != nil {
		mutate(&cfg)
	}

	a, logs := app.SetupAppTest(t, &cfg, addons...)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()

	h := &Harness{App: a, Logs: logs, Root: root}
	var stopped bool
	var stopErr error
	h.stop = func() error {
		if stopped {
			return stopErr
		}
		stopped = true
		cancel()
		select {
		case stopErr = <-errCh:
		case <-time.After(WaitTimeout):
			t.Fatal("preview did not stop")
		}
		return stopErr
	}
	t.Cleanup(func() { _ = h.stop() })

	require.Eventually(t, func() bool {
		pv := a.Session().Preview()
		return pv != nil && pv.Initialized()
	}, WaitTimeout, 10*time.Millisecond, "preview did not initialize")
	return h
}

// Stop cancels the app and returns the error Run returned.
func (h *Harness) Stop() error {
	return h.stop()
}

// Preview returns the session's preview.
func (h *Harness) Preview() *preview.Preview {
	return h.App.Session().Preview()
}

// WriteFile creates or replaces a file relative to the stories root.
func (h *Harness) WriteFile(t *testing.T, name, content string) {
	t.Helper()
	writeFile(t, filepath.Join(h.Root, name), content)
}

// RemoveFile deletes a file relative to the stories root.
func (h *Harness) RemoveFile(t *testing.T, name string) {
	t.Helper()
	require.NoError(t, os.Remove(filepath.Join(h.Root, name)))
}

// Dial connects a host to the preview's socket.io endpoint.
func (h *Harness) Dial(t *testing.T) *channel.Remote {
	t.Helper()
	require.Eventually(t, func() bool { return h.App.Addr() != "" }, WaitTimeout, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), WaitTimeout)
	defer cancel()
	remote, err := channel.Dial(ctx, "http://"+h.App.Addr()+"/socket.io/", channel.DialOptions{Timeout: WaitTimeout})
	require.NoError(t, err)
	t.Cleanup(func() { _ = remote.Close() })
	return remote
}

// WaitForDisplay waits until the preview shows kind.
func (h *Harness) WaitForDisplay(t *testing.T, kind preview.DisplayKind) preview.Display {
	t.Helper()
	require.Eventually(t, func() bool {
		return h.Preview().Display().Kind == kind
	}, WaitTimeout, 10*time.Millisecond, "preview never showed %s", kind)
	return h.Preview().Display()
}

// WaitForOutput waits until the last painted frame has the given output.
func (h *Harness) WaitForOutput(t *testing.T, output string) app.Frame {
	t.Helper()
	var frame app.Frame
	require.Eventually(t, func() bool {
		var ok bool
		frame, ok = h.App.Canvas().Last()
		return ok && frame.Output == output
	}, WaitTimeout, 10*time.Millisecond, "canvas never painted %q", output)
	return frame
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
