package app

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/specialistvlad/previewgo/internal/config"
	"github.com/specialistvlad/previewgo/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates a new app instance for system testing. The HTTP
// server listens on a random local port unless cfg disables it.
func SetupAppTest(t *testing.T, cfg *config.Config, addons ...registry.Addon) (*App, *SafeBuffer) {
	t.Helper()

	logBuffer := &SafeBuffer{}
	cfg.LogLevel = "debug"
	testApp := NewApp(logBuffer, cfg, addons...)

	t.Cleanup(func() {
		if os.Getenv("PREVIEWGO_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
