package env_vars

import (
	"os"
	"strings"

	"github.com/specialistvlad/previewgo/internal/registry"
)

// DefaultPrefix selects the variables exposed to stories.
const DefaultPrefix = "PREVIEWGO_PUBLIC_"

// Module implements the registry.Addon interface for this package.
type Module struct {
	// Prefix overrides DefaultPrefix.
	Prefix string
}

// Vars returns the environment variables starting with prefix, keyed by
// their full name.
func Vars(prefix string) map[string]any {
	envMap := make(map[string]any)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 && strings.HasPrefix(pair[0], prefix) {
			envMap[pair[0]] = pair[1]
		}
	}
	return envMap
}

// Register exposes the selected variables as the "env" project parameter.
func (m *Module) Register(r *registry.Registry) {
	prefix := m.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	r.AddParameters(map[string]any{"env": Vars(prefix)})
}
