package backgrounds

import (
	"context"
	"fmt"

	"github.com/specialistvlad/previewgo/internal/registry"
	"github.com/specialistvlad/previewgo/internal/story"
)

// DefaultBackground is the background stories get unless they pick another.
const DefaultBackground = "light"

// Module implements the registry.Addon interface for this package.
type Module struct{}

// Parameters are the project defaults registered by the addon.
func Parameters() map[string]any {
	return map[string]any{
		"backgrounds": map[string]any{
			"default": DefaultBackground,
			"values": []any{
				map[string]any{"name": "light", "value": "#F8F8F8"},
				map[string]any{"name": "dark", "value": "#333333"},
			},
		},
	}
}

// Resolve returns the selected background name and its value. ok is false
// when the selection is the default or names no known value.
func Resolve(params map[string]any) (name, value string, ok bool) {
	bg, _ := params["backgrounds"].(map[string]any)
	name, _ = bg["default"].(string)
	if name == "" || name == DefaultBackground {
		return "", "", false
	}
	values, _ := bg["values"].([]any)
	for _, v := range values {
		entry, _ := v.(map[string]any)
		if entry["name"] == name {
			value, _ = entry["value"].(string)
			return name, value, true
		}
	}
	return "", "", false
}

// Decorator marks text output rendered on a non-default background.
func Decorator(ctx context.Context, next story.Fn, sc story.Context) (any, error) {
	out, err := next(ctx, sc)
	if err != nil {
		return nil, err
	}
	text, isText := out.(string)
	name, value, ok := Resolve(sc.Parameters)
	if !isText || !ok {
		return out, nil
	}
	return fmt.Sprintf("[background: %s %s]\n%s", name, value, text), nil
}

// Register registers the default backgrounds and the decorator.
func (m *Module) Register(r *registry.Registry) {
	r.AddParameters(Parameters())
	r.RegisterDecorator("backgrounds", Decorator)
}
