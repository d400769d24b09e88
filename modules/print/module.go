package print

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/previewgo/internal/registry"
	"github.com/specialistvlad/previewgo/internal/story"
)

// Module implements the registry.Addon interface for this package.
type Module struct{}

// Format renders a story result as text. Maps are printed one key per line
// in sorted order; nil prints as "(null)".
func Format(v any) string {
	switch value := v.(type) {
	case nil:
		return "(null)"
	case string:
		return value
	case map[string]any:
		keys := make([]string, 0, len(value))
		for k := range value {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var b strings.Builder
		for i, k := range keys {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%s = %s", k, formatValue(value[k]))
		}
		return b.String()
	default:
		return fmt.Sprint(value)
	}
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(v)
}

// Decorator turns whatever the story renders into text.
func Decorator(ctx context.Context, next story.Fn, sc story.Context) (any, error) {
	out, err := next(ctx, sc)
	if err != nil {
		return nil, err
	}
	return Format(out), nil
}

// Register registers the print decorator.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterDecorator("print", Decorator)
}
