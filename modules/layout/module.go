package layout

import (
	"context"
	"strings"

	"github.com/specialistvlad/previewgo/internal/registry"
	"github.com/specialistvlad/previewgo/internal/story"
)

// Width is the canvas width centered output is aligned to.
const Width = 60

// Module implements the registry.Addon interface for this package.
type Module struct{}

// Apply arranges text according to layout: "centered", "padded" or
// "fullscreen". Unknown layouts leave text untouched.
func Apply(layout, text string) string {
	lines := strings.Split(text, "\n")
	switch layout {
	case "centered":
		for i, line := range lines {
			if pad := (Width - len([]rune(line))) / 2; pad > 0 {
				lines[i] = strings.Repeat(" ", pad) + line
			}
		}
	case "padded":
		for i, line := range lines {
			lines[i] = "  " + line
		}
	default:
		return text
	}
	return strings.Join(lines, "\n")
}

// Decorator lays out text output using the "layout" parameter.
func Decorator(ctx context.Context, next story.Fn, sc story.Context) (any, error) {
	out, err := next(ctx, sc)
	if err != nil {
		return nil, err
	}
	text, ok := out.(string)
	if !ok {
		return out, nil
	}
	layout, _ := sc.Parameters["layout"].(string)
	return Apply(layout, text), nil
}

// Register registers the layout decorator.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterDecorator("layout", Decorator)
}
