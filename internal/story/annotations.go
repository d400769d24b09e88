package story

import (
	"context"
	"fmt"
	"maps"
)

// MergeParameters merges parameter maps left to right. Later values win;
// nested maps are merged recursively, every other value is replaced.
func MergeParameters(layers ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, layer := range layers {
		for k, v := range layer {
			nested, ok := v.(map[string]any)
			if !ok {
				out[k] = v
				continue
			}
			if existing, ok := out[k].(map[string]any); ok {
				out[k] = MergeParameters(existing, nested)
			} else {
				out[k] = MergeParameters(nested)
			}
		}
	}
	return out
}

// MergeArgs merges arg maps left to right with a shallow, last-writer-wins fold.
func MergeArgs(layers ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, layer := range layers {
		maps.Copy(out, layer)
	}
	return out
}

// Decorate is the default DecorateStory: decorators[0] is innermost.
func Decorate(fn Fn, decorators []Decorator) Fn {
	decorated := fn
	for _, d := range decorators {
		if d == nil {
			continue
		}
		next, decorator := decorated, d
		decorated = func(ctx context.Context, sc Context) (any, error) {
			return decorator(ctx, next, sc)
		}
	}
	return decorated
}

// DefaultRender is used when neither the story, its meta, nor the project
// supplies a render function. It renders the story's args.
func DefaultRender(_ context.Context, sc Context) (any, error) {
	return fmt.Sprintf("%s: %v", sc.Name, sc.Args), nil
}

// Find returns the annotation with the given id.
func (m ModuleAnnotations) Find(id ID) (Annotation, bool) {
	for _, a := range m.Stories {
		if a.ID == id {
			return a, true
		}
	}
	return Annotation{}, false
}
