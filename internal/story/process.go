package story

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// ProcessModule is the default Processor. It reads the module meta from the
// "default" export and turns every other exported story into an Annotation.
// A module without a meta gets a title derived from its id.
func ProcessModule(id ModuleID, exports Exports) (ModuleAnnotations, error) {
	meta, err := metaFromExport(exports[DefaultExport])
	if err != nil {
		return ModuleAnnotations{}, fmt.Errorf("module %s: %w", id, err)
	}
	title := meta.Title
	if title == "" {
		title = TitleFromModuleID(id)
	}

	names, err := storyExportNames(exports, meta)
	if err != nil {
		return ModuleAnnotations{}, fmt.Errorf("module %s: %w", id, err)
	}

	out := ModuleAnnotations{ID: id, Title: title, Meta: meta}
	seen := make(map[ID]string, len(names))
	for _, name := range names {
		s, err := storyFromExport(exports[name])
		if err != nil {
			return ModuleAnnotations{}, fmt.Errorf("module %s: export %q: %w", id, name, err)
		}

		displayName := s.Name
		if displayName == "" {
			displayName = StoryNameFromExport(name)
		}
		storyID := ToID(title, StoryNameFromExport(name))
		if other, dup := seen[storyID]; dup {
			return ModuleAnnotations{}, fmt.Errorf("module %s: exports %q and %q both map to story id %q", id, other, name, storyID)
		}
		seen[storyID] = name

		render := s.Render
		if render == nil {
			render = meta.Render
		}
		out.Stories = append(out.Stories, Annotation{
			ID:         storyID,
			ExportName: name,
			Name:       displayName,
			Title:      title,
			ImportPath: id,
			Args:       MergeArgs(meta.Args, s.Args),
			Parameters: MergeParameters(map[string]any{"fileName": string(id)}, meta.Parameters, s.Parameters),
			Tags:       mergeTags(meta.Tags, s.Tags),
			Decorators: append(slices.Clone(s.Decorators), meta.Decorators...),
			Render:     render,
		})
	}
	return out, nil
}

func storyExportNames(exports Exports, meta Meta) ([]string, error) {
	var names []string
	if raw, ok := exports[NamedExportsOrder]; ok {
		order, ok := raw.([]string)
		if !ok {
			return nil, fmt.Errorf("%s must be a []string, got %T", NamedExportsOrder, raw)
		}
		for _, name := range order {
			if _, exists := exports[name]; exists {
				names = append(names, name)
			}
		}
	} else {
		for name := range exports {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	filtered := names[:0]
	for _, name := range names {
		if isStoryExport(name, meta) {
			filtered = append(filtered, name)
		}
	}
	return filtered, nil
}

func isStoryExport(name string, meta Meta) bool {
	if name == DefaultExport || strings.HasPrefix(name, "__") {
		return false
	}
	if len(meta.IncludeStories) > 0 && !slices.Contains(meta.IncludeStories, name) {
		return false
	}
	return !slices.Contains(meta.ExcludeStories, name)
}

func metaFromExport(v any) (Meta, error) {
	switch m := v.(type) {
	case nil:
		return Meta{}, nil
	case Meta:
		return m, nil
	case *Meta:
		if m == nil {
			return Meta{}, nil
		}
		return *m, nil
	case map[string]any:
		return Meta{
			Title:          stringField(m, "title"),
			Component:      stringField(m, "component"),
			Tags:           stringsField(m, "tags"),
			Args:           mapField(m, "args"),
			Parameters:     mapField(m, "parameters"),
			IncludeStories: stringsField(m, "includeStories"),
			ExcludeStories: stringsField(m, "excludeStories"),
		}, nil
	default:
		return Meta{}, fmt.Errorf("default export must be a story meta, got %T", v)
	}
}

func storyFromExport(v any) (Story, error) {
	switch s := v.(type) {
	case Story:
		return s, nil
	case *Story:
		if s == nil {
			return Story{}, fmt.Errorf("story is a nil pointer")
		}
		return *s, nil
	case Fn:
		return Story{Render: s}, nil
	case func(context.Context, Context) (any, error):
		return Story{Render: s}, nil
	case map[string]any:
		return Story{
			Name:       stringField(s, "name"),
			Args:       mapField(s, "args"),
			Parameters: mapField(s, "parameters"),
			Tags:       stringsField(s, "tags"),
		}, nil
	default:
		return Story{}, fmt.Errorf("unsupported story export type %T", v)
	}
}

func mergeTags(layers ...[]string) []string {
	var out []string
	for _, layer := range layers {
		for _, tag := range layer {
			if !slices.Contains(out, tag) {
				out = append(out, tag)
			}
		}
	}
	return out
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func mapField(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

func stringsField(m map[string]any, key string) []string {
	switch v := m[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
