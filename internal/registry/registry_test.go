package registry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"testing"

	"github.com/specialistvlad/previewgo/internal/story"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buttonExports() story.Exports {
	return story.Exports{
		story.DefaultExport: story.Meta{Title: "Button"},
		"Primary":           story.Story{Args: map[string]any{"primary": true}},
		"Secondary":         story.Story{},
	}
}

func TestRegistry_AddIsIdempotent(t *testing.T) {
	// --- Arrange ---
	r := New()
	exports := buttonExports()

	// --- Act ---
	require.NoError(t, r.AddStoriesFromExports("button", exports))
	once, err := r.ProjectAnnotations()
	require.NoError(t, err)
	require.NoError(t, r.AddStoriesFromExports("button", exports))
	twice, err := r.ProjectAnnotations()
	require.NoError(t, err)

	// --- Assert ---
	assert.Len(t, twice.Stories, 2)
	assert.Equal(t, keys(once.Stories), keys(twice.Stories))
}

func TestRegistry_ReplaceIsWholesale(t *testing.T) {
	// --- Arrange ---
	r := New()
	require.NoError(t, r.AddStoriesFromExports("button", buttonExports()))

	// --- Act ---
	require.NoError(t, r.AddStoriesFromExports("button", story.Exports{
		story.DefaultExport: story.Meta{Title: "Button"},
		"Tertiary":          story.Story{},
	}))
	pa, err := r.ProjectAnnotations()

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []story.ID{"button--tertiary"}, keys(pa.Stories))
}

func TestRegistry_ClearRemovesOnlyThatModule(t *testing.T) {
	// --- Arrange ---
	r := New()
	require.NoError(t, r.AddStoriesFromExports("button", buttonExports()))
	require.NoError(t, r.AddStoriesFromExports("input", story.Exports{"Empty": story.Story{}}))

	// --- Act ---
	r.ClearFilenameExports("button")
	r.ClearFilenameExports("never-registered")
	pa, err := r.ProjectAnnotations()

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []story.ID{"input--empty"}, keys(pa.Stories))
	assert.Equal(t, []story.ModuleID{"input"}, r.Modules())
}

func TestRegistry_FoldIsUnionOfModules(t *testing.T) {
	// --- Arrange ---
	r := New()
	require.NoError(t, r.AddStoriesFromExports("a", story.Exports{"One": story.Story{}}))
	require.NoError(t, r.AddStoriesFromExports("b", story.Exports{"Two": story.Story{}, "Three": story.Story{}}))

	// --- Act ---
	pa, err := r.ProjectAnnotations()
	idx, idxErr := r.StoryIndex()

	// --- Assert ---
	require.NoError(t, err)
	require.NoError(t, idxErr)
	assert.Equal(t, []story.ID{"a--one", "b--three", "b--two"}, keys(pa.Stories))
	assert.Len(t, idx.Entries, 3)
	assert.Equal(t, story.ModuleID("b"), idx.Entries["b--two"].ImportPath)
}

func TestRegistry_ReadsReflectCurrentExports(t *testing.T) {
	// --- Arrange ---
	r := New()
	exports := story.Exports{"One": story.Story{}}
	require.NoError(t, r.AddStoriesFromExports("a", exports))

	// --- Act ---
	exports["Two"] = story.Story{}
	pa, err := r.ProjectAnnotations()

	// --- Assert ---
	require.NoError(t, err)
	assert.Len(t, pa.Stories, 2, "the fold runs on every read")
}

func TestRegistry_AddRejectsInvalidExports(t *testing.T) {
	// --- Arrange ---
	r := New()

	// --- Act ---
	err := r.AddStoriesFromExports("bad", story.Exports{story.DefaultExport: 42})

	// --- Assert ---
	require.Error(t, err)
	assert.Empty(t, r.Modules())
}

func TestRegistry_ProcessorOption(t *testing.T) {
	// --- Arrange ---
	var calls []story.ModuleID
	r := New(WithProcessor(func(id story.ModuleID, e story.Exports) (story.ModuleAnnotations, error) {
		calls = append(calls, id)
		return story.ProcessModule(id, e)
	}))

	// --- Act ---
	require.NoError(t, r.AddStoriesFromExports("a", story.Exports{"One": story.Story{}}))
	_, err := r.ProjectAnnotations()

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []story.ModuleID{"a", "a"}, calls)
}

func TestRegistry_DuplicateStoryIDAcrossModules(t *testing.T) {
	// --- Arrange ---
	r := New()
	require.NoError(t, r.AddStoriesFromExports("a.stories.hcl", story.Exports{
		story.DefaultExport: story.Meta{Title: "Same"}, "One": story.Story{},
	}))
	require.NoError(t, r.AddStoriesFromExports("b.stories.hcl", story.Exports{
		story.DefaultExport: story.Meta{Title: "Same"}, "One": story.Story{},
	}))

	// --- Act ---
	_, err := r.ProjectAnnotations()
	validateErr := r.Validate(context.Background())

	// --- Assert ---
	assert.ErrorContains(t, err, "duplicate story id")
	assert.ErrorContains(t, validateErr, "registry validation failed")
}

func TestRegistry_ParametersAndDecorators(t *testing.T) {
	// --- Arrange ---
	r := New()
	noop := func(ctx context.Context, next story.Fn, sc story.Context) (any, error) { return next(ctx, sc) }

	// --- Act ---
	r.AddParameters(map[string]any{"framework": "html", "layout": map[string]any{"pad": 1}})
	r.AddParameters(map[string]any{"framework": "text", "layout": map[string]any{"center": true}})
	r.AddDecorator(noop)
	r.RegisterDecorator("named", noop)
	pa, err := r.ProjectAnnotations()

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "text", pa.Parameters["framework"])
	assert.Equal(t, map[string]any{"pad": 1, "center": true}, pa.Parameters["layout"])
	assert.Len(t, pa.Decorators, 2)
	assert.Panics(t, func() { r.RegisterDecorator("named", noop) })
}

func TestRegistry_ImportFn(t *testing.T) {
	// --- Arrange ---
	r := New()
	exports := buttonExports()
	require.NoError(t, r.AddStoriesFromExports("button", exports))

	// --- Act ---
	got, err := r.ImportFn(context.Background(), "button")
	_, missingErr := r.ImportFn(context.Background(), "nope")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, exports, got)
	assert.True(t, errors.Is(missingErr, ErrModuleNotFound))
}

func TestRegistry_UnloadFiresHook(t *testing.T) {
	// --- Arrange ---
	r := New()
	require.NoError(t, r.AddStoriesFromExports("button", buttonExports()))
	var fired int
	r.SetOnImportFnChanged(func(ctx context.Context, importFn story.ImportFn) {
		fired++
		_, err := importFn(ctx, "button")
		assert.ErrorIs(t, err, ErrModuleNotFound)
	})

	// --- Act ---
	removed := r.Unload(context.Background(), "button")
	again := r.Unload(context.Background(), "button")

	// --- Assert ---
	assert.True(t, removed)
	assert.False(t, again)
	assert.Equal(t, 1, fired)
}

type paramAddon struct{}

func (paramAddon) Register(r *Registry) {
	r.AddParameters(map[string]any{"addon": true})
}

func TestRegistry_RegisterAddons(t *testing.T) {
	// --- Arrange ---
	r := New()

	// --- Act ---
	r.Register(paramAddon{})
	pa, err := r.ProjectAnnotations()

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, true, pa.Parameters["addon"])
}

func TestRegistry_LegacySurface(t *testing.T) {
	// --- Arrange ---
	r := New()
	require.NoError(t, r.AddStoriesFromExports("button", buttonExports()))

	// --- Act ---
	err := r.StoriesOf("Button")
	raw, rawErr := r.Raw()

	// --- Assert ---
	var removed *RemovedAPIError
	require.ErrorAs(t, err, &removed)
	assert.Equal(t, "client-api:storiesOf was removed in storyStoreV7", err.Error())
	require.NoError(t, rawErr)
	require.Len(t, raw, 2)
	assert.Equal(t, story.ID("button--primary"), raw[0].ID)
}

func keys(m map[story.ID]story.Annotation) []story.ID {
	return slices.Sorted(maps.Keys(m))
}

func TestRegistry_ApplyChangesIsAllOrNothing(t *testing.T) {
	// --- Arrange ---
	r := New()
	require.NoError(t, r.AddStoriesFromExports("c", story.Exports{"Three": story.Story{}}))

	// --- Act ---
	err := r.ApplyChanges(map[story.ModuleID]story.Exports{
		"a": {"One": story.Story{}},
		"b": {story.DefaultExport: 42},
		"d": {"Four": story.Story{}},
	}, []story.ModuleID{"c"})

	// --- Assert ---
	var modErr *ModuleError
	require.ErrorAs(t, err, &modErr)
	assert.Equal(t, story.ModuleID("b"), modErr.Module)
	assert.Equal(t, []story.ModuleID{"c"}, r.Modules(), "a failed apply leaves the table untouched")

	// --- Act: the same changes without the bad module ---
	require.NoError(t, r.ApplyChanges(map[story.ModuleID]story.Exports{
		"a": {"One": story.Story{}},
		"d": {"Four": story.Story{}},
	}, []story.ModuleID{"c", "missing"}))

	// --- Assert ---
	assert.Equal(t, []story.ModuleID{"a", "d"}, r.Modules())
}

func TestRegistry_LoggerOption(t *testing.T) {
	// --- Arrange ---
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := New(WithLogger(logger))

	// --- Act ---
	require.NoError(t, r.AddStoriesFromExports("a", story.Exports{"One": story.Story{}}))
	r.ClearFilenameExports("a")

	// --- Assert ---
	out := buf.String()
	assert.Contains(t, out, `"msg":"Registered story module."`)
	assert.Contains(t, out, `"msg":"Cleared story module."`)
	assert.Contains(t, out, `"component":"registry"`)
}
