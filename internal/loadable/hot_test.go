package loadable

import (
	"testing"

	"github.com/specialistvlad/previewgo/internal/story"
	"github.com/stretchr/testify/assert"
)

func TestHot_SwapRunsDisposersInOrder(t *testing.T) {
	hot := NewHot()
	var calls []string

	hot.Dispose(func(data map[string]any) {
		calls = append(calls, "first")
		data["value"] = 1
	})
	hot.Dispose(func(data map[string]any) {
		calls = append(calls, "second")
		data["value"] = data["value"].(int) + 1
	})

	assert.Empty(t, hot.Data())
	hot.Swap()

	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, map[string]any{"value": 2}, hot.Data())

	// Handlers only run once.
	hot.Swap()
	assert.Len(t, calls, 2)
	assert.Empty(t, hot.Data())
	assert.Equal(t, 2, hot.Generation())
}

func TestHot_SwapCarriesAcceptedRevisions(t *testing.T) {
	hot := NewHot()
	hot.Dispose(func(data map[string]any) {
		data[previousKey] = map[story.ModuleID]string{"a": "r1"}
	})
	hot.Swap()

	// No handler registered this cycle.
	hot.Swap()
	assert.Equal(t, map[story.ModuleID]struct{}{"a": {}}, hot.Accepted())

	hot.Dispose(func(data map[string]any) {
		data[previousKey] = map[story.ModuleID]string{"b": "r1"}
	})
	hot.Swap()
	assert.Equal(t, map[story.ModuleID]struct{}{"b": {}}, hot.Accepted())
}
