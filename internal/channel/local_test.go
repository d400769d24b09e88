package channel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_EmitReachesHandlersInOrder(t *testing.T) {
	// --- Arrange ---
	ch := NewLocal(PagePreview)
	var got []string
	ch.On(EventForceReRender, func(args ...any) { got = append(got, "first") })
	ch.On(EventForceReRender, func(args ...any) { got = append(got, "second") })
	ch.On(EventSetIndex, func(args ...any) { got = append(got, "other") })

	// --- Act ---
	err := ch.Emit(EventForceReRender)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, got)
	assert.Equal(t, PagePreview, ch.Page())
}

func TestLocal_PayloadIsPassedThrough(t *testing.T) {
	// --- Arrange ---
	ch := NewLocal(PageManager)
	var payload []any
	ch.On(EventSetCurrentStory, func(args ...any) { payload = args })

	// --- Act ---
	require.NoError(t, ch.Emit(EventSetCurrentStory, "button--primary", 2))

	// --- Assert ---
	assert.Equal(t, []any{"button--primary", 2}, payload)
}

func TestLocal_PanickingHandlerIsIsolated(t *testing.T) {
	// --- Arrange ---
	ch := NewLocal(PagePreview)
	called := false
	ch.On(EventStoryRendered, func(args ...any) { panic("boom") })
	ch.On(EventStoryRendered, func(args ...any) { called = true })

	// --- Act & Assert ---
	assert.NotPanics(t, func() { _ = ch.Emit(EventStoryRendered) })
	assert.True(t, called)
}

func TestLocal_EmitAfterClose(t *testing.T) {
	// --- Arrange ---
	ch := NewLocal(PagePreview)
	called := false
	ch.On(EventStoryRendered, func(args ...any) { called = true })

	// --- Act ---
	require.NoError(t, ch.Close())
	err := ch.Emit(EventStoryRendered)

	// --- Assert ---
	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, called)
}

func TestServer_EmitLoopsBackLocally(t *testing.T) {
	// --- Arrange ---
	srv := NewServer(context.Background())
	defer srv.Close()
	var got []any
	srv.On(EventForceReRender, func(args ...any) { got = append(got, "local") })

	// --- Act ---
	err := srv.Emit(EventForceReRender)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []any{"local"}, got)
	assert.Equal(t, PagePreview, srv.Page())
	assert.NotNil(t, srv.Handler())
}
