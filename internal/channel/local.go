package channel

import (
	"log/slog"
	"sync"
)

// Local is an in-process bus. Emit calls handlers synchronously in
// registration order.
type Local struct {
	page string

	mu       sync.RWMutex
	handlers map[string][]Handler
	closed   bool
}

var _ Channel = (*Local)(nil)

// NewLocal returns an open bus tagged with page.
func NewLocal(page string) *Local {
	return &Local{page: page, handlers: make(map[string][]Handler)}
}

// Emit implements Channel.
func (l *Local) Emit(event string, args ...any) error {
	l.mu.RLock()
	if l.closed {
		l.mu.RUnlock()
		return ErrClosed
	}
	l.mu.RUnlock()

	l.dispatch(event, args...)
	return nil
}

// On implements Channel.
func (l *Local) On(event string, h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[event] = append(l.handlers[event], h)
}

// Page implements Channel.
func (l *Local) Page() string {
	return l.page
}

// Close implements Channel. Handlers are dropped.
func (l *Local) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.handlers = make(map[string][]Handler)
	return nil
}

func (l *Local) dispatch(event string, args ...any) {
	l.mu.RLock()
	handlers := append([]Handler(nil), l.handlers[event]...)
	l.mu.RUnlock()

	for _, h := range handlers {
		l.call(event, h, args)
	}
}

// call isolates a panicking handler from the emitter.
func (l *Local) call(event string, h Handler, args []any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Channel handler panicked.", "event", event, "page", l.page, "panic", r)
		}
	}()
	h(args...)
}
