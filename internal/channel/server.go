package channel

import (
	"context"
	"net/http"

	"github.com/specialistvlad/previewgo/internal/ctxlog"
	"github.com/zishang520/socket.io/v2/socket"
)

// Server is the preview side of the socket.io bridge. Emit reaches local
// handlers and every connected host; events sent by hosts reach local
// handlers only.
type Server struct {
	local *Local
	io    *socket.Server
}

var _ Channel = (*Server)(nil)

// NewServer creates a socket.io server. Mount Handler on an HTTP mux to
// accept hosts.
func NewServer(ctx context.Context) *Server {
	logger := ctxlog.FromContext(ctx).With("component", "channel", "page", PagePreview)
	s := &Server{
		local: NewLocal(PagePreview),
		io:    socket.NewServer(nil, nil),
	}

	s.io.On("connection", func(clients ...any) {
		client, ok := clients[0].(*socket.Socket)
		if !ok {
			return
		}
		logger.Info("Host connected.", "sid", client.Id())

		client.OnAny(func(args ...any) {
			if len(args) == 0 {
				return
			}
			event, ok := args[0].(string)
			if !ok {
				return
			}
			logger.Debug("Event from host.", "sid", client.Id(), "event", event)
			s.local.dispatch(event, args[1:]...)
		})
		client.On("disconnect", func(reason ...any) {
			logger.Info("Host disconnected.", "sid", client.Id(), "reason", reason)
		})
	})
	return s
}

// Handler serves the socket.io endpoint, by default under /socket.io/.
func (s *Server) Handler() http.Handler {
	return s.io.ServeHandler(nil)
}

// Emit implements Channel.
func (s *Server) Emit(event string, args ...any) error {
	if err := s.local.Emit(event, args...); err != nil {
		return err
	}
	s.io.Emit(event, args...)
	return nil
}

// On implements Channel.
func (s *Server) On(event string, h Handler) {
	s.local.On(event, h)
}

// Page implements Channel.
func (s *Server) Page() string {
	return PagePreview
}

// Close disconnects every host and stops the engine.
func (s *Server) Close() error {
	_ = s.local.Close()
	done := make(chan error, 1)
	s.io.Close(func(err error) { done <- err })
	return <-done
}
