package channel

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/previewgo/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultDialTimeout bounds how long Dial waits for the connection.
const DefaultDialTimeout = 15 * time.Second

// DialOptions configures Dial.
type DialOptions struct {
	Namespace          string
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// Remote is the host side of the socket.io bridge.
type Remote struct {
	local *Local
	io    *socket.Socket
}

var _ Channel = (*Remote)(nil)

// Dial connects to a preview's socket.io endpoint, e.g.
// "http://localhost:6006/socket.io/".
func Dial(ctx context.Context, rawURL string, o DialOptions) (*Remote, error) {
	logger := ctxlog.FromContext(ctx).With("component", "channel", "page", PageManager, "url", rawURL)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if o.Namespace == "" {
		o.Namespace = "/"
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultDialTimeout
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		opts.SetPath(parsedURL.Path)
	}
	if o.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(o.Namespace, opts)

	r := &Remote{local: NewLocal(PageManager), io: io}
	io.OnAny(func(args ...any) {
		if len(args) == 0 {
			return
		}
		if event, ok := args[0].(string); ok {
			r.local.dispatch(event, args[1:]...)
		}
	})

	connectChan := make(chan error, 1)
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		connectChan <- err
	})

	logger.Debug("Initiating connection...")
	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return r, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(o.Timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %v waiting for socket.io connection", o.Timeout)
	}
}

// Emit sends event to the preview. Local handlers are not called.
func (r *Remote) Emit(event string, args ...any) error {
	return r.io.Emit(event, args...)
}

// On implements Channel for events sent by the preview.
func (r *Remote) On(event string, h Handler) {
	r.local.On(event, h)
}

// OnAny registers h for every event sent by the preview. The event name is
// passed as the first argument.
func (r *Remote) OnAny(h Handler) {
	r.io.OnAny(func(args ...any) { h(args...) })
}

// Page implements Channel.
func (r *Remote) Page() string {
	return PageManager
}

// Close disconnects from the preview.
func (r *Remote) Close() error {
	_ = r.local.Close()
	r.io.Disconnect()
	return nil
}
