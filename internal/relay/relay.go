// Package relay forwards lifecycle diagnostics to a remote console over
// socket.io.
package relay

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/lamphost/internal/ctxlog"
	"github.com/vk/lamphost/internal/lifecycle"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Event is the socket.io event every diagnostic is emitted as.
const Event = "diagnostic"

// DefaultConnectTimeout bounds how long Connect waits for the handshake.
const DefaultConnectTimeout = 15 * time.Second

// Config selects the remote endpoint. An empty URL disables the relay.
type Config struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// emitter is the part of *socket.Socket the client uses.
type emitter interface {
	Emit(ev string, args ...any) error
}

// Client is a lifecycle.Reporter that emits diagnostics to the remote
// console. The zero value is a disabled client.
type Client struct {
	io    emitter
	close func()
}

var _ lifecycle.Reporter = (*Client)(nil)

// Connect dials the console described by cfg and waits for the handshake.
// With an empty URL it returns a disabled client and no error.
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return &Client{}, nil
	}
	logger := ctxlog.FromContext(ctx).With("component", "relay", "url", cfg.URL)
	logger.Info("Connecting diagnostics relay...")

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse relay URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("relay URL %q must include scheme and host", cfg.URL)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	connected := make(handshake, 1)
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace(cfg.Namespace), opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Diagnostics relay connected.", "sid", io.Id())
		connected.done(nil)
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err, _ := first(errs).(error)
		if err == nil {
			err = fmt.Errorf("connect_error: %v", first(errs))
		}
		connected.done(err)
	})

	io.Connect()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("relay connection failed: %w", err)
		}
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for relay connection")
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for relay connection", timeout)
	}

	return &Client{io: io, close: func() { io.Disconnect() }}, nil
}

// handshake carries the first connect outcome to Connect. Later outcomes,
// such as a reconnect after connect_error, are dropped so the socket's event
// loop never blocks on a channel nobody reads.
type handshake chan error

func (h handshake) done(err error) {
	select {
	case h <- err:
	default:
	}
}

// Enabled reports whether the client forwards anything.
func (c *Client) Enabled() bool {
	return c != nil && c.io != nil
}

// Report emits d. Emission failures are logged and otherwise ignored.
func (c *Client) Report(ctx context.Context, d lifecycle.Diagnostic) {
	if !c.Enabled() {
		return
	}
	if err := c.io.Emit(Event, Payload(d)); err != nil {
		ctxlog.FromContext(ctx).Debug("Failed to relay diagnostic.", "kind", string(d.Kind), "error", err)
	}
}

// Close disconnects from the console. It is safe on a disabled client.
func (c *Client) Close() {
	if c == nil || c.close == nil {
		return
	}
	c.close()
	c.close = nil
	c.io = nil
}

// Payload renders d as the JSON-friendly map sent over the wire.
func Payload(d lifecycle.Diagnostic) map[string]any {
	p := map[string]any{
		"kind":    string(d.Kind),
		"level":   d.Level.String(),
		"message": d.Message,
	}
	if d.Plugin != "" {
		p["plugin"] = d.Plugin
		p["version"] = d.Version
	}
	if d.Dependency != "" {
		p["dependency"] = d.Dependency
	}
	if len(d.Path) > 0 {
		p["path"] = d.Path
	}
	if d.Err != nil {
		p["error"] = d.Err.Error()
	}
	return p
}

func namespace(ns string) string {
	if ns == "" {
		return "/"
	}
	return ns
}

func first(args []any) any {
	if len(args) == 0 {
		return nil
	}
	return args[0]
}
