package socket

import (
	"context"
	"fmt"
	"sync"

	"github.com/coder/websocket"
)

// Transport abstracts the raw frame channel to the player so the connection
// manager can be exercised against fakes in tests.
type Transport interface {
	// Dial establishes the underlying connection.
	Dial(ctx context.Context, url string) error

	// Read blocks until the next frame arrives or the transport fails.
	Read(ctx context.Context) ([]byte, error)

	// Write sends a single frame.
	Write(ctx context.Context, data []byte) error

	// Close tears the connection down.
	Close() error

	// Connected reports the transport's own view of connectivity.
	Connected() bool
}

// WSTransport implements Transport over a websocket connection.
type WSTransport struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

// NewWSTransport creates an unconnected websocket transport.
func NewWSTransport() *WSTransport {
	return &WSTransport{}
}

// Dial connects to the player's websocket endpoint.
func (t *WSTransport) Dial(ctx context.Context, url string) error {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("websocket dial failed: %w", err)
	}

	t.mu.Lock()
	t.conn = conn
	t.connected = true
	t.mu.Unlock()
	return nil
}

// Read blocks until the next text frame arrives.
func (t *WSTransport) Read(ctx context.Context) ([]byte, error) {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()

	if conn == nil {
		return nil, fmt.Errorf("transport not connected")
	}

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.mu.Lock()
		t.connected = false
		t.mu.Unlock()
		return nil, err
	}
	return data, nil
}

// Write sends a single text frame.
func (t *WSTransport) Write(ctx context.Context, data []byte) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("transport not connected")
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

// Close tears the websocket down.
func (t *WSTransport) Close() error {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.connected = false
	t.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close(websocket.StatusNormalClosure, "")
}

// Connected reports whether the websocket is believed healthy.
func (t *WSTransport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}
