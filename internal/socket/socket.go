package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/aria/internal/shared"
)

// ConnState enumerates the connection lifecycle.
type ConnState int

const (
	Disconnected ConnState = iota
	Connecting
	Connected
)

func (s ConnState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Handler receives messages for a subscribed event.
type Handler func(Message)

// waiter is a one-shot, id-correlated response slot. Waiters for the same
// event resolve in FIFO order: the oldest outstanding request receives the
// next occurrence of its mapped push event.
type waiter struct {
	id string
	ch chan Message
}

// Options configures a [Conn].
type Options struct {
	URL       string
	Transport Transport
	Logger    *log.Logger

	// RetryAttempts bounds Reconnect (default 5).
	RetryAttempts int
	// RetryInterval spaces reconnect attempts (default 2s).
	RetryInterval time.Duration
	// WriteTimeout bounds a single frame write (default 5s).
	WriteTimeout time.Duration
}

// Conn owns the single push/pull channel to the player. It fans incoming
// events out to durable subscribers and resolves one-shot request waiters;
// all registry mutation is mutex-guarded so subscription and dispatch are
// race-free.
type Conn struct {
	url           string
	transport     Transport
	logger        *log.Logger
	retryAttempts int
	retryInterval time.Duration
	writeTimeout  time.Duration

	mu          sync.Mutex
	writeMu     sync.Mutex
	state       ConnState
	initialized bool
	connected   bool
	subscribers map[string][]Handler
	waiters     map[string][]*waiter
	dispatch    chan Message
	loopCtx     context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// NewConn creates a connection manager. Initialize must be called before use.
func NewConn(opts Options) *Conn {
	if opts.Transport == nil {
		opts.Transport = NewWSTransport()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = 5
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 2 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	return &Conn{
		url:           opts.URL,
		transport:     opts.Transport,
		logger:        opts.Logger.With("component", "socket"),
		retryAttempts: opts.RetryAttempts,
		retryInterval: opts.RetryInterval,
		writeTimeout:  opts.WriteTimeout,
		subscribers:   make(map[string][]Handler),
		waiters:       make(map[string][]*waiter),
	}
}

// State returns the current lifecycle state.
func (c *Conn) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsConnected is true only when both the logical flag and the transport's own
// connected flag agree.
func (c *Conn) IsConnected() bool {
	c.mu.Lock()
	connected := c.connected
	c.mu.Unlock()
	return connected && c.transport.Connected()
}

// Initialize dials the player and starts the read and dispatch loops.
// It is idempotent: calling it on an initialized connection is a no-op.
func (c *Conn) Initialize(ctx context.Context) error {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return nil
	}
	c.state = Connecting
	c.mu.Unlock()

	loopCtx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.loopCtx = loopCtx
	c.cancel = cancel
	c.dispatch = make(chan Message, 64)
	c.mu.Unlock()

	c.wg.Add(1)
	go c.dispatchLoop(loopCtx)

	if err := c.dial(ctx, loopCtx); err != nil {
		c.mu.Lock()
		c.state = Disconnected
		c.initialized = true
		c.mu.Unlock()
		c.logger.Warn("initial connect failed", "err", err)
		return err
	}

	c.mu.Lock()
	c.initialized = true
	c.mu.Unlock()
	return nil
}

// dial connects the transport and starts a fresh read loop on success.
func (c *Conn) dial(ctx, loopCtx context.Context) error {
	if err := c.transport.Dial(ctx, c.url); err != nil {
		return err
	}

	c.mu.Lock()
	c.connected = true
	c.state = Connected
	c.mu.Unlock()

	c.wg.Add(1)
	go c.readLoop(loopCtx)

	c.logger.Info("connected", "url", c.url)
	return nil
}

// Emit sends a fire-and-forget command. When disconnected the command is
// dropped: it logs, returns [shared.ErrNotConnected], and leaves fallback to
// the caller.
func (c *Conn) Emit(command string, payload any) error {
	if !c.IsConnected() {
		c.logger.Warn("dropping command while disconnected", "command", command)
		return shared.ErrNotConnected
	}

	msg, err := NewMessage(command, payload)
	if err != nil {
		return err
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.writeTimeout)
	defer cancel()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.transport.Write(ctx, data); err != nil {
		c.markDisconnected()
		return fmt.Errorf("%w: write failed: %v", shared.ErrNotConnected, err)
	}
	return nil
}

// Request emits a command and waits for the next occurrence of its mapped
// push event, correlated through an id-tagged FIFO waiter resolved directly
// by the dispatch path. The wait is bounded by ctx; on timeout the waiter is
// withdrawn and [shared.ErrResponseTimeout] returned.
func (c *Conn) Request(ctx context.Context, command string, payload any) (Message, error) {
	event, ok := PushEventFor(command)
	if !ok {
		return Message{}, fmt.Errorf("%w: no push event mapped for command %q", shared.ErrInvalidInput, command)
	}

	w := &waiter{id: shared.GenerateID(), ch: make(chan Message, 1)}

	c.mu.Lock()
	c.waiters[event] = append(c.waiters[event], w)
	c.mu.Unlock()

	if err := c.Emit(command, payload); err != nil {
		c.removeWaiter(event, w.id)
		return Message{}, err
	}

	select {
	case msg, ok := <-w.ch:
		if !ok {
			return Message{}, shared.ErrNotConnected
		}
		return msg, nil
	case <-ctx.Done():
		c.removeWaiter(event, w.id)
		return Message{}, fmt.Errorf("%w: no %s within deadline", shared.ErrResponseTimeout, event)
	}
}

// On registers a durable subscriber. All subscribers for an event are
// invoked in registration order, once per received message.
func (c *Conn) On(event string, handler Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers[event] = append(c.subscribers[event], handler)
}

// Reconnect attempts to re-establish the connection, retrying up to the
// configured attempt budget with fixed spacing and stopping early on the
// first success. Exhausting the budget is reported but non-fatal; a later
// Reconnect call starts a fresh budget.
func (c *Conn) Reconnect(ctx context.Context) error {
	if c.IsConnected() {
		return nil
	}

	c.mu.Lock()
	if !c.initialized || c.loopCtx == nil {
		c.mu.Unlock()
		return shared.ErrAlreadyClosed
	}
	c.state = Connecting
	loopCtx := c.loopCtx
	c.mu.Unlock()

	for attempt := 1; attempt <= c.retryAttempts; attempt++ {
		err := c.dial(ctx, loopCtx)
		if err == nil {
			return nil
		}
		c.logger.Warn("reconnect attempt failed", "attempt", attempt, "err", err)

		if attempt == c.retryAttempts {
			break
		}
		select {
		case <-time.After(c.retryInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	c.mu.Lock()
	c.state = Disconnected
	c.mu.Unlock()
	c.logger.Warn("reconnect gave up", "attempts", c.retryAttempts)
	return fmt.Errorf("%w: gave up after %d attempts", shared.ErrNotConnected, c.retryAttempts)
}

// Disconnect tears down the transport, clears all subscribers and pending
// waiters, and resets the lifecycle flags.
func (c *Conn) Disconnect() {
	c.mu.Lock()
	if !c.initialized {
		c.mu.Unlock()
		return
	}
	cancel := c.cancel
	c.cancel = nil
	c.initialized = false
	c.connected = false
	c.state = Disconnected
	c.subscribers = make(map[string][]Handler)
	for event, ws := range c.waiters {
		for _, w := range ws {
			close(w.ch)
		}
		delete(c.waiters, event)
	}
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if err := c.transport.Close(); err != nil {
		c.logger.Debug("transport close", "err", err)
	}
	c.wg.Wait()
	c.logger.Info("disconnected")
}

// readLoop pulls raw frames off the transport until it fails or the
// connection is torn down. Runs on the I/O context; delivery happens on the
// dispatch goroutine.
func (c *Conn) readLoop(ctx context.Context) {
	defer c.wg.Done()

	for {
		data, err := c.transport.Read(ctx)
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Warn("transport read failed", "err", err)
				c.markDisconnected()
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("ignoring malformed frame", "err", err)
			continue
		}
		if msg.Event == "" {
			c.logger.Warn("ignoring frame without event name")
			continue
		}

		select {
		case c.dispatch <- msg:
		case <-ctx.Done():
			return
		}
	}
}

// dispatchLoop delivers messages to waiters and subscribers in arrival
// order. Events of the same name reach subscribers in the order received; no
// ordering holds across different event names.
func (c *Conn) dispatchLoop(ctx context.Context) {
	defer c.wg.Done()

	for {
		var msg Message
		select {
		case msg = <-c.dispatch:
		case <-ctx.Done():
			return
		}

		c.mu.Lock()
		var w *waiter
		if ws := c.waiters[msg.Event]; len(ws) > 0 {
			w = ws[0]
			c.waiters[msg.Event] = ws[1:]
		}
		handlers := append([]Handler(nil), c.subscribers[msg.Event]...)
		c.mu.Unlock()

		if w != nil {
			w.ch <- msg
		}
		for _, handler := range handlers {
			handler(msg)
		}
	}
}

func (c *Conn) removeWaiter(event, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ws := c.waiters[event]
	for i, w := range ws {
		if w.id == id {
			c.waiters[event] = append(ws[:i], ws[i+1:]...)
			return
		}
	}
}

func (c *Conn) markDisconnected() {
	c.mu.Lock()
	c.connected = false
	c.state = Disconnected
	c.mu.Unlock()
}
