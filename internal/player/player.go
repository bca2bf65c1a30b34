package player

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/aria/internal/models"
	"github.com/desertthunder/aria/internal/shared"
	"github.com/desertthunder/aria/internal/socket"
)

// Connection is the slice of the socket layer the engine needs. *socket.Conn
// satisfies it; tests substitute fakes.
type Connection interface {
	Emit(command string, payload any) error
	On(event string, handler socket.Handler)
	IsConnected() bool
	Reconnect(ctx context.Context) error
}

// Options configures an [Engine]. Durations default to production values;
// tests shrink them.
type Options struct {
	Conn   Connection
	Logger *log.Logger

	// TickInterval is the local clock advance period (default 200ms).
	TickInterval time.Duration
	// StaleCheckEvery is the staleness probe period (default 5s).
	StaleCheckEvery time.Duration
	// StaleAfter is how long without an authoritative push counts as stale
	// (default 10s).
	StaleAfter time.Duration
	// RetryDelay spaces the post-reconnect state re-requests (default 800ms).
	RetryDelay time.Duration
	// RetryAttempts bounds the post-reconnect re-request loop (default 3).
	RetryAttempts int
}

// Engine reconciles authoritative pushState messages with a locally ticking
// position clock and repairs staleness.
type Engine struct {
	conn            Connection
	logger          *log.Logger
	tickInterval    time.Duration
	staleCheckEvery time.Duration
	staleAfter      time.Duration
	retryDelay      time.Duration
	retryAttempts   int

	mu         sync.Mutex
	state      models.PlayerState
	ready      bool
	lastPush   time.Time
	tickCancel context.CancelFunc
	closed     bool
	wg         sync.WaitGroup
}

// New creates a state sync engine. Call [Engine.Start] to begin consuming
// pushes.
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = 200 * time.Millisecond
	}
	if opts.StaleCheckEvery <= 0 {
		opts.StaleCheckEvery = 5 * time.Second
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = 10 * time.Second
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 800 * time.Millisecond
	}
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = 3
	}

	return &Engine{
		conn:            opts.Conn,
		logger:          opts.Logger.With("component", "player"),
		tickInterval:    opts.TickInterval,
		staleCheckEvery: opts.StaleCheckEvery,
		staleAfter:      opts.StaleAfter,
		retryDelay:      opts.RetryDelay,
		retryAttempts:   opts.RetryAttempts,
	}
}

// Start subscribes the engine to authoritative state pushes.
func (e *Engine) Start() {
	e.conn.On(socket.EventPushState, e.HandlePush)
}

// HandlePush applies an authoritative state push. Parse failures set an
// error status and mark the player not ready without propagating; the
// ticking task restarts on every push so ticking always reflects the
// freshest state.
func (e *Engine) HandlePush(msg socket.Message) {
	state, err := socket.DecodeState(msg)

	e.mu.Lock()
	if err != nil {
		e.state.Status = "error: unreadable state"
		e.ready = false
		e.logger.Warn("discarding state push", "err", err)
	} else {
		e.state = state
		e.ready = state.URI != ""
		e.lastPush = time.Now()
	}

	cancel := e.tickCancel
	e.tickCancel = nil

	shouldTick := err == nil && !e.closed && e.ready && e.state.Playing()
	var ctx context.Context
	if shouldTick {
		ctx, e.tickCancel = context.WithCancel(context.Background())
	}
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if shouldTick {
		e.wg.Add(1)
		go e.run(ctx)
	}
}

// Snapshot returns the current state and whether a playable track is loaded.
func (e *Engine) Snapshot() (models.PlayerState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, e.ready
}

// LastPush returns the timestamp of the most recent authoritative push.
func (e *Engine) LastPush() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastPush
}

// Close cancels the ticking task and stops the engine.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	cancel := e.tickCancel
	e.tickCancel = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	e.wg.Wait()
}

// run is the cooperative ticking task: it advances the local position clock
// each tick and probes for staleness on a slower cadence. Active only while
// playing and ready; cancelled on every fresh push and on Close.
func (e *Engine) run(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()
	stale := time.NewTicker(e.staleCheckEvery)
	defer stale.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.advance()
		case <-stale.C:
			e.checkStale(ctx)
		}
	}
}

// advance moves the local position clock forward one tick, clamped to the
// track duration.
func (e *Engine) advance() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.ready || !e.state.Playing() {
		return
	}
	e.state.Position += e.tickInterval.Seconds()
	if e.state.Duration > 0 && e.state.Position > e.state.Duration {
		e.state.Position = e.state.Duration
	}
}

// checkStale re-requests state when no authoritative push arrived within the
// staleness window. While connected that is a single direct request per
// probe; while disconnected it reconnects and then re-requests on a bounded
// fixed cadence, stopping at the first success.
func (e *Engine) checkStale(ctx context.Context) {
	e.mu.Lock()
	elapsed := time.Since(e.lastPush)
	e.mu.Unlock()

	if elapsed <= e.staleAfter {
		return
	}

	if e.conn.IsConnected() {
		e.logger.Debug("state stale, re-requesting", "elapsed", elapsed)
		if err := e.conn.Emit(socket.CmdGetState, nil); err != nil {
			e.logger.Warn("state re-request failed", "err", err)
		}
		return
	}

	e.logger.Warn("state stale while disconnected, reconnecting", "elapsed", elapsed)
	if err := e.conn.Reconnect(ctx); err != nil {
		e.logger.Warn("reconnect failed", "err", err)
	}

	for attempt := 1; attempt <= e.retryAttempts; attempt++ {
		if e.conn.IsConnected() {
			if err := e.conn.Emit(socket.CmdGetState, nil); err == nil {
				return
			}
		}
		if attempt == e.retryAttempts {
			return
		}
		select {
		case <-time.After(e.retryDelay):
		case <-ctx.Done():
			return
		}
	}
}
