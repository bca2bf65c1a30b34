// Package socket owns the single push/pull channel to the remote player.
//
// # Connection Lifecycle
//
// [Conn] moves through Disconnected → Connecting → Connected. Transport
// errors drop it back to Disconnected; [Conn.Reconnect] retries with a
// bounded budget (5 attempts, 2s spacing) and gives up non-fatally.
//
// # Commands and Pushes
//
// The player never replies to a request directly. Every command that has a
// response is answered by a named push event ([PushEventFor] holds the
// static mapping), so [Conn.Request] registers a one-shot waiter on the
// mapped event before emitting. Waiters are id-tagged and resolve in FIFO
// order per event name, so concurrent requests for the same event resolve
// oldest-first without any change to the wire format.
//
// [Conn.Emit] is fire-and-forget: while disconnected it logs, drops the
// command, and returns [shared.ErrNotConnected] so callers can fall back to
// the REST API.
//
// # Scheduling
//
// Raw frames are read on an I/O goroutine and handed to a single dispatch
// goroutine that resolves waiters and invokes durable subscribers in
// registration order. Subscriber callbacks therefore never run on the
// goroutine that reads the transport.
package socket
