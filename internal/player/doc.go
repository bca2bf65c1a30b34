// Package player keeps a local mirror of the remote playback state.
//
// The [Engine] treats pushState messages as authoritative and advances a
// local position clock between pushes (0.2s every 200ms, clamped to the
// track duration). A slower probe detects staleness: more than 10s without
// a push triggers a direct re-request while connected, or a bounded
// reconnect-then-retry sequence (3 attempts, 800ms apart) while
// disconnected.
package player
