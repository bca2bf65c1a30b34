// Package services provides the REST fallback client for the player's HTTP
// API.
//
// The socket connection is the primary transport for commands and state; the
// [PlayerAPIClient] covers the gaps: checking reachability before dialing,
// reading state when the socket is down, and firing simple playback commands
// from scripts. Requests are rate limited client-side.
//
// # Error Handling
//
// Failed requests and non-200 responses wrap [shared.ErrAPIRequest] so
// callers can distinguish transport failures from parse errors.
package services
