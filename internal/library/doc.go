// Package library keeps the local playlist/track cache in sync with the
// player and runs the AI-assisted generation workflow.
//
// # Listing and Ingestion
//
// A listing push names playlists oldest first; the engine reverses it,
// derives synthetic lastUpdated timestamps that preserve newest-first order,
// replaces the playlist cache wholesale, then fetches each playlist's
// tracks. Ingestion deduplicates by uri (first occurrence in fetch order
// wins), stops issuing browse requests once 200 unique tracks have
// accumulated, truncates the final batch to exactly 200, and replaces the
// whole track cache rather than merging.
//
// # Mutations
//
// Playlist mutations are fire-and-forget commands with optimistic local
// updates; confirmation pushes reconcile by re-fetching the affected
// playlist.
//
// # Generation
//
// [Engine.Generate] interleaves text-generator calls with player searches:
// name the playlist (default on failure), create and verify it (warning
// only when absent), parse "Artist - Title" candidates, then for each
// candidate search and add at most one playable, unseen track subject to
// the per-artist cap, stopping once the requested count is reached. One run
// at a time; cancellation is honored between candidates.
package library
