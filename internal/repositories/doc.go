// Package repositories implements SQLite persistence for the playlist and
// track caches.
//
// Key Implementations:
//   - [PlaylistCacheRepository] : playlist metadata, fully replaced on each listing refresh
//   - [TrackCacheRepository] : deduplicated track rows keyed by (uri, playlist_name)
//
// Both caches are written only by the library sync engine. Replacement is
// clear-then-insert inside a transaction rather than incremental merge, so a
// partially failed refresh never leaves a mixed generation behind. The
// global 200-row track cap is enforced by the engine before writing.
package repositories
