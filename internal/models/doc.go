// Package models holds the value types shared across the sync core.
//
// [Track] and [Playlist] are the in-memory library aggregates; [PlayerState]
// mirrors the authoritative playback push; [PlaylistCacheRow] and
// [TrackCacheRow] are the persisted cache shapes handled by the
// repositories package.
package models
