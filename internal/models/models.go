// package models defines the data model for the player synchronization core
package models

import (
	"strings"
	"time"
)

// TrackTypeSong identifies entries that can be queued and played directly.
const TrackTypeSong = "song"

// Track is an immutable description of a single playable item.
// Identity is the remote URI.
type Track struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	URI      string `json:"uri"`
	Service  string `json:"service"`
	AlbumArt string `json:"albumart,omitempty"`
	Type     string `json:"type"`
}

// Playable reports whether the track can be added to a playlist or queue.
func (t Track) Playable() bool {
	return t.Type == TrackTypeSong && t.URI != ""
}

// Key returns the track's deduplication identity (its URI).
func (t Track) Key() string {
	return t.URI
}

// Playlist is the in-memory aggregate of a named playlist. Tracks may be
// partially populated and are lazily filled on first expand.
type Playlist struct {
	Name   string  `json:"name"`
	Tracks []Track `json:"tracks,omitempty"`
}

// ContainsURI reports whether the playlist already holds a track with the given URI.
func (p *Playlist) ContainsURI(uri string) bool {
	for _, t := range p.Tracks {
		if t.URI == uri {
			return true
		}
	}
	return false
}

// RemoveURI drops the first track with the given URI, returning true when a
// track was removed.
func (p *Playlist) RemoveURI(uri string) bool {
	for i, t := range p.Tracks {
		if t.URI == uri {
			p.Tracks = append(p.Tracks[:i], p.Tracks[i+1:]...)
			return true
		}
	}
	return false
}

// PlayerState mirrors the authoritative playback state pushed by the remote
// player, plus the locally advancing position clock.
type PlayerState struct {
	Status   string  `json:"status"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Position float64 `json:"seek"`     // seconds
	Duration float64 `json:"duration"` // seconds
	URI      string  `json:"uri"`
	AlbumArt string  `json:"albumart,omitempty"`
	Service  string  `json:"service,omitempty"`
}

// Playing reports whether the player status indicates active playback.
func (s PlayerState) Playing() bool {
	return strings.EqualFold(s.Status, "play")
}

// PlaylistCacheRow is the persisted metadata row for a playlist.
// The set is fully replaced on each listing refresh.
type PlaylistCacheRow struct {
	Name        string
	LastUpdated time.Time
	LastFetched time.Time
	ContentHash string // reserved for change detection, no read path yet
	IsEmpty     bool
}

// TrackCacheRow is the persisted row for a cached track, keyed by
// (uri, playlist_name).
type TrackCacheRow struct {
	URI          string
	PlaylistName string
	Title        string
	Artist       string
	Service      string
	AlbumArt     string
	Type         string
	LastUpdated  time.Time
}

// RowFromTrack builds a TrackCacheRow for a track fetched under a playlist.
func RowFromTrack(t Track, playlistName string, at time.Time) TrackCacheRow {
	return TrackCacheRow{
		URI:          t.URI,
		PlaylistName: playlistName,
		Title:        t.Title,
		Artist:       t.Artist,
		Service:      t.Service,
		AlbumArt:     t.AlbumArt,
		Type:         t.Type,
		LastUpdated:  at,
	}
}

// TrackFromRow converts a cached row back into a Track for redisplay.
func TrackFromRow(r TrackCacheRow) Track {
	return Track{
		Title:    r.Title,
		Artist:   r.Artist,
		URI:      r.URI,
		Service:  r.Service,
		AlbumArt: r.AlbumArt,
		Type:     r.Type,
	}
}
