package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/aria/internal/models"
)

// TrackCacheRepository persists deduplicated track rows keyed by
// (uri, playlist_name).
//
// An ingestion pass replaces the whole table; the engine caps the batch at
// the global limit before calling ReplaceAll.
type TrackCacheRepository struct {
	db *sql.DB
}

// NewTrackCacheRepository creates a new TrackCacheRepository with the given database connection
func NewTrackCacheRepository(db *sql.DB) *TrackCacheRepository {
	return &TrackCacheRepository{db: db}
}

// ReplaceAll swaps the entire track cache for the given rows in one
// transaction (clear-then-insert, not a merge).
func (r *TrackCacheRepository) ReplaceAll(rows []models.TrackCacheRow) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM track_cache"); err != nil {
		return fmt.Errorf("failed to clear track cache: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO track_cache (uri, playlist_name, title, artist, service, album_art, track_type, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		var art any
		if row.AlbumArt != "" {
			art = row.AlbumArt
		}
		if _, err := stmt.Exec(row.URI, row.PlaylistName, row.Title, row.Artist, row.Service, art, row.Type, row.LastUpdated); err != nil {
			return fmt.Errorf("failed to insert track %q: %w", row.URI, err)
		}
	}

	return tx.Commit()
}

// ListByPlaylist retrieves cached tracks for one playlist in insertion order.
func (r *TrackCacheRepository) ListByPlaylist(name string) ([]models.TrackCacheRow, error) {
	query := `
		SELECT uri, playlist_name, title, artist, service, album_art, track_type, last_updated
		FROM track_cache
		WHERE playlist_name = ?
		ORDER BY rowid ASC
	`
	return r.queryRows(query, name)
}

// ListAll retrieves every cached track in insertion order.
func (r *TrackCacheRepository) ListAll() ([]models.TrackCacheRow, error) {
	query := `
		SELECT uri, playlist_name, title, artist, service, album_art, track_type, last_updated
		FROM track_cache
		ORDER BY rowid ASC
	`
	return r.queryRows(query)
}

// CountAll returns the number of rows in the track cache.
func (r *TrackCacheRepository) CountAll() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM track_cache").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count track cache: %w", err)
	}
	return count, nil
}

func (r *TrackCacheRepository) queryRows(query string, args ...any) ([]models.TrackCacheRow, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query track cache: %w", err)
	}
	defer rows.Close()

	var result []models.TrackCacheRow
	for rows.Next() {
		var (
			row      models.TrackCacheRow
			albumArt sql.NullString
			updated  time.Time
		)
		if err := rows.Scan(&row.URI, &row.PlaylistName, &row.Title, &row.Artist, &row.Service, &albumArt, &row.Type, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan track row: %w", err)
		}
		row.AlbumArt = albumArt.String
		row.LastUpdated = updated
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return result, nil
}
