package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/aria/internal/models"
	"github.com/desertthunder/aria/internal/shared"
)

// PlaylistCacheRepository persists playlist metadata rows.
//
// The row set is re-derivable from the latest listing push, so writes always
// replace the whole table.
type PlaylistCacheRepository struct {
	db *sql.DB
}

// NewPlaylistCacheRepository creates a new PlaylistCacheRepository with the given database connection
func NewPlaylistCacheRepository(db *sql.DB) *PlaylistCacheRepository {
	return &PlaylistCacheRepository{db: db}
}

// ReplaceAll swaps the entire playlist cache for the given rows in one
// transaction.
func (r *PlaylistCacheRepository) ReplaceAll(rows []models.PlaylistCacheRow) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM playlist_cache"); err != nil {
		return fmt.Errorf("failed to clear playlist cache: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO playlist_cache (name, last_updated, last_fetched, content_hash, is_empty)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		var fetched any
		if !row.LastFetched.IsZero() {
			fetched = row.LastFetched
		}
		var hash any
		if row.ContentHash != "" {
			hash = row.ContentHash
		}
		if _, err := stmt.Exec(row.Name, row.LastUpdated, fetched, hash, row.IsEmpty); err != nil {
			return fmt.Errorf("failed to insert playlist %q: %w", row.Name, err)
		}
	}

	return tx.Commit()
}

// Get retrieves a single playlist row by name.
func (r *PlaylistCacheRepository) Get(name string) (*models.PlaylistCacheRow, error) {
	query := `
		SELECT name, last_updated, last_fetched, content_hash, is_empty
		FROM playlist_cache
		WHERE name = ?
	`

	row, err := scanPlaylistRow(r.db.QueryRow(query, name))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// List retrieves all cached playlists, newest first by last_updated.
func (r *PlaylistCacheRepository) List() ([]models.PlaylistCacheRow, error) {
	query := `
		SELECT name, last_updated, last_fetched, content_hash, is_empty
		FROM playlist_cache
		ORDER BY last_updated DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist cache: %w", err)
	}
	defer rows.Close()

	var result []models.PlaylistCacheRow
	for rows.Next() {
		row, err := scanPlaylistRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return result, nil
}

// MarkFetched records a completed track fetch for a playlist and whether it
// came back empty.
func (r *PlaylistCacheRepository) MarkFetched(name string, at time.Time, empty bool) error {
	result, err := r.db.Exec(
		"UPDATE playlist_cache SET last_fetched = ?, is_empty = ? WHERE name = ?",
		at, empty, name,
	)
	if err != nil {
		return fmt.Errorf("failed to mark playlist fetched: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, name)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPlaylistRow(s scanner) (*models.PlaylistCacheRow, error) {
	var (
		name        string
		lastUpdated time.Time
		lastFetched sql.NullTime
		contentHash sql.NullString
		isEmpty     bool
	)

	if err := s.Scan(&name, &lastUpdated, &lastFetched, &contentHash, &isEmpty); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan playlist row: %w", err)
	}

	row := models.PlaylistCacheRow{
		Name:        name,
		LastUpdated: lastUpdated,
		ContentHash: contentHash.String,
		IsEmpty:     isEmpty,
	}
	if lastFetched.Valid {
		row.LastFetched = lastFetched.Time
	}
	return &row, nil
}
