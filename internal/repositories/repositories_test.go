package repositories

import (
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/aria/internal/models"
	"github.com/desertthunder/aria/internal/shared"
	ariatest "github.com/desertthunder/aria/internal/testing"
)

func TestPlaylistCacheRepository(t *testing.T) {
	t.Run("ReplaceAll Swaps Whole Table", func(t *testing.T) {
		db := ariatest.SetupTestDB(t)
		repo := NewPlaylistCacheRepository(db)

		now := time.Now()
		first := []models.PlaylistCacheRow{
			{Name: "Morning", LastUpdated: now},
			{Name: "Evening", LastUpdated: now.Add(-time.Second)},
		}
		if err := repo.ReplaceAll(first); err != nil {
			t.Fatalf("first ReplaceAll failed: %v", err)
		}

		second := []models.PlaylistCacheRow{
			{Name: "Workout", LastUpdated: now},
		}
		if err := repo.ReplaceAll(second); err != nil {
			t.Fatalf("second ReplaceAll failed: %v", err)
		}

		rows, err := repo.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("expected 1 row after replace, got %d", len(rows))
		}
		if rows[0].Name != "Workout" {
			t.Errorf("expected Workout, got %s", rows[0].Name)
		}

		if _, err := repo.Get("Morning"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound for replaced playlist, got %v", err)
		}
	})

	t.Run("List Orders Newest First", func(t *testing.T) {
		db := ariatest.SetupTestDB(t)
		repo := NewPlaylistCacheRepository(db)

		now := time.Now()
		rows := []models.PlaylistCacheRow{
			{Name: "Oldest", LastUpdated: now.Add(-2 * time.Second)},
			{Name: "Newest", LastUpdated: now},
			{Name: "Middle", LastUpdated: now.Add(-time.Second)},
		}
		if err := repo.ReplaceAll(rows); err != nil {
			t.Fatalf("ReplaceAll failed: %v", err)
		}

		listed, err := repo.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}

		want := []string{"Newest", "Middle", "Oldest"}
		for i, name := range want {
			if listed[i].Name != name {
				t.Errorf("position %d: expected %s, got %s", i, name, listed[i].Name)
			}
		}
	})

	t.Run("MarkFetched", func(t *testing.T) {
		db := ariatest.SetupTestDB(t)
		repo := NewPlaylistCacheRepository(db)

		if err := repo.ReplaceAll([]models.PlaylistCacheRow{
			{Name: "Morning", LastUpdated: time.Now()},
		}); err != nil {
			t.Fatalf("ReplaceAll failed: %v", err)
		}

		at := time.Now()
		if err := repo.MarkFetched("Morning", at, true); err != nil {
			t.Fatalf("MarkFetched failed: %v", err)
		}

		row, err := repo.Get("Morning")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !row.IsEmpty {
			t.Error("expected playlist to be marked empty")
		}
		if row.LastFetched.IsZero() {
			t.Error("expected last_fetched to be recorded")
		}

		if err := repo.MarkFetched("Missing", at, false); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound for unknown playlist, got %v", err)
		}
	})
}

func TestTrackCacheRepository(t *testing.T) {
	sampleRows := func(at time.Time) []models.TrackCacheRow {
		return []models.TrackCacheRow{
			{URI: "music/a.flac", PlaylistName: "Morning", Title: "Alpha", Artist: "Ann", Service: "mpd", Type: "song", LastUpdated: at},
			{URI: "music/b.flac", PlaylistName: "Morning", Title: "Beta", Artist: "Bob", Service: "mpd", Type: "song", LastUpdated: at},
			{URI: "music/c.flac", PlaylistName: "Evening", Title: "Gamma", Artist: "Cat", Service: "mpd", Type: "song", LastUpdated: at},
		}
	}

	t.Run("ReplaceAll And CountAll", func(t *testing.T) {
		db := ariatest.SetupTestDB(t)
		repo := NewTrackCacheRepository(db)

		if err := repo.ReplaceAll(sampleRows(time.Now())); err != nil {
			t.Fatalf("ReplaceAll failed: %v", err)
		}

		count, err := repo.CountAll()
		if err != nil {
			t.Fatalf("CountAll failed: %v", err)
		}
		if count != 3 {
			t.Errorf("expected 3 cached tracks, got %d", count)
		}

		if err := repo.ReplaceAll(nil); err != nil {
			t.Fatalf("ReplaceAll with empty batch failed: %v", err)
		}
		count, err = repo.CountAll()
		if err != nil {
			t.Fatalf("CountAll failed: %v", err)
		}
		if count != 0 {
			t.Errorf("expected empty cache after replace, got %d rows", count)
		}
	})

	t.Run("ListByPlaylist Preserves Insertion Order", func(t *testing.T) {
		db := ariatest.SetupTestDB(t)
		repo := NewTrackCacheRepository(db)

		if err := repo.ReplaceAll(sampleRows(time.Now())); err != nil {
			t.Fatalf("ReplaceAll failed: %v", err)
		}

		rows, err := repo.ListByPlaylist("Morning")
		if err != nil {
			t.Fatalf("ListByPlaylist failed: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 Morning tracks, got %d", len(rows))
		}
		if rows[0].Title != "Alpha" || rows[1].Title != "Beta" {
			t.Errorf("unexpected order: %s, %s", rows[0].Title, rows[1].Title)
		}
	})

	t.Run("ListAll Round Trips Track Fields", func(t *testing.T) {
		db := ariatest.SetupTestDB(t)
		repo := NewTrackCacheRepository(db)

		at := time.Now()
		in := models.TrackCacheRow{
			URI: "music/a.flac", PlaylistName: "Morning", Title: "Alpha",
			Artist: "Ann", Service: "mpd", AlbumArt: "/art/a.jpg", Type: "song", LastUpdated: at,
		}
		if err := repo.ReplaceAll([]models.TrackCacheRow{in}); err != nil {
			t.Fatalf("ReplaceAll failed: %v", err)
		}

		rows, err := repo.ListAll()
		if err != nil {
			t.Fatalf("ListAll failed: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("expected 1 row, got %d", len(rows))
		}

		track := models.TrackFromRow(rows[0])
		if track.Title != "Alpha" || track.Artist != "Ann" || track.AlbumArt != "/art/a.jpg" {
			t.Errorf("unexpected track after round trip: %+v", track)
		}
		if !track.Playable() {
			t.Error("expected song row to be playable")
		}
	})
}
