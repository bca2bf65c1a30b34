package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/aria/internal/genai"
	"github.com/desertthunder/aria/internal/models"
	"github.com/desertthunder/aria/internal/shared"
	"github.com/desertthunder/aria/internal/socket"
)

// fakeGenerator is a scriptable TextGenerator.
type fakeGenerator struct {
	name     string
	nameErr  error
	songList string
	songErr  error
}

func (f *fakeGenerator) GeneratePlaylistName(ctx context.Context, req genai.NameRequest) (string, error) {
	return f.name, f.nameErr
}

func (f *fakeGenerator) GenerateSongList(ctx context.Context, req genai.SongListRequest) (string, error) {
	return f.songList, f.songErr
}

// genConn scripts the listing and per-query search responses the generation
// workflow needs.
func genConn(t *testing.T, listing []string, results map[string][]models.Track) *fakeConn {
	t.Helper()
	conn := &fakeConn{connected: true}
	conn.respond = func(command string, payload any) (socket.Message, error) {
		switch command {
		case socket.CmdListPlaylist:
			return listingMessage(t, listing), nil
		case socket.CmdSearch:
			query := payload.(map[string]string)["value"]
			return browseMessage(t, results[query]), nil
		}
		return socket.Message{}, fmt.Errorf("unexpected command %s", command)
	}
	return conn
}

func newGenEngine(conn *fakeConn, generator genai.TextGenerator) *Engine {
	return NewEngine(Options{
		Conn:          conn,
		Playlists:     newFakePlaylistCache(),
		Tracks:        &fakeTrackCache{},
		Generator:     generator,
		BrowseTimeout: 100 * time.Millisecond,
		SettleDelay:   time.Millisecond,
	})
}

func songTrack(artist, title, uri string) models.Track {
	return models.Track{
		Title: title, Artist: artist, URI: uri,
		Service: "mpd", Type: models.TrackTypeSong,
	}
}

func TestGenerate(t *testing.T) {
	t.Run("Stops At Requested Count", func(t *testing.T) {
		results := map[string][]models.Track{
			"Ann First":   {songTrack("Ann", "First", "music/1.flac")},
			"Bob Second":  {songTrack("Bob", "Second", "music/2.flac")},
			"Cat Third":   {songTrack("Cat", "Third", "music/3.flac")},
			"Dana Fourth": {songTrack("Dana", "Fourth", "music/4.flac")},
		}
		conn := genConn(t, []string{"Night Drive"}, results)
		engine := newGenEngine(conn, &fakeGenerator{
			name:     "Night Drive",
			songList: "Ann - First\nBob - Second\nCat - Third\nDana - Fourth",
		})

		result, err := engine.Generate(context.Background(), GenerateRequest{
			Vibe: "late night driving", NumSongs: 2,
		}, nil)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		if result.Added != 2 {
			t.Errorf("expected 2 tracks added, got %d", result.Added)
		}
		if got := conn.emittedCount(socket.CmdAddToPlaylist); got != 2 {
			t.Errorf("expected 2 add commands, got %d", got)
		}
		if result.Ratio() != 1.0 {
			t.Errorf("expected full ratio, got %f", result.Ratio())
		}
	})

	t.Run("Enforces Per Artist Cap", func(t *testing.T) {
		results := make(map[string][]models.Track)
		var lines []string
		for i := 0; i < 5; i++ {
			title := fmt.Sprintf("Song%d", i)
			lines = append(lines, "Same Artist - "+title)
			results["Same Artist "+title] = []models.Track{
				songTrack("Same Artist", title, fmt.Sprintf("music/%d.flac", i)),
			}
		}
		conn := genConn(t, []string{"Heavy Rotation"}, results)
		engine := newGenEngine(conn, &fakeGenerator{
			name:     "Heavy Rotation",
			songList: strings.Join(lines, "\n"),
		})

		result, err := engine.Generate(context.Background(), GenerateRequest{
			Vibe: "one band on repeat", NumSongs: 10, MaxSongsPerArtist: 2,
		}, nil)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		if result.Added != 2 {
			t.Errorf("expected the artist capped at 2, got %d added", result.Added)
		}
	})

	t.Run("Short Playlists Force One Per Artist", func(t *testing.T) {
		results := map[string][]models.Track{
			"Ann First":  {songTrack("Ann", "First", "music/1.flac")},
			"Ann Second": {songTrack("Ann", "Second", "music/2.flac")},
			"Bob Third":  {songTrack("Bob", "Third", "music/3.flac")},
		}
		conn := genConn(t, []string{"Short Mix"}, results)
		engine := newGenEngine(conn, &fakeGenerator{
			name:     "Short Mix",
			songList: "Ann - First\nAnn - Second\nBob - Third",
		})

		result, err := engine.Generate(context.Background(), GenerateRequest{
			Vibe: "variety", NumSongs: 3, MaxSongsPerArtist: 5,
		}, nil)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}

		// NumSongs < 10 forces one per artist regardless of the request.
		if result.Added != 2 {
			t.Errorf("expected one track per artist, got %d added", result.Added)
		}
	})

	t.Run("Skips Duplicate URIs", func(t *testing.T) {
		same := songTrack("Ann", "First", "music/same.flac")
		results := map[string][]models.Track{
			"Ann First":  {same},
			"Bob Second": {same}, // search resolves to the same item
		}
		conn := genConn(t, []string{"Dupes"}, results)
		engine := newGenEngine(conn, &fakeGenerator{
			name:     "Dupes",
			songList: "Ann - First\nBob - Second",
		})

		result, err := engine.Generate(context.Background(), GenerateRequest{
			Vibe: "anything", NumSongs: 2,
		}, nil)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if result.Added != 1 {
			t.Errorf("expected the duplicate uri skipped, got %d added", result.Added)
		}
	})

	t.Run("Name Falls Back On Generator Failure", func(t *testing.T) {
		results := map[string][]models.Track{
			"Ann First": {songTrack("Ann", "First", "music/1.flac")},
		}
		conn := genConn(t, []string{"Generated Mix"}, results)
		engine := newGenEngine(conn, &fakeGenerator{
			nameErr:  errors.New("model unavailable"),
			songList: "Ann - First",
		})

		result, err := engine.Generate(context.Background(), GenerateRequest{
			Vibe: "fallback", NumSongs: 1,
		}, nil)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if result.PlaylistName != "Generated Mix" {
			t.Errorf("expected the default name, got %q", result.PlaylistName)
		}
	})

	t.Run("Song List Failure Aborts The Run", func(t *testing.T) {
		conn := genConn(t, []string{"Doomed"}, nil)
		engine := newGenEngine(conn, &fakeGenerator{
			name:    "Doomed",
			songErr: fmt.Errorf("%w: rate limited", shared.ErrGeneratorFailed),
		})

		if _, err := engine.Generate(context.Background(), GenerateRequest{
			Vibe: "anything", NumSongs: 3,
		}, nil); !errors.Is(err, shared.ErrGeneratorFailed) {
			t.Errorf("expected ErrGeneratorFailed, got %v", err)
		}
		if got := conn.emittedCount(socket.CmdAddToPlaylist); got != 0 {
			t.Errorf("expected no add commands after abort, got %d", got)
		}
	})

	t.Run("Rejects Concurrent Runs", func(t *testing.T) {
		engine := newGenEngine(&fakeConn{connected: true}, &fakeGenerator{})
		engine.mu.Lock()
		engine.genActive = true
		engine.mu.Unlock()

		if _, err := engine.Generate(context.Background(), GenerateRequest{
			Vibe: "second run",
		}, nil); !errors.Is(err, shared.ErrGenerationActive) {
			t.Errorf("expected ErrGenerationActive, got %v", err)
		}
	})

	t.Run("Requires A Vibe", func(t *testing.T) {
		engine := newGenEngine(&fakeConn{connected: true}, &fakeGenerator{})
		if _, err := engine.Generate(context.Background(), GenerateRequest{}, nil); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Requires A Generator", func(t *testing.T) {
		engine := newTestEngine(&fakeConn{connected: true}, newFakePlaylistCache(), &fakeTrackCache{})
		if _, err := engine.Generate(context.Background(), GenerateRequest{
			Vibe: "no generator wired",
		}, nil); !errors.Is(err, shared.ErrGeneratorFailed) {
			t.Errorf("expected ErrGeneratorFailed, got %v", err)
		}
	})
}

func TestRememberVibe(t *testing.T) {
	engine := newGenEngine(&fakeConn{connected: true}, &fakeGenerator{})

	for i := 0; i < 7; i++ {
		engine.rememberVibe(fmt.Sprintf("vibe %d", i))
	}
	engine.rememberVibe("vibe 6") // duplicate of the newest

	vibes := engine.RecentVibes()
	if len(vibes) != 5 {
		t.Fatalf("expected the recency list capped at 5, got %d", len(vibes))
	}
	if vibes[0] != "vibe 6" {
		t.Errorf("expected newest vibe first, got %q", vibes[0])
	}
	seen := make(map[string]bool)
	for _, v := range vibes {
		if seen[v] {
			t.Errorf("duplicate vibe retained: %q", v)
		}
		seen[v] = true
	}
}
