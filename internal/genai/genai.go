// package genai defines the TextGenerator interface for AI-assisted
// playlist generation
package genai

import (
	"context"
	"strings"

	"github.com/desertthunder/aria/internal/shared"
)

// NameRequest asks the generator for a short playlist name.
type NameRequest struct {
	Vibe       string
	Artists    string
	Era        string
	Instrument string
	Language   string
}

// SongListRequest asks the generator for candidate songs as newline-delimited
// "Artist - Title" text.
type SongListRequest struct {
	Vibe              string
	NumSongs          int
	Artists           string
	Era               string
	MaxSongsPerArtist int
	Instrument        string
	Language          string
}

// TextGenerator is the external text-generation collaborator. Both calls are
// stateless and may fail; callers degrade per the workflow rules (default
// name, or aborted generation run).
type TextGenerator interface {
	GeneratePlaylistName(ctx context.Context, req NameRequest) (string, error)
	GenerateSongList(ctx context.Context, req SongListRequest) (string, error)
}

// Candidate is one parsed (artist, title) pair from a generated song list.
type Candidate struct {
	Artist string
	Title  string
}

// Query returns the free-text search string for the candidate.
func (c Candidate) Query() string {
	return c.Artist + " " + c.Title
}

// ParseSongList splits generated text into up to limit candidates. Each line
// splits on the first " - " separator; malformed lines are dropped and
// leading ordinals ("1. ") are stripped from the artist.
func ParseSongList(text string, limit int) []Candidate {
	var candidates []Candidate
	for _, line := range strings.Split(text, "\n") {
		if limit > 0 && len(candidates) >= limit {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, " - ", 2)
		if len(parts) != 2 {
			continue
		}

		artist := strings.TrimSpace(shared.StripOrdinalPrefix(parts[0]))
		title := strings.TrimSpace(parts[1])
		if artist == "" || title == "" {
			continue
		}

		candidates = append(candidates, Candidate{Artist: artist, Title: title})
	}
	return candidates
}
