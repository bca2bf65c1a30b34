package library

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/aria/internal/genai"
	"github.com/desertthunder/aria/internal/shared"
	"github.com/desertthunder/aria/internal/socket"
)

// recentVibeLimit bounds the recency list of prior vibe inputs.
const recentVibeLimit = 5

// GenerateRequest describes one playlist-generation run.
type GenerateRequest struct {
	Vibe              string
	Name              string // optional; generated when empty
	NumSongs          int
	MaxSongsPerArtist int
	Artists           string
	Era               string
	Instrument        string
	Language          string
}

// GenerateResult summarizes a finished generation run.
type GenerateResult struct {
	PlaylistName string
	Requested    int
	Added        int
}

// Ratio is the fraction of requested tracks actually added.
func (r *GenerateResult) Ratio() float64 {
	if r.Requested == 0 {
		return 0
	}
	return float64(r.Added) / float64(r.Requested)
}

// Generate runs the AI-assisted playlist workflow: name the playlist, create
// and verify it, request candidate songs, then search and add matches one
// candidate at a time. At most one run is active; cancellation is honored at
// each candidate boundary. Any failure is reported as the single terminal
// error for the run.
func (e *Engine) Generate(ctx context.Context, req GenerateRequest, progress chan<- ProgressUpdate) (*GenerateResult, error) {
	e.mu.Lock()
	if e.genActive {
		e.mu.Unlock()
		return nil, shared.ErrGenerationActive
	}
	e.genActive = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.genActive = false
		e.mu.Unlock()
	}()

	if e.generator == nil {
		return nil, fmt.Errorf("%w: no generator configured", shared.ErrGeneratorFailed)
	}

	vibe := strings.TrimSpace(req.Vibe)
	if vibe == "" {
		return nil, fmt.Errorf("%w: vibe is required", shared.ErrInvalidInput)
	}
	e.rememberVibe(vibe)

	numSongs := req.NumSongs
	if numSongs <= 0 {
		numSongs = 10
	}
	maxPerArtist := req.MaxSongsPerArtist
	if maxPerArtist <= 0 {
		maxPerArtist = numSongs
	}
	// Small playlists get spread across artists.
	if numSongs < 10 {
		maxPerArtist = 1
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		e.sendProgress(progress, namingUpdate())
		generated, err := e.generator.GeneratePlaylistName(ctx, genai.NameRequest{
			Vibe:       vibe,
			Artists:    req.Artists,
			Era:        req.Era,
			Instrument: req.Instrument,
			Language:   req.Language,
		})
		if err != nil {
			e.logger.Warn("name generation failed, using default", "err", err)
			name = e.defaultName
		} else {
			name = generated
		}
	}

	e.sendProgress(progress, creatingUpdate(name))
	if err := e.CreatePlaylist(name); err != nil {
		e.logger.Warn("create command dropped", "playlist", name, "err", err)
	}

	if err := e.settle(ctx); err != nil {
		return nil, err
	}
	e.refreshListing(ctx)
	if err := e.settle(ctx); err != nil {
		return nil, err
	}

	if !e.hasPlaylist(name) {
		e.logger.Warn("created playlist not in listing", "playlist", name)
		e.sendProgress(progress, verifyMissingUpdate(name))
	}

	e.sendProgress(progress, songListUpdate(numSongs))
	text, err := e.generator.GenerateSongList(ctx, genai.SongListRequest{
		Vibe:              vibe,
		NumSongs:          numSongs,
		Artists:           req.Artists,
		Era:               req.Era,
		MaxSongsPerArtist: maxPerArtist,
		Instrument:        req.Instrument,
		Language:          req.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("song list generation failed: %w", err)
	}

	candidates := genai.ParseSongList(text, numSongs)
	result := &GenerateResult{PlaylistName: name, Requested: numSongs}

	artistCounts := make(map[string]int)
	usedKeys := make(map[string]bool)
	usedURIs := make(map[string]bool)

	for i, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if result.Added >= numSongs {
			break
		}

		e.sendProgress(progress, searchUpdate(i+1, len(candidates), cand))

		query := shared.StripOrdinalPrefix(cand.Query())
		found, err := e.Search(ctx, query)
		if err != nil {
			e.logger.Warn("candidate search failed", "query", query, "err", err)
			continue
		}

		// At most one track added per candidate pair.
		for _, t := range found {
			if !t.Playable() || usedURIs[t.URI] {
				continue
			}
			key := shared.NormalizeTrackKey(t.Artist, t.Title)
			if usedKeys[key] {
				continue
			}
			artistKey := strings.ToLower(strings.TrimSpace(t.Artist))
			if artistCounts[artistKey] >= maxPerArtist {
				continue
			}

			if err := e.AddToPlaylist(name, t); err != nil {
				e.logger.Warn("add command dropped", "uri", t.URI, "err", err)
			}
			usedURIs[t.URI] = true
			usedKeys[key] = true
			artistCounts[artistKey]++
			result.Added++
			e.sendProgress(progress, addedUpdate(result.Added, numSongs, query))
			break
		}
	}

	e.sendProgress(progress, doneUpdate(result))
	e.logger.Info("generation finished", "playlist", name, "added", result.Added, "requested", numSongs)
	return result, nil
}

// rememberVibe appends a non-blank, previously unseen vibe to the bounded
// recency list (newest first).
func (e *Engine) rememberVibe(vibe string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, v := range e.recentVibes {
		if v == vibe {
			return
		}
	}

	e.recentVibes = append([]string{vibe}, e.recentVibes...)
	if len(e.recentVibes) > recentVibeLimit {
		e.recentVibes = e.recentVibes[:recentVibeLimit]
	}
}

// refreshListing requests a listing and applies it without running a full
// ingestion pass; used to verify playlist creation.
func (e *Engine) refreshListing(ctx context.Context) {
	e.syncing.Store(true)
	defer e.syncing.Store(false)

	reqCtx, cancel := context.WithTimeout(ctx, e.browseWait)
	defer cancel()

	msg, err := e.conn.Request(reqCtx, socket.CmdListPlaylist, nil)
	if err != nil {
		e.logger.Debug("listing refresh failed", "err", err)
		return
	}
	names, err := socket.DecodeListing(msg)
	if err != nil {
		e.logger.Warn("ignoring malformed listing", "err", err)
		return
	}
	e.ApplyListing(names)
}

// settle pauses for the configured delay, honoring cancellation.
func (e *Engine) settle(ctx context.Context) error {
	select {
	case <-time.After(e.settleDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
