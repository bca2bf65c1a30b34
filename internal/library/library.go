package library

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/aria/internal/genai"
	"github.com/desertthunder/aria/internal/models"
	"github.com/desertthunder/aria/internal/shared"
	"github.com/desertthunder/aria/internal/socket"
)

// Connection is the slice of the socket layer the engine needs. *socket.Conn
// satisfies it; tests substitute fakes.
type Connection interface {
	Emit(command string, payload any) error
	Request(ctx context.Context, command string, payload any) (socket.Message, error)
	On(event string, handler socket.Handler)
	IsConnected() bool
}

// PlaylistCache is the persistence surface for playlist metadata.
type PlaylistCache interface {
	ReplaceAll(rows []models.PlaylistCacheRow) error
	List() ([]models.PlaylistCacheRow, error)
	MarkFetched(name string, at time.Time, empty bool) error
}

// TrackCache is the persistence surface for cached tracks.
type TrackCache interface {
	ReplaceAll(rows []models.TrackCacheRow) error
	CountAll() (int, error)
}

// Options configures an [Engine].
type Options struct {
	Conn      Connection
	Playlists PlaylistCache
	Tracks    TrackCache
	Generator genai.TextGenerator
	Logger    *log.Logger

	// TrackCacheLimit caps the global track cache (default 200).
	TrackCacheLimit int
	// BrowseTimeout bounds each browse/search wait (default 5s).
	BrowseTimeout time.Duration
	// SettleDelay is the pause around playlist-creation verification
	// (default 1s; tests shrink it).
	SettleDelay time.Duration
	// DefaultPlaylistName substitutes for a failed name generation.
	DefaultPlaylistName string
}

// Engine synchronizes the playlist library into the local cache and owns the
// generation workflow.
type Engine struct {
	conn        Connection
	playlists   PlaylistCache
	tracks      TrackCache
	generator   genai.TextGenerator
	logger      *log.Logger
	trackLimit  int
	browseWait  time.Duration
	settleDelay time.Duration
	defaultName string

	mu          sync.Mutex
	lists       []models.Playlist
	recentVibes []string
	genActive   bool

	ingestMu sync.Mutex
	syncing  atomic.Bool
}

// NewEngine creates a library sync engine. Call [Engine.Start] to begin
// consuming pushes.
func NewEngine(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.TrackCacheLimit <= 0 {
		opts.TrackCacheLimit = 200
	}
	if opts.BrowseTimeout <= 0 {
		opts.BrowseTimeout = 5 * time.Second
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = time.Second
	}
	if opts.DefaultPlaylistName == "" {
		opts.DefaultPlaylistName = "Generated Mix"
	}

	return &Engine{
		conn:        opts.Conn,
		playlists:   opts.Playlists,
		tracks:      opts.Tracks,
		generator:   opts.Generator,
		logger:      opts.Logger.With("component", "library"),
		trackLimit:  opts.TrackCacheLimit,
		browseWait:  opts.BrowseTimeout,
		settleDelay: opts.SettleDelay,
		defaultName: opts.DefaultPlaylistName,
	}
}

// Start subscribes the engine to listing and mutation-confirmation pushes.
func (e *Engine) Start() {
	e.conn.On(socket.EventPushListPlaylist, e.handleListingPush)
	for _, event := range []string{
		socket.EventPushCreatePlaylist,
		socket.EventPushAddToPlaylist,
		socket.EventPushRemoveFromPlaylist,
	} {
		e.conn.On(event, e.handleMutationPush)
	}
}

// Playlists returns a snapshot of the in-memory playlist aggregates.
func (e *Engine) Playlists() []models.Playlist {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.Playlist, len(e.lists))
	for i, p := range e.lists {
		out[i] = models.Playlist{Name: p.Name, Tracks: append([]models.Track(nil), p.Tracks...)}
	}
	return out
}

// RecentVibes returns the bounded recency list of prior vibe inputs, newest
// first.
func (e *Engine) RecentVibes() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.recentVibes...)
}

// handleListingPush reacts to an unsolicited listing push: replace the
// playlist cache, then run an ingestion pass. Skipped while a manual sync is
// driving the same push through a request waiter.
func (e *Engine) handleListingPush(msg socket.Message) {
	if e.syncing.Load() {
		return
	}

	names, err := socket.DecodeListing(msg)
	if err != nil {
		e.logger.Warn("ignoring malformed listing push", "err", err)
		return
	}

	newest := e.ApplyListing(names)

	// Requests block on the dispatch path, so ingestion must leave it.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(len(newest)+1)*e.browseWait)
		defer cancel()
		if _, err := e.FetchTracksUntilLimit(ctx, newest, nil); err != nil {
			e.logger.Warn("ingestion pass failed", "err", err)
		}
	}()
}

// handleMutationPush reconciles a confirmed remote mutation by re-fetching
// that playlist's tracks into the in-memory aggregate.
func (e *Engine) handleMutationPush(msg socket.Message) {
	name := mutatedPlaylistName(msg)
	if name == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.browseWait)
		defer cancel()
		tracks := e.browsePlaylist(ctx, name)
		if tracks == nil {
			return
		}
		e.setPlaylistTracks(name, tracks)
	}()
}

// ApplyListing replaces the playlist cache from a listing payload. Names
// arrive oldest first; the derived rows are newest first with synthetic
// lastUpdated timestamps that preserve that order. Returns the names newest
// first.
func (e *Engine) ApplyListing(names []string) []string {
	now := time.Now()
	newest := make([]string, 0, len(names))
	rows := make([]models.PlaylistCacheRow, 0, len(names))

	for i := len(names) - 1; i >= 0; i-- {
		idx := len(names) - 1 - i
		newest = append(newest, names[i])
		rows = append(rows, models.PlaylistCacheRow{
			Name:        names[i],
			LastUpdated: now.Add(-time.Duration(idx) * time.Second),
		})
	}

	if err := e.playlists.ReplaceAll(rows); err != nil {
		e.logger.Error("failed to replace playlist cache", "err", err)
	}

	e.mu.Lock()
	existing := make(map[string][]models.Track, len(e.lists))
	for _, p := range e.lists {
		existing[p.Name] = p.Tracks
	}
	e.lists = e.lists[:0]
	for _, name := range newest {
		e.lists = append(e.lists, models.Playlist{Name: name, Tracks: existing[name]})
	}
	e.mu.Unlock()

	return newest
}

// SyncLibrary requests a fresh listing and runs a full ingestion pass,
// returning the number of cached tracks.
func (e *Engine) SyncLibrary(ctx context.Context, progress chan<- ProgressUpdate) (int, error) {
	e.syncing.Store(true)
	defer e.syncing.Store(false)

	reqCtx, cancel := context.WithTimeout(ctx, e.browseWait)
	msg, err := e.conn.Request(reqCtx, socket.CmdListPlaylist, nil)
	cancel()
	if err != nil {
		return 0, err
	}

	names, err := socket.DecodeListing(msg)
	if err != nil {
		return 0, err
	}

	newest := e.ApplyListing(names)
	return e.FetchTracksUntilLimit(ctx, newest, progress)
}

// FetchTracksUntilLimit ingests tracks for the given playlists in order,
// deduplicating by uri (first occurrence in fetch order wins) and stopping
// new requests once the accumulated unique count reaches the cap. The final
// write replaces the whole track cache, truncated to exactly the cap.
func (e *Engine) FetchTracksUntilLimit(ctx context.Context, names []string, progress chan<- ProgressUpdate) (int, error) {
	e.ingestMu.Lock()
	defer e.ingestMu.Unlock()

	var collected []models.TrackCacheRow
	seen := make(map[string]bool)
	fetchedAt := time.Now()

	for i, name := range names {
		if len(collected) >= e.trackLimit {
			break
		}
		e.sendProgress(progress, fetchUpdate(i+1, len(names), name))

		tracks := e.browsePlaylist(ctx, name)

		inPlaylist := make(map[string]bool)
		added := 0
		var aggregate []models.Track
		for _, t := range tracks {
			if !t.Playable() || inPlaylist[t.URI] {
				continue
			}
			inPlaylist[t.URI] = true
			aggregate = append(aggregate, t)
			if seen[t.URI] {
				continue
			}
			seen[t.URI] = true
			collected = append(collected, models.RowFromTrack(t, name, fetchedAt))
			added++
		}

		e.setPlaylistTracks(name, aggregate)
		if err := e.playlists.MarkFetched(name, time.Now(), added == 0); err != nil {
			e.logger.Debug("mark fetched", "playlist", name, "err", err)
		}
	}

	if len(collected) > e.trackLimit {
		collected = collected[:e.trackLimit]
	}

	if err := e.tracks.ReplaceAll(collected); err != nil {
		return 0, err
	}
	return len(collected), nil
}

// Search emits a free-text search and waits for results on the browse push
// channel. Timeouts and malformed payloads degrade to an empty result.
func (e *Engine) Search(ctx context.Context, query string) ([]models.Track, error) {
	reqCtx, cancel := context.WithTimeout(ctx, e.browseWait)
	defer cancel()

	msg, err := e.conn.Request(reqCtx, socket.CmdSearch, map[string]string{"value": query})
	if errors.Is(err, shared.ErrResponseTimeout) {
		e.logger.Debug("search timed out", "query", query)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	tracks, err := socket.DecodeBrowse(msg)
	if err != nil {
		e.logger.Warn("ignoring malformed search results", "err", err)
		return nil, nil
	}
	if isPlaylistContent(tracks) {
		// A playlist browse slipped onto the shared push channel; these are
		// not search results.
		return nil, nil
	}
	return tracks, nil
}

// CreatePlaylist issues the create command and optimistically prepends the
// playlist locally.
func (e *Engine) CreatePlaylist(name string) error {
	err := e.conn.Emit(socket.CmdCreatePlaylist, map[string]string{"name": name})

	e.mu.Lock()
	found := false
	for _, p := range e.lists {
		if p.Name == name {
			found = true
			break
		}
	}
	if !found {
		e.lists = append([]models.Playlist{{Name: name}}, e.lists...)
	}
	e.mu.Unlock()
	return err
}

// DeletePlaylist issues the delete command and optimistically drops the
// playlist locally.
func (e *Engine) DeletePlaylist(name string) error {
	err := e.conn.Emit(socket.CmdDeletePlaylist, map[string]string{"name": name})

	e.mu.Lock()
	for i, p := range e.lists {
		if p.Name == name {
			e.lists = append(e.lists[:i], e.lists[i+1:]...)
			break
		}
	}
	e.mu.Unlock()
	return err
}

// AddToPlaylist issues the add command and optimistically appends the track
// locally.
func (e *Engine) AddToPlaylist(name string, track models.Track) error {
	err := e.conn.Emit(socket.CmdAddToPlaylist, map[string]string{
		"name":    name,
		"service": track.Service,
		"uri":     track.URI,
	})

	e.mu.Lock()
	for i := range e.lists {
		if e.lists[i].Name == name {
			if !e.lists[i].ContainsURI(track.URI) {
				e.lists[i].Tracks = append(e.lists[i].Tracks, track)
			}
			break
		}
	}
	e.mu.Unlock()
	return err
}

// RemoveFromPlaylist issues the remove command and optimistically drops the
// track locally.
func (e *Engine) RemoveFromPlaylist(name, uri string) error {
	err := e.conn.Emit(socket.CmdRemoveFromPlaylist, map[string]string{
		"name": name,
		"uri":  uri,
	})

	e.mu.Lock()
	for i := range e.lists {
		if e.lists[i].Name == name {
			e.lists[i].RemoveURI(uri)
			break
		}
	}
	e.mu.Unlock()
	return err
}

// PlayPlaylist starts playback of a playlist.
func (e *Engine) PlayPlaylist(name string) error {
	return e.conn.Emit(socket.CmdPlayPlaylist, map[string]string{"name": name})
}

// browsePlaylist requests one playlist's contents, returning nil on timeout
// or malformed payload.
func (e *Engine) browsePlaylist(ctx context.Context, name string) []models.Track {
	reqCtx, cancel := context.WithTimeout(ctx, e.browseWait)
	defer cancel()

	msg, err := e.conn.Request(reqCtx, socket.CmdBrowseLibrary, map[string]string{
		"uri": "playlists/" + name,
	})
	if err != nil {
		e.logger.Debug("browse failed", "playlist", name, "err", err)
		return nil
	}

	tracks, err := socket.DecodeBrowse(msg)
	if err != nil {
		e.logger.Warn("ignoring malformed browse payload", "playlist", name, "err", err)
		return nil
	}
	return tracks
}

func (e *Engine) setPlaylistTracks(name string, tracks []models.Track) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.lists {
		if e.lists[i].Name == name {
			e.lists[i].Tracks = append([]models.Track(nil), tracks...)
			return
		}
	}
}

func (e *Engine) hasPlaylist(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range e.lists {
		if p.Name == name {
			return true
		}
	}
	return false
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// isPlaylistContent reports whether a browse result is playlist-content
// browsing rather than free-text search results, signalled by a
// "playlists/"-prefixed item.
func isPlaylistContent(tracks []models.Track) bool {
	for _, t := range tracks {
		if strings.HasPrefix(t.URI, "playlists/") {
			return true
		}
	}
	return false
}

// mutatedPlaylistName extracts the playlist name from a mutation
// confirmation push; empty when the payload has no usable name.
func mutatedPlaylistName(msg socket.Message) string {
	var payload struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return ""
	}
	return payload.Name
}
