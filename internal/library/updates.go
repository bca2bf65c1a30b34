package library

import (
	"fmt"

	"github.com/desertthunder/aria/internal/genai"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	RefreshListing Phase = iota
	FetchTracks
	NamePlaylist
	CreateTarget
	VerifyTarget
	RequestSongs
	SearchCandidates
	AddTrack
	GenerationDone
)

func (p Phase) String() string {
	switch p {
	case RefreshListing:
		return "refresh_listing"
	case FetchTracks:
		return "fetch_tracks"
	case NamePlaylist:
		return "name_playlist"
	case CreateTarget:
		return "create_target"
	case VerifyTarget:
		return "verify_target"
	case RequestSongs:
		return "request_songs"
	case SearchCandidates:
		return "search_candidates"
	case AddTrack:
		return "add_track"
	case GenerationDone:
		return "generation_done"
	default:
		return ""
	}
}

func namingUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   NamePlaylist,
		Step:    1,
		Total:   1,
		Message: "Asking the generator for a playlist name...",
	}
}

func creatingUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreateTarget,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist: %s", name),
	}
}

func verifyMissingUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   VerifyTarget,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist %q not visible yet, continuing anyway", name),
	}
}

func songListUpdate(numSongs int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RequestSongs,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Requesting %d candidate songs...", numSongs),
	}
}

func searchUpdate(step, total int, cand genai.Candidate) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchCandidates,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, cand.Artist, cand.Title),
	}
}

func addedUpdate(added, requested int, query string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTrack,
		Step:    added,
		Total:   requested,
		Message: fmt.Sprintf("Added %d/%d: %s", added, requested, query),
	}
}

func doneUpdate(result *GenerateResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   GenerationDone,
		Step:    result.Added,
		Total:   result.Requested,
		Message: fmt.Sprintf("Added %d of %d requested tracks", result.Added, result.Requested),
		Data:    result,
	}
}

func fetchUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching tracks: %s", step, total, name),
	}
}
