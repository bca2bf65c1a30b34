package socket

import (
	"encoding/json"
	"fmt"

	"github.com/desertthunder/aria/internal/models"
	"github.com/desertthunder/aria/internal/shared"
)

// Push event names emitted by the player.
const (
	EventPushState              = "pushState"
	EventPushQueue              = "pushQueue"
	EventPushListPlaylist       = "pushListPlaylist"
	EventPushCreatePlaylist     = "pushCreatePlaylist"
	EventPushAddToPlaylist      = "pushAddToPlaylist"
	EventPushRemoveFromPlaylist = "pushRemoveFromPlaylist"
	EventPushBrowseLibrary      = "pushBrowseLibrary"
)

// Command names sent to the player.
const (
	CmdGetState           = "getState"
	CmdPlay               = "play"
	CmdPause              = "pause"
	CmdNext               = "next"
	CmdPrev               = "prev"
	CmdSeek               = "seek"
	CmdListPlaylist       = "listPlaylist"
	CmdCreatePlaylist     = "createPlaylist"
	CmdDeletePlaylist     = "deletePlaylist"
	CmdAddToPlaylist      = "addToPlaylist"
	CmdRemoveFromPlaylist = "removeFromPlaylist"
	CmdPlayPlaylist       = "playPlaylist"
	CmdBrowseLibrary      = "browseLibrary"
	CmdSearch             = "search"
	CmdMoveQueue          = "moveQueue"
	CmdClearQueue         = "clearQueue"
	CmdRemoveFromQueue    = "removeFromQueue"
	CmdAddToQueue         = "addToQueue"
)

// pushEvents maps each command to the push event that carries its response.
// The player does not echo correlation ids, so this static table is the only
// link between a request and its asynchronous reply.
var pushEvents = map[string]string{
	CmdListPlaylist:       EventPushListPlaylist,
	CmdCreatePlaylist:     EventPushCreatePlaylist,
	CmdAddToPlaylist:      EventPushAddToPlaylist,
	CmdRemoveFromPlaylist: EventPushRemoveFromPlaylist,
	CmdBrowseLibrary:      EventPushBrowseLibrary,
	CmdSearch:             EventPushBrowseLibrary,
	CmdPlay:               EventPushState,
	CmdPause:              EventPushState,
	CmdNext:               EventPushState,
	CmdPrev:               EventPushState,
	CmdSeek:               EventPushState,
	CmdGetState:           EventPushState,
	CmdMoveQueue:          EventPushQueue,
	CmdClearQueue:         EventPushQueue,
	CmdRemoveFromQueue:    EventPushQueue,
	CmdAddToQueue:         EventPushQueue,
}

// PushEventFor returns the push event name that answers the given command.
func PushEventFor(command string) (string, bool) {
	event, ok := pushEvents[command]
	return event, ok
}

// Message is a single frame on the push/pull channel.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewMessage builds a Message, marshaling the payload. A nil payload produces
// a bare event frame.
func NewMessage(event string, payload any) (Message, error) {
	msg := Message{Event: event}
	if payload == nil {
		return msg, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	msg.Data = data
	return msg, nil
}

// DecodeState parses a pushState payload into a [models.PlayerState].
func DecodeState(msg Message) (models.PlayerState, error) {
	var state models.PlayerState
	if len(msg.Data) == 0 {
		return state, fmt.Errorf("%w: empty state payload", shared.ErrMalformedPayload)
	}
	if err := json.Unmarshal(msg.Data, &state); err != nil {
		return models.PlayerState{}, fmt.Errorf("%w: %v", shared.ErrMalformedPayload, err)
	}
	if state.Status == "" {
		return models.PlayerState{}, fmt.Errorf("%w: state payload missing status", shared.ErrMalformedPayload)
	}
	return state, nil
}

// DecodeListing parses a pushListPlaylist payload: an array of playlist
// names, oldest first per the player's convention.
func DecodeListing(msg Message) ([]string, error) {
	var names []string
	if err := json.Unmarshal(msg.Data, &names); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMalformedPayload, err)
	}
	return names, nil
}

// browsePayload mirrors the nested navigation shape of pushBrowseLibrary.
type browsePayload struct {
	Navigation struct {
		Lists []struct {
			Items []models.Track `json:"items"`
		} `json:"lists"`
	} `json:"navigation"`
}

// DecodeBrowse parses a pushBrowseLibrary payload into a flat track list.
func DecodeBrowse(msg Message) ([]models.Track, error) {
	var payload browsePayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMalformedPayload, err)
	}

	var tracks []models.Track
	for _, list := range payload.Navigation.Lists {
		tracks = append(tracks, list.Items...)
	}
	return tracks, nil
}
