package socket

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/desertthunder/aria/internal/shared"
)

func TestPushEventFor(t *testing.T) {
	tests := []struct {
		command string
		event   string
	}{
		{CmdListPlaylist, EventPushListPlaylist},
		{CmdBrowseLibrary, EventPushBrowseLibrary},
		{CmdSearch, EventPushBrowseLibrary},
		{CmdGetState, EventPushState},
		{CmdPlay, EventPushState},
		{CmdAddToQueue, EventPushQueue},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			event, ok := PushEventFor(tt.command)
			if !ok {
				t.Fatalf("expected mapping for %s", tt.command)
			}
			if event != tt.event {
				t.Errorf("expected %s, got %s", tt.event, event)
			}
		})
	}

	if _, ok := PushEventFor("volumeDown"); ok {
		t.Error("expected no mapping for unlisted command")
	}
}

func TestDecodeState(t *testing.T) {
	t.Run("Valid Payload", func(t *testing.T) {
		msg, err := NewMessage(EventPushState, map[string]any{
			"status":   "play",
			"title":    "Lithium",
			"artist":   "Nirvana",
			"seek":     42.5,
			"duration": 255.0,
			"uri":      "music/lithium.flac",
		})
		if err != nil {
			t.Fatalf("NewMessage failed: %v", err)
		}

		state, err := DecodeState(msg)
		if err != nil {
			t.Fatalf("DecodeState failed: %v", err)
		}
		if !state.Playing() {
			t.Error("expected playing state")
		}
		if state.Position != 42.5 {
			t.Errorf("expected position 42.5, got %f", state.Position)
		}
	})

	t.Run("Missing Status", func(t *testing.T) {
		msg, _ := NewMessage(EventPushState, map[string]string{"title": "Lithium"})
		if _, err := DecodeState(msg); !errors.Is(err, shared.ErrMalformedPayload) {
			t.Errorf("expected ErrMalformedPayload, got %v", err)
		}
	})

	t.Run("Empty Payload", func(t *testing.T) {
		if _, err := DecodeState(Message{Event: EventPushState}); !errors.Is(err, shared.ErrMalformedPayload) {
			t.Errorf("expected ErrMalformedPayload, got %v", err)
		}
	})

	t.Run("Non Object Payload", func(t *testing.T) {
		msg := Message{Event: EventPushState, Data: json.RawMessage(`"play"`)}
		if _, err := DecodeState(msg); !errors.Is(err, shared.ErrMalformedPayload) {
			t.Errorf("expected ErrMalformedPayload, got %v", err)
		}
	})
}

func TestDecodeListing(t *testing.T) {
	msg, _ := NewMessage(EventPushListPlaylist, []string{"Morning", "Evening"})
	names, err := DecodeListing(msg)
	if err != nil {
		t.Fatalf("DecodeListing failed: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 names, got %d", len(names))
	}

	bad := Message{Event: EventPushListPlaylist, Data: json.RawMessage(`{"not":"a list"}`)}
	if _, err := DecodeListing(bad); !errors.Is(err, shared.ErrMalformedPayload) {
		t.Errorf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestDecodeBrowse(t *testing.T) {
	t.Run("Flattens Nested Lists", func(t *testing.T) {
		payload := map[string]any{
			"navigation": map[string]any{
				"lists": []map[string]any{
					{"items": []map[string]any{
						{"title": "Alpha", "artist": "Ann", "uri": "music/a.flac", "type": "song"},
						{"title": "Beta", "artist": "Bob", "uri": "music/b.flac", "type": "song"},
					}},
					{"items": []map[string]any{
						{"title": "Morning", "uri": "playlists/Morning", "type": "folder"},
					}},
				},
			},
		}
		msg, err := NewMessage(EventPushBrowseLibrary, payload)
		if err != nil {
			t.Fatalf("NewMessage failed: %v", err)
		}

		tracks, err := DecodeBrowse(msg)
		if err != nil {
			t.Fatalf("DecodeBrowse failed: %v", err)
		}
		if len(tracks) != 3 {
			t.Fatalf("expected 3 flattened items, got %d", len(tracks))
		}
		if !tracks[0].Playable() {
			t.Error("song item should be playable")
		}
		if tracks[2].Playable() {
			t.Error("folder item should not be playable")
		}
	})

	t.Run("Malformed Payload", func(t *testing.T) {
		msg := Message{Event: EventPushBrowseLibrary, Data: json.RawMessage(`[1,2,3]`)}
		if _, err := DecodeBrowse(msg); !errors.Is(err, shared.ErrMalformedPayload) {
			t.Errorf("expected ErrMalformedPayload, got %v", err)
		}
	})
}
