package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/aria/internal/shared"
	ariatest "github.com/desertthunder/aria/internal/testing"
)

func TestPlayerAPIClient(t *testing.T) {
	t.Run("GetState Parses Response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/getState" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"play","title":"Lithium","artist":"Nirvana","seek":42.5,"duration":255,"uri":"music/lithium.flac"}`))
		}))
		defer server.Close()

		client := NewPlayerAPIClient(PlayerAPIOpts{BaseURL: server.URL})
		state, err := client.GetState(context.Background())
		if err != nil {
			t.Fatalf("GetState failed: %v", err)
		}
		if !state.Playing() {
			t.Error("expected playing state")
		}
		if state.Position != 42.5 {
			t.Errorf("expected position 42.5, got %f", state.Position)
		}
	})

	t.Run("GetState Rejects Malformed Body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()

		client := NewPlayerAPIClient(PlayerAPIOpts{BaseURL: server.URL})
		if _, err := client.GetState(context.Background()); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Command Hits The Commands Endpoint", func(t *testing.T) {
		var gotCmd string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotCmd = r.URL.Query().Get("cmd")
			w.Write([]byte(`{"response":"ok"}`))
		}))
		defer server.Close()

		client := NewPlayerAPIClient(PlayerAPIOpts{BaseURL: server.URL})
		if err := client.Command(context.Background(), "pause"); err != nil {
			t.Fatalf("Command failed: %v", err)
		}
		if gotCmd != "pause" {
			t.Errorf("expected cmd=pause, got %q", gotCmd)
		}
	})

	t.Run("Non 200 Is An API Error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewPlayerAPIClient(PlayerAPIOpts{BaseURL: server.URL})
		if err := client.Ping(context.Background()); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("Transport Failure Is An API Error", func(t *testing.T) {
		httpClient := &http.Client{
			Transport: ariatest.NewMockRoundTripper(nil, errors.New("connection refused")),
		}
		client := NewPlayerAPIClient(PlayerAPIOpts{
			BaseURL:    "http://player.invalid/api/v1",
			HTTPClient: httpClient,
		})

		if err := client.Ping(context.Background()); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}
