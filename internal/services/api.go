// REST client for the player's HTTP API, used when the socket is unavailable.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/desertthunder/aria/internal/models"
	"github.com/desertthunder/aria/internal/shared"
	"golang.org/x/time/rate"
)

// PlayerAPIClient issues requests against the player's REST endpoints. The
// socket layer is the primary transport; this client backs status checks and
// one-shot commands when the socket is down.
type PlayerAPIClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// PlayerAPIOpts configures a [PlayerAPIClient].
type PlayerAPIOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	RateLimit  float64 // Requests per second (default: 5)
}

// NewPlayerAPIClient creates a REST client for the player API.
func NewPlayerAPIClient(opts PlayerAPIOpts) *PlayerAPIClient {
	if opts.BaseURL == "" {
		opts.BaseURL = "http://volumio.local:3000/api/v1"
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	return &PlayerAPIClient{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
	}
}

// GetState fetches the current playback state.
func (c *PlayerAPIClient) GetState(ctx context.Context) (*models.PlayerState, error) {
	body, err := c.get(ctx, "/getState")
	if err != nil {
		return nil, err
	}

	var state models.PlayerState
	if err := json.Unmarshal(body, &state); err != nil {
		return nil, fmt.Errorf("%w: failed to parse state: %v", shared.ErrAPIRequest, err)
	}
	return &state, nil
}

// Command issues a one-shot playback command (play, pause, stop, next, prev).
func (c *PlayerAPIClient) Command(ctx context.Context, name string) error {
	_, err := c.get(ctx, "/commands/?cmd="+url.QueryEscape(name))
	return err
}

// Ping reports whether the player API is reachable.
func (c *PlayerAPIClient) Ping(ctx context.Context) error {
	_, err := c.get(ctx, "/ping")
	return err
}

// get performs a rate-limited GET and returns the response body.
func (c *PlayerAPIClient) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", shared.ErrAPIRequest, path, resp.StatusCode)
	}
	return body, nil
}
