package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Connection errors
	ErrNotConnected    = fmt.Errorf("player connection unavailable")
	ErrAlreadyClosed   = fmt.Errorf("connection already closed")
	ErrResponseTimeout = fmt.Errorf("response timed out")

	// Payload errors
	ErrMalformedPayload = fmt.Errorf("malformed payload")

	// Generation workflow errors
	ErrGeneratorFailed  = fmt.Errorf("text generator request failed")
	ErrGenerationActive = fmt.Errorf("a generation run is already active")

	// API and cache errors
	ErrAPIRequest       = fmt.Errorf("API request failed")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
	ErrTrackNotFound    = fmt.Errorf("track not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
