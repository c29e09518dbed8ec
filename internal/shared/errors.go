package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrInvalidSession   = fmt.Errorf("invalid persisted session")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrRecordNotFound     = fmt.Errorf("movie not found")
	ErrDecodeResponse     = fmt.Errorf("failed to decode response")

	// List coordination errors
	ErrStaleResponse = fmt.Errorf("stale response discarded")
	ErrFetchInFlight = fmt.Errorf("fetch already in flight")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidImage    = fmt.Errorf("invalid image")

	// Navigation errors
	ErrUnknownRoute = fmt.Errorf("unknown route")
)
