package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Common proxy errors that can be checked with errors.Is().
var (
	// ErrRateLimited is returned when the rate limiter rejects a request.
	ErrRateLimited = errors.New("rate limited")

	// ErrBackendUnavailable is returned when every candidate backend
	// exhausted its retry budget.
	ErrBackendUnavailable = errors.New("no backend available")

	// ErrStreamAborted is returned when the backend drops mid-stream,
	// after response headers were already forwarded. Never retried.
	ErrStreamAborted = errors.New("stream aborted")
)

// RateLimitedError carries the retry-after hint for a 429 response.
type RateLimitedError struct {
	// RetryAfter is how long the client should wait.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// Is implements error matching for errors.Is().
func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

// BackendUnavailableError aggregates the per-backend attempt failures
// after every candidate was exhausted.
type BackendUnavailableError struct {
	// Model is the requested model.
	Model string

	// Attempts lists the per-attempt error descriptions across all
	// candidate backends, in order.
	Attempts []string
}

// Error implements the error interface.
func (e *BackendUnavailableError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("no backend available for model %q", e.Model)
	}
	return fmt.Sprintf("no backend available for model %q after %d attempts: %s",
		e.Model, len(e.Attempts), strings.Join(e.Attempts, "; "))
}

// Is implements error matching for errors.Is().
func (e *BackendUnavailableError) Is(target error) bool {
	return target == ErrBackendUnavailable
}

// errorBody is the wire shape of a gateway error response.
type errorBody struct {
	Error string `json:"error"`
}

// writeError sends a JSON error response. retryAfter, when positive,
// also sets the Retry-After header.
func writeError(w http.ResponseWriter, status int, msg string, retryAfter time.Duration) {
	w.Header().Set("Content-Type", "application/json")
	if retryAfter > 0 {
		secs := int(retryAfter.Round(time.Second).Seconds())
		if secs < 1 {
			secs = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg})
}
