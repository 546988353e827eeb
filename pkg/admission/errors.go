package admission

import (
	"errors"
	"fmt"
)

// Common admission errors that can be checked with errors.Is().
var (
	// ErrIPDenied is returned when a client IP fails the allow/deny filter.
	ErrIPDenied = errors.New("client ip denied")

	// ErrUnauthenticated is returned when no valid API key accompanies
	// the request. Unknown, revoked, and disabled keys all fail the
	// same way so that probing cannot distinguish them.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrEndpointBlocked is returned when a non-admin key requests an
	// endpoint on the block list.
	ErrEndpointBlocked = errors.New("endpoint blocked")
)

// IPDeniedError is returned when a client IP is rejected by the filter.
type IPDeniedError struct {
	// IP is the client address that was rejected.
	IP string
}

// Error implements the error interface.
func (e *IPDeniedError) Error() string {
	return fmt.Sprintf("client ip %s denied by policy", e.IP)
}

// Is implements error matching for errors.Is().
func (e *IPDeniedError) Is(target error) bool {
	return target == ErrIPDenied
}

// EndpointBlockedError is returned when a key without admin privileges
// requests a blocked endpoint.
type EndpointBlockedError struct {
	// Path is the requested endpoint.
	Path string

	// Key is the name of the key that made the request.
	Key string
}

// Error implements the error interface.
func (e *EndpointBlockedError) Error() string {
	return fmt.Sprintf("endpoint %s blocked for key %q", e.Path, e.Key)
}

// Is implements error matching for errors.Is().
func (e *EndpointBlockedError) Is(target error) bool {
	return target == ErrEndpointBlocked
}
