package routing

import (
	"errors"
	"fmt"
)

// Common routing errors that can be checked with errors.Is().
var (
	// ErrNoBackendForModel is returned when no active backend advertises
	// the requested model. This is a caller error, never retried.
	ErrNoBackendForModel = errors.New("no backend serves model")

	// ErrNoModelsAvailable is returned when the catalog has no models to
	// route to at all.
	ErrNoModelsAvailable = errors.New("no models available")

	// ErrInvalidMode is returned for an unknown priority mode.
	ErrInvalidMode = errors.New("invalid priority mode")

	// ErrInvalidStrategy is returned for an unknown selection strategy.
	ErrInvalidStrategy = errors.New("invalid selection strategy")
)

// NoBackendForModelError is returned when the backend catalog has no
// match for the requested model.
type NoBackendForModelError struct {
	// Model is the requested model.
	Model string
}

// Error implements the error interface.
func (e *NoBackendForModelError) Error() string {
	return fmt.Sprintf("no backend serves model %q", e.Model)
}

// Is implements error matching for errors.Is().
func (e *NoBackendForModelError) Is(target error) bool {
	return target == ErrNoBackendForModel
}
