package registry

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ModelDetails describes one model as advertised by a backend's
// catalog endpoint.
type ModelDetails struct {
	// ParameterSize is the advertised parameter count, e.g. "8B".
	ParameterSize string `json:"parameter_size,omitempty"`

	// QuantizationLevel is the advertised quantization, e.g. "Q4_0".
	QuantizationLevel string `json:"quantization_level,omitempty"`

	// Family is the model family, e.g. "llama".
	Family string `json:"family,omitempty"`

	// ContextLength is the advertised context window, zero if unknown.
	ContextLength int64 `json:"context_length,omitempty"`
}

// Backend is one inference server. All fields are accessed through
// methods; the zero value is not usable, use newBackend.
type Backend struct {
	name    string
	baseURL string

	// enabled is the operator's switch, healthy the refresher's verdict.
	// The backend serves traffic only when both are set.
	enabled atomic.Bool
	healthy atomic.Bool

	// ongoing counts in-flight requests for least-busy selection.
	ongoing atomic.Int64

	mu          sync.RWMutex
	models      map[string]ModelDetails
	refreshedAt time.Time
}

func newBackend(name, baseURL string, enabled bool) *Backend {
	b := &Backend{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		models:  make(map[string]ModelDetails),
	}
	b.enabled.Store(enabled)
	// Optimistic until the first refresh says otherwise, so a fresh
	// gateway can serve before the schedule fires.
	b.healthy.Store(true)
	return b
}

// Name identifies the backend.
func (b *Backend) Name() string { return b.name }

// BaseURL is the backend's base URL without a trailing slash.
func (b *Backend) BaseURL() string { return b.baseURL }

// Active reports whether the backend should receive traffic.
func (b *Backend) Active() bool {
	return b.enabled.Load() && b.healthy.Load()
}

// Enabled reports the operator switch alone.
func (b *Backend) Enabled() bool { return b.enabled.Load() }

// Healthy reports the refresher's verdict alone.
func (b *Backend) Healthy() bool { return b.healthy.Load() }

func (b *Backend) setEnabled(v bool) { b.enabled.Store(v) }

// SetHealthy records the refresher's reachability verdict.
func (b *Backend) SetHealthy(v bool) { b.healthy.Store(v) }

// OngoingRequests is the number of requests currently in flight.
func (b *Backend) OngoingRequests() int64 { return b.ongoing.Load() }

// Acquire marks a request in flight. Callers must pair it with Release.
func (b *Backend) Acquire() { b.ongoing.Add(1) }

// Release marks a request finished.
func (b *Backend) Release() { b.ongoing.Add(-1) }

// HasModel reports whether the backend advertises the model.
func (b *Backend) HasModel(model string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.models[model]
	return ok
}

// Models returns a copy of the backend's model catalog.
func (b *Backend) Models() map[string]ModelDetails {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]ModelDetails, len(b.models))
	for name, d := range b.models {
		out[name] = d
	}
	return out
}

// SetModels replaces the backend's model catalog wholesale and stamps
// the refresh time.
func (b *Backend) SetModels(models map[string]ModelDetails, at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if models == nil {
		models = make(map[string]ModelDetails)
	}
	b.models = models
	b.refreshedAt = at
}

// RefreshedAt is the time of the last successful catalog refresh, zero
// before the first one.
func (b *Backend) RefreshedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.refreshedAt
}
