package registry

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	"stratus-gw/stratus/pkg/config"
)

// Common registry errors that can be checked with errors.Is().
var (
	// ErrBackendExists is returned when adding a duplicate backend name.
	ErrBackendExists = errors.New("backend already exists")

	// ErrBackendNotFound is returned for operations on unknown backends.
	ErrBackendNotFound = errors.New("backend not found")
)

// Registry is the authoritative set of backend servers. Reads are lock
// cheap and safe from the request path; mutations come from admin
// actions and configuration reload only.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]*Backend
}

// New builds a registry from the configured backends.
func New(cfgs []config.BackendConfig) *Registry {
	r := &Registry{backends: make(map[string]*Backend, len(cfgs))}
	for _, c := range cfgs {
		r.backends[c.Name] = newBackend(c.Name, c.URL, c.BackendEnabled())
	}
	return r
}

// Add registers a new backend. The URL must be absolute.
func (r *Registry) Add(name, baseURL string) (*Backend, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", baseURL)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.backends[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrBackendExists, name)
	}
	b := newBackend(name, baseURL, true)
	r.backends[name] = b
	return b, nil
}

// Remove deletes a backend.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.backends[name]; !ok {
		return fmt.Errorf("%w: %s", ErrBackendNotFound, name)
	}
	delete(r.backends, name)
	return nil
}

// Enable flips the operator switch on.
func (r *Registry) Enable(name string) error { return r.setEnabled(name, true) }

// Disable flips the operator switch off. In-flight requests finish;
// new selections skip the backend.
func (r *Registry) Disable(name string) error { return r.setEnabled(name, false) }

func (r *Registry) setEnabled(name string, v bool) error {
	r.mu.RLock()
	b, ok := r.backends[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrBackendNotFound, name)
	}
	b.setEnabled(v)
	return nil
}

// Get looks up a backend by name.
func (r *Registry) Get(name string) (*Backend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.backends[name]
	return b, ok
}

// List returns all backends sorted by name.
func (r *Registry) List() []*Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Backend, 0, len(r.backends))
	for _, b := range r.backends {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Active returns the backends eligible for traffic, sorted by name.
func (r *Registry) Active() []*Backend {
	var out []*Backend
	for _, b := range r.List() {
		if b.Active() {
			out = append(out, b)
		}
	}
	return out
}

// CandidatesFor returns the active backends advertising a model, sorted
// by name so round-robin rotation is stable.
func (r *Registry) CandidatesFor(model string) []*Backend {
	var out []*Backend
	for _, b := range r.Active() {
		if b.HasModel(model) {
			out = append(out, b)
		}
	}
	return out
}

// TagModel is one entry of the federated model list.
type TagModel struct {
	Name    string       `json:"name"`
	Details ModelDetails `json:"details"`
}

// FederatedModels merges the model names advertised by all active
// backends.
func (r *Registry) FederatedModels() map[string]struct{} {
	out := make(map[string]struct{})
	for _, b := range r.Active() {
		for name := range b.Models() {
			out[name] = struct{}{}
		}
	}
	return out
}

// FederatedTags merges the full model lists of all active backends,
// deduplicated by model name and sorted. When two backends advertise
// the same model, the first backend in name order wins.
func (r *Registry) FederatedTags() []TagModel {
	merged := make(map[string]ModelDetails)
	for _, b := range r.Active() {
		for name, d := range b.Models() {
			if _, ok := merged[name]; !ok {
				merged[name] = d
			}
		}
	}
	out := make([]TagModel, 0, len(merged))
	for name, d := range merged {
		out = append(out, TagModel{Name: name, Details: d})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Status is one backend's health summary for the health endpoint.
type Status struct {
	Name        string    `json:"name"`
	Active      bool      `json:"active"`
	Enabled     bool      `json:"enabled"`
	Healthy     bool      `json:"healthy"`
	Models      int       `json:"models"`
	RefreshedAt time.Time `json:"refreshed_at,omitzero"`
}

// Statuses summarizes every backend for the health endpoint.
func (r *Registry) Statuses() []Status {
	backends := r.List()
	out := make([]Status, 0, len(backends))
	for _, b := range backends {
		out = append(out, Status{
			Name:        b.Name(),
			Active:      b.Active(),
			Enabled:     b.Enabled(),
			Healthy:     b.Healthy(),
			Models:      len(b.Models()),
			RefreshedAt: b.RefreshedAt(),
		})
	}
	return out
}
