package routing

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Strategy orders candidate backends for a model.
type Strategy string

const (
	// StrategyRoundRobin rotates candidates with a per-model cursor.
	StrategyRoundRobin Strategy = "round_robin"

	// StrategyLeastBusy orders candidates by outstanding request count.
	StrategyLeastBusy Strategy = "least_busy"
)

// ParseStrategy validates a selection strategy string.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyRoundRobin, StrategyLeastBusy:
		return Strategy(s), nil
	}
	return "", ErrInvalidStrategy
}

// Backend is the selector's view of a candidate server.
type Backend interface {
	// Name identifies the backend.
	Name() string

	// OngoingRequests is the number of requests currently in flight.
	OngoingRequests() int64
}

// Selector orders the backends that advertise a target model. Cursors
// are per model and per process; cross-process fairness is deliberately
// loose, round-robin drift between workers does not affect correctness.
type Selector struct {
	strategy Strategy

	mu      sync.Mutex
	cursors map[string]*atomic.Uint64
}

// NewSelector creates a selector with the given strategy.
func NewSelector(strategy Strategy) *Selector {
	return &Selector{strategy: strategy, cursors: make(map[string]*atomic.Uint64)}
}

// Order returns the candidates for a model in attempt order. The first
// entry is the preferred backend; callers advance through the rest when
// attempts are exhausted. Fails with ErrNoBackendForModel when the
// candidate list is empty.
func (s *Selector) Order(model string, candidates []Backend) ([]Backend, error) {
	if len(candidates) == 0 {
		return nil, &NoBackendForModelError{Model: model}
	}

	ordered := make([]Backend, len(candidates))
	copy(ordered, candidates)

	switch s.strategy {
	case StrategyLeastBusy:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].OngoingRequests() < ordered[j].OngoingRequests()
		})
	default:
		start := int((s.cursor(model).Add(1) - 1) % uint64(len(ordered)))
		rotated := make([]Backend, 0, len(ordered))
		rotated = append(rotated, ordered[start:]...)
		rotated = append(rotated, ordered[:start]...)
		ordered = rotated
	}
	return ordered, nil
}

func (s *Selector) cursor(model string) *atomic.Uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cursors[model]
	if !ok {
		c = &atomic.Uint64{}
		s.cursors[model] = c
	}
	return c
}
