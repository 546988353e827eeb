package routing

import (
	"errors"
	"testing"
)

type fakeBackend struct {
	name    string
	ongoing int64
}

func (b *fakeBackend) Name() string           { return b.name }
func (b *fakeBackend) OngoingRequests() int64 { return b.ongoing }

func names(backends []Backend) []string {
	out := make([]string, len(backends))
	for i, b := range backends {
		out[i] = b.Name()
	}
	return out
}

func TestParseStrategy(t *testing.T) {
	for _, valid := range []string{"round_robin", "least_busy"} {
		if _, err := ParseStrategy(valid); err != nil {
			t.Errorf("ParseStrategy(%q) = %v, want nil", valid, err)
		}
	}
	if _, err := ParseStrategy("random"); err == nil {
		t.Error("ParseStrategy(random) = nil, want error")
	}
}

// Alternating requests for one model must rotate through its backends
// in order: A, B, A, B.
func TestSelector_RoundRobinRotation(t *testing.T) {
	s := NewSelector(StrategyRoundRobin)
	a := &fakeBackend{name: "a"}
	b := &fakeBackend{name: "b"}
	candidates := []Backend{a, b}

	want := []string{"a", "b", "a", "b"}
	for i, first := range want {
		ordered, err := s.Order("llama3", candidates)
		if err != nil {
			t.Fatalf("Order() error: %v", err)
		}
		if ordered[0].Name() != first {
			t.Fatalf("request %d: first = %q, want %q (order %v)", i, ordered[0].Name(), first, names(ordered))
		}
		if len(ordered) != len(candidates) {
			t.Fatalf("request %d: got %d candidates, want %d", i, len(ordered), len(candidates))
		}
	}
}

func TestSelector_CursorsPerModel(t *testing.T) {
	s := NewSelector(StrategyRoundRobin)
	candidates := []Backend{&fakeBackend{name: "a"}, &fakeBackend{name: "b"}}

	first, _ := s.Order("llama3", candidates)
	other, _ := s.Order("qwen3", candidates)
	if first[0].Name() != "a" || other[0].Name() != "a" {
		t.Fatalf("fresh cursors should both start at a, got %q and %q", first[0].Name(), other[0].Name())
	}
}

func TestSelector_LeastBusy(t *testing.T) {
	s := NewSelector(StrategyLeastBusy)
	candidates := []Backend{
		&fakeBackend{name: "busy", ongoing: 7},
		&fakeBackend{name: "idle", ongoing: 0},
		&fakeBackend{name: "light", ongoing: 2},
	}
	ordered, err := s.Order("llama3", candidates)
	if err != nil {
		t.Fatalf("Order() error: %v", err)
	}
	want := []string{"idle", "light", "busy"}
	for i, name := range want {
		if ordered[i].Name() != name {
			t.Fatalf("order = %v, want %v", names(ordered), want)
		}
	}
}

func TestSelector_NoCandidates(t *testing.T) {
	s := NewSelector(StrategyRoundRobin)
	_, err := s.Order("ghost", nil)
	if !errors.Is(err, ErrNoBackendForModel) {
		t.Fatalf("Order() = %v, want ErrNoBackendForModel", err)
	}
	var typed *NoBackendForModelError
	if !errors.As(err, &typed) || typed.Model != "ghost" {
		t.Fatalf("error should carry the model name: %v", err)
	}
}

func TestSelector_OrderDoesNotMutateInput(t *testing.T) {
	s := NewSelector(StrategyRoundRobin)
	a := &fakeBackend{name: "a"}
	b := &fakeBackend{name: "b"}
	candidates := []Backend{a, b}
	s.Order("llama3", candidates)
	s.Order("llama3", candidates)
	if candidates[0] != a || candidates[1] != b {
		t.Fatal("Order mutated the caller's slice")
	}
}
