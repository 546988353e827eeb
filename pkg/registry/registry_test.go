package registry

import (
	"errors"
	"testing"
	"time"

	"stratus-gw/stratus/pkg/config"
)

func boolPtr(v bool) *bool { return &v }

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	return New([]config.BackendConfig{
		{Name: "alpha", URL: "http://alpha:11434"},
		{Name: "beta", URL: "http://beta:11434"},
		{Name: "off", URL: "http://off:11434", Enabled: boolPtr(false)},
	})
}

func TestRegistry_New(t *testing.T) {
	r := testRegistry(t)
	if got := len(r.List()); got != 3 {
		t.Fatalf("List() len = %d, want 3", got)
	}
	b, ok := r.Get("alpha")
	if !ok {
		t.Fatal("Get(alpha) not found")
	}
	if !b.Active() {
		t.Error("alpha should start active")
	}
	if off, _ := r.Get("off"); off.Active() {
		t.Error("disabled backend should not be active")
	}
}

func TestRegistry_AddRemove(t *testing.T) {
	r := testRegistry(t)

	if _, err := r.Add("gamma", "http://gamma:11434"); err != nil {
		t.Fatalf("Add(gamma) error: %v", err)
	}
	if _, err := r.Add("gamma", "http://other:11434"); !errors.Is(err, ErrBackendExists) {
		t.Fatalf("duplicate Add = %v, want ErrBackendExists", err)
	}
	if _, err := r.Add("bad", "not a url"); err == nil {
		t.Fatal("Add with invalid url should fail")
	}
	if err := r.Remove("gamma"); err != nil {
		t.Fatalf("Remove(gamma) error: %v", err)
	}
	if err := r.Remove("gamma"); !errors.Is(err, ErrBackendNotFound) {
		t.Fatalf("second Remove = %v, want ErrBackendNotFound", err)
	}
}

func TestRegistry_EnableDisable(t *testing.T) {
	r := testRegistry(t)

	if err := r.Disable("alpha"); err != nil {
		t.Fatalf("Disable error: %v", err)
	}
	if b, _ := r.Get("alpha"); b.Active() {
		t.Error("disabled backend still active")
	}
	if err := r.Enable("alpha"); err != nil {
		t.Fatalf("Enable error: %v", err)
	}
	if b, _ := r.Get("alpha"); !b.Active() {
		t.Error("re-enabled backend not active")
	}
	if err := r.Enable("ghost"); !errors.Is(err, ErrBackendNotFound) {
		t.Fatalf("Enable(ghost) = %v, want ErrBackendNotFound", err)
	}
}

func TestRegistry_CandidatesFor(t *testing.T) {
	r := testRegistry(t)
	now := time.Now()

	alpha, _ := r.Get("alpha")
	alpha.SetModels(map[string]ModelDetails{"llama3": {}, "qwen3": {}}, now)
	beta, _ := r.Get("beta")
	beta.SetModels(map[string]ModelDetails{"llama3": {}}, now)
	off, _ := r.Get("off")
	off.SetModels(map[string]ModelDetails{"llama3": {}}, now)

	got := r.CandidatesFor("llama3")
	if len(got) != 2 || got[0].Name() != "alpha" || got[1].Name() != "beta" {
		t.Fatalf("CandidatesFor(llama3) = %v, want [alpha beta]", names(got))
	}
	if got := r.CandidatesFor("qwen3"); len(got) != 1 || got[0].Name() != "alpha" {
		t.Fatalf("CandidatesFor(qwen3) = %v, want [alpha]", names(got))
	}
	if got := r.CandidatesFor("ghost"); len(got) != 0 {
		t.Fatalf("CandidatesFor(ghost) = %v, want empty", names(got))
	}

	// An unhealthy backend drops out of candidacy.
	alpha.SetHealthy(false)
	if got := r.CandidatesFor("qwen3"); len(got) != 0 {
		t.Fatalf("unhealthy backend still a candidate: %v", names(got))
	}
}

func TestRegistry_Federation(t *testing.T) {
	r := testRegistry(t)
	now := time.Now()

	alpha, _ := r.Get("alpha")
	alpha.SetModels(map[string]ModelDetails{
		"llama3": {ParameterSize: "8B"},
		"qwen3":  {},
	}, now)
	beta, _ := r.Get("beta")
	beta.SetModels(map[string]ModelDetails{
		"llama3": {ParameterSize: "70B"},
		"phi3":   {},
	}, now)

	models := r.FederatedModels()
	if len(models) != 3 {
		t.Fatalf("FederatedModels() len = %d, want 3", len(models))
	}

	tags := r.FederatedTags()
	if len(tags) != 3 {
		t.Fatalf("FederatedTags() len = %d, want 3", len(tags))
	}
	if tags[0].Name != "llama3" || tags[1].Name != "phi3" || tags[2].Name != "qwen3" {
		t.Fatalf("FederatedTags() order = %v", tags)
	}
	// First backend in name order wins on conflicts.
	if tags[0].Details.ParameterSize != "8B" {
		t.Fatalf("llama3 details = %+v, want alpha's", tags[0].Details)
	}
}

func TestBackend_OngoingCounter(t *testing.T) {
	r := testRegistry(t)
	b, _ := r.Get("alpha")
	b.Acquire()
	b.Acquire()
	if got := b.OngoingRequests(); got != 2 {
		t.Fatalf("OngoingRequests() = %d, want 2", got)
	}
	b.Release()
	if got := b.OngoingRequests(); got != 1 {
		t.Fatalf("OngoingRequests() = %d, want 1", got)
	}
}

func names(backends []*Backend) []string {
	out := make([]string, len(backends))
	for i, b := range backends {
		out[i] = b.Name()
	}
	return out
}
