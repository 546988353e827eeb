package routing

import (
	"errors"
	"log/slog"
	"testing"

	"stratus-gw/stratus/pkg/analyzer"
)

func testRouter(mode Mode) *Router {
	return NewRouter(mode, defaultPenalties(), slog.New(slog.DiscardHandler))
}

// Two tier-1 models missing tool support must score below zero and the
// selection must fall through to tier 2.
func TestRouter_ToolRequestFallsThroughTier(t *testing.T) {
	r := testRouter(ModeAdvanced)
	models := []ModelMetadata{
		{Name: "gpt-5", Pricing: Pricing{Prompt: 10}},
		{Name: "gemini-3", Pricing: Pricing{Prompt: 7}},
		{Name: "claude-sonnet", Pricing: Pricing{Prompt: 3}, Capabilities: Capabilities{ToolCalling: true}},
	}
	profile := analyzer.Profile{NeedsToolCalling: true}

	got, err := r.Select(models, profile)
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if got.Model.Name != "claude-sonnet" {
		t.Fatalf("Select() = %q, want claude-sonnet", got.Model.Name)
	}
	if got.Tier != 2 {
		t.Fatalf("Tier = %d, want 2", got.Tier)
	}
	if got.Degraded {
		t.Fatal("Degraded = true, want false")
	}
}

func TestRouter_BestScoreWins(t *testing.T) {
	r := testRouter(ModeFree)
	models := []ModelMetadata{
		{Name: "plain:free"},
		{Name: "coder:free", Capabilities: Capabilities{Code: true}},
	}
	got, err := r.Select(models, analyzer.Profile{NeedsCode: true})
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if got.Model.Name != "coder:free" {
		t.Fatalf("Select() = %q, want coder:free", got.Model.Name)
	}
}

func TestRouter_TiebreakOnPriority(t *testing.T) {
	r := testRouter(ModeFree)
	models := []ModelMetadata{
		{Name: "coder:free", Capabilities: Capabilities{Code: true}},
		{Name: "ranked:free", Priority: 1},
	}
	// Both score 30: base 20 plus the capability bonus for one, base 60
	// minus the missing-code penalty for the other. The explicit
	// priority breaks the tie.
	got, err := r.Select(models, analyzer.Profile{NeedsCode: true})
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if got.Model.Name != "ranked:free" {
		t.Fatalf("Select() = %q, want ranked:free (explicit priority wins ties)", got.Model.Name)
	}
}

func TestRouter_DegradedRescanIgnoresFilter(t *testing.T) {
	r := testRouter(ModeFree)
	models := []ModelMetadata{{Name: "only:free"}}
	got, err := r.Select(models, analyzer.Profile{NeedsImages: true})
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if !got.Degraded {
		t.Fatal("Degraded = false, want true")
	}
	if got.Model.Name != "only:free" {
		t.Fatalf("Select() = %q, want only:free", got.Model.Name)
	}
	if got.Score >= 0 {
		t.Fatalf("Score = %v, want negative (filter ignored)", got.Score)
	}
}

func TestRouter_ArbitraryFallbackWhenModeExcludesAll(t *testing.T) {
	r := testRouter(ModeLuxury)
	models := []ModelMetadata{{Name: "llama3:free"}, {Name: "phi3:free"}}
	got, err := r.Select(models, analyzer.Profile{})
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if !got.Degraded {
		t.Fatal("Degraded = false, want true")
	}
	if got.Tier != 0 {
		t.Fatalf("Tier = %d, want 0 for arbitrary fallback", got.Tier)
	}
}

func TestRouter_NoModels(t *testing.T) {
	r := testRouter(ModeFree)
	if _, err := r.Select(nil, analyzer.Profile{}); !errors.Is(err, ErrNoModelsAvailable) {
		t.Fatalf("Select(nil) = %v, want ErrNoModelsAvailable", err)
	}
}
