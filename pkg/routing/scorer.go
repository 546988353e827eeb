package routing

import (
	"strings"

	"stratus-gw/stratus/pkg/analyzer"
	"stratus-gw/stratus/pkg/config"
)

// maxScore caps a model's final score. There is no floor: negative
// scores are meaningful to the tier selection, which filters them out.
const maxScore = 100.0

// maxKeywordBonus caps the description keyword-overlap bonus.
const maxKeywordBonus = 15.0

// capabilityBonus is awarded per required capability the model has.
const capabilityBonus = 10.0

// versatilityBonus is awarded to models with three or more capabilities.
const versatilityBonus = 5.0

// Scorer rates models against a request profile. Scoring is a pure
// function of its inputs; the same (model, profile) pair always yields
// the same score.
type Scorer struct {
	mode      Mode
	penalties config.PenaltyConfig
}

// NewScorer creates a scorer for the given mode. The penalty table
// tunes how hard a missing capability is punished; zero fields take
// the configuration defaults.
func NewScorer(mode Mode, penalties config.PenaltyConfig) *Scorer {
	return &Scorer{mode: mode, penalties: penalties}
}

// Score rates one model against the profile. Higher is better; a
// negative score means the model is missing a hard requirement.
//
// The score is additive: a priority base, a bonus or penalty per
// required capability, a keyword-overlap bonus against the model
// description, a versatility bonus, and in luxury mode a budget bonus
// for premium pricing.
func (s *Scorer) Score(m ModelMetadata, profile analyzer.Profile) float64 {
	score := 20.0
	if m.Priority > 0 {
		score = max(0, 60.0-10.0*float64(m.Priority-1))
	}

	type need struct {
		required bool
		has      bool
		penalty  int
	}
	needs := []need{
		{profile.NeedsImages, m.Capabilities.Images, s.penalties.Images},
		{profile.NeedsCode, m.Capabilities.Code, s.penalties.Code},
		{profile.NeedsToolCalling, m.Capabilities.ToolCalling, s.penalties.ToolCalling},
		{profile.NeedsInternet, m.Capabilities.Internet, s.penalties.Internet},
		{profile.NeedsThinking, m.Capabilities.Thinking, s.penalties.Thinking},
		{profile.NeedsFast, m.Capabilities.Fast, s.penalties.Fast},
	}
	for _, n := range needs {
		if !n.required {
			continue
		}
		if n.has {
			score += capabilityBonus
		} else {
			score -= float64(n.penalty)
		}
	}

	score += keywordBonus(m.Description, profile.Keywords)

	if m.Capabilities.Count() >= 3 {
		score += versatilityBonus
	}

	if s.mode == ModeLuxury {
		switch {
		case m.Pricing.Prompt > 5.0:
			score += 10
		case m.Pricing.Prompt > 1.0:
			score += 5
		}
	}

	return min(score, maxScore)
}

// keywordBonus scales with the fraction of profile keywords found in
// the model description, up to maxKeywordBonus.
func keywordBonus(description string, keywords []string) float64 {
	if description == "" || len(keywords) == 0 {
		return 0
	}
	lower := strings.ToLower(description)
	matched := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			matched++
		}
	}
	if matched == 0 {
		return 0
	}
	return min(maxKeywordBonus, float64(matched)/float64(len(keywords))*maxKeywordBonus)
}
