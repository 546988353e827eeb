package routing

import "strings"

// Mode is the operator's priority mode. It decides how the catalog is
// partitioned into tiers before scoring.
type Mode string

const (
	// ModeFree prefers free models, then cloud, then paid.
	ModeFree Mode = "free"

	// ModeDailyDrive prefers cloud models, then free, then paid.
	ModeDailyDrive Mode = "daily_drive"

	// ModeAdvanced prefers curated top-tier paid models, then mid-tier
	// paid, then other paid. Free models are skipped entirely.
	ModeAdvanced Mode = "advanced"

	// ModeLuxury prefers premium-priced models (>= $5/1M), then
	// mid-priced ($1-5/1M), then other paid. Free models are skipped.
	ModeLuxury Mode = "luxury"
)

// TierCount is the number of tiers every mode partitions into.
const TierCount = 3

// ParseMode validates a priority mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFree, ModeDailyDrive, ModeAdvanced, ModeLuxury:
		return Mode(s), nil
	}
	return "", ErrInvalidMode
}

// topTierPatterns name the curated top-tier paid models for advanced
// and luxury modes. Matching is substring on the lowercase model name.
var topTierPatterns = []string{
	"claude-4.5", "claude-4", "gpt-5", "gpt-5.1",
	"gemini-3", "gemini-3-pro", "o4", "o4-mini", "o4-mini-high",
}

// midTierPatterns name the mid-tier paid models.
var midTierPatterns = []string{
	"claude-opus", "claude-sonnet", "gpt-4", "gpt-4.1",
	"gemini-2.5-pro", "gemini-2.5-flash",
}

func matchesAny(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Tier places a model in its tier under the mode, 1 through TierCount.
// Zero means the mode excludes the model (free models in advanced and
// luxury modes). Within a mode's universe the partition is total: every
// admitted model lands in exactly one tier.
func (m Mode) Tier(model ModelMetadata) int {
	switch m {
	case ModeFree:
		switch {
		case model.Free():
			return 1
		case model.Cloud():
			return 2
		default:
			return 3
		}
	case ModeDailyDrive:
		switch {
		case model.Cloud():
			return 1
		case model.Free():
			return 2
		default:
			return 3
		}
	case ModeAdvanced:
		switch {
		case model.Free():
			return 0
		case matchesAny(model.Name, topTierPatterns):
			return 1
		case matchesAny(model.Name, midTierPatterns) ||
			(model.Pricing.Prompt >= 1.0 && model.Pricing.Prompt <= 6.0):
			return 2
		default:
			return 3
		}
	case ModeLuxury:
		switch {
		case model.Free():
			return 0
		case matchesAny(model.Name, topTierPatterns) || model.Pricing.Prompt >= 5.0:
			return 1
		case matchesAny(model.Name, midTierPatterns) || model.Pricing.Prompt >= 1.0:
			return 2
		default:
			return 3
		}
	}
	return 0
}

// Partition splits models into tiers under the mode. The result always
// has TierCount slices; excluded models appear in none of them.
func (m Mode) Partition(models []ModelMetadata) [][]ModelMetadata {
	tiers := make([][]ModelMetadata, TierCount)
	for _, model := range models {
		if t := m.Tier(model); t > 0 {
			tiers[t-1] = append(tiers[t-1], model)
		}
	}
	return tiers
}
