package routing

import (
	"log/slog"
	"sort"

	"stratus-gw/stratus/pkg/analyzer"
	"stratus-gw/stratus/pkg/config"
)

// Selection is the outcome of one auto-routing decision.
type Selection struct {
	// Model is the chosen model.
	Model ModelMetadata

	// Score is the model's score against the profile.
	Score float64

	// Tier the model was selected from, 1-based. Zero for the arbitrary
	// fallback path.
	Tier int

	// Degraded is set when the selection ignored the negative-score
	// filter or fell back to an arbitrary model. Degraded selections
	// are logged and counted, never failed.
	Degraded bool
}

// Router picks the best model for a request under the active priority
// mode. It is safe for concurrent use; all state is read-only.
type Router struct {
	mode   Mode
	scorer *Scorer
	logger *slog.Logger
}

// NewRouter creates an auto-router.
func NewRouter(mode Mode, penalties config.PenaltyConfig, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{mode: mode, scorer: NewScorer(mode, penalties), logger: logger}
}

// Mode returns the active priority mode.
func (r *Router) Mode() Mode { return r.mode }

// Select walks the tiers in ascending order and returns the best
// non-negative scoring model from the first tier that yields one. When
// every tier comes up empty it re-scans tier 1 ignoring the score
// filter, and as a last resort picks an arbitrary available model,
// flagging the selection as degraded.
func (r *Router) Select(models []ModelMetadata, profile analyzer.Profile) (Selection, error) {
	if len(models) == 0 {
		return Selection{}, ErrNoModelsAvailable
	}

	tiers := r.mode.Partition(models)
	for i, tier := range tiers {
		if best, ok := r.best(tier, profile, false); ok {
			best.Tier = i + 1
			r.logger.Info("auto-routing selected model",
				slog.String("mode", string(r.mode)),
				slog.String("model", best.Model.Name),
				slog.Float64("score", best.Score),
				slog.Int("tier", best.Tier))
			return best, nil
		}
	}

	// Every tier scored its models below zero. Re-scan tier 1 without
	// the filter so a hard-requirement miss degrades service instead of
	// failing it.
	if best, ok := r.best(tiers[0], profile, true); ok {
		best.Tier = 1
		best.Degraded = true
		r.logger.Warn("auto-routing degraded: no model met requirements, using best of tier 1",
			slog.String("mode", string(r.mode)),
			slog.String("model", best.Model.Name),
			slog.Float64("score", best.Score))
		return best, nil
	}

	// Tier 1 itself was empty (the mode excluded everything that
	// remains). Any available model beats an error.
	fallback := Selection{Model: models[0], Score: r.scorer.Score(models[0], profile), Degraded: true}
	r.logger.Warn("auto-routing degraded: falling back to arbitrary model",
		slog.String("mode", string(r.mode)),
		slog.String("model", fallback.Model.Name))
	return fallback, nil
}

// best scores every model in the tier and returns the winner. Ties
// break on explicit priority, lower wins, unset last. With unfiltered
// set, negative scores stay in contention.
func (r *Router) best(tier []ModelMetadata, profile analyzer.Profile, unfiltered bool) (Selection, bool) {
	type scored struct {
		model ModelMetadata
		score float64
	}
	var candidates []scored
	for _, m := range tier {
		s := r.scorer.Score(m, profile)
		if s < 0 && !unfiltered {
			continue
		}
		candidates = append(candidates, scored{model: m, score: s})
	}
	if len(candidates) == 0 {
		return Selection{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return effectivePriority(candidates[i].model) < effectivePriority(candidates[j].model)
	})
	top := candidates[0]
	return Selection{Model: top.model, Score: top.score}, true
}

// effectivePriority sorts unprioritized models after explicit ones.
func effectivePriority(m ModelMetadata) int {
	if m.Priority == 0 {
		return 999
	}
	return m.Priority
}
