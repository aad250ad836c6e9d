package decision

import (
	"fmt"

	"github.com/beliefdrift/beliefdrift/internal/domain"
)

// rule is one tier of the decision chain. match returns the chosen action
// and reason when the tier fires.
type rule struct {
	name  string
	match func(cfg Config, divergence float64, metric string, bundle domain.BeliefMetricsBundle) (string, string, bool)
}

// rules is evaluated in order and short-circuits on the first match.
// Ordering is load-bearing: correction outranks the confidence check, and
// L2D is checked before the baseline ask-human tier so an L2D threshold at
// or above the baseline can intercept moderate divergence.
var rules = []rule{
	{
		name: "correction",
		match: func(cfg Config, divergence float64, metric string, _ domain.BeliefMetricsBundle) (string, string, bool) {
			if divergence < cfg.CorrectionDivergenceThreshold {
				return "", "", false
			}
			reason := fmt.Sprintf("Belief divergence (%s) %.2f exceeds correction threshold %.2f.",
				metric, divergence, cfg.CorrectionDivergenceThreshold)
			return cfg.CorrectionAction, reason, true
		},
	},
	{
		name: "low_confidence",
		match: func(cfg Config, _ float64, _ string, bundle domain.BeliefMetricsBundle) (string, string, bool) {
			// Strict <: confidence exactly at the threshold does not fire.
			if !cfg.CBWMEnabled || bundle.AvgConceptConfidence >= cfg.ConceptConfidenceThreshold {
				return "", "", false
			}
			reason := fmt.Sprintf("Average concept confidence %.2f is below threshold %.2f.",
				bundle.AvgConceptConfidence, cfg.ConceptConfidenceThreshold)
			return cfg.LowConfidenceAction, reason, true
		},
	},
	{
		name: "listen_to_disambiguate",
		match: func(cfg Config, divergence float64, metric string, _ domain.BeliefMetricsBundle) (string, string, bool) {
			if !cfg.L2DEnabled || divergence < cfg.L2DDivergenceThreshold {
				return "", "", false
			}
			reason := fmt.Sprintf("Belief divergence (%s) %.2f exceeds L2D threshold %.2f.",
				metric, divergence, cfg.L2DDivergenceThreshold)
			return cfg.L2DAction, reason, true
		},
	},
	{
		name: "ask_human",
		match: func(cfg Config, divergence float64, metric string, _ domain.BeliefMetricsBundle) (string, string, bool) {
			if divergence < cfg.DivergenceThreshold {
				return "", "", false
			}
			reason := fmt.Sprintf("Belief divergence (%s) %.2f exceeds threshold %.2f.",
				metric, divergence, cfg.DivergenceThreshold)
			return cfg.HighDivergenceAction, reason, true
		},
	},
}

// Choose evaluates the rule chain against a metrics bundle and returns the
// chosen action and a human-readable reason. An empty action means no rule
// fired; the reason is then the bundle's fallback note, verbatim. A nil raw
// config disables the hook entirely.
func Choose(raw map[string]any, bundle domain.BeliefMetricsBundle) (string, string) {
	if raw == nil {
		return "", ""
	}
	return ChooseResolved(Resolve(raw), bundle)
}

// ChooseResolved is Choose for callers that already hold a resolved Config.
func ChooseResolved(cfg Config, bundle domain.BeliefMetricsBundle) (string, string) {
	divergence := bundle.BeliefDivergence
	metric := bundle.DivergenceMetric
	if metric == "" {
		metric = domain.DefaultDivergenceMetric
	}

	for _, r := range rules {
		if action, reason, ok := r.match(cfg, divergence, metric, bundle); ok {
			return action, reason
		}
	}
	return "", bundle.Note
}
