package domain

// Metric names as they appear in logged records.
const (
	MetricConceptJSDivergence = "concept_js_divergence"
	MetricEntityConfidenceGap = "entity_confidence_gap"
	MetricRelationConsistency = "relation_consistency"

	// DefaultDivergenceMetric is the placeholder metric name used in reason
	// text when a bundle does not say which metric its value came from.
	DefaultDivergenceMetric = "belief_divergence"
)

// DivergenceMetrics is one comparison of two belief graphs reduced to three
// scalars. Created fresh on every comparison; never mutated afterwards.
//
// ConceptJSDivergence is in natural-log units, bounded by [0, ln 2].
// EntityConfidenceGap and RelationConsistency are in [0, 1]; a consistency
// of 1.0 means identical edge sets.
type DivergenceMetrics struct {
	ConceptJSDivergence float64 `json:"concept_js_divergence"`
	EntityConfidenceGap float64 `json:"entity_confidence_gap"`
	RelationConsistency float64 `json:"relation_consistency"`
}

// Get returns the metric value for a name, false for unknown names.
func (m DivergenceMetrics) Get(name string) (float64, bool) {
	switch name {
	case MetricConceptJSDivergence:
		return m.ConceptJSDivergence, true
	case MetricEntityConfidenceGap:
		return m.EntityConfidenceGap, true
	case MetricRelationConsistency:
		return m.RelationConsistency, true
	}
	return 0, false
}

// AsMap returns the metrics as a flat map keyed by metric name, the shape
// downstream logging expects.
func (m DivergenceMetrics) AsMap() map[string]float64 {
	return map[string]float64{
		MetricConceptJSDivergence: m.ConceptJSDivergence,
		MetricEntityConfidenceGap: m.EntityConfidenceGap,
		MetricRelationConsistency: m.RelationConsistency,
	}
}

// BeliefMetricsBundle is the input to action selection: one gating
// divergence value, the name of the metric it came from (used only in
// reason text), the tracked average concept confidence, optionally the full
// metrics for downstream logging, and a fallback note returned verbatim
// when no rule fires.
type BeliefMetricsBundle struct {
	AvgConceptConfidence float64            `json:"avg_concept_confidence"`
	BeliefDivergence     float64            `json:"belief_divergence"`
	DivergenceMetric     string             `json:"divergence_metric"`
	DivergenceMetrics    *DivergenceMetrics `json:"divergence_metrics,omitempty"`
	Note                 string             `json:"note,omitempty"`
}

// DefaultBundle returns a bundle with the neutral defaults: full confidence
// and zero divergence.
func DefaultBundle() BeliefMetricsBundle {
	return BeliefMetricsBundle{
		AvgConceptConfidence: 1.0,
		BeliefDivergence:     0.0,
		DivergenceMetric:     DefaultDivergenceMetric,
	}
}
