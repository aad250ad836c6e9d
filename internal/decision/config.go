// Package decision maps belief metrics onto at most one corrective action
// through a prioritized rule chain.
package decision

// Defaults applied during config resolution. The correction and L2D
// thresholds default relative to the resolved base divergence threshold.
const (
	DefaultDivergenceThreshold        = 0.3
	DefaultCorrectionThresholdFactor  = 1.5
	DefaultConceptConfidenceThreshold = 0.5

	ActionCorrectHuman         = "CorrectHuman"
	ActionAppendObservation    = "AppendObservation"
	ActionAskHuman             = "AskHuman"
	ActionListenToDisambiguate = "ListenToDisambiguate"
)

// Config is the fully resolved decision configuration: every threshold and
// flag populated, dependent defaults already applied. Build it with Resolve
// and treat it as immutable.
type Config struct {
	DivergenceThreshold           float64
	CorrectionDivergenceThreshold float64
	ConceptConfidenceThreshold    float64
	CBWMEnabled                   bool

	L2DEnabled             bool
	L2DDivergenceThreshold float64
	L2DAction              string

	CorrectionAction     string
	LowConfidenceAction  string
	HighDivergenceAction string
}

// Resolve builds a Config from a raw option map, applying defaults for
// every missing option. Unknown keys are ignored. Resolution order matters:
// the correction and L2D thresholds default off the resolved base
// divergence threshold, so that one is read first.
func Resolve(raw map[string]any) Config {
	divThreshold := getFloat(raw, "divergence_threshold", DefaultDivergenceThreshold)

	cfg := Config{
		DivergenceThreshold:           divThreshold,
		CorrectionDivergenceThreshold: getFloat(raw, "correction_divergence_threshold", divThreshold*DefaultCorrectionThresholdFactor),
		ConceptConfidenceThreshold:    getFloat(raw, "concept_confidence_threshold", DefaultConceptConfidenceThreshold),
		CorrectionAction:              getString(raw, "correction_action", ActionCorrectHuman),
		LowConfidenceAction:           getString(raw, "low_confidence_action", ActionAppendObservation),
		HighDivergenceAction:          getString(raw, "high_divergence_action", ActionAskHuman),
	}

	// enable_cbwm with the legacy cbwm_enabled alias as fallback.
	if v, ok := lookupBool(raw, "enable_cbwm"); ok {
		cfg.CBWMEnabled = v
	} else if v, ok := lookupBool(raw, "cbwm_enabled"); ok {
		cfg.CBWMEnabled = v
	} else {
		cfg.CBWMEnabled = true
	}

	l2d := getMap(raw, "l2d_action")
	cfg.L2DEnabled = getBool(l2d, "enable", false)
	cfg.L2DDivergenceThreshold = getFloat(l2d, "divergence_threshold", divThreshold)
	cfg.L2DAction = getString(l2d, "action", ActionListenToDisambiguate)

	return cfg
}

func getFloat(m map[string]any, key string, fallback float64) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return fallback
}

func lookupBool(m map[string]any, key string) (bool, bool) {
	v, ok := m[key].(bool)
	return v, ok
}

func getBool(m map[string]any, key string, fallback bool) bool {
	if v, ok := lookupBool(m, key); ok {
		return v
	}
	return fallback
}

func getString(m map[string]any, key string, fallback string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// getMap tolerates both map[string]any (JSON) and map[any]any (some YAML
// decoders) shapes for nested sections.
func getMap(m map[string]any, key string) map[string]any {
	switch v := m[key].(type) {
	case map[string]any:
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out
	}
	return map[string]any{}
}
