package decision

import (
	"testing"

	"github.com/beliefdrift/beliefdrift/internal/domain"
)

func bundle(confidence, divergence float64) domain.BeliefMetricsBundle {
	b := domain.DefaultBundle()
	b.AvgConceptConfidence = confidence
	b.BeliefDivergence = divergence
	return b
}

func TestChooseNoConfig(t *testing.T) {
	action, reason := Choose(nil, bundle(0.1, 0.9))
	if action != "" || reason != "" {
		t.Errorf("Choose(nil) = (%q, %q), want empty pair", action, reason)
	}
}

func TestChooseTiers(t *testing.T) {
	conf := map[string]any{
		"divergence_threshold":            0.3,
		"correction_divergence_threshold": 0.45,
		"concept_confidence_threshold":    0.5,
		"l2d_action": map[string]any{
			"enable":               true,
			"divergence_threshold": 0.35,
		},
	}

	tests := []struct {
		name       string
		bundle     domain.BeliefMetricsBundle
		wantAction string
	}{
		{"correction tier", bundle(1.0, 0.5), ActionCorrectHuman},
		{"low confidence tier", bundle(0.4, 0.1), ActionAppendObservation},
		{"l2d tier", bundle(1.0, 0.4), ActionListenToDisambiguate},
		{"ask human tier", bundle(1.0, 0.32), ActionAskHuman},
		{"no trigger", bundle(1.0, 0.1), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, reason := Choose(conf, tt.bundle)
			if action != tt.wantAction {
				t.Errorf("action = %q, want %q", action, tt.wantAction)
			}
			if tt.wantAction != "" && reason == "" {
				t.Error("expected a reason for a fired tier")
			}
		})
	}
}

// Correction outranks the confidence check even when both would fire.
func TestChoosePriorityOrdering(t *testing.T) {
	conf := map[string]any{
		"divergence_threshold":            0.3,
		"correction_divergence_threshold": 0.45,
	}

	action, reason := Choose(conf, bundle(0.1, 0.9))
	if action != ActionCorrectHuman {
		t.Fatalf("action = %q, want %q", action, ActionCorrectHuman)
	}
	want := "Belief divergence (belief_divergence) 0.90 exceeds correction threshold 0.45."
	if reason != want {
		t.Errorf("reason = %q, want %q", reason, want)
	}
}

// Low confidence outranks both L2D and the baseline ask-human tier.
func TestChooseLowConfidenceBeforeL2D(t *testing.T) {
	conf := map[string]any{
		"divergence_threshold": 0.3,
		"l2d_action":           map[string]any{"enable": true},
	}

	action, _ := Choose(conf, bundle(0.2, 0.35))
	if action != ActionAppendObservation {
		t.Errorf("action = %q, want %q", action, ActionAppendObservation)
	}
}

func TestChooseBoundaryExactness(t *testing.T) {
	t.Run("divergence at threshold triggers", func(t *testing.T) {
		conf := map[string]any{"divergence_threshold": 0.3}
		action, _ := Choose(conf, bundle(1.0, 0.3))
		if action != ActionAskHuman {
			t.Errorf("action = %q, want %q", action, ActionAskHuman)
		}
	})

	t.Run("confidence at threshold does not trigger", func(t *testing.T) {
		conf := map[string]any{"concept_confidence_threshold": 0.5}
		action, _ := Choose(conf, bundle(0.5, 0.0))
		if action != "" {
			t.Errorf("action = %q, want none", action)
		}
	})

	t.Run("divergence at correction threshold triggers correction", func(t *testing.T) {
		conf := map[string]any{"correction_divergence_threshold": 0.45}
		action, _ := Choose(conf, bundle(1.0, 0.45))
		if action != ActionCorrectHuman {
			t.Errorf("action = %q, want %q", action, ActionCorrectHuman)
		}
	})
}

func TestChooseCBWMDisabled(t *testing.T) {
	tests := []struct {
		name string
		conf map[string]any
	}{
		{"new key", map[string]any{"enable_cbwm": false}},
		{"legacy alias", map[string]any{"cbwm_enabled": false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, _ := Choose(tt.conf, bundle(0.1, 0.0))
			if action != "" {
				t.Errorf("action = %q, want none with cbwm disabled", action)
			}
		})
	}
}

func TestChooseFallbackNote(t *testing.T) {
	conf := map[string]any{"divergence_threshold": 0.3}

	t.Run("note returned verbatim", func(t *testing.T) {
		b := bundle(1.0, 0.0)
		b.Note = "belief graphs in agreement"
		action, reason := Choose(conf, b)
		if action != "" {
			t.Fatalf("action = %q, want none", action)
		}
		if reason != "belief graphs in agreement" {
			t.Errorf("reason = %q, want the note verbatim", reason)
		}
	})

	t.Run("unset note yields empty reason", func(t *testing.T) {
		_, reason := Choose(conf, bundle(1.0, 0.0))
		if reason != "" {
			t.Errorf("reason = %q, want empty", reason)
		}
	})
}

func TestChooseReasonCitesMetricName(t *testing.T) {
	conf := map[string]any{"divergence_threshold": 0.3}
	b := bundle(1.0, 0.42)
	b.DivergenceMetric = domain.MetricConceptJSDivergence

	_, reason := Choose(conf, b)
	want := "Belief divergence (concept_js_divergence) 0.42 exceeds threshold 0.30."
	if reason != want {
		t.Errorf("reason = %q, want %q", reason, want)
	}
}

func TestChooseEmptyMetricNameFallsBack(t *testing.T) {
	conf := map[string]any{"divergence_threshold": 0.3}
	b := domain.BeliefMetricsBundle{AvgConceptConfidence: 1.0, BeliefDivergence: 0.4}

	_, reason := Choose(conf, b)
	want := "Belief divergence (belief_divergence) 0.40 exceeds threshold 0.30."
	if reason != want {
		t.Errorf("reason = %q, want %q", reason, want)
	}
}

func TestChooseConfiguredActionNames(t *testing.T) {
	conf := map[string]any{
		"divergence_threshold":   0.3,
		"high_divergence_action": "RequestGuidance",
	}

	action, _ := Choose(conf, bundle(1.0, 0.5))
	// Correction defaults to 0.45; 0.5 exceeds it, so correction wins.
	if action != ActionCorrectHuman {
		t.Fatalf("action = %q, want %q", action, ActionCorrectHuman)
	}

	action, _ = Choose(conf, bundle(1.0, 0.35))
	if action != "RequestGuidance" {
		t.Errorf("action = %q, want RequestGuidance", action)
	}
}
