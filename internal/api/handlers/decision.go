package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/beliefdrift/beliefdrift/internal/decision"
	"github.com/beliefdrift/beliefdrift/internal/domain"
)

// DecisionHandler runs the action selector over a caller-supplied config
// and metrics bundle.
type DecisionHandler struct{}

func NewDecisionHandler() *DecisionHandler {
	return &DecisionHandler{}
}

type decideRequest struct {
	Config map[string]any `json:"config"`
	Bundle bundlePayload  `json:"bundle"`
}

// bundlePayload mirrors domain.BeliefMetricsBundle but distinguishes unset
// fields so the bundle defaults apply.
type bundlePayload struct {
	AvgConceptConfidence *float64                  `json:"avg_concept_confidence"`
	BeliefDivergence     *float64                  `json:"belief_divergence"`
	DivergenceMetric     string                    `json:"divergence_metric"`
	DivergenceMetrics    *domain.DivergenceMetrics `json:"divergence_metrics"`
	Note                 string                    `json:"note"`
}

func (p bundlePayload) toBundle() domain.BeliefMetricsBundle {
	b := domain.DefaultBundle()
	if p.AvgConceptConfidence != nil {
		b.AvgConceptConfidence = *p.AvgConceptConfidence
	}
	if p.BeliefDivergence != nil {
		b.BeliefDivergence = *p.BeliefDivergence
	}
	if p.DivergenceMetric != "" {
		b.DivergenceMetric = p.DivergenceMetric
	}
	b.DivergenceMetrics = p.DivergenceMetrics
	b.Note = p.Note
	return b
}

type decideResponse struct {
	Action string `json:"action,omitempty"`
	Reason string `json:"reason"`
}

func (h *DecisionHandler) Decide(w http.ResponseWriter, r *http.Request) {
	var req decideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	action, reason := decision.Choose(req.Config, req.Bundle.toBundle())
	writeJSON(w, http.StatusOK, decideResponse{Action: action, Reason: reason})
}
