package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/beliefdrift/beliefdrift/internal/divergence"
)

// DivergenceHandler compares two inline belief graphs without touching the
// container, so clients can score arbitrary snapshots.
type DivergenceHandler struct{}

func NewDivergenceHandler() *DivergenceHandler {
	return &DivergenceHandler{}
}

type compareRequest struct {
	GraphA graphPayload `json:"graph_a"`
	GraphB graphPayload `json:"graph_b"`
}

func (h *DivergenceHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	metrics := divergence.Compute(req.GraphA.toGraph(), req.GraphB.toGraph())
	writeJSON(w, http.StatusOK, metrics)
}
