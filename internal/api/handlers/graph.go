package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/beliefdrift/beliefdrift/internal/domain"
	"github.com/beliefdrift/beliefdrift/internal/worldmodel"
)

// GraphHandler exposes the robot/human belief graphs for reading and
// updating.
type GraphHandler struct {
	container *worldmodel.Container
}

func NewGraphHandler(container *worldmodel.Container) *GraphHandler {
	return &GraphHandler{container: container}
}

// graphPayload is the wire shape of a belief graph.
type graphPayload struct {
	Nodes []domain.BeliefNode `json:"nodes"`
	Edges []domain.BeliefEdge `json:"edges"`
}

func (p graphPayload) toGraph() *worldmodel.Graph {
	g := worldmodel.NewGraph()
	for _, n := range p.Nodes {
		g.AddNode(n)
	}
	for _, e := range p.Edges {
		g.AddEdge(e.Source, e.Target, e.Relation)
	}
	return g
}

func payloadFrom(g *worldmodel.Graph) graphPayload {
	return graphPayload{Nodes: g.Nodes(), Edges: g.Edges()}
}

type updateGraphRequest struct {
	Mode  string              `json:"mode,omitempty"`
	Nodes []domain.BeliefNode `json:"nodes"`
	Edges []domain.BeliefEdge `json:"edges"`
}

type graphSummaryResponse struct {
	Role          string  `json:"role"`
	NodeCount     int     `json:"node_count"`
	EdgeCount     int     `json:"edge_count"`
	AvgConfidence float64 `json:"avg_confidence"`
}

func (h *GraphHandler) Update(w http.ResponseWriter, r *http.Request) {
	roleStr := chi.URLParam(r, "role")
	if !domain.ValidRole(roleStr) {
		writeError(w, http.StatusBadRequest, "unknown role, want robot or human")
		return
	}
	role := domain.Role(roleStr)

	var req updateGraphRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mode := worldmodel.UpdateReplace
	if req.Mode != "" {
		if !worldmodel.ValidUpdateMode(req.Mode) {
			writeError(w, http.StatusBadRequest, "unknown update mode, want replace or merge")
			return
		}
		mode = worldmodel.UpdateMode(req.Mode)
	}

	incoming := graphPayload{Nodes: req.Nodes, Edges: req.Edges}.toGraph()
	if err := h.container.UpdateBelief(role, incoming, mode); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	snap, err := h.container.Snapshot(role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, graphSummaryResponse{
		Role:          roleStr,
		NodeCount:     snap.NodeCount(),
		EdgeCount:     snap.EdgeCount(),
		AvgConfidence: snap.AvgConfidence(),
	})
}

func (h *GraphHandler) Get(w http.ResponseWriter, r *http.Request) {
	roleStr := chi.URLParam(r, "role")
	if !domain.ValidRole(roleStr) {
		writeError(w, http.StatusBadRequest, "unknown role, want robot or human")
		return
	}

	snap, err := h.container.Snapshot(domain.Role(roleStr))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Role string `json:"role"`
		graphPayload
	}{Role: roleStr, graphPayload: payloadFrom(snap)})
}
