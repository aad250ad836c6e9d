package handlers

import (
	"net/http"
	"strconv"

	"github.com/beliefdrift/beliefdrift/internal/domain"
	"github.com/beliefdrift/beliefdrift/internal/service"
)

// RecordsHandler triggers evaluations and serves the persisted record
// history.
type RecordsHandler struct {
	monitor     *service.MonitorService
	recordStore domain.RecordStore
}

func NewRecordsHandler(monitor *service.MonitorService, recordStore domain.RecordStore) *RecordsHandler {
	return &RecordsHandler{monitor: monitor, recordStore: recordStore}
}

// Evaluate runs one on-demand monitor step and returns the record.
func (h *RecordsHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	record, err := h.monitor.Evaluate(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, record)
}

type listRecordsResponse struct {
	Records []domain.DivergenceRecord `json:"records"`
	Count   int                       `json:"count"`
}

func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"), 50)

	records, err := h.recordStore.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list records")
		return
	}
	if records == nil {
		records = []domain.DivergenceRecord{}
	}
	writeJSON(w, http.StatusOK, listRecordsResponse{Records: records, Count: len(records)})
}

type similarRecordsResponse struct {
	Records []domain.RecordWithDistance `json:"records"`
	Count   int                         `json:"count"`
}

// Similar finds past records whose divergence profile is closest to the
// queried (js, gap, rel) triple.
func (h *RecordsHandler) Similar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	js, errJS := strconv.ParseFloat(q.Get("js"), 64)
	gap, errGap := strconv.ParseFloat(q.Get("gap"), 64)
	rel, errRel := strconv.ParseFloat(q.Get("rel"), 64)
	if errJS != nil || errGap != nil || errRel != nil {
		writeError(w, http.StatusBadRequest, "js, gap and rel query params are required floats")
		return
	}

	limit := parseLimit(q.Get("limit"), 10)
	profile := []float32{float32(js), float32(gap), float32(rel)}

	records, err := h.recordStore.FindSimilar(r.Context(), profile, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search records")
		return
	}
	if records == nil {
		records = []domain.RecordWithDistance{}
	}
	writeJSON(w, http.StatusOK, similarRecordsResponse{Records: records, Count: len(records)})
}

func parseLimit(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	limit, err := strconv.Atoi(s)
	if err != nil || limit <= 0 {
		return fallback
	}
	return limit
}
