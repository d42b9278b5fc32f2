// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"

	"enrolld/internal/domain/cascade"
)

// CascadeHandler serves the merged per-applicant cascade view.
type CascadeHandler struct {
	svc Service
}

// NewCascadeHandler creates a new cascade handler.
func NewCascadeHandler(svc Service) *CascadeHandler {
	return &CascadeHandler{svc: svc}
}

type cascadeResponse struct {
	Day  string        `json:"day,omitempty"`
	Rows []cascade.Row `json:"rows"`
}

// HandleGetCascade handles GET /cascade?day=YYYY-MM-DD&limit=N.
func (h *CascadeHandler) HandleGetCascade(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	day := r.URL.Query().Get("day")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "bad_limit", err)
			return
		}
		limit = v
	}

	rows, err := h.svc.Cascade(r.Context(), day, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cascadeResponse{Day: day, Rows: rows})
}
