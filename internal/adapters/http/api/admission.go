// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// AdmissionHandler serves allocation results.
type AdmissionHandler struct {
	svc Service
}

// NewAdmissionHandler creates a new admission handler.
func NewAdmissionHandler(svc Service) *AdmissionHandler {
	return &AdmissionHandler{svc: svc}
}

// HandleGetAdmission handles GET /admission?day=YYYY-MM-DD. A day with
// no stored rows yields 404; a day where nobody consented yields an
// empty allocation.
func (h *AdmissionHandler) HandleGetAdmission(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	day := r.URL.Query().Get("day")
	if day == "" {
		writeError(w, http.StatusBadRequest, "missing_day", nil)
		return
	}

	view, err := h.svc.Admission(r.Context(), day)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
