// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// ReportHandler serves the machine-readable daily report.
type ReportHandler struct {
	svc Service
}

// NewReportHandler creates a new report handler.
func NewReportHandler(svc Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// HandleGetReport handles GET /report?day=YYYY-MM-DD. The payload bundles
// the day's allocation, stats and cutoff dynamics for external renderers.
func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	day := r.URL.Query().Get("day")
	if day == "" {
		writeError(w, http.StatusBadRequest, "missing_day", nil)
		return
	}

	view, err := h.svc.Report(r.Context(), day)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
