// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// AdminHandler handles destructive maintenance operations.
type AdminHandler struct {
	svc Service
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(svc Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// HandleClear handles POST /clear. It wipes applicants, applications
// and the upload log.
func (h *AdminHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	if err := h.svc.Clear(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
