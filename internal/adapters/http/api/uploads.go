// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"time"

	"enrolld/internal/domain/model"
)

// UploadsHandler serves upload history and known days.
type UploadsHandler struct {
	svc Service
}

// NewUploadsHandler creates a new uploads handler.
func NewUploadsHandler(svc Service) *UploadsHandler {
	return &UploadsHandler{svc: svc}
}

type uploadEntry struct {
	ID       string `json:"id"`
	Day      string `json:"day"`
	Program  string `json:"program"`
	LoadedAt string `json:"loaded_at"`
}

// HandleGetUploads handles GET /uploads?day=&program=. Entries come
// back newest first.
func (h *UploadsHandler) HandleGetUploads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	recs, err := h.svc.Uploads(r.Context(), r.URL.Query().Get("day"), r.URL.Query().Get("program"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]uploadEntry{"uploads": toUploadEntries(recs)})
}

// HandleGetDays handles GET /days.
func (h *UploadsHandler) HandleGetDays(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	days, err := h.svc.Days(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if days == nil {
		days = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"days": days})
}

func toUploadEntries(recs []model.UploadRecord) []uploadEntry {
	out := make([]uploadEntry, len(recs))
	for i, rec := range recs {
		out[i] = uploadEntry{
			ID:       rec.ID,
			Day:      rec.Day,
			Program:  rec.Program,
			LoadedAt: rec.LoadedAt.Format(time.RFC3339),
		}
	}
	return out
}
