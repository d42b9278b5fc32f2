// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"

	"enrolld/internal/adapters/repository"
)

// ListHandler serves per-program competition lists.
type ListHandler struct {
	svc Service
}

// NewListHandler creates a new list handler.
func NewListHandler(svc Service) *ListHandler {
	return &ListHandler{svc: svc}
}

type listRow struct {
	ID       int64 `json:"id"`
	Consent  bool  `json:"consent"`
	Priority int   `json:"priority"`
	Phys     int   `json:"phys"`
	Rus      int   `json:"rus"`
	Math     int   `json:"math"`
	Indiv    int   `json:"indiv"`
	Total    int   `json:"total"`
}

type listResponse struct {
	Program string    `json:"program"`
	Day     string    `json:"day,omitempty"`
	Rows    []listRow `json:"rows"`
}

// HandleGetList handles
// GET /list/{program}?day=YYYY-MM-DD&consent=0|1&sort=total_desc|total_asc|id_asc.
// The default order is descending total, ties by ascending id.
func (h *ListHandler) HandleGetList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	program := strings.TrimPrefix(r.URL.Path, "/list/")
	program = strings.TrimSuffix(program, "/")
	if program == "" {
		writeError(w, http.StatusBadRequest, "missing_program", nil)
		return
	}

	var consent *bool
	switch r.URL.Query().Get("consent") {
	case "":
	case "0":
		v := false
		consent = &v
	case "1":
		v := true
		consent = &v
	default:
		writeError(w, http.StatusBadRequest, "bad_consent", nil)
		return
	}

	sortOrder, ok := repository.ParseSort(r.URL.Query().Get("sort"))
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_sort", nil)
		return
	}

	day := r.URL.Query().Get("day")
	rows, err := h.svc.ProgramList(r.Context(), program, day, consent, sortOrder)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]listRow, len(rows))
	for i, row := range rows {
		out[i] = listRow{
			ID:       row.ApplicantID,
			Consent:  row.Consent,
			Priority: row.Priority,
			Phys:     row.Phys,
			Rus:      row.Rus,
			Math:     row.Math,
			Indiv:    row.Indiv,
			Total:    row.Total,
		}
	}
	writeJSON(w, http.StatusOK, listResponse{Program: program, Day: day, Rows: out})
}
