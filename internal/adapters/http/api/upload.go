// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"io"
	"net/http"
	"strings"

	"enrolld/internal/ingest"
)

// maxUploadBytes bounds how much CSV a single upload may carry.
const maxUploadBytes = 32 << 20

// UploadHandler handles snapshot upload requests.
type UploadHandler struct {
	svc Service
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(svc Service) *UploadHandler {
	return &UploadHandler{svc: svc}
}

type uploadResponse struct {
	Status  string `json:"status"`
	Day     string `json:"day"`
	Program string `json:"program"`
	Rows    int    `json:"rows"`
}

// HandleUpload handles POST /upload?day=YYYY-MM-DD&program=CODE.
// The CSV snapshot arrives either as a multipart "file" part or as the
// raw request body.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	day := r.URL.Query().Get("day")
	program := r.URL.Query().Get("program")

	body, err := uploadBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_upload", err)
		return
	}
	defer body.Close()

	batch, err := ingest.ParseCSV(body)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := h.svc.Reconcile(r.Context(), day, program, batch); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Status:  "ok",
		Day:     day,
		Program: program,
		Rows:    len(batch),
	})
}

// uploadBody extracts the CSV stream: the "file" multipart part when
// present, the raw body otherwise.
func uploadBody(r *http.Request) (io.ReadCloser, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, err
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	return r.Body, nil
}
