// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"enrolld/internal/adapters/repository"
	"enrolld/internal/app"
	"enrolld/internal/domain/cascade"
	"enrolld/internal/domain/model"
	"enrolld/internal/domain/reconcile"
)

// Service bundles the operations HTTP handlers need. Using an interface
// keeps the handler layer loosely coupled to the app package.
type Service interface {
	Seats() map[string]int
	Reconcile(ctx context.Context, day, program string, batch []model.BatchRow) error
	ProgramList(ctx context.Context, program, day string, consent *bool, sort repository.Sort) ([]repository.Row, error)
	Cascade(ctx context.Context, day string, limit int) ([]cascade.Row, error)
	Admission(ctx context.Context, day string) (*app.AdmissionView, error)
	Stats(ctx context.Context, day string) (*app.StatsView, error)
	Report(ctx context.Context, day string) (*app.ReportView, error)
	Uploads(ctx context.Context, day, program string) ([]model.UploadRecord, error)
	Days(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}

// Server wires HTTP routes for the admission API.
type Server struct {
	healthHandler    *HealthHandler
	uploadHandler    *UploadHandler
	listHandler      *ListHandler
	cascadeHandler   *CascadeHandler
	admissionHandler *AdmissionHandler
	statsHandler     *StatsHandler
	reportHandler    *ReportHandler
	uploadsHandler   *UploadsHandler
	adminHandler     *AdminHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(svc Service) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		uploadHandler:    NewUploadHandler(svc),
		listHandler:      NewListHandler(svc),
		cascadeHandler:   NewCascadeHandler(svc),
		admissionHandler: NewAdmissionHandler(svc),
		statsHandler:     NewStatsHandler(svc),
		reportHandler:    NewReportHandler(svc),
		uploadsHandler:   NewUploadsHandler(svc),
		adminHandler:     NewAdminHandler(svc),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/upload", MetricsMiddleware(s.uploadHandler.HandleUpload, "upload"))
	mux.HandleFunc("/list/", MetricsMiddleware(s.listHandler.HandleGetList, "list"))
	mux.HandleFunc("/cascade", MetricsMiddleware(s.cascadeHandler.HandleGetCascade, "cascade"))
	mux.HandleFunc("/admission", MetricsMiddleware(s.admissionHandler.HandleGetAdmission, "admission"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleGetStats, "stats"))
	mux.HandleFunc("/report", MetricsMiddleware(s.reportHandler.HandleGetReport, "report"))
	mux.HandleFunc("/uploads", MetricsMiddleware(s.uploadsHandler.HandleGetUploads, "uploads"))
	mux.HandleFunc("/days", MetricsMiddleware(s.uploadsHandler.HandleGetDays, "days"))
	mux.HandleFunc("/clear", MetricsMiddleware(s.adminHandler.HandleClear, "clear"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *reconcile.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "validation_error", err)
	case errors.Is(err, reconcile.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_error", err)
	case errors.Is(err, app.ErrUnknownProgram):
		writeError(w, http.StatusNotFound, "unknown_program", err)
	case errors.Is(err, repository.ErrNoData):
		writeError(w, http.StatusNotFound, "no_data", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
