// Package app wires the domain logic to the record store and exposes
// the operations the transports call. All orchestration lives here;
// handlers stay thin.
package app

import (
	"context"
	"fmt"
	"time"

	"enrolld/internal/adapters/repository"
	"enrolld/internal/domain/admission"
	"enrolld/internal/domain/cascade"
	"enrolld/internal/domain/model"
	"enrolld/internal/domain/reconcile"
	"enrolld/pkg/logger"
	"enrolld/pkg/metrics"
)

// Service coordinates snapshot reconciliation, allocation and the
// reporting views over a single record store.
type Service struct {
	store        repository.Store
	seats        map[string]int
	cascadeLimit int
	log          logger.Logger
	reconciler   *reconcile.Reconciler
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSeats sets the program capacity map. The key set defines which
// programs exist.
func WithSeats(seats map[string]int) Option {
	return func(s *Service) {
		if len(seats) > 0 {
			s.seats = seats
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithCascadeLimit caps the cascade view row count.
func WithCascadeLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.cascadeLimit = limit
		}
	}
}

// New creates a Service over the given store.
func New(store repository.Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	s := &Service{
		store:        store,
		seats:        map[string]int{},
		cascadeLimit: 1000,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get()
	}
	s.reconciler = reconcile.New(store, reconcile.WithLogger(s.log))
	return s, nil
}

// Seats returns the configured program capacity map.
func (s *Service) Seats() map[string]int {
	return s.seats
}

// Reconcile validates the target program and merges the snapshot batch
// into the store.
func (s *Service) Reconcile(ctx context.Context, day, program string, batch []model.BatchRow) error {
	if _, ok := s.seats[program]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProgram, program)
	}
	return s.reconciler.Reconcile(ctx, day, program, batch)
}

// ProgramList returns the current competition list for one program,
// optionally filtered by day and consent, in the requested sort order
// (descending total when unset).
func (s *Service) ProgramList(ctx context.Context, program, day string, consent *bool, sort repository.Sort) ([]repository.Row, error) {
	if _, ok := s.seats[program]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProgram, program)
	}
	if sort == "" {
		sort = repository.SortTotalDesc
	}
	return s.store.QueryApplications(ctx, repository.Filter{
		Day:     day,
		Program: program,
		Consent: consent,
		Sort:    sort,
	})
}

// Cascade builds the merged per-applicant view for one day. A limit of
// zero falls back to the configured cap.
func (s *Service) Cascade(ctx context.Context, day string, limit int) ([]cascade.Row, error) {
	if limit <= 0 {
		limit = s.cascadeLimit
	}
	rows, err := s.store.QueryApplications(ctx, repository.Filter{Day: day})
	if err != nil {
		return nil, err
	}
	return cascade.Build(toCascadeApps(rows), limit), nil
}

// AdmissionView is the outcome of one allocation run.
type AdmissionView struct {
	Day      string             `json:"day"`
	Admitted map[string][]int64 `json:"admitted"`
	Counts   map[string]int     `json:"counts"`
	Cutoffs  map[string]*int    `json:"cutoffs"`
}

// Admission runs the allocation over the given day's applications.
// Returns repository.ErrNoData when the day has no rows at all; a day
// where nobody consented still yields a valid, empty allocation.
func (s *Service) Admission(ctx context.Context, day string) (*AdmissionView, error) {
	rows, err := s.store.QueryApplications(ctx, repository.Filter{Day: day})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, repository.ErrNoData
	}

	start := time.Now()
	res := admission.Allocate(toAdmissionApps(rows), s.seats)
	metrics.RecordAllocationRun()
	metrics.RecordAllocationDuration(float64(time.Since(start).Milliseconds()))

	counts := make(map[string]int, len(res.Admitted))
	for program, ids := range res.Admitted {
		counts[program] = len(ids)
		metrics.UpdateAdmitted(program, len(ids))
	}
	return &AdmissionView{
		Day:      day,
		Admitted: res.Admitted,
		Counts:   counts,
		Cutoffs:  res.Cutoffs,
	}, nil
}

// StatsView aggregates per-priority application counts and, when the
// day admits anyone, per-priority admitted counts.
type StatsView struct {
	Day        string                 `json:"day"`
	ByPriority map[string]map[int]int `json:"by_priority"`
	Admitted   map[string]map[int]int `json:"admitted_by_priority"`
}

// Stats computes the per-priority aggregations for one day.
func (s *Service) Stats(ctx context.Context, day string) (*StatsView, error) {
	rows, err := s.store.QueryApplications(ctx, repository.Filter{Day: day})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, repository.ErrNoData
	}
	apps := toAdmissionApps(rows)
	res := admission.Allocate(apps, s.seats)
	return &StatsView{
		Day:        day,
		ByPriority: admission.CountByPriority(apps, s.seats),
		Admitted:   admission.AdmittedByPriority(apps, res),
	}, nil
}

// ReportView is the machine-readable report payload: the day's
// allocation, its stats, and cutoff dynamics across every known day.
type ReportView struct {
	Day      string                     `json:"day"`
	Seats    map[string]int             `json:"seats"`
	Cutoffs  map[string]*int            `json:"cutoffs"`
	Counts   map[string]int             `json:"counts"`
	Stats    *StatsView                 `json:"stats"`
	Dynamics map[string]map[string]*int `json:"cutoff_dynamics"`
}

// Report assembles the full report for one day, including cutoff
// dynamics computed by re-running the allocation over every stored day.
func (s *Service) Report(ctx context.Context, day string) (*ReportView, error) {
	view, err := s.Admission(ctx, day)
	if err != nil {
		return nil, err
	}
	stats, err := s.Stats(ctx, day)
	if err != nil {
		return nil, err
	}

	days, err := s.store.Days(ctx)
	if err != nil {
		return nil, err
	}
	dynamics := make(map[string]map[string]*int, len(days))
	for _, d := range days {
		rows, err := s.store.QueryApplications(ctx, repository.Filter{Day: d})
		if err != nil {
			return nil, err
		}
		res := admission.Allocate(toAdmissionApps(rows), s.seats)
		dynamics[d] = res.Cutoffs
	}

	return &ReportView{
		Day:      day,
		Seats:    s.seats,
		Cutoffs:  view.Cutoffs,
		Counts:   view.Counts,
		Stats:    stats,
		Dynamics: dynamics,
	}, nil
}

// Uploads returns the upload history, newest first, optionally filtered
// by day and program.
func (s *Service) Uploads(ctx context.Context, day, program string) ([]model.UploadRecord, error) {
	return s.store.Uploads(ctx, day, program)
}

// Days returns the distinct days present in the store, ascending.
func (s *Service) Days(ctx context.Context) ([]string, error) {
	return s.store.Days(ctx)
}

// Clear wipes all stored data.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.log.Info(ctx, "record store cleared")
	return nil
}

func toAdmissionApps(rows []repository.Row) []admission.Application {
	apps := make([]admission.Application, len(rows))
	for i, r := range rows {
		apps[i] = admission.Application{
			ApplicantID: r.ApplicantID,
			Program:     r.Program,
			Priority:    r.Priority,
			Consent:     r.Consent,
			Total:       r.Total,
		}
	}
	return apps
}

func toCascadeApps(rows []repository.Row) []cascade.Application {
	apps := make([]cascade.Application, len(rows))
	for i, r := range rows {
		apps[i] = cascade.Application{
			ApplicantID: r.ApplicantID,
			Program:     r.Program,
			Priority:    r.Priority,
			Consent:     r.Consent,
			Total:       r.Total,
		}
	}
	return apps
}
