// Package memory provides an in-memory record store with staged
// transactions. It backs tests and the "memory" driver; semantics match
// the SQL stores, including referential integrity between applications
// and applicants.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"enrolld/internal/adapters/repository"
	"enrolld/internal/domain/model"
)

// Compile-time contract assertion.
var _ repository.Store = (*Store)(nil)

type appKey struct {
	day     string
	program string
	id      int64
}

// Store keeps all state in maps guarded by a single mutex. A
// transaction mutates a deep copy and swaps it in on commit, so a
// failed transaction leaves prior state untouched.
type Store struct {
	mu           sync.RWMutex
	applicants   map[int64]model.Applicant
	applications map[appKey]model.Application
	uploads      []model.UploadRecord
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{
		applicants:   make(map[int64]model.Applicant),
		applications: make(map[appKey]model.Application),
	}
}

// tx operates on a staged copy of the store state.
type tx struct {
	applicants   map[int64]model.Applicant
	applications map[appKey]model.Application
	uploads      []model.UploadRecord
}

func (t *tx) UpsertApplicant(_ context.Context, a model.Applicant) error {
	t.applicants[a.ID] = a
	return nil
}

func (t *tx) UpsertApplication(_ context.Context, app model.Application) error {
	if _, ok := t.applicants[app.ApplicantID]; !ok {
		return fmt.Errorf("applicant %d not found: foreign key violation", app.ApplicantID)
	}
	t.applications[appKey{day: app.Day, program: app.Program, id: app.ApplicantID}] = app
	return nil
}

func (t *tx) DeleteApplications(_ context.Context, day, program string, ids []int64) error {
	for _, id := range ids {
		delete(t.applications, appKey{day: day, program: program, id: id})
	}
	return nil
}

func (t *tx) ListApplicationIDs(_ context.Context, day, program string) ([]int64, error) {
	var ids []int64
	for k := range t.applications {
		if k.day == day && k.program == program {
			ids = append(ids, k.id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (t *tx) RecordUpload(_ context.Context, rec model.UploadRecord) error {
	t.uploads = append(t.uploads, rec)
	return nil
}

// RunInTx runs fn on a staged copy and swaps it in only on success.
func (s *Store) RunInTx(_ context.Context, fn func(repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := &tx{
		applicants:   make(map[int64]model.Applicant, len(s.applicants)),
		applications: make(map[appKey]model.Application, len(s.applications)),
		uploads:      make([]model.UploadRecord, len(s.uploads)),
	}
	for id, a := range s.applicants {
		staged.applicants[id] = a
	}
	for k, app := range s.applications {
		staged.applications[k] = app
	}
	copy(staged.uploads, s.uploads)

	if err := fn(staged); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrTx, err)
	}

	s.applicants = staged.applicants
	s.applications = staged.applications
	s.uploads = staged.uploads
	return nil
}

// QueryApplications joins applications with applicant scores and sorts
// per the filter.
func (s *Store) QueryApplications(_ context.Context, f repository.Filter) ([]repository.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]repository.Row, 0)
	for k, app := range s.applications {
		if f.Day != "" && k.day != f.Day {
			continue
		}
		if f.Program != "" && k.program != f.Program {
			continue
		}
		if f.Consent != nil && app.Consent != *f.Consent {
			continue
		}
		a, ok := s.applicants[k.id]
		if !ok {
			continue
		}
		rows = append(rows, repository.Row{
			ApplicantID: k.id,
			Day:         k.day,
			Program:     k.program,
			Consent:     app.Consent,
			Priority:    app.Priority,
			Phys:        a.Phys,
			Rus:         a.Rus,
			Math:        a.Math,
			Indiv:       a.Indiv,
			Total:       a.Total,
		})
	}

	sortRows(rows, f.Sort)
	return rows, nil
}

func sortRows(rows []repository.Row, s repository.Sort) {
	switch s {
	case repository.SortTotalAsc:
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].Total != rows[j].Total {
				return rows[i].Total < rows[j].Total
			}
			return rows[i].ApplicantID < rows[j].ApplicantID
		})
	case repository.SortIDAsc:
		sort.Slice(rows, func(i, j int) bool {
			return rows[i].ApplicantID < rows[j].ApplicantID
		})
	default: // SortTotalDesc
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].Total != rows[j].Total {
				return rows[i].Total > rows[j].Total
			}
			return rows[i].ApplicantID < rows[j].ApplicantID
		})
	}
}

// Days returns distinct days with applications, sorted ascending.
func (s *Store) Days(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for k := range s.applications {
		seen[k.day] = struct{}{}
	}
	days := make([]string, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Strings(days)
	return days, nil
}

// Uploads returns the upload log, newest first.
func (s *Store) Uploads(_ context.Context, day, program string) ([]model.UploadRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.UploadRecord
	for i := len(s.uploads) - 1; i >= 0; i-- {
		rec := s.uploads[i]
		if day != "" && rec.Day != day {
			continue
		}
		if program != "" && rec.Program != program {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Clear wipes all state.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applicants = make(map[int64]model.Applicant)
	s.applications = make(map[appKey]model.Application)
	s.uploads = nil
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }
