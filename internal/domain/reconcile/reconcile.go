// Package reconcile merges uploaded competition-list snapshots into the
// record store. A snapshot is authoritative and total for its
// (day, program): after reconciliation the stored application set
// equals the batch exactly. The whole merge runs in one transaction;
// any failure rolls everything back, so re-uploading is always safe.
package reconcile

import (
	"context"
	"time"

	"enrolld/internal/adapters/repository"
	"enrolld/internal/domain/model"
	"enrolld/pkg/logger"
	"enrolld/pkg/metrics"

	"github.com/google/uuid"
)

// Reconciler applies snapshot batches to an injected record store.
type Reconciler struct {
	store repository.Store
	log   logger.Logger
	now   func() time.Time
	newID func() string
}

// Option applies a configuration option to the Reconciler.
type Option func(*Reconciler)

// WithLogger sets a custom logger.
func WithLogger(log logger.Logger) Option {
	return func(r *Reconciler) {
		if log != nil {
			r.log = log
		}
	}
}

// WithClock overrides the wall clock, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator overrides upload-record id generation.
func WithIDGenerator(gen func() string) Option {
	return func(r *Reconciler) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// New constructs a Reconciler over the given store.
func New(store repository.Store, opts ...Option) *Reconciler {
	r := &Reconciler{
		store: store,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile makes the store's (day, program) application set and the
// global applicant score set match the batch exactly:
//
//  1. validate the batch (no write happens on failure),
//  2. append an upload-log entry,
//  3. upsert every applicant's scores (last write wins, globally),
//  4. delete applications absent from the batch,
//  5. upsert every application fact.
//
// Steps 2-5 share one transaction. Note the cross-program effect of
// step 3: a snapshot for one program overwrites the applicant's scores
// everywhere, since scores are applicant-global.
func (r *Reconciler) Reconcile(ctx context.Context, day, program string, batch []model.BatchRow) error {
	if err := validate(day, program, batch); err != nil {
		metrics.RecordReconcileError()
		return err
	}

	now := r.now()
	start := now
	deleted := 0

	err := r.store.RunInTx(ctx, func(tx repository.Tx) error {
		rec := model.UploadRecord{
			ID:       r.newID(),
			Day:      day,
			Program:  program,
			LoadedAt: now,
		}
		if err := tx.RecordUpload(ctx, rec); err != nil {
			return err
		}

		for _, row := range batch {
			if err := tx.UpsertApplicant(ctx, model.Applicant{
				ID:    row.ID,
				Phys:  row.Phys,
				Rus:   row.Rus,
				Math:  row.Math,
				Indiv: row.Indiv,
				Total: row.Total,
			}); err != nil {
				return err
			}
		}

		oldIDs, err := tx.ListApplicationIDs(ctx, day, program)
		if err != nil {
			return err
		}
		newIDs := make(map[int64]struct{}, len(batch))
		for _, row := range batch {
			newIDs[row.ID] = struct{}{}
		}
		var toDelete []int64
		for _, id := range oldIDs {
			if _, ok := newIDs[id]; !ok {
				toDelete = append(toDelete, id)
			}
		}
		if err := tx.DeleteApplications(ctx, day, program, toDelete); err != nil {
			return err
		}
		deleted = len(toDelete)

		for _, row := range batch {
			if err := tx.UpsertApplication(ctx, model.Application{
				Day:         day,
				Program:     program,
				ApplicantID: row.ID,
				Consent:     row.Consent == 1,
				Priority:    row.Priority,
				LoadedAt:    now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		metrics.RecordReconcileError()
		if r.log != nil {
			r.log.Error(ctx, "reconciliation failed",
				logger.String("day", day),
				logger.String("program", program),
				logger.Error(err),
			)
		}
		return err
	}

	metrics.RecordUpload(program)
	metrics.RecordUploadRows(len(batch))
	metrics.RecordApplicationsDeleted(deleted)
	metrics.RecordReconcileDuration(float64(time.Since(start).Milliseconds()))
	if r.log != nil {
		r.log.Info(ctx, "snapshot reconciled",
			logger.String("day", day),
			logger.String("program", program),
			logger.Int("rows", len(batch)),
			logger.Int("deleted", deleted),
		)
	}
	return nil
}

func validate(day, program string, batch []model.BatchRow) error {
	if day == "" {
		return &ValidationError{Field: "day", Row: -1, Reason: "must not be empty"}
	}
	if program == "" {
		return &ValidationError{Field: "program", Row: -1, Reason: "must not be empty"}
	}
	for i, row := range batch {
		if row.Consent != 0 && row.Consent != 1 {
			return &ValidationError{Field: "consent", Row: i, Reason: "must be 0 or 1"}
		}
	}
	return nil
}
