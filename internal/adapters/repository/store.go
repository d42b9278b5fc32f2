// Package repository defines the record-store port and errors.
package repository

import (
	"context"

	"enrolld/internal/domain/model"
)

// Sort selects the row ordering for application queries. Every order is
// tie-broken by ascending applicant id so results are reproducible.
type Sort string

const (
	SortTotalDesc Sort = "total_desc"
	SortTotalAsc  Sort = "total_asc"
	SortIDAsc     Sort = "id_asc"
)

// ParseSort maps a wire value onto a Sort. The empty string selects the
// default, SortTotalDesc; unknown values are rejected.
func ParseSort(s string) (Sort, bool) {
	switch s {
	case "", string(SortTotalDesc):
		return SortTotalDesc, true
	case string(SortTotalAsc):
		return SortTotalAsc, true
	case string(SortIDAsc):
		return SortIDAsc, true
	}
	return "", false
}

// Row is one joined applicant+application row returned by queries.
type Row struct {
	ApplicantID int64
	Day         string
	Program     string
	Consent     bool
	Priority    int
	Phys        int
	Rus         int
	Math        int
	Indiv       int
	Total       int
}

// Filter narrows application queries. Zero values mean "no filter".
type Filter struct {
	Day     string
	Program string
	Consent *bool
	Sort    Sort
}

// Tx exposes the mutating operations available inside one atomic
// reconciliation transaction. A failure anywhere rolls the whole
// transaction back; no partial state becomes visible.
type Tx interface {
	// UpsertApplicant inserts or overwrites all score fields by id.
	UpsertApplicant(ctx context.Context, a model.Applicant) error

	// UpsertApplication inserts or overwrites consent, priority and the
	// upload timestamp by (day, program, applicant id).
	UpsertApplication(ctx context.Context, app model.Application) error

	// DeleteApplications bulk-deletes application rows by key.
	DeleteApplications(ctx context.Context, day, program string, ids []int64) error

	// ListApplicationIDs returns the current applicant-id set for (day, program).
	ListApplicationIDs(ctx context.Context, day, program string) ([]int64, error)

	// RecordUpload appends an upload-history entry.
	RecordUpload(ctx context.Context, rec model.UploadRecord) error
}

// Store provides durable access to applicants, applications and the
// upload log.
type Store interface {
	// RunInTx executes fn inside one transaction with all-or-nothing
	// visibility.
	RunInTx(ctx context.Context, fn func(Tx) error) error

	// QueryApplications returns joined applicant+application rows
	// matching the filter, in the filter's sort order.
	QueryApplications(ctx context.Context, f Filter) ([]Row, error)

	// Days returns the distinct days present in the application set,
	// sorted ascending.
	Days(ctx context.Context) ([]string, error)

	// Uploads returns upload-history entries, newest first, optionally
	// filtered by day and program.
	Uploads(ctx context.Context, day, program string) ([]model.UploadRecord, error)

	// Clear wipes applicants, applications and the upload log.
	Clear(ctx context.Context) error

	Close() error
}
