// Package model contains domain models passed between layers.
package model

import "time"

// Applicant holds one applicant's subject scores. The total is supplied
// by the data source and trusted as given, never recomputed from the
// subject fields.
type Applicant struct {
	ID    int64
	Phys  int
	Rus   int
	Math  int
	Indiv int
	Total int
}

// Application is one applicant's ranked, consent-flagged bid for one
// program on one day. Identified by (Day, Program, ApplicantID).
type Application struct {
	Day         string // opaque partition key, by convention "YYYY-MM-DD"
	Program     string
	ApplicantID int64
	Consent     bool
	Priority    int // 1 = most preferred
	LoadedAt    time.Time
}

// BatchRow is one normalized row of an uploaded competition list.
// Consent stays an integer here to mirror the wire format; the
// reconciler validates it against {0, 1}.
type BatchRow struct {
	ID       int64
	Consent  int
	Priority int
	Phys     int
	Rus      int
	Math     int
	Indiv    int
	Total    int
}

// UploadRecord is an append-only audit entry marking that a snapshot
// was reconciled for (Day, Program).
type UploadRecord struct {
	ID       string // uuid assigned at reconciliation time
	Day      string
	Program  string
	LoadedAt time.Time
}
