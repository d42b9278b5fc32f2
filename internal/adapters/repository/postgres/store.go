// Package postgres provides a Postgres-backed record store mirroring
// the SQLite store's semantics.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"enrolld/internal/adapters/repository"
	"enrolld/internal/domain/model"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

// Compile-time contract assertion.
var _ repository.Store = (*Store)(nil)

const (
	driverName = "pgx"
	defaultDSN = "postgres://localhost/enrolld?sslmode=disable"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS applicants (
  id BIGINT PRIMARY KEY,
  phys INTEGER NOT NULL,
  rus INTEGER NOT NULL,
  math INTEGER NOT NULL,
  indiv INTEGER NOT NULL,
  total INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS loads (
  id TEXT PRIMARY KEY,
  day TEXT NOT NULL,
  program TEXT NOT NULL,
  loaded_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS applications (
  day TEXT NOT NULL,
  program TEXT NOT NULL,
  applicant_id BIGINT NOT NULL REFERENCES applicants(id),
  consent BOOLEAN NOT NULL,
  priority INTEGER NOT NULL,
  loaded_at TIMESTAMPTZ NOT NULL,
  PRIMARY KEY(day, program, applicant_id)
);
CREATE INDEX IF NOT EXISTS idx_applications_day_program ON applications(day, program);
CREATE INDEX IF NOT EXISTS idx_applications_applicant ON applications(applicant_id)
`

// Store persists applicants, applications and the upload log in
// Postgres.
type Store struct {
	db *sql.DB
}

// NewStore opens a Postgres-backed store using the provided DSN (falls
// back to defaultDSN) and applies the schema.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	for _, stmt := range strings.Split(schemaSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) UpsertApplicant(ctx context.Context, a model.Applicant) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO applicants(id, phys, rus, math, indiv, total)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT(id) DO UPDATE SET
		  phys=excluded.phys, rus=excluded.rus, math=excluded.math,
		  indiv=excluded.indiv, total=excluded.total`,
		a.ID, a.Phys, a.Rus, a.Math, a.Indiv, a.Total)
	if err != nil {
		return fmt.Errorf("upsert applicant %d: %w", a.ID, err)
	}
	return nil
}

func (t *sqlTx) UpsertApplication(ctx context.Context, app model.Application) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO applications(day, program, applicant_id, consent, priority, loaded_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT(day, program, applicant_id) DO UPDATE SET
		  consent=excluded.consent, priority=excluded.priority, loaded_at=excluded.loaded_at`,
		app.Day, app.Program, app.ApplicantID, app.Consent, app.Priority, app.LoadedAt)
	if err != nil {
		return fmt.Errorf("upsert application %d: %w", app.ApplicantID, err)
	}
	return nil
}

func (t *sqlTx) DeleteApplications(ctx context.Context, day, program string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+2)
	args = append(args, day, program)
	for i, id := range ids {
		placeholders[i] = "$" + strconv.Itoa(i+3)
		args = append(args, id)
	}
	_, err := t.tx.ExecContext(ctx,
		`DELETE FROM applications WHERE day=$1 AND program=$2 AND applicant_id IN (`+
			strings.Join(placeholders, ",")+`)`,
		args...)
	if err != nil {
		return fmt.Errorf("delete applications: %w", err)
	}
	return nil
}

func (t *sqlTx) ListApplicationIDs(ctx context.Context, day, program string) ([]int64, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT applicant_id FROM applications WHERE day=$1 AND program=$2 ORDER BY applicant_id`,
		day, program)
	if err != nil {
		return nil, fmt.Errorf("list application ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ids: %w", err)
	}
	return ids, nil
}

func (t *sqlTx) RecordUpload(ctx context.Context, rec model.UploadRecord) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO loads(id, day, program, loaded_at) VALUES ($1,$2,$3,$4)`,
		rec.ID, rec.Day, rec.Program, rec.LoadedAt)
	if err != nil {
		return fmt.Errorf("record upload: %w", err)
	}
	return nil
}

// RunInTx executes fn inside one SQL transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(repository.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", repository.ErrTx, err)
	}
	if err := fn(&sqlTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: %v", repository.ErrTx, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", repository.ErrTx, err)
	}
	return nil
}

// QueryApplications returns joined applicant+application rows matching
// the filter.
func (s *Store) QueryApplications(ctx context.Context, f repository.Filter) ([]repository.Row, error) {
	q := `
	SELECT a.applicant_id, a.day, a.program, a.consent, a.priority,
	       b.phys, b.rus, b.math, b.indiv, b.total
	FROM applications a
	JOIN applicants b ON b.id=a.applicant_id
	WHERE 1=1`
	var args []any
	n := 0
	next := func() string {
		n++
		return "$" + strconv.Itoa(n)
	}
	if f.Day != "" {
		q += " AND a.day=" + next()
		args = append(args, f.Day)
	}
	if f.Program != "" {
		q += " AND a.program=" + next()
		args = append(args, f.Program)
	}
	if f.Consent != nil {
		q += " AND a.consent=" + next()
		args = append(args, *f.Consent)
	}
	q += orderClause(f.Sort)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]repository.Row, 0)
	for rows.Next() {
		var r repository.Row
		if err := rows.Scan(&r.ApplicantID, &r.Day, &r.Program, &r.Consent, &r.Priority,
			&r.Phys, &r.Rus, &r.Math, &r.Indiv, &r.Total); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

func orderClause(s repository.Sort) string {
	switch s {
	case repository.SortTotalAsc:
		return " ORDER BY b.total ASC, b.id ASC"
	case repository.SortIDAsc:
		return " ORDER BY b.id ASC"
	default:
		return " ORDER BY b.total DESC, b.id ASC"
	}
}

// Days returns distinct days with applications, sorted ascending.
func (s *Store) Days(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT day FROM applications ORDER BY day`)
	if err != nil {
		return nil, fmt.Errorf("select days: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var days []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan day: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate days: %w", err)
	}
	return days, nil
}

// Uploads returns the upload log, newest first.
func (s *Store) Uploads(ctx context.Context, day, program string) ([]model.UploadRecord, error) {
	q := `SELECT id, day, program, loaded_at FROM loads WHERE 1=1`
	var args []any
	n := 0
	next := func() string {
		n++
		return "$" + strconv.Itoa(n)
	}
	if day != "" {
		q += " AND day=" + next()
		args = append(args, day)
	}
	if program != "" {
		q += " AND program=" + next()
		args = append(args, program)
	}
	q += " ORDER BY loaded_at DESC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("select loads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.UploadRecord
	for rows.Next() {
		var rec model.UploadRecord
		if err := rows.Scan(&rec.ID, &rec.Day, &rec.Program, &rec.LoadedAt); err != nil {
			return nil, fmt.Errorf("scan load: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate loads: %w", err)
	}
	return out, nil
}

// Clear wipes all three relations.
func (s *Store) Clear(ctx context.Context) error {
	for _, table := range []string{"applications", "applicants", "loads"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close postgres: %w", err)
	}
	return nil
}
