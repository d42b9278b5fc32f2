package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"enrolld/internal/adapters/repository"
	"enrolld/internal/domain/model"

	"github.com/smartystreets/goconvey/convey"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a fresh database", t, func() {
		s := openTestStore(t)

		convey.Convey("When a transaction writes a full snapshot", func() {
			err := s.RunInTx(ctx, func(tx repository.Tx) error {
				if err := tx.RecordUpload(ctx, model.UploadRecord{
					ID: "u1", Day: "2024-08-01", Program: "PM", LoadedAt: time.Now(),
				}); err != nil {
					return err
				}
				for _, a := range []model.Applicant{
					{ID: 1, Phys: 80, Rus: 85, Math: 90, Indiv: 5, Total: 260},
					{ID: 2, Phys: 70, Rus: 75, Math: 80, Indiv: 3, Total: 228},
				} {
					if err := tx.UpsertApplicant(ctx, a); err != nil {
						return err
					}
				}
				for _, app := range []model.Application{
					{Day: "2024-08-01", Program: "PM", ApplicantID: 1, Consent: true, Priority: 1, LoadedAt: time.Now()},
					{Day: "2024-08-01", Program: "PM", ApplicantID: 2, Consent: false, Priority: 2, LoadedAt: time.Now()},
				} {
					if err := tx.UpsertApplication(ctx, app); err != nil {
						return err
					}
				}
				return nil
			})

			convey.Convey("Then the joined query returns scores with applications", func() {
				convey.So(err, convey.ShouldBeNil)
				rows, err := s.QueryApplications(ctx, repository.Filter{Day: "2024-08-01", Program: "PM", Sort: repository.SortTotalDesc})
				convey.So(err, convey.ShouldBeNil)
				convey.So(rows, convey.ShouldHaveLength, 2)
				convey.So(rows[0].ApplicantID, convey.ShouldEqual, 1)
				convey.So(rows[0].Total, convey.ShouldEqual, 260)
				convey.So(rows[1].Consent, convey.ShouldBeFalse)
			})
			convey.Convey("And days and uploads are visible", func() {
				convey.So(err, convey.ShouldBeNil)
				days, err := s.Days(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(days, convey.ShouldResemble, []string{"2024-08-01"})
				recs, err := s.Uploads(ctx, "2024-08-01", "PM")
				convey.So(err, convey.ShouldBeNil)
				convey.So(recs, convey.ShouldHaveLength, 1)
			})
		})

		convey.Convey("When upserting an application without its applicant", func() {
			err := s.RunInTx(ctx, func(tx repository.Tx) error {
				return tx.UpsertApplication(ctx, model.Application{
					Day: "2024-08-01", Program: "PM", ApplicantID: 999, Priority: 1, LoadedAt: time.Now(),
				})
			})

			convey.Convey("Then the foreign key rejects the orphan row", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, repository.ErrTx), convey.ShouldBeTrue)
				rows, qerr := s.QueryApplications(ctx, repository.Filter{})
				convey.So(qerr, convey.ShouldBeNil)
				convey.So(rows, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When a transaction fails midway", func() {
			boom := errors.New("boom")
			err := s.RunInTx(ctx, func(tx repository.Tx) error {
				if err := tx.UpsertApplicant(ctx, model.Applicant{ID: 7, Total: 100}); err != nil {
					return err
				}
				return boom
			})

			convey.Convey("Then the write is rolled back", func() {
				convey.So(errors.Is(err, repository.ErrTx), convey.ShouldBeTrue)
				rows, qerr := s.QueryApplications(ctx, repository.Filter{})
				convey.So(qerr, convey.ShouldBeNil)
				convey.So(rows, convey.ShouldBeEmpty)
			})
		})
	})

	convey.Convey("Given existing rows", t, func() {
		s := openTestStore(t)
		write := func(total int, consent bool) error {
			return s.RunInTx(ctx, func(tx repository.Tx) error {
				if err := tx.UpsertApplicant(ctx, model.Applicant{ID: 1, Total: total}); err != nil {
					return err
				}
				return tx.UpsertApplication(ctx, model.Application{
					Day: "2024-08-01", Program: "PM", ApplicantID: 1, Consent: consent, Priority: 1, LoadedAt: time.Now(),
				})
			})
		}
		convey.So(write(250, false), convey.ShouldBeNil)

		convey.Convey("When the same keys are written again", func() {
			convey.So(write(260, true), convey.ShouldBeNil)

			convey.Convey("Then the upsert overwrote rather than duplicated", func() {
				rows, err := s.QueryApplications(ctx, repository.Filter{})
				convey.So(err, convey.ShouldBeNil)
				convey.So(rows, convey.ShouldHaveLength, 1)
				convey.So(rows[0].Total, convey.ShouldEqual, 260)
				convey.So(rows[0].Consent, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When applications are deleted by id", func() {
			err := s.RunInTx(ctx, func(tx repository.Tx) error {
				return tx.DeleteApplications(ctx, "2024-08-01", "PM", []int64{1})
			})

			convey.Convey("Then the rows are gone but the applicant remains", func() {
				convey.So(err, convey.ShouldBeNil)
				rows, qerr := s.QueryApplications(ctx, repository.Filter{})
				convey.So(qerr, convey.ShouldBeNil)
				convey.So(rows, convey.ShouldBeEmpty)
				ids := listIDs(ctx, t, s, "2024-08-01", "PM")
				convey.So(ids, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When the store is cleared", func() {
			convey.So(s.Clear(ctx), convey.ShouldBeNil)

			convey.Convey("Then every relation is empty", func() {
				rows, err := s.QueryApplications(ctx, repository.Filter{})
				convey.So(err, convey.ShouldBeNil)
				convey.So(rows, convey.ShouldBeEmpty)
				recs, err := s.Uploads(ctx, "", "")
				convey.So(err, convey.ShouldBeNil)
				convey.So(recs, convey.ShouldBeEmpty)
			})
		})
	})
}

func listIDs(ctx context.Context, t *testing.T, s *Store, day, program string) []int64 {
	t.Helper()
	var ids []int64
	err := s.RunInTx(ctx, func(tx repository.Tx) error {
		var err error
		ids, err = tx.ListApplicationIDs(ctx, day, program)
		return err
	})
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	return ids
}
