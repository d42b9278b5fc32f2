package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"enrolld/internal/adapters/repository"
	"enrolld/internal/domain/model"

	"github.com/smartystreets/goconvey/convey"
)

func seed(ctx context.Context, t *testing.T, s *Store) {
	t.Helper()
	err := s.RunInTx(ctx, func(tx repository.Tx) error {
		for _, a := range []model.Applicant{
			{ID: 1, Phys: 80, Rus: 85, Math: 90, Indiv: 5, Total: 260},
			{ID: 2, Phys: 70, Rus: 75, Math: 80, Indiv: 3, Total: 228},
			{ID: 3, Phys: 90, Rus: 90, Math: 90, Indiv: 8, Total: 278},
		} {
			if err := tx.UpsertApplicant(ctx, a); err != nil {
				return err
			}
		}
		for _, app := range []model.Application{
			{Day: "2024-08-01", Program: "PM", ApplicantID: 1, Consent: true, Priority: 1},
			{Day: "2024-08-01", Program: "PM", ApplicantID: 2, Consent: false, Priority: 2},
			{Day: "2024-08-01", Program: "IVT", ApplicantID: 3, Consent: true, Priority: 1},
			{Day: "2024-08-02", Program: "PM", ApplicantID: 3, Consent: true, Priority: 1},
		} {
			if err := tx.UpsertApplication(ctx, app); err != nil {
				return err
			}
		}
		return tx.RecordUpload(ctx, model.UploadRecord{ID: "u1", Day: "2024-08-01", Program: "PM", LoadedAt: time.Now()})
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a seeded store", t, func() {
		s := NewStore()
		seed(ctx, t, s)

		convey.Convey("When querying one program for one day", func() {
			rows, err := s.QueryApplications(ctx, repository.Filter{Day: "2024-08-01", Program: "PM", Sort: repository.SortTotalDesc})

			convey.Convey("Then only matching rows return, total descending", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rows, convey.ShouldHaveLength, 2)
				convey.So(rows[0].ApplicantID, convey.ShouldEqual, 1)
				convey.So(rows[1].ApplicantID, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When filtering by consent", func() {
			yes := true
			rows, err := s.QueryApplications(ctx, repository.Filter{Day: "2024-08-01", Program: "PM", Consent: &yes})

			convey.Convey("Then non-consenting rows drop out", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rows, convey.ShouldHaveLength, 1)
				convey.So(rows[0].ApplicantID, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When listing days", func() {
			days, err := s.Days(ctx)

			convey.Convey("Then distinct days come back ascending", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(days, convey.ShouldResemble, []string{"2024-08-01", "2024-08-02"})
			})
		})

		convey.Convey("When reading the upload log", func() {
			recs, err := s.Uploads(ctx, "2024-08-01", "PM")

			convey.Convey("Then the entry is found", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(recs, convey.ShouldHaveLength, 1)
				convey.So(recs[0].ID, convey.ShouldEqual, "u1")
			})
		})

		convey.Convey("When a transaction fails", func() {
			boom := errors.New("boom")
			err := s.RunInTx(ctx, func(tx repository.Tx) error {
				if err := tx.UpsertApplicant(ctx, model.Applicant{ID: 99, Total: 1}); err != nil {
					return err
				}
				return boom
			})

			convey.Convey("Then nothing staged becomes visible", func() {
				convey.So(errors.Is(err, repository.ErrTx), convey.ShouldBeTrue)
				rows, qerr := s.QueryApplications(ctx, repository.Filter{})
				convey.So(qerr, convey.ShouldBeNil)
				convey.So(rows, convey.ShouldHaveLength, 4)
			})
		})

		convey.Convey("When upserting an application without its applicant", func() {
			err := s.RunInTx(ctx, func(tx repository.Tx) error {
				return tx.UpsertApplication(ctx, model.Application{Day: "d", Program: "PM", ApplicantID: 1000})
			})

			convey.Convey("Then the foreign key is enforced", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When clearing the store", func() {
			convey.So(s.Clear(ctx), convey.ShouldBeNil)

			convey.Convey("Then every table is empty", func() {
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
