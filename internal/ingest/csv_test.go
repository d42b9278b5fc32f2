package ingest

import (
	"errors"
	"strings"
	"testing"

	"enrolld/internal/domain/reconcile"

	"github.com/smartystreets/goconvey/convey"
)

func TestParseCSV(t *testing.T) {
	convey.Convey("Given a well-formed CSV snapshot", t, func() {
		src := strings.NewReader(
			"id,consent,priority,phys,rus,math,indiv,total\n" +
				"101,1,1,80,85,90,5,260\n" +
				"102,0,2,70,75,80,3,228\n")

		convey.Convey("When it is parsed", func() {
			batch, err := ParseCSV(src)

			convey.Convey("Then every row lands typed in the batch", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(batch, convey.ShouldHaveLength, 2)
				convey.So(batch[0].ID, convey.ShouldEqual, 101)
				convey.So(batch[0].Consent, convey.ShouldEqual, 1)
				convey.So(batch[1].Priority, convey.ShouldEqual, 2)
				convey.So(batch[1].Total, convey.ShouldEqual, 228)
			})
		})
	})

	convey.Convey("Given reordered and extra columns", t, func() {
		src := strings.NewReader(
			"total,indiv,math,rus,phys,priority,consent,id,note\n" +
				"260,5,90,85,80,1,1,101,hello\n")

		convey.Convey("When it is parsed", func() {
			batch, err := ParseCSV(src)

			convey.Convey("Then columns resolve by header name", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(batch, convey.ShouldHaveLength, 1)
				convey.So(batch[0].ID, convey.ShouldEqual, 101)
				convey.So(batch[0].Total, convey.ShouldEqual, 260)
			})
		})
	})

	convey.Convey("Given a CSV missing required columns", t, func() {
		src := strings.NewReader("id,consent\n1,1\n")

		convey.Convey("When it is parsed", func() {
			_, err := ParseCSV(src)

			convey.Convey("Then a validation error names the missing columns", func() {
				var verr *reconcile.ValidationError
				convey.So(errors.As(err, &verr), convey.ShouldBeTrue)
				convey.So(verr.Row, convey.ShouldEqual, -1)
				convey.So(verr.Field, convey.ShouldContainSubstring, "priority")
				convey.So(verr.Field, convey.ShouldContainSubstring, "total")
			})
		})
	})

	convey.Convey("Given a non-integer cell", t, func() {
		src := strings.NewReader(
			"id,consent,priority,phys,rus,math,indiv,total\n" +
				"101,1,1,80,85,90,5,260\n" +
				"102,yes,2,70,75,80,3,228\n")

		convey.Convey("When it is parsed", func() {
			_, err := ParseCSV(src)

			convey.Convey("Then the error names the column and row", func() {
				var verr *reconcile.ValidationError
				convey.So(errors.As(err, &verr), convey.ShouldBeTrue)
				convey.So(verr.Field, convey.ShouldEqual, "consent")
				convey.So(verr.Row, convey.ShouldEqual, 1)
			})
		})
	})

	convey.Convey("Given an empty file", t, func() {
		convey.Convey("When it is parsed", func() {
			_, err := ParseCSV(strings.NewReader(""))

			convey.Convey("Then a validation error surfaces", func() {
				convey.So(errors.Is(err, reconcile.ErrValidation), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a header with no data rows", t, func() {
		src := strings.NewReader("id,consent,priority,phys,rus,math,indiv,total\n")

		convey.Convey("When it is parsed", func() {
			batch, err := ParseCSV(src)

			convey.Convey("Then the batch is empty and valid", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(batch, convey.ShouldBeEmpty)
			})
		})
	})
}
