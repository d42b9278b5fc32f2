package cascade

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestBuild(t *testing.T) {
	convey.Convey("Given applicants with several same-day applications", t, func() {
		apps := []Application{
			{ApplicantID: 1, Program: "IVT", Priority: 2, Consent: false, Total: 240},
			{ApplicantID: 1, Program: "PM", Priority: 1, Consent: true, Total: 240},
			{ApplicantID: 2, Program: "IB", Priority: 1, Consent: false, Total: 260},
		}

		convey.Convey("When the view builds", func() {
			rows := Build(apps, 0)

			convey.Convey("Then each applicant appears exactly once", func() {
				convey.So(rows, convey.ShouldHaveLength, 2)
			})
			convey.Convey("And rows come ordered by descending max total", func() {
				convey.So(rows[0].ID, convey.ShouldEqual, 2)
				convey.So(rows[1].ID, convey.ShouldEqual, 1)
			})
			convey.Convey("And the cascade lists programs in priority order", func() {
				convey.So(rows[1].Cascade, convey.ShouldEqual, "PM:1, IVT:2")
			})
			convey.Convey("And any consenting bid flags the merged row", func() {
				convey.So(rows[1].AnyConsent, convey.ShouldBeTrue)
				convey.So(rows[0].AnyConsent, convey.ShouldBeFalse)
			})
		})
	})

	convey.Convey("Given equal max totals", t, func() {
		apps := []Application{
			{ApplicantID: 9, Program: "PM", Priority: 1, Total: 200},
			{ApplicantID: 4, Program: "PM", Priority: 1, Total: 200},
		}

		convey.Convey("When the view builds", func() {
			rows := Build(apps, 0)

			convey.Convey("Then ascending id breaks the tie", func() {
				convey.So(rows[0].ID, convey.ShouldEqual, 4)
				convey.So(rows[1].ID, convey.ShouldEqual, 9)
			})
		})
	})

	convey.Convey("Given a row limit", t, func() {
		apps := []Application{
			{ApplicantID: 1, Program: "PM", Priority: 1, Total: 100},
			{ApplicantID: 2, Program: "PM", Priority: 1, Total: 300},
			{ApplicantID: 3, Program: "PM", Priority: 1, Total: 200},
		}

		convey.Convey("When the view builds with limit 2", func() {
			rows := Build(apps, 2)

			convey.Convey("Then only the top rows survive", func() {
				convey.So(rows, convey.ShouldHaveLength, 2)
				convey.So(rows[0].ID, convey.ShouldEqual, 2)
				convey.So(rows[1].ID, convey.ShouldEqual, 3)
			})
		})
	})

	convey.Convey("Given no applications", t, func() {
		convey.Convey("When the view builds", func() {
			rows := Build(nil, 10)

			convey.Convey("Then the result is empty", func() {
				convey.So(rows, convey.ShouldBeEmpty)
			})
		})
	})
}
