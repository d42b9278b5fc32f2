package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"enrolld/internal/adapters/repository/memory"
	"enrolld/internal/app"
	"enrolld/pkg/logger"

	"github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
	os.Exit(m.Run())
}

const sampleCSV = "id,consent,priority,phys,rus,math,indiv,total\n" +
	"1,1,1,80,85,90,5,260\n" +
	"2,1,1,90,90,95,8,283\n" +
	"3,0,1,70,70,70,0,210\n"

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	svc, err := app.New(memory.NewStore(),
		app.WithSeats(map[string]int{"PM": 1, "IVT": 2}),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	mux := http.NewServeMux()
	NewServer(svc).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "text/csv")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestAPI(t *testing.T) {
	convey.Convey("Given the API over fresh storage", t, func() {
		mux := newTestMux(t)

		convey.Convey("When checking health", func() {
			rec := do(mux, http.MethodGet, "/healthz", "")

			convey.Convey("Then the service reports ok", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "ok")
			})
		})

		convey.Convey("When uploading a valid snapshot", func() {
			rec := do(mux, http.MethodPost, "/upload?day=2024-08-01&program=PM", sampleCSV)

			convey.Convey("Then the upload is acknowledged with its row count", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				var resp struct {
					Status string `json:"status"`
					Rows   int    `json:"rows"`
				}
				convey.So(json.Unmarshal(rec.Body.Bytes(), &resp), convey.ShouldBeNil)
				convey.So(resp.Status, convey.ShouldEqual, "ok")
				convey.So(resp.Rows, convey.ShouldEqual, 3)
			})

			convey.Convey("And the program list is served total-descending", func() {
				rec := do(mux, http.MethodGet, "/list/PM?day=2024-08-01", "")
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				var resp struct {
					Rows []struct {
						ID    int64 `json:"id"`
						Total int   `json:"total"`
					} `json:"rows"`
				}
				convey.So(json.Unmarshal(rec.Body.Bytes(), &resp), convey.ShouldBeNil)
				convey.So(resp.Rows, convey.ShouldHaveLength, 3)
				convey.So(resp.Rows[0].ID, convey.ShouldEqual, 2)
			})

			convey.Convey("And the sort parameter switches the row order", func() {
				rec := do(mux, http.MethodGet, "/list/PM?day=2024-08-01&sort=total_asc", "")
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				var resp struct {
					Rows []struct {
						ID    int64 `json:"id"`
						Total int   `json:"total"`
					} `json:"rows"`
				}
				convey.So(json.Unmarshal(rec.Body.Bytes(), &resp), convey.ShouldBeNil)
				convey.So(resp.Rows, convey.ShouldHaveLength, 3)
				convey.So(resp.Rows[0].ID, convey.ShouldEqual, 3)
				convey.So(resp.Rows[2].ID, convey.ShouldEqual, 2)
			})

			convey.Convey("And an unknown sort value is rejected", func() {
				rec := do(mux, http.MethodGet, "/list/PM?day=2024-08-01&sort=priority", "")
				convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "bad_sort")
			})

			convey.Convey("And the consent filter narrows the list", func() {
				rec := do(mux, http.MethodGet, "/list/PM?day=2024-08-01&consent=1", "")
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				var resp struct {
					Rows []json.RawMessage `json:"rows"`
				}
				convey.So(json.Unmarshal(rec.Body.Bytes(), &resp), convey.ShouldBeNil)
				convey.So(resp.Rows, convey.ShouldHaveLength, 2)
			})

			convey.Convey("And the allocation endpoint serves the result", func() {
				rec := do(mux, http.MethodGet, "/admission?day=2024-08-01", "")
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				var resp struct {
					Admitted map[string][]int64 `json:"admitted"`
					Cutoffs  map[string]*int    `json:"cutoffs"`
				}
				convey.So(json.Unmarshal(rec.Body.Bytes(), &resp), convey.ShouldBeNil)
				convey.So(resp.Admitted["PM"], convey.ShouldResemble, []int64{2})
				convey.So(*resp.Cutoffs["PM"], convey.ShouldEqual, 283)
			})

			convey.Convey("And cascade, stats, report, uploads and days respond", func() {
				for _, target := range []string{
					"/cascade?day=2024-08-01",
					"/stats?day=2024-08-01",
					"/report?day=2024-08-01",
					"/uploads",
					"/days",
				} {
					rec := do(mux, http.MethodGet, target, "")
					convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				}
			})

			convey.Convey("And clearing wipes everything", func() {
				rec := do(mux, http.MethodPost, "/clear", "")
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				rec = do(mux, http.MethodGet, "/admission?day=2024-08-01", "")
				convey.So(rec.Code, convey.ShouldEqual, http.StatusNotFound)
			})
		})

		convey.Convey("When uploading to an unknown program", func() {
			rec := do(mux, http.MethodPost, "/upload?day=2024-08-01&program=GHOST", sampleCSV)

			convey.Convey("Then the API answers 404", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusNotFound)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "unknown_program")
			})
		})

		convey.Convey("When uploading malformed CSV", func() {
			bad := "id,consent\n1,1\n"
			rec := do(mux, http.MethodPost, "/upload?day=2024-08-01&program=PM", bad)

			convey.Convey("Then the API answers 400 with the validation detail", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "validation_error")
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "missing required columns")
			})
		})

		convey.Convey("When requesting the allocation of an empty day", func() {
			rec := do(mux, http.MethodGet, "/admission?day=2024-01-01", "")

			convey.Convey("Then the API answers 404", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusNotFound)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, "no_data")
			})
		})

		convey.Convey("When the consent filter is malformed", func() {
			rec := do(mux, http.MethodGet, "/list/PM?consent=maybe", "")

			convey.Convey("Then the API answers 400", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
			})
		})

		convey.Convey("When the method does not match the route", func() {
			rec := do(mux, http.MethodGet, "/upload?day=2024-08-01&program=PM", "")

			convey.Convey("Then the API answers 405", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusMethodNotAllowed)
			})
		})

		convey.Convey("When scraping metrics", func() {
			rec := do(mux, http.MethodGet, "/metrics", "")

			convey.Convey("Then the Prometheus registry is served", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			})
		})
	})
}
