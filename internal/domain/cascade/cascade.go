// Package cascade builds the per-applicant cross-program summary view:
// every applicant appears once, with all of their same-day applications
// merged into a single row.
package cascade

import (
	"fmt"
	"sort"
	"strings"
)

// Application is one program bid feeding the cascade view. Consent does
// not filter anything here; it only feeds the any-consent flag.
type Application struct {
	ApplicantID int64
	Program     string
	Priority    int
	Consent     bool
	Total       int
}

// Row is one merged cascade entry. Cascade lists "PROGRAM:priority"
// pairs in ascending priority order.
type Row struct {
	ID         int64  `json:"id"`
	AnyConsent bool   `json:"any_consent"`
	MaxTotal   int    `json:"max_total"`
	Cascade    string `json:"cascade"`
}

// Build merges applications per applicant and orders the result by
// descending max total, ascending id, truncated to limit (limit <= 0
// means no truncation). MaxTotal is computed as a defensive max even
// though scores are applicant-global and should not differ across
// programs.
func Build(apps []Application, limit int) []Row {
	per := make(map[int64][]Application)
	for _, a := range apps {
		per[a.ApplicantID] = append(per[a.ApplicantID], a)
	}

	out := make([]Row, 0, len(per))
	for id, items := range per {
		sort.SliceStable(items, func(i, j int) bool { return items[i].Priority < items[j].Priority })

		parts := make([]string, len(items))
		anyConsent := false
		maxTotal := 0
		for i, it := range items {
			parts[i] = fmt.Sprintf("%s:%d", it.Program, it.Priority)
			if it.Consent {
				anyConsent = true
			}
			if i == 0 || it.Total > maxTotal {
				maxTotal = it.Total
			}
		}

		out = append(out, Row{
			ID:         id,
			AnyConsent: anyConsent,
			MaxTotal:   maxTotal,
			Cascade:    strings.Join(parts, ", "),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].MaxTotal != out[j].MaxTotal {
			return out[i].MaxTotal > out[j].MaxTotal
		}
		return out[i].ID < out[j].ID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
