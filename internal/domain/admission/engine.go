// Package admission implements the greedy seat-allocation engine and
// its per-priority aggregations.
//
// The allocation is one-sided: applicants are processed in a single
// global pass ordered by descending total score (ties by ascending id)
// and each takes the first program in their own priority order that
// still has a free seat. Seats never free up; there is no
// deferred-acceptance style rejection cascade. This is intentional and
// must not be "improved" into stable matching.
package admission

import (
	"sort"
)

// Application is one consent-flagged program bid considered by the
// allocator.
type Application struct {
	ApplicantID int64
	Program     string
	Priority    int
	Consent     bool
	Total       int
}

// Result holds the allocation outcome. Admitted lists applicant ids in
// admission order (score descending). A nil cutoff means the program
// is undersubscribed: capacity was never binding, so no score closed
// the list.
type Result struct {
	Admitted map[string][]int64
	Cutoffs  map[string]*int
}

// Allocate computes the single-seat-per-applicant assignment across
// programs. Every program in seats appears in the output, even when it
// received no applications. Applications whose program is absent from
// seats are skipped; callers reject unknown programs before data ever
// reaches the store.
func Allocate(apps []Application, seats map[string]int) Result {
	res := Result{
		Admitted: make(map[string][]int64, len(seats)),
		Cutoffs:  make(map[string]*int, len(seats)),
	}
	for p := range seats {
		res.Admitted[p] = []int64{}
		res.Cutoffs[p] = nil
	}

	type pref struct {
		priority int
		program  string
	}
	prefs := make(map[int64][]pref)
	scores := make(map[int64]int)

	for _, a := range apps {
		if !a.Consent {
			continue
		}
		if _, ok := seats[a.Program]; !ok {
			continue
		}
		prefs[a.ApplicantID] = append(prefs[a.ApplicantID], pref{priority: a.Priority, program: a.Program})
		scores[a.ApplicantID] = a.Total
	}

	// Per-applicant preference order: ascending priority, stable so
	// equal priorities keep input order (the tie-break is deliberately
	// left unspecified).
	for id := range prefs {
		ps := prefs[id]
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].priority < ps[j].priority })
	}

	// Global processing order: total desc, id asc. Higher scores claim
	// seats first.
	order := make([]int64, 0, len(scores))
	for id := range scores {
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool {
		if scores[order[i]] != scores[order[j]] {
			return scores[order[i]] > scores[order[j]]
		}
		return order[i] < order[j]
	})

	for _, id := range order {
		for _, p := range prefs[id] {
			if len(res.Admitted[p.program]) < seats[p.program] {
				res.Admitted[p.program] = append(res.Admitted[p.program], id)
				break
			}
		}
	}

	for p, capacity := range seats {
		admitted := res.Admitted[p]
		if capacity <= 0 || len(admitted) < capacity {
			continue
		}
		// Exactly full: the last admitted has the lowest total.
		last := scores[admitted[len(admitted)-1]]
		res.Cutoffs[p] = &last
	}

	return res
}
