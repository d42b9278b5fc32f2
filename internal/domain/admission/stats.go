package admission

// MaxPriority bounds the priority buckets reported by the statistics
// helpers. An applicant can rank at most one application per program,
// and the campaign runs four programs.
const MaxPriority = 4

// CountByPriority counts applications per (program, priority) bucket,
// regardless of consent. Buckets 1..MaxPriority are always present for
// every program in seats.
func CountByPriority(apps []Application, seats map[string]int) map[string]map[int]int {
	out := emptyBuckets(seats)
	for _, a := range apps {
		if _, ok := out[a.Program]; !ok {
			continue
		}
		if a.Priority < 1 || a.Priority > MaxPriority {
			continue
		}
		out[a.Program][a.Priority]++
	}
	return out
}

// AdmittedByPriority counts, per (program, priority) bucket, how many
// of a program's admits held that priority on their admitted
// application. Only consenting applications participate, matching the
// allocator's input.
func AdmittedByPriority(apps []Application, res Result) map[string]map[int]int {
	admitted := make(map[string]map[int64]struct{}, len(res.Admitted))
	seats := make(map[string]int, len(res.Admitted))
	for p, ids := range res.Admitted {
		set := make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		admitted[p] = set
		seats[p] = 0
	}

	out := emptyBuckets(seats)
	for _, a := range apps {
		if !a.Consent {
			continue
		}
		set, ok := admitted[a.Program]
		if !ok {
			continue
		}
		if _, ok := set[a.ApplicantID]; !ok {
			continue
		}
		if a.Priority < 1 || a.Priority > MaxPriority {
			continue
		}
		out[a.Program][a.Priority]++
	}
	return out
}

func emptyBuckets(programs map[string]int) map[string]map[int]int {
	out := make(map[string]map[int]int, len(programs))
	for p := range programs {
		buckets := make(map[int]int, MaxPriority)
		for pr := 1; pr <= MaxPriority; pr++ {
			buckets[pr] = 0
		}
		out[p] = buckets
	}
	return out
}
