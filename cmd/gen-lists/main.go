// Command gen-lists produces synthetic competition-list CSV snapshots
// for load testing and demos. One file per (day, program), named
// "<day>_(<PROGRAM>).csv", in the upload format the server ingests.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

var programs = []string{"PM", "IVT", "ITSS", "IB"}

// applicant carries the per-person state shared across days. Scores are
// stable; consent decisions evolve day by day.
type applicant struct {
	id      int64
	ability float64
	phys    int
	rus     int
	math    int
	indiv   int
	// prefs lists this applicant's programs in priority order.
	prefs []string
}

func main() {
	var (
		out        = flag.String("out", "data", "output directory for CSV files")
		days       = flag.Int("days", 4, "number of snapshot days to generate")
		population = flag.Int("population", 1500, "total applicant pool size")
		seed       = flag.Int64("seed", 42, "random seed (deterministic output)")
		start      = flag.String("start", "2024-08-01", "first day, YYYY-MM-DD")
	)
	flag.Parse()

	startDay, err := time.Parse("2006-01-02", *start)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bad -start:", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "mkdir:", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))
	pool := buildPool(rng, *population)

	files := 0
	for d := 0; d < *days; d++ {
		day := startDay.AddDate(0, 0, d).Format("2006-01-02")
		// The pool fills in over the campaign: early days see a fraction
		// of the applicants, the last day sees almost everyone.
		share := float64(d+1) / float64(*days)
		active := pool[:int(float64(len(pool))*share)]
		consentBase := 0.05 + 0.5*share

		for _, program := range programs {
			rows := dayRows(rng, active, program, consentBase)
			path := filepath.Join(*out, fmt.Sprintf("%s_(%s).csv", day, program))
			if err := writeCSV(path, rows); err != nil {
				fmt.Fprintln(os.Stderr, "write:", err)
				os.Exit(1)
			}
			files++
		}
	}
	fmt.Printf("generated %d CSV files in %s\n", files, *out)
}

// buildPool creates the applicant base: a latent ability drives three
// correlated exam scores, individual achievements are independent.
func buildPool(rng *rand.Rand, n int) []applicant {
	pool := make([]applicant, n)
	for i := range pool {
		ability := clampF(rng.NormFloat64()*0.18+0.55, 0, 1)
		pool[i] = applicant{
			id:      int64(i + 1),
			ability: ability,
			phys:    clampI(int(math.Round(40+ability*60+rng.NormFloat64()*5)), 0, 100),
			rus:     clampI(int(math.Round(45+ability*55+rng.NormFloat64()*5)), 0, 100),
			math:    clampI(int(math.Round(45+ability*55+rng.NormFloat64()*5)), 0, 100),
			indiv:   rng.Intn(11),
			prefs:   pickPrograms(rng, ability),
		}
	}
	return pool
}

// pickPrograms chooses 1-4 programs and orders them with an
// ability-weighted bias: stronger applicants skew toward PM.
func pickPrograms(rng *rand.Rand, ability float64) []string {
	count := 1 + rng.Intn(len(programs))
	idx := rng.Perm(len(programs))[:count]
	chosen := make([]string, count)
	for i, j := range idx {
		chosen[i] = programs[j]
	}
	weight := func(p string) float64 {
		switch p {
		case "PM":
			return 1.0 + 1.2*ability
		case "IB":
			return 0.9 + 0.8*ability
		case "IVT":
			return 0.85 + 0.6*ability
		default:
			return 0.8 + 0.3*ability
		}
	}
	// Weighted random order (Efraimidis-Spirakis keys).
	keys := make(map[string]float64, count)
	for _, p := range chosen {
		keys[p] = math.Pow(rng.Float64(), 1/weight(p))
	}
	sort.SliceStable(chosen, func(i, j int) bool {
		return keys[chosen[i]] > keys[chosen[j]]
	})
	return chosen
}

// dayRows renders one program's snapshot: every active applicant who
// lists the program appears, consent decided per day.
func dayRows(rng *rand.Rand, active []applicant, program string, consentBase float64) [][]string {
	rows := [][]string{{"id", "consent", "priority", "phys", "rus", "math", "indiv", "total"}}
	for _, a := range active {
		priority := 0
		for i, p := range a.prefs {
			if p == program {
				priority = i + 1
				break
			}
		}
		if priority == 0 {
			continue
		}

		p := consentBase + 0.07*a.ability
		if priority == 1 {
			p += 0.10
		}
		consent := 0
		if rng.Float64() < math.Min(p, 0.95) {
			consent = 1
		}

		total := a.phys + a.rus + a.math + a.indiv
		rows = append(rows, []string{
			strconv.FormatInt(a.id, 10),
			strconv.Itoa(consent),
			strconv.Itoa(priority),
			strconv.Itoa(a.phys),
			strconv.Itoa(a.rus),
			strconv.Itoa(a.math),
			strconv.Itoa(a.indiv),
			strconv.Itoa(total),
		})
	}
	return rows
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func clampF(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func clampI(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
