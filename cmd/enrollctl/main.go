// Command enrollctl inspects the admission record store from the
// terminal: competition lists, allocation results, cutoffs and upload
// history, rendered as tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"enrolld/internal/adapters/repository"
	"enrolld/internal/adapters/repository/postgres"
	"enrolld/internal/adapters/repository/sqlite"
	"enrolld/internal/app"
	"enrolld/internal/config"
	"enrolld/pkg/logger"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

func main() {
	// Optional .env for ENROLLD_* variables; absence is fine.
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "init logging:", err)
		os.Exit(1)
	}
	_ = logger.SetLevelString("warn")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		fail(err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		fail(err)
	}
	defer store.Close()

	svc, err := app.New(store,
		app.WithSeats(cfg.Seats),
		app.WithCascadeLimit(cfg.CascadeLimit),
	)
	if err != nil {
		fail(err)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "list":
		err = runList(ctx, svc, args)
	case "admission":
		err = runAdmission(ctx, svc, args)
	case "cascade":
		err = runCascade(ctx, svc, args)
	case "stats":
		err = runStats(ctx, svc, args)
	case "uploads":
		err = runUploads(ctx, svc, args)
	case "days":
		err = runDays(ctx, svc)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fail(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: enrollctl <command> [flags]

commands:
  list <program>   print a program's competition list (-day, -consent)
  admission        print the allocation for a day (-day)
  cascade          print the merged per-applicant view (-day, -limit)
  stats            print per-priority counts (-day)
  uploads          print upload history (-day, -program)
  days             print the known snapshot days`)
}

func fail(err error) {
	color.Red("error: %v", err)
	os.Exit(1)
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return nil, fmt.Errorf("memory driver has no persisted data to inspect")
	case config.DriverSQLite:
		return sqlite.NewStore(cfg.SQLitePath)
	case config.DriverPostgres:
		return postgres.NewStore(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
	}
}

func runList(ctx context.Context, svc *app.Service, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	day := fs.String("day", "", "snapshot day, YYYY-MM-DD")
	consentFlag := fs.String("consent", "", "filter by consent: 0 or 1")
	sortFlag := fs.String("sort", "", "row order: total_desc (default), total_asc, id_asc")
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("list: missing program")
	}
	program := fs.Arg(0)

	var consent *bool
	switch *consentFlag {
	case "":
	case "0", "1":
		v := *consentFlag == "1"
		consent = &v
	default:
		return fmt.Errorf("list: -consent must be 0 or 1")
	}

	sortOrder, ok := repository.ParseSort(*sortFlag)
	if !ok {
		return fmt.Errorf("list: unknown -sort %q", *sortFlag)
	}

	rows, err := svc.ProgramList(ctx, program, *day, consent, sortOrder)
	if err != nil {
		return err
	}

	color.Yellow("\nCompetition list: %s %s (%d rows)", program, *day, len(rows))
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Rank", "ID", "Consent", "Priority", "Phys", "Rus", "Math", "Indiv", "Total"})
	for i, r := range rows {
		table.Append([]string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(r.ApplicantID, 10),
			boolMark(r.Consent),
			strconv.Itoa(r.Priority),
			strconv.Itoa(r.Phys),
			strconv.Itoa(r.Rus),
			strconv.Itoa(r.Math),
			strconv.Itoa(r.Indiv),
			strconv.Itoa(r.Total),
		})
	}
	table.Render()
	return nil
}

func runAdmission(ctx context.Context, svc *app.Service, args []string) error {
	fs := flag.NewFlagSet("admission", flag.ExitOnError)
	day := fs.String("day", "", "snapshot day, YYYY-MM-DD")
	_ = fs.Parse(args)
	if *day == "" {
		return fmt.Errorf("admission: -day is required")
	}

	view, err := svc.Admission(ctx, *day)
	if err != nil {
		return err
	}

	color.Yellow("\nAllocation for %s", *day)
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Program", "Seats", "Admitted", "Cutoff"})
	for _, program := range sortedKeys(view.Admitted) {
		cutoff := "-"
		if c := view.Cutoffs[program]; c != nil {
			cutoff = strconv.Itoa(*c)
		}
		table.Append([]string{
			program,
			strconv.Itoa(svc.Seats()[program]),
			strconv.Itoa(view.Counts[program]),
			cutoff,
		})
	}
	table.Render()
	return nil
}

func runCascade(ctx context.Context, svc *app.Service, args []string) error {
	fs := flag.NewFlagSet("cascade", flag.ExitOnError)
	day := fs.String("day", "", "snapshot day, YYYY-MM-DD")
	limit := fs.Int("limit", 50, "max rows to print")
	_ = fs.Parse(args)

	rows, err := svc.Cascade(ctx, *day, *limit)
	if err != nil {
		return err
	}

	color.Yellow("\nCascade view %s (%d rows)", *day, len(rows))
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Consent", "Max Total", "Cascade"})
	for _, r := range rows {
		table.Append([]string{
			strconv.FormatInt(r.ID, 10),
			boolMark(r.AnyConsent),
			strconv.Itoa(r.MaxTotal),
			r.Cascade,
		})
	}
	table.Render()
	return nil
}

func runStats(ctx context.Context, svc *app.Service, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	day := fs.String("day", "", "snapshot day, YYYY-MM-DD")
	_ = fs.Parse(args)
	if *day == "" {
		return fmt.Errorf("stats: -day is required")
	}

	view, err := svc.Stats(ctx, *day)
	if err != nil {
		return err
	}

	color.Yellow("\nApplications by priority, %s", *day)
	printBuckets(view.ByPriority)
	color.Yellow("\nAdmitted by priority, %s", *day)
	printBuckets(view.Admitted)
	return nil
}

func printBuckets(buckets map[string]map[int]int) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Program", "P1", "P2", "P3", "P4"})
	for _, program := range sortedKeys(buckets) {
		b := buckets[program]
		table.Append([]string{
			program,
			strconv.Itoa(b[1]),
			strconv.Itoa(b[2]),
			strconv.Itoa(b[3]),
			strconv.Itoa(b[4]),
		})
	}
	table.Render()
}

func runUploads(ctx context.Context, svc *app.Service, args []string) error {
	fs := flag.NewFlagSet("uploads", flag.ExitOnError)
	day := fs.String("day", "", "filter by day")
	program := fs.String("program", "", "filter by program")
	_ = fs.Parse(args)

	recs, err := svc.Uploads(ctx, *day, *program)
	if err != nil {
		return err
	}

	color.Yellow("\nUpload history (%d entries)", len(recs))
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Loaded At", "Day", "Program", "ID"})
	for _, rec := range recs {
		table.Append([]string{
			rec.LoadedAt.Format(time.RFC3339),
			rec.Day,
			rec.Program,
			rec.ID,
		})
	}
	table.Render()
	return nil
}

func runDays(ctx context.Context, svc *app.Service) error {
	days, err := svc.Days(ctx)
	if err != nil {
		return err
	}
	for _, d := range days {
		fmt.Println(d)
	}
	return nil
}

func boolMark(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
