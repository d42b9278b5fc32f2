// Package ingest parses uploaded CSV competition lists into typed
// batches. Column validation happens here, at the boundary; the
// reconciler re-checks semantic constraints on the typed rows.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"enrolld/internal/domain/model"
	"enrolld/internal/domain/reconcile"
)

// RequiredColumns lists the CSV header names every upload must carry.
// Column order is free; extra columns are ignored.
var RequiredColumns = []string{"id", "consent", "priority", "phys", "rus", "math", "indiv", "total"}

// ParseCSV reads a competition-list CSV into a batch. Missing required
// columns and non-integer values surface as validation errors carrying
// the offending column and row.
func ParseCSV(r io.Reader) ([]model.BatchRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &reconcile.ValidationError{Field: "header", Row: -1, Reason: "empty file"}
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &reconcile.ValidationError{
			Field:  strings.Join(missing, ", "),
			Row:    -1,
			Reason: "missing required columns",
		}
	}

	var batch []model.BatchRow
	for rowNum := 0; ; rowNum++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", rowNum, err)
		}

		fields := make(map[string]int, len(RequiredColumns))
		for _, col := range RequiredColumns {
			raw := strings.TrimSpace(record[index[col]])
			v, err := strconv.Atoi(raw)
			if err != nil {
				return nil, &reconcile.ValidationError{
					Field:  col,
					Row:    rowNum,
					Reason: fmt.Sprintf("not an integer: %q", raw),
				}
			}
			fields[col] = v
		}

		batch = append(batch, model.BatchRow{
			ID:       int64(fields["id"]),
			Consent:  fields["consent"],
			Priority: fields["priority"],
			Phys:     fields["phys"],
			Rus:      fields["rus"],
			Math:     fields["math"],
			Indiv:    fields["indiv"],
			Total:    fields["total"],
		})
	}
	return batch, nil
}
