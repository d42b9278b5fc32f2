package reconcile

import (
	"errors"
	"fmt"
)

// ErrValidation is the sentinel kind for malformed upload batches.
// Match with errors.Is; the concrete *ValidationError carries detail.
var ErrValidation = errors.New("invalid batch")

// ValidationError reports which field of which row failed validation.
// Row is zero-based; -1 means the failure concerns the batch as a
// whole.
type ValidationError struct {
	Field  string
	Row    int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("invalid batch: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid batch: row %d, %s: %s", e.Row, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
