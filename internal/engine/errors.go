package engine

import (
	"fmt"

	"github.com/gabeda-io/gabeda/internal/plan"
)

// ComputationError wraps a feature callable's failure with the feature
// name, the execution case, and, for grouped dispatches, the offending
// group key. It aborts the whole run; no partial output is committed.
type ComputationError struct {
	Feature  string
	Case     plan.Case
	GroupKey string
	// Row is the failing input row for row-level dispatch, -1 otherwise.
	Row int
	Err error
}

func (e *ComputationError) Error() string {
	msg := fmt.Sprintf("computing feature %q (%s)", e.Feature, e.Case)
	if e.GroupKey != "" {
		msg += fmt.Sprintf(" for group [%s]", e.GroupKey)
	}
	if e.Row >= 0 {
		msg += fmt.Sprintf(" at row %d", e.Row)
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

// Unwrap exposes the feature callable's original error.
func (e *ComputationError) Unwrap() error {
	return e.Err
}
