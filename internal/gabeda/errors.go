package gabeda

import (
	"fmt"
	"strings"
)

// UnknownDatasetError reports a lookup of a dataset name never stored in
// the context.
type UnknownDatasetError struct {
	Name      string
	Available []string
}

func (e *UnknownDatasetError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("dataset %q not found in context (context is empty)", e.Name)
	}
	return fmt.Sprintf("dataset %q not found in context (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// UnknownModelError reports a lookup of a model with no committed output.
type UnknownModelError struct {
	Name string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("model %q has no output in context", e.Name)
}
