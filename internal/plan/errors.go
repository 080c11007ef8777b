package plan

import (
	"fmt"
	"strings"
)

// CycleError reports a dependency graph that is not acyclic. Members holds
// the names participating in the detected cycle, in traversal order.
type CycleError struct {
	Members []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Members, " -> "))
}

// UnknownDependencyError reports a dependency naming neither a raw column
// nor a registered feature. Feature is empty when a requested output itself
// is unknown.
type UnknownDependencyError struct {
	Feature    string
	Dependency string
	Detail     string
}

func (e *UnknownDependencyError) Error() string {
	var b strings.Builder
	if e.Feature != "" {
		fmt.Fprintf(&b, "feature %q depends on %q, which is neither a column nor a registered feature", e.Feature, e.Dependency)
	} else {
		fmt.Fprintf(&b, "requested output %q is neither a column nor a registered feature", e.Dependency)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, " (%s)", e.Detail)
	}
	return b.String()
}
