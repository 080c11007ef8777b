package feature

import "fmt"

// DuplicateFeatureError reports a registration under a name that is already
// taken. Registration is never retried; the caller must pick another name.
type DuplicateFeatureError struct {
	Name string
}

func (e *DuplicateFeatureError) Error() string {
	return fmt.Sprintf("feature %q is already registered", e.Name)
}

// UnknownFeatureError reports a lookup of a name with no definition.
type UnknownFeatureError struct {
	Name string
}

func (e *UnknownFeatureError) Error() string {
	return fmt.Sprintf("feature %q is not registered", e.Name)
}

// AmbiguityError reports a feature whose role cannot be determined from its
// descriptor. It is surfaced with the feature name and never guessed around.
type AmbiguityError struct {
	Name   string
	Reason string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("feature %q has an ambiguous type: %s", e.Name, e.Reason)
}
