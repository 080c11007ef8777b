package feature

// TypeDetector classifies feature definitions. With capabilities declared
// explicitly at registration, classification is a pure function of the
// descriptor. The one remaining ambiguity (an attribute with no group key
// that still reads raw columns) is caught by the planner, which knows the
// column universe.
type TypeDetector struct{}

// Classify resolves a definition's kind. An explicit kind wins; otherwise a
// group-key requirement implies an attribute and everything else is a
// filter. A filter that claims to need a group key is contradictory and is
// rejected rather than guessed at.
func (TypeDetector) Classify(def *Definition) (Kind, error) {
	if def.Kind == KindFilter && def.RequiresGroupKey {
		return KindUnspecified, &AmbiguityError{
			Name:   def.Name,
			Reason: "declared as a filter but requires a group key",
		}
	}
	if def.Kind != KindUnspecified {
		return def.Kind, nil
	}
	if def.RequiresGroupKey {
		return KindAttribute, nil
	}
	return KindFilter, nil
}

// RequiresAggregation reports whether the feature reduces grouped rows to a
// single value. This drives the groupby flag in the execution plan.
func (TypeDetector) RequiresAggregation(def *Definition) bool {
	return def.RequiresGroupKey
}
