package feature

import (
	"fmt"
	"log/slog"
)

// Store is the feature registry for one pipeline. It maps names to
// definitions and remembers registration order, which is the deterministic
// tie-break the planner relies on. A Store is an explicit instance passed by
// reference; there is no process-wide registry.
type Store struct {
	defs  map[string]*Definition
	order []string
}

// NewStore creates an empty feature store.
func NewStore() *Store {
	return &Store{defs: make(map[string]*Definition)}
}

// Register adds a definition to the store. The definition's kind is
// normalized through the type detector, so conflicting declarations fail
// here rather than mid-execution.
func (s *Store) Register(def *Definition) error {
	if def == nil || def.Name == "" {
		return fmt.Errorf("feature definition must have a name")
	}
	if def.Fn == nil {
		return fmt.Errorf("feature %q has no callable", def.Name)
	}
	if _, exists := s.defs[def.Name]; exists {
		return &DuplicateFeatureError{Name: def.Name}
	}

	kind, err := (TypeDetector{}).Classify(def)
	if err != nil {
		return err
	}
	def.Kind = kind

	slog.Debug("Registering feature.", "name", def.Name, "kind", kind.String(), "deps", len(def.Dependencies))
	s.defs[def.Name] = def
	s.order = append(s.order, def.Name)
	return nil
}

// Get returns a definition by name.
func (s *Store) Get(name string) (*Definition, error) {
	def, ok := s.defs[name]
	if !ok {
		return nil, &UnknownFeatureError{Name: name}
	}
	return def, nil
}

// Has reports whether a feature is registered.
func (s *Store) Has(name string) bool {
	_, ok := s.defs[name]
	return ok
}

// List returns all definitions in registration order.
func (s *Store) List() []*Definition {
	out := make([]*Definition, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.defs[name])
	}
	return out
}

// Len returns the number of registered features.
func (s *Store) Len() int {
	return len(s.order)
}
