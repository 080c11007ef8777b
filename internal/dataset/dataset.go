package dataset

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Dataset is an arena of named, row-aligned columns. Column order is the
// insertion order and is stable across reads. Cell values are cty values so
// numbers, strings, booleans, and nulls share one representation.
//
// A Dataset is append-only: columns can be added but never removed or
// mutated in place. Consumers that need a derived table build a new one.
type Dataset struct {
	names []string
	cols  map[string][]cty.Value
}

// Column pairs a column name with its values. It is the unit used by
// FromColumns when building a dataset wholesale.
type Column struct {
	Name   string
	Values []cty.Value
}

// New creates an empty dataset.
func New() *Dataset {
	return &Dataset{cols: make(map[string][]cty.Value)}
}

// FromColumns builds a dataset from an ordered list of columns.
func FromColumns(cols []Column) (*Dataset, error) {
	d := New()
	for _, c := range cols {
		if err := d.AddColumn(c.Name, c.Values); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// AddColumn appends a named column. Every column after the first must match
// the dataset's row count, and names must be unique.
func (d *Dataset) AddColumn(name string, values []cty.Value) error {
	if name == "" {
		return fmt.Errorf("column name must not be empty")
	}
	if _, exists := d.cols[name]; exists {
		return fmt.Errorf("column %q already exists", name)
	}
	if len(d.names) > 0 && len(values) != d.Len() {
		return fmt.Errorf("column %q has %d values, dataset has %d rows", name, len(values), d.Len())
	}
	d.names = append(d.names, name)
	d.cols[name] = values
	return nil
}

// Column returns the values of a named column.
func (d *Dataset) Column(name string) ([]cty.Value, bool) {
	vals, ok := d.cols[name]
	return vals, ok
}

// Cell returns a single value. The second return is false when the column
// does not exist or the row index is out of range.
func (d *Dataset) Cell(name string, row int) (cty.Value, bool) {
	vals, ok := d.cols[name]
	if !ok || row < 0 || row >= len(vals) {
		return cty.NilVal, false
	}
	return vals[row], true
}

// HasColumn reports whether a column exists.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.cols[name]
	return ok
}

// Columns returns the column names in insertion order. The returned slice is
// a copy and safe to modify.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// Len returns the row count. An empty dataset has zero rows.
func (d *Dataset) Len() int {
	if len(d.names) == 0 {
		return 0
	}
	return len(d.cols[d.names[0]])
}

// Clone returns a dataset with the same columns. Value slices are copied so
// the clone can grow independently; the cty values themselves are immutable.
func (d *Dataset) Clone() *Dataset {
	out := New()
	for _, name := range d.names {
		vals := make([]cty.Value, len(d.cols[name]))
		copy(vals, d.cols[name])
		// AddColumn cannot fail here: names are unique and lengths align.
		_ = out.AddColumn(name, vals)
	}
	return out
}

// Equal reports whether two datasets have identical column names, order,
// and cell values. Used by callers that verify deterministic output.
func (d *Dataset) Equal(o *Dataset) bool {
	if o == nil || len(d.names) != len(o.names) || d.Len() != o.Len() {
		return false
	}
	for i, name := range d.names {
		if o.names[i] != name {
			return false
		}
		a, b := d.cols[name], o.cols[name]
		for j := range a {
			if !a[j].RawEquals(b[j]) {
				return false
			}
		}
	}
	return true
}
