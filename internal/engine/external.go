package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/gabeda-io/gabeda/internal/ctxlog"
	"github.com/gabeda-io/gabeda/internal/dataset"
)

// DatasetLookup resolves dataset names to datasets. The session context
// satisfies this; tests can supply something smaller.
type DatasetLookup interface {
	Dataset(name string) (*dataset.Dataset, error)
}

// Source declares one external dataset to join onto the input before
// execution. Joined columns are prefixed "<Name>_" to avoid collisions and
// count as group-level values during execution.
type Source struct {
	// Name prefixes the joined columns.
	Name string
	// Source is the dataset name to pull from the context.
	Source string
	// JoinOn are the key columns, which must exist on both sides.
	JoinOn []string
	// Columns restricts which columns to join. Empty means all columns
	// except the join keys.
	Columns []string
}

// MergeExternal left-joins every declared source onto the input and returns
// the widened dataset plus the names of all added columns. Validation of
// sources and join keys happens up front, before any row is touched.
func MergeExternal(ctx context.Context, data *dataset.Dataset, sources []Source, lookup DatasetLookup) (*dataset.Dataset, []string, error) {
	if len(sources) == 0 {
		return data, nil, nil
	}
	if lookup == nil {
		return nil, nil, fmt.Errorf("external sources declared but no dataset lookup available")
	}
	logger := ctxlog.FromContext(ctx)

	merged := data.Clone()
	var added []string
	for _, src := range sources {
		if src.Name == "" || src.Source == "" {
			return nil, nil, fmt.Errorf("external source must declare both a name and a source dataset")
		}
		if len(src.JoinOn) == 0 {
			return nil, nil, fmt.Errorf("external source %q declares no join columns", src.Name)
		}
		ext, err := lookup.Dataset(src.Source)
		if err != nil {
			return nil, nil, fmt.Errorf("external source %q: %w", src.Name, err)
		}
		for _, key := range src.JoinOn {
			if !data.HasColumn(key) {
				return nil, nil, fmt.Errorf("external source %q: join column %q not found in input", src.Name, key)
			}
			if !ext.HasColumn(key) {
				return nil, nil, fmt.Errorf("external source %q: join column %q not found in dataset %q", src.Name, key, src.Source)
			}
		}

		cols := src.Columns
		if len(cols) == 0 {
			for _, c := range ext.Columns() {
				if !contains(src.JoinOn, c) {
					cols = append(cols, c)
				}
			}
		}
		for _, c := range cols {
			if !ext.HasColumn(c) {
				return nil, nil, fmt.Errorf("external source %q: column %q not found in dataset %q", src.Name, c, src.Source)
			}
		}

		// Index the external rows by join key; first match wins.
		index := make(map[string]int, ext.Len())
		for row := 0; row < ext.Len(); row++ {
			key := joinKey(ext, src.JoinOn, row)
			if _, seen := index[key]; !seen {
				index[key] = row
			}
		}

		for _, c := range cols {
			name := src.Name + "_" + c
			extCol, _ := ext.Column(c)
			vals := make([]cty.Value, data.Len())
			for row := 0; row < data.Len(); row++ {
				if extRow, ok := index[joinKey(data, src.JoinOn, row)]; ok {
					vals[row] = extCol[extRow]
				} else {
					vals[row] = dataset.Null()
				}
			}
			if err := merged.AddColumn(name, vals); err != nil {
				return nil, nil, fmt.Errorf("external source %q: %w", src.Name, err)
			}
			added = append(added, name)
		}
		logger.Info("External source merged.", "source", src.Name, "dataset", src.Source, "columns", len(cols))
	}
	return merged, added, nil
}

func joinKey(d *dataset.Dataset, keys []string, row int) string {
	var b strings.Builder
	for _, key := range keys {
		v, _ := d.Cell(key, row)
		b.WriteString(dataset.FormatValue(v))
		b.WriteByte(0x1f)
	}
	return b.String()
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
