package engine

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/gabeda-io/gabeda/internal/dataset"
)

// grouping partitions dataset rows by the values of the group key columns.
// Groups are numbered in first-seen order of their key, which fixes the row
// order of the attrs table.
type grouping struct {
	keys     []string
	keyVals  [][]cty.Value // per group: one value per key column
	rows     [][]int       // per group: member row indices, in input order
	rowGroup []int         // per row: owning group index
}

// buildGrouping scans the dataset once and assigns every row to a group.
func buildGrouping(d *dataset.Dataset, keys []string) (*grouping, error) {
	cols := make([][]cty.Value, len(keys))
	for i, key := range keys {
		vals, ok := d.Column(key)
		if !ok {
			return nil, fmt.Errorf("group key column %q not found in input", key)
		}
		cols[i] = vals
	}

	g := &grouping{keys: keys, rowGroup: make([]int, d.Len())}
	index := make(map[string]int)
	var keyBuf strings.Builder
	for row := 0; row < d.Len(); row++ {
		keyBuf.Reset()
		keyParts := make([]cty.Value, len(keys))
		for i := range keys {
			keyParts[i] = cols[i][row]
			keyBuf.WriteString(dataset.FormatValue(cols[i][row]))
			keyBuf.WriteByte(0x1f)
		}
		encoded := keyBuf.String()
		idx, seen := index[encoded]
		if !seen {
			idx = len(g.rows)
			index[encoded] = idx
			g.keyVals = append(g.keyVals, keyParts)
			g.rows = append(g.rows, nil)
		}
		g.rows[idx] = append(g.rows[idx], row)
		g.rowGroup[row] = idx
	}
	return g, nil
}

// size returns the number of distinct groups.
func (g *grouping) size() int {
	return len(g.rows)
}

// label renders a group key for error messages and logs, e.g. "product=A".
func (g *grouping) label(idx int) string {
	parts := make([]string, len(g.keys))
	for i, key := range g.keys {
		parts[i] = key + "=" + dataset.FormatValue(g.keyVals[idx][i])
	}
	return strings.Join(parts, ", ")
}
