package dataset_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabeda-io/gabeda/internal/dataset"
)

func TestReadCSV(t *testing.T) {
	input := strings.Join([]string{
		"product,price,active",
		"A,100,true",
		"B,,false",
	}, "\n")

	d, err := dataset.ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"product", "price", "active"}, d.Columns())
	assert.Equal(t, 2, d.Len())

	v, _ := d.Cell("price", 0)
	f, ok := dataset.Float(v)
	require.True(t, ok)
	assert.Equal(t, 100.0, f)

	// Empty field parses as null.
	v, _ = d.Cell("price", 1)
	assert.True(t, v.IsNull())

	v, _ = d.Cell("active", 1)
	assert.True(t, v.False())
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := dataset.ReadCSV(strings.NewReader(""))
	assert.ErrorContains(t, err, "empty")
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	original, err := dataset.FromColumns([]dataset.Column{
		{Name: "product", Values: vals("A", "B")},
		{Name: "price", Values: vals("100", "")},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, dataset.WriteCSV(original, &buf))

	parsed, err := dataset.ReadCSV(&buf)
	require.NoError(t, err)
	assert.True(t, original.Equal(parsed), "round trip should preserve values, got:\n%s", buf.String())
}

func TestWriteCSVFile(t *testing.T) {
	d, err := dataset.FromColumns([]dataset.Column{
		{Name: "x", Values: vals("1")},
	})
	require.NoError(t, err)

	path := t.TempDir() + "/out.csv"
	require.NoError(t, dataset.WriteCSVFile(d, path))

	back, err := dataset.ReadCSVFile(path)
	require.NoError(t, err)
	assert.True(t, d.Equal(back))
}
