package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/zclconf/go-cty/cty"
)

// ReadCSV parses CSV content with a header row into a dataset. Each field
// goes through InferValue, so the result is typed (number, bool, null,
// string) without any schema input. Full schema validation belongs to the
// ingestion layer upstream of this package.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv input is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	cols := make([][]cty.Value, len(header))
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row: %w", err)
		}
		for i, field := range record {
			cols[i] = append(cols[i], InferValue(field))
		}
	}

	d := New()
	for i, name := range header {
		if err := d.AddColumn(name, cols[i]); err != nil {
			return nil, fmt.Errorf("building dataset from csv: %w", err)
		}
	}
	return d, nil
}

// ReadCSVFile opens and parses a CSV file.
func ReadCSVFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// WriteCSV renders a dataset as CSV with a header row.
func WriteCSV(d *Dataset, w io.Writer) error {
	writer := csv.NewWriter(w)
	names := d.Columns()
	if err := writer.Write(names); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	record := make([]string, len(names))
	for row := 0; row < d.Len(); row++ {
		for i, name := range names {
			v, _ := d.Cell(name, row)
			record[i] = FormatValue(v)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing csv row %d: %w", row, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes a dataset to a file, creating or truncating it.
func WriteCSVFile(d *Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return WriteCSV(d, f)
}
