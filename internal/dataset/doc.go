// Package dataset holds the tabular data model: an append-only arena of
// named, row-aligned columns of typed cells, plus the CSV boundary used to
// move tables in and out of the engine.
package dataset
