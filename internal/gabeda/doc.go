// Package gabeda holds the session context: a keyed store of named datasets
// and committed model outputs. Later models read datasets earlier models
// produced, and every derived table records the lineage back to its raw
// source.
package gabeda
