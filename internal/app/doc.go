// Package app wires the pipeline stages together behind a single Run entry
// point: manifest loading, dataset ingestion, feature registration, model
// execution, and CSV export. It owns the application logger and the session
// that accumulates results across models.
package app
