// Package store runs the read-only Neurosynth queries against PostgreSQL
// with the PostGIS extension. Tables live in a dedicated schema (ns by
// default): annotations_terms, coordinates and metadata.
//
// Every request-scoped operation runs inside its own read-only transaction
// that pins search_path to the data schema followed by public, where the
// PostGIS functions are installed.
package store
