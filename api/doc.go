// Package api serves the Neurosynth data endpoints: term search, the two
// echo lookups, the database diagnostics report and the term and location
// dissociations. Handlers depend on the Querier interface, which *store.Store
// satisfies, and render through a shared responder.
package api
