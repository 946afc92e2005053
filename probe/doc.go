// Package probe converts database pings and catalog lookups into
// readiness/liveness checks. See ExampleNewPingProbe and ExampleNewTableProbe
// for quick-start patterns.
package probe
