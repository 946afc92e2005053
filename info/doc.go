// Package info serves the operational routes of the service: /healthz and
// /readyz backed by probe checks, /version, the OpenAPI document and a
// Stoplight Elements page that renders it.
package info
