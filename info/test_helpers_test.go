package info

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/drblury/neurosynth/responder"
)

func get(t *testing.T, route http.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()

	rr := httptest.NewRecorder()
	route(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func decodeReport(t *testing.T, rr *httptest.ResponseRecorder) checkReport {
	t.Helper()

	var report checkReport
	if err := json.Unmarshal(rr.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode check report: %v (body: %s)", err, rr.Body.String())
	}
	return report
}

func decodeProblemDetails(t *testing.T, rr *httptest.ResponseRecorder) responder.ProblemDetails {
	t.Helper()

	var problem responder.ProblemDetails
	if err := json.Unmarshal(rr.Body.Bytes(), &problem); err != nil {
		t.Fatalf("failed to decode problem details: %v (body: %s)", err, rr.Body.String())
	}
	return problem
}
