package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/drblury/neurosynth/responder"
	"github.com/drblury/neurosynth/store"
)

type fakeStore struct {
	searchTerms         func(context.Context, store.TermQuery) ([]store.TermAnnotation, error)
	diagnose            func(context.Context) (store.Diagnostics, error)
	dissociateTerms     func(context.Context, string, string) (store.Dissociation, error)
	dissociateLocations func(context.Context, store.Coordinate, store.Coordinate) (store.Dissociation, error)
}

func (f *fakeStore) SearchTerms(ctx context.Context, q store.TermQuery) ([]store.TermAnnotation, error) {
	if f.searchTerms == nil {
		return []store.TermAnnotation{}, nil
	}
	return f.searchTerms(ctx, q)
}

func (f *fakeStore) Diagnose(ctx context.Context) (store.Diagnostics, error) {
	if f.diagnose == nil {
		return store.Diagnostics{}, nil
	}
	return f.diagnose(ctx)
}

func (f *fakeStore) DissociateTerms(ctx context.Context, a, b string) (store.Dissociation, error) {
	if f.dissociateTerms == nil {
		return store.Dissociation{StudyIDs: []string{}, Studies: []store.Study{}}, nil
	}
	return f.dissociateTerms(ctx, a, b)
}

func (f *fakeStore) DissociateLocations(ctx context.Context, a, b store.Coordinate) (store.Dissociation, error) {
	if f.dissociateLocations == nil {
		return store.Dissociation{StudyIDs: []string{}, Studies: []store.Study{}}, nil
	}
	return f.dissociateLocations(ctx, a, b)
}

// serve routes req through the full mux so path variables are populated.
func serve(t *testing.T, h *Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	NewRouter(h, nil).ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode body: %v (body: %s)", err, rr.Body.String())
	}
	return out
}

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) responder.ProblemDetails {
	t.Helper()
	if got := rr.Header().Get("Content-Type"); got != "application/problem+json" {
		t.Fatalf("expected problem content type, got %q", got)
	}
	return decode[responder.ProblemDetails](t, rr)
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected status %d, got %d (body: %s)", want, rr.Code, rr.Body.String())
	}
}

func ptr[T any](v T) *T { return &v }
