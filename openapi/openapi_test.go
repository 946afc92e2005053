package openapi

import (
	"context"
	"strings"
	"testing"
)

func TestLoadValidatesDocument(t *testing.T) {
	doc, err := Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, path := range []string{
		"/",
		"/img",
		"/terms/{term}/studies",
		"/locations/{coords}/studies",
		"/search/terms",
		"/test_db",
		"/dissociate/terms/{term_a}/{term_b}",
		"/dissociate/locations/{coords_a}/{coords_b}",
		"/healthz",
		"/readyz",
	} {
		if doc.Paths.Find(path) == nil {
			t.Fatalf("expected path %s to be documented", path)
		}
	}
}

func TestLoadReturnsIndependentCopies(t *testing.T) {
	first, err := Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first.Servers = nil

	second, err := Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second.Servers) == 0 {
		t.Fatal("expected second copy to keep its servers")
	}
}

func TestJSON(t *testing.T) {
	data, err := JSON(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), `"openapi":"3.0.3"`) {
		t.Fatalf("unexpected document %s", data)
	}
}
