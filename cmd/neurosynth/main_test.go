package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/goleak"

	"github.com/drblury/neurosynth/config"
	"github.com/drblury/neurosynth/jsonutil"
	"github.com/drblury/neurosynth/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func clearDatabaseEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DB_URL", "DATABASE_URL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// newTestApp returns an app whose store is backed by sqlmock.
func newTestApp(t *testing.T) (*app, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	a := newApp()
	a.envFiles = []string{"testdata/missing.env"}
	a.openStore = func(cfg config.Database, logger *slog.Logger) (*store.Store, error) {
		if cfg.URL != "postgresql://user:pass@db/neurosynth" {
			t.Fatalf("unexpected database url %q", cfg.URL)
		}
		return store.New(db, store.WithSchema(cfg.Schema), store.WithLogger(logger)), nil
	}
	return a, mock
}

func execute(a *app, args ...string) (string, error) {
	var out, errOut bytes.Buffer
	cmd := newRootCommand(a)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSearchCommandPrintsRows(t *testing.T) {
	clearDatabaseEnv(t)
	t.Setenv("DB_URL", "postgres://user:pass@db/neurosynth")

	a, mock := newTestApp(t)
	mock.ExpectQuery(`SELECT study_id, contrast_id, term, weight FROM "ns"\."annotations_terms" WHERE term = \$1 LIMIT \$2`).
		WithArgs("terms_abstract_tfidf__memory", 2).
		WillReturnRows(sqlmock.NewRows([]string{"study_id", "contrast_id", "term", "weight"}).
			AddRow("s1", "1", "terms_abstract_tfidf__memory", 0.25))

	out, err := execute(a, "search", "terms_abstract_tfidf__memory", "--exact", "--limit", "2", "--log-level", "error")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	var rows []store.TermAnnotation
	if err := jsonutil.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, out)
	}
	if len(rows) != 1 || rows[0].StudyID != "s1" || rows[0].Weight != 0.25 {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSearchCommandSubstringWithoutLimit(t *testing.T) {
	clearDatabaseEnv(t)
	t.Setenv("DATABASE_URL", "postgresql://user:pass@db/neurosynth")

	a, mock := newTestApp(t)
	mock.ExpectQuery(`WHERE term LIKE \$1 ESCAPE '\\'$`).
		WithArgs(`%100\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"study_id", "contrast_id", "term", "weight"}))

	out, err := execute(a, "search", "100%")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Fatalf("expected empty array, got %q", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMissingDatabaseURLIsFatal(t *testing.T) {
	clearDatabaseEnv(t)

	a, _ := newTestApp(t)
	a.openStore = func(config.Database, *slog.Logger) (*store.Store, error) {
		t.Fatal("store must not be opened without a database url")
		return nil, nil
	}

	_, err := execute(a, "search", "memory")
	if !errors.Is(err, config.ErrMissingDatabaseURL) {
		t.Fatalf("expected ErrMissingDatabaseURL, got %v", err)
	}
}

func TestDatabaseURLFlagOverridesEnv(t *testing.T) {
	clearDatabaseEnv(t)
	t.Setenv("DB_URL", "postgresql://other@elsewhere/db")

	a, mock := newTestApp(t)
	mock.ExpectQuery(`annotations_terms`).
		WillReturnRows(sqlmock.NewRows([]string{"study_id", "contrast_id", "term", "weight"}))

	if _, err := execute(a, "--database-url", "postgres://user:pass@db/neurosynth", "search", "memory"); err != nil {
		t.Fatalf("search failed: %v", err)
	}
}

func TestNewServerRoutes(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	cfg := config.Config{
		Database: config.Database{Schema: "ns"},
		HTTP:     config.HTTP{Addr: ":0", Timeout: 5 * time.Second},
		Log:      config.Log{Level: "error"},
	}
	srv, err := newServer(context.Background(), cfg, store.New(db), discardLogger())
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "Server working!" {
		t.Fatalf("unexpected root response %d %q", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"openapi"`) {
		t.Fatalf("unexpected openapi response %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/search/terms?keyword=memory&limit=-1", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected validation failure, got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/problem+json" {
		t.Fatalf("expected problem document, got %q", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no query expected: %v", err)
	}
}

func TestRunServerStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	srv := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}),
		ReadHeaderTimeout: time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServer(ctx, srv, ln, discardLogger()) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String())
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runServer returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestBuildInfo(t *testing.T) {
	payload, ok := buildInfo().(map[string]string)
	if !ok {
		t.Fatalf("unexpected payload type %T", buildInfo())
	}
	if payload["name"] != "neurosynth" || payload["version"] != version || payload["go"] == "" {
		t.Fatalf("unexpected payload %v", payload)
	}
}
