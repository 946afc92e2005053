package store

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

var metadataColumns = []string{"study_id", "title", "year"}

func TestDissociateTerms(t *testing.T) {
	s, mock := newMockStore(t)

	expectReadTx(mock)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT at1.study_id`)).
		WithArgs("terms_abstract_tfidf__cortices", "terms_abstract_tfidf__memory", DissociationLimit).
		WillReturnRows(sqlmock.NewRows([]string{"study_id"}).AddRow("17").AddRow("42"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT study_id, title, year FROM "ns"."metadata" WHERE study_id = ANY($1)`)).
		WithArgs([]string{"17", "42"}).
		WillReturnRows(sqlmock.NewRows(metadataColumns).
			AddRow("17", "Cortical maps", int64(2004)).
			AddRow("42", nil, nil))
	mock.ExpectRollback()

	got, err := s.DissociateTerms(context.Background(), FullTerm("cortices"), FullTerm("memory"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.QueryErr != nil || got.MetaErr != nil {
		t.Fatalf("unexpected stage errors: %v / %v", got.QueryErr, got.MetaErr)
	}
	if !reflect.DeepEqual(got.StudyIDs, []string{"17", "42"}) {
		t.Fatalf("unexpected study ids %v", got.StudyIDs)
	}
	if len(got.Studies) != 2 {
		t.Fatalf("expected two studies, got %d", len(got.Studies))
	}
	first := got.Studies[0]
	if first.Title == nil || *first.Title != "Cortical maps" || first.Year == nil || *first.Year != 2004 {
		t.Fatalf("unexpected first study %+v", first)
	}
	if got.Studies[1].Title != nil || got.Studies[1].Year != nil {
		t.Fatalf("expected null title and year, got %+v", got.Studies[1])
	}
}

func TestDissociateSkipsMetadataWhenNoStudies(t *testing.T) {
	s, mock := newMockStore(t)

	expectReadTx(mock)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT at1.study_id`)).
		WillReturnRows(sqlmock.NewRows([]string{"study_id"}))
	mock.ExpectRollback()

	got, err := s.DissociateTerms(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.StudyIDs == nil || len(got.StudyIDs) != 0 || got.Studies == nil || len(got.Studies) != 0 {
		t.Fatalf("expected empty non-nil slices, got %+v", got)
	}
}

func TestDissociateReportsQueryError(t *testing.T) {
	s, mock := newMockStore(t)
	sentinel := errors.New("syntax error")

	expectReadTx(mock)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT at1.study_id`)).WillReturnError(sentinel)
	mock.ExpectRollback()

	got, err := s.DissociateTerms(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("stage failures must not fail the transaction, got %v", err)
	}
	if !errors.Is(got.QueryErr, sentinel) {
		t.Fatalf("expected query error to wrap sentinel, got %v", got.QueryErr)
	}
	if len(got.StudyIDs) != 0 || len(got.Studies) != 0 {
		t.Fatalf("expected empty results, got %+v", got)
	}
}

func TestDissociateReportsMetaError(t *testing.T) {
	s, mock := newMockStore(t)
	sentinel := errors.New("column year does not exist")

	expectReadTx(mock)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT at1.study_id`)).
		WillReturnRows(sqlmock.NewRows([]string{"study_id"}).AddRow("17"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "ns"."metadata"`)).WillReturnError(sentinel)
	mock.ExpectRollback()

	got, err := s.DissociateTerms(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !errors.Is(got.MetaErr, sentinel) {
		t.Fatalf("expected meta error to wrap sentinel, got %v", got.MetaErr)
	}
	if !reflect.DeepEqual(got.StudyIDs, []string{"17"}) || len(got.Studies) != 0 {
		t.Fatalf("unexpected partial result %+v", got)
	}
}

func TestDissociateFailsWhenTransactionCannotStart(t *testing.T) {
	s, mock := newMockStore(t)
	sentinel := errors.New("connection refused")

	mock.ExpectBegin().WillReturnError(sentinel)

	_, err := s.DissociateTerms(context.Background(), "a", "b")
	var qerr *QueryError
	if !errors.As(err, &qerr) || qerr.Op != "begin transaction" {
		t.Fatalf("expected begin transaction QueryError, got %v", err)
	}
}

func TestDissociateFailsWhenSearchPathFails(t *testing.T) {
	s, mock := newMockStore(t)
	sentinel := errors.New("schema missing")

	mock.ExpectBegin()
	mock.ExpectExec("SET LOCAL search_path").WillReturnError(sentinel)
	mock.ExpectRollback()

	_, err := s.DissociateLocations(context.Background(), Coordinate{}, Coordinate{})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
}

func TestDissociateLocations(t *testing.T) {
	s, mock := newMockStore(t)

	expectReadTx(mock)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE ST_X(c1.geom) = $1 AND ST_Y(c1.geom) = $2 AND ST_Z(c1.geom) = $3`)).
		WithArgs(10.0, -5.0, 3.0, 0.0, 0.0, 0.0, DissociationLimit).
		WillReturnRows(sqlmock.NewRows([]string{"study_id"}).AddRow("9"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "ns"."metadata"`)).
		WithArgs([]string{"9"}).
		WillReturnRows(sqlmock.NewRows(metadataColumns).AddRow("9", "Amygdala", int64(2008)))
	mock.ExpectRollback()

	got, err := s.DissociateLocations(context.Background(), Coordinate{X: 10, Y: -5, Z: 3}, Coordinate{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got.StudyIDs, []string{"9"}) || len(got.Studies) != 1 {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestWithSchemaQuotesIdentifiers(t *testing.T) {
	q := buildQueries(`odd"schema`)
	if want := `SET LOCAL search_path TO "odd""schema", public`; q.searchPath != want {
		t.Fatalf("unexpected search_path statement %q", q.searchPath)
	}
}

func TestStudyYearAcceptsNumericColumns(t *testing.T) {
	cases := map[string]any{
		"integer":      int64(2011),
		"double":       2011.0,
		"numeric text": []byte("2011"),
	}
	for name, year := range cases {
		t.Run(name, func(t *testing.T) {
			s, mock := newMockStore(t)

			expectReadTx(mock)
			mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT c1.study_id`)).
				WillReturnRows(sqlmock.NewRows([]string{"study_id"}).AddRow("9"))
			mock.ExpectQuery(regexp.QuoteMeta(`FROM "ns"."metadata" WHERE study_id = ANY($1)`)).
				WillReturnRows(sqlmock.NewRows(metadataColumns).AddRow("9", "Fear and the amygdala", year))
			mock.ExpectRollback()

			got, err := s.DissociateLocations(context.Background(), Coordinate{X: 22, Y: -4, Z: -18}, Coordinate{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.MetaErr != nil {
				t.Fatalf("year column should scan, got %v", got.MetaErr)
			}
			if len(got.Studies) != 1 || got.Studies[0].Year == nil || *got.Studies[0].Year != 2011 {
				t.Fatalf("unexpected studies %+v", got.Studies)
			}
		})
	}
}
