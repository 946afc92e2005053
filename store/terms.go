package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
)

// TermPrefix is prepended to the short term names used in URLs to form the
// stored annotation term.
const TermPrefix = "terms_abstract_tfidf__"

// FullTerm expands a short term such as "memory" into its stored form.
func FullTerm(term string) string {
	return TermPrefix + term
}

// TermAnnotation is a study's weight for a text term.
type TermAnnotation struct {
	StudyID    string  `json:"study_id"`
	ContrastID string  `json:"contrast_id"`
	Term       string  `json:"term"`
	Weight     float64 `json:"weight"`
}

// TermQuery selects annotation rows by keyword. Limit is optional.
type TermQuery struct {
	Keyword string
	Exact   bool
	Limit   *int
}

// SearchTerms returns the annotation rows whose term equals the keyword
// (exact) or contains it as a substring. Row order is whatever the database
// produces.
func (s *Store) SearchTerms(ctx context.Context, q TermQuery) ([]TermAnnotation, error) {
	if q.Limit != nil && *q.Limit < 0 {
		return nil, &ValidationError{Field: "limit", Value: strconv.Itoa(*q.Limit), Err: errors.New("must not be negative")}
	}

	query := s.queries.termsExact
	args := []any{q.Keyword}
	if !q.Exact {
		query = s.queries.termsSubstring
		args = []any{"%" + escapeLike(q.Keyword) + "%"}
	}
	if q.Limit != nil {
		query += " LIMIT $2"
		args = append(args, *q.Limit)
	}

	s.log.DebugContext(ctx, "searching terms", "keyword", q.Keyword, "exact", q.Exact)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryError("search terms", err)
	}
	defer rows.Close()

	annotations, err := scanAnnotations(rows)
	if err != nil {
		return nil, queryError("search terms", err)
	}
	return annotations, nil
}

func scanAnnotations(rows *sql.Rows) ([]TermAnnotation, error) {
	annotations := make([]TermAnnotation, 0)
	for rows.Next() {
		var (
			a          TermAnnotation
			contrastID sql.NullString
		)
		if err := rows.Scan(&a.StudyID, &contrastID, &a.Term, &a.Weight); err != nil {
			return nil, err
		}
		a.ContrastID = contrastID.String
		annotations = append(annotations, a)
	}
	return annotations, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes the keyword match literally inside a LIKE pattern.
func escapeLike(keyword string) string {
	return likeEscaper.Replace(keyword)
}
