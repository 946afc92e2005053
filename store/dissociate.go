package store

import (
	"context"
	"database/sql"
	"math"
)

// DissociationLimit caps the number of study identifiers a dissociation returns.
const DissociationLimit = 50

// Study is the bibliographic record of a study. Year is read from any numeric
// or numeric text column and rounded to a whole year.
type Study struct {
	StudyID string  `json:"study_id"`
	Title   *string `json:"title"`
	Year    *int64  `json:"year"`
}

// Dissociation is the outcome of an anti-join between two predicates. The
// stage errors are reported separately so callers can return the part that
// succeeded.
type Dissociation struct {
	StudyIDs []string
	Studies  []Study

	// QueryErr is set when selecting the identifiers failed.
	QueryErr error
	// MetaErr is set when fetching metadata for the identifiers failed.
	MetaErr error
}

// DissociateTerms returns up to DissociationLimit studies annotated with
// termA that have no annotation for termB. Both terms must already be in
// their stored form (see FullTerm). The returned error covers connection
// and transaction failures only.
func (s *Store) DissociateTerms(ctx context.Context, termA, termB string) (Dissociation, error) {
	return s.dissociate(ctx, "dissociate terms", s.queries.dissociateTerms, termA, termB, DissociationLimit)
}

// DissociateLocations returns up to DissociationLimit studies reporting a
// peak at exactly a that report none at exactly b.
func (s *Store) DissociateLocations(ctx context.Context, a, b Coordinate) (Dissociation, error) {
	return s.dissociate(ctx, "dissociate locations", s.queries.dissociateLocations,
		a.X, a.Y, a.Z, b.X, b.Y, b.Z, DissociationLimit)
}

func (s *Store) dissociate(ctx context.Context, op, query string, args ...any) (Dissociation, error) {
	result := Dissociation{StudyIDs: []string{}, Studies: []Study{}}

	err := s.readTx(ctx, func(tx *sql.Tx) error {
		ids, err := queryStudyIDs(ctx, tx, query, args...)
		if err != nil {
			result.QueryErr = queryError(op, err)
			s.log.WarnContext(ctx, "dissociation query failed", "op", op, "error", err)
			return nil
		}
		result.StudyIDs = ids

		if len(ids) == 0 {
			return nil
		}

		studies, err := s.studiesByIDs(ctx, tx, ids)
		if err != nil {
			result.MetaErr = queryError("fetch study metadata", err)
			s.log.WarnContext(ctx, "metadata query failed", "op", op, "error", err)
			return nil
		}
		result.Studies = studies
		return nil
	})
	return result, err
}

func queryStudyIDs(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]string, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0, DissociationLimit)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) studiesByIDs(ctx context.Context, tx *sql.Tx, ids []string) ([]Study, error) {
	rows, err := tx.QueryContext(ctx, s.queries.studiesByIDs, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	studies := make([]Study, 0, len(ids))
	for rows.Next() {
		var (
			st    Study
			title sql.NullString
			year  sql.Null[float64]
		)
		if err := rows.Scan(&st.StudyID, &title, &year); err != nil {
			return nil, err
		}
		if title.Valid {
			st.Title = &title.String
		}
		if year.Valid {
			y := int64(math.Round(year.V))
			st.Year = &y
		}
		studies = append(studies, st)
	}
	return studies, rows.Err()
}
