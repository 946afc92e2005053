package store

import (
	"context"
	"database/sql"
)

// SampleSize is the number of rows each diagnostic sample returns.
const SampleSize = 3

// CoordinateRow is a reported peak with its components extracted by PostGIS.
type CoordinateRow struct {
	StudyID string  `json:"study_id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
}

// Diagnostics summarises the three Neurosynth tables.
type Diagnostics struct {
	Version string

	// Counts are nil until their query succeeds; a failed diagnosis keeps the
	// ones collected before the failure.
	CoordinatesCount      *int64
	MetadataCount         *int64
	AnnotationsTermsCount *int64

	// Samples degrade to empty slices when their query fails.
	CoordinatesSample      []CoordinateRow
	MetadataSample         []map[string]any
	AnnotationsTermsSample []TermAnnotation
}

// Diagnose reports the server version, row counts and small samples. A
// failing version or count query aborts with an error and returns whatever
// was collected up to that point; sample failures do not.
func (s *Store) Diagnose(ctx context.Context) (Diagnostics, error) {
	d := Diagnostics{
		CoordinatesSample:      []CoordinateRow{},
		MetadataSample:         []map[string]any{},
		AnnotationsTermsSample: []TermAnnotation{},
	}

	err := s.readTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, s.queries.version).Scan(&d.Version); err != nil {
			return queryError("select version", err)
		}

		counts := []struct {
			op    string
			query string
			dest  **int64
		}{
			{"count coordinates", s.queries.countCoordinates, &d.CoordinatesCount},
			{"count metadata", s.queries.countMetadata, &d.MetadataCount},
			{"count annotations_terms", s.queries.countAnnotationsTerms, &d.AnnotationsTermsCount},
		}
		for _, c := range counts {
			var n int64
			if err := tx.QueryRowContext(ctx, c.query).Scan(&n); err != nil {
				return queryError(c.op, err)
			}
			*c.dest = &n
		}

		if rows, err := s.sampleCoordinates(ctx, tx); err == nil {
			d.CoordinatesSample = rows
		} else {
			s.log.WarnContext(ctx, "coordinates sample failed", "error", err)
		}
		if rows, err := s.sampleMetadata(ctx, tx); err == nil {
			d.MetadataSample = rows
		} else {
			s.log.WarnContext(ctx, "metadata sample failed", "error", err)
		}
		if rows, err := s.sampleAnnotations(ctx, tx); err == nil {
			d.AnnotationsTermsSample = rows
		} else {
			s.log.WarnContext(ctx, "annotations_terms sample failed", "error", err)
		}
		return nil
	})
	return d, err
}

func (s *Store) sampleCoordinates(ctx context.Context, tx *sql.Tx) ([]CoordinateRow, error) {
	var out []CoordinateRow
	err := savepoint(ctx, tx, "coordinates_sample", func() error {
		rows, err := tx.QueryContext(ctx, s.queries.sampleCoordinates, SampleSize)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]CoordinateRow, 0, SampleSize)
		for rows.Next() {
			var c CoordinateRow
			if err := rows.Scan(&c.StudyID, &c.X, &c.Y, &c.Z); err != nil {
				return err
			}
			out = append(out, c)
		}
		return rows.Err()
	})
	return out, err
}

func (s *Store) sampleMetadata(ctx context.Context, tx *sql.Tx) ([]map[string]any, error) {
	var out []map[string]any
	err := savepoint(ctx, tx, "metadata_sample", func() error {
		rows, err := tx.QueryContext(ctx, s.queries.sampleMetadata, SampleSize)
		if err != nil {
			return err
		}
		defer rows.Close()

		out, err = scanMaps(rows)
		return err
	})
	return out, err
}

func (s *Store) sampleAnnotations(ctx context.Context, tx *sql.Tx) ([]TermAnnotation, error) {
	var out []TermAnnotation
	err := savepoint(ctx, tx, "annotations_terms_sample", func() error {
		rows, err := tx.QueryContext(ctx, s.queries.sampleAnnotationsTerms, SampleSize)
		if err != nil {
			return err
		}
		defer rows.Close()

		out, err = scanAnnotations(rows)
		return err
	})
	return out, err
}

// scanMaps turns rows of unknown shape into column-name keyed maps.
func scanMaps(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, SampleSize)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				row[column] = string(b)
				continue
			}
			row[column] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
