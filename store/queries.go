package store

import (
	"fmt"

	"github.com/jackc/pgx/v5"
)

const (
	tableAnnotationsTerms = "annotations_terms"
	tableCoordinates      = "coordinates"
	tableMetadata         = "metadata"
)

// queries holds the statements for one schema. Identifiers are quoted by
// pgx; every value is a bound parameter.
type queries struct {
	searchPath string

	termsExact     string
	termsSubstring string

	dissociateTerms     string
	dissociateLocations string
	studiesByIDs        string

	version                string
	countCoordinates       string
	countMetadata          string
	countAnnotationsTerms  string
	sampleCoordinates      string
	sampleMetadata         string
	sampleAnnotationsTerms string
}

func buildQueries(schema string) queries {
	annotations := pgx.Identifier{schema, tableAnnotationsTerms}.Sanitize()
	coordinates := pgx.Identifier{schema, tableCoordinates}.Sanitize()
	metadata := pgx.Identifier{schema, tableMetadata}.Sanitize()

	return queries{
		searchPath: fmt.Sprintf("SET LOCAL search_path TO %s, public", pgx.Identifier{schema}.Sanitize()),

		termsExact: fmt.Sprintf(
			"SELECT study_id, contrast_id, term, weight FROM %s WHERE term = $1", annotations),
		termsSubstring: fmt.Sprintf(
			`SELECT study_id, contrast_id, term, weight FROM %s WHERE term LIKE $1 ESCAPE '\'`, annotations),

		dissociateTerms: fmt.Sprintf(`SELECT DISTINCT at1.study_id
FROM %[1]s at1
WHERE at1.term = $1
  AND NOT EXISTS (
    SELECT 1
    FROM %[1]s at2
    WHERE at2.study_id = at1.study_id
      AND at2.term = $2
  )
LIMIT $3`, annotations),

		dissociateLocations: fmt.Sprintf(`SELECT DISTINCT c1.study_id
FROM %[1]s c1
WHERE ST_X(c1.geom) = $1 AND ST_Y(c1.geom) = $2 AND ST_Z(c1.geom) = $3
  AND NOT EXISTS (
    SELECT 1
    FROM %[1]s c2
    WHERE c2.study_id = c1.study_id
      AND ST_X(c2.geom) = $4 AND ST_Y(c2.geom) = $5 AND ST_Z(c2.geom) = $6
  )
LIMIT $7`, coordinates),

		studiesByIDs: fmt.Sprintf(
			"SELECT study_id, title, year FROM %s WHERE study_id = ANY($1)", metadata),

		version:               "SELECT version()",
		countCoordinates:      fmt.Sprintf("SELECT COUNT(*) FROM %s", coordinates),
		countMetadata:         fmt.Sprintf("SELECT COUNT(*) FROM %s", metadata),
		countAnnotationsTerms: fmt.Sprintf("SELECT COUNT(*) FROM %s", annotations),
		sampleCoordinates: fmt.Sprintf(
			"SELECT study_id, ST_X(geom) AS x, ST_Y(geom) AS y, ST_Z(geom) AS z FROM %s LIMIT $1", coordinates),
		sampleMetadata: fmt.Sprintf("SELECT * FROM %s LIMIT $1", metadata),
		sampleAnnotationsTerms: fmt.Sprintf(
			"SELECT study_id, contrast_id, term, weight FROM %s LIMIT $1", annotations),
	}
}
