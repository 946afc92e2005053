package api

import "github.com/drblury/neurosynth/store"

// TermSearchResponse is returned by /search/terms.
type TermSearchResponse struct {
	Keyword string                 `json:"keyword"`
	Exact   bool                   `json:"exact"`
	Limit   *int                   `json:"limit"`
	Results []store.TermAnnotation `json:"results"`
}

// DiagnosticsResponse is returned by /test_db. A failed diagnosis keeps the
// version and the counts collected before the failure; the samples are only
// present on success.
type DiagnosticsResponse struct {
	OK                    bool   `json:"ok"`
	Dialect               string `json:"dialect"`
	Version               string `json:"version,omitempty"`
	CoordinatesCount      *int64 `json:"coordinates_count,omitempty"`
	MetadataCount         *int64 `json:"metadata_count,omitempty"`
	AnnotationsTermsCount *int64 `json:"annotations_terms_count,omitempty"`
	*DiagnosticsSamples
	Error string `json:"error,omitempty"`
}

// DiagnosticsSamples holds the first rows of each table.
type DiagnosticsSamples struct {
	CoordinatesSample      []store.CoordinateRow  `json:"coordinates_sample"`
	MetadataSample         []map[string]any       `json:"metadata_sample"`
	AnnotationsTermsSample []store.TermAnnotation `json:"annotations_terms_sample"`
}

// TermDissociationResponse is returned by /dissociate/terms/{term_a}/{term_b}.
// The terms are echoed in their short form.
type TermDissociationResponse struct {
	OK         bool          `json:"ok"`
	TermA      string        `json:"term_a"`
	TermB      string        `json:"term_b"`
	StudyIDs   []string      `json:"study_ids"`
	Studies    []store.Study `json:"studies"`
	QueryError string        `json:"query_error,omitempty"`
	MetaError  string        `json:"meta_error,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// LocationDissociationResponse is returned by
// /dissociate/locations/{coords_a}/{coords_b}. The coordinates are echoed as
// received.
type LocationDissociationResponse struct {
	OK        bool          `json:"ok"`
	CoordsA   string        `json:"coords_a"`
	CoordsB   string        `json:"coords_b"`
	StudyIDs  []string      `json:"study_ids"`
	Studies   []store.Study `json:"studies"`
	MetaError string        `json:"meta_error,omitempty"`
	Error     string        `json:"error,omitempty"`
}

func newDiagnosticsResponse(d store.Diagnostics) DiagnosticsResponse {
	return DiagnosticsResponse{
		Dialect:               store.Dialect,
		Version:               d.Version,
		CoordinatesCount:      d.CoordinatesCount,
		MetadataCount:         d.MetadataCount,
		AnnotationsTermsCount: d.AnnotationsTermsCount,
	}
}
