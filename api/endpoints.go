package api

import (
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/drblury/neurosynth/store"
)

const rootText = "Server working!"

// GetRoot answers with a fixed text so load balancers can tell the process is up.
func (h *Handler) GetRoot(w http.ResponseWriter, r *http.Request) {
	h.RespondWithText(w, http.StatusOK, rootText)
}

// GetImage serves the bundled 1x1 placeholder GIF, or the file configured
// with WithImagePath (--image on the command line).
func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	if h.imagePath == "" {
		h.RespondWithBlob(w, http.StatusOK, imageContentType, defaultImage)
		return
	}

	data, err := h.readFile(h.imagePath)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, fs.ErrNotExist) {
			status = http.StatusNotFound
		}
		h.HandleAPIError(w, r, status, err, "failed to read image")
		return
	}
	h.RespondWithBlob(w, http.StatusOK, imageContentType, data)
}

// GetTermStudies echoes the term. Studies are not looked up.
func (h *Handler) GetTermStudies(w http.ResponseWriter, r *http.Request) {
	h.RespondWithJSON(w, r, http.StatusOK, mux.Vars(r)["term"])
}

// GetLocationStudies echoes the parsed coordinate as [x, y, z].
func (h *Handler) GetLocationStudies(w http.ResponseWriter, r *http.Request) {
	c, err := store.ParseCoordinate(mux.Vars(r)["coords"])
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}
	h.RespondWithJSON(w, r, http.StatusOK, c.Triple())
}

// SearchTerms runs a keyword search over the term annotations.
func (h *Handler) SearchTerms(w http.ResponseWriter, r *http.Request) {
	q, err := parseTermQuery(r)
	if err != nil {
		h.HandleErrors(w, r, err)
		return
	}

	results, err := h.store.SearchTerms(r.Context(), q)
	if err != nil {
		h.HandleErrors(w, r, err, "term search failed")
		return
	}

	h.RespondWithJSON(w, r, http.StatusOK, TermSearchResponse{
		Keyword: q.Keyword,
		Exact:   q.Exact,
		Limit:   q.Limit,
		Results: results,
	})
}

func parseTermQuery(r *http.Request) (store.TermQuery, error) {
	values := r.URL.Query()

	q := store.TermQuery{Keyword: values.Get("keyword")}
	if strings.TrimSpace(q.Keyword) == "" {
		return q, &store.ValidationError{Field: "keyword", Err: errors.New("is required")}
	}

	if raw := values.Get("exact"); raw != "" {
		exact, err := strconv.ParseBool(raw)
		if err != nil {
			return q, &store.ValidationError{Field: "exact", Value: raw, Err: err}
		}
		q.Exact = exact
	}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return q, &store.ValidationError{Field: "limit", Value: raw, Err: err}
		}
		q.Limit = &limit
	}
	return q, nil
}

// TestDB reports the server version, row counts and samples of the three
// tables.
func (h *Handler) TestDB(w http.ResponseWriter, r *http.Request) {
	d, err := h.store.Diagnose(r.Context())

	resp := newDiagnosticsResponse(d)
	if err != nil {
		h.Logger().ErrorContext(r.Context(), "database diagnostics failed", "error", err)
		resp.Error = err.Error()
		h.RespondWithJSON(w, r, h.StatusFor(err), resp)
		return
	}

	resp.OK = true
	resp.DiagnosticsSamples = &DiagnosticsSamples{
		CoordinatesSample:      d.CoordinatesSample,
		MetadataSample:         d.MetadataSample,
		AnnotationsTermsSample: d.AnnotationsTermsSample,
	}
	h.RespondWithJSON(w, r, http.StatusOK, resp)
}

// DissociateTerms lists studies annotated with term_a and not term_b. A
// failing stage is reported in the body while the request still succeeds.
func (h *Handler) DissociateTerms(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	resp := TermDissociationResponse{
		TermA:    vars["term_a"],
		TermB:    vars["term_b"],
		StudyIDs: []string{},
		Studies:  []store.Study{},
	}

	result, err := h.store.DissociateTerms(r.Context(), store.FullTerm(resp.TermA), store.FullTerm(resp.TermB))
	if err != nil {
		h.Logger().ErrorContext(r.Context(), "term dissociation failed", "error", err)
		resp.Error = err.Error()
		h.RespondWithJSON(w, r, h.StatusFor(err), resp)
		return
	}

	resp.OK = true
	resp.StudyIDs = result.StudyIDs
	resp.Studies = result.Studies
	if result.QueryErr != nil {
		resp.QueryError = result.QueryErr.Error()
	}
	if result.MetaErr != nil {
		resp.MetaError = result.MetaErr.Error()
	}
	h.RespondWithJSON(w, r, http.StatusOK, resp)
}

// DissociateLocations lists studies reporting a peak at coords_a and none at
// coords_b. Only a metadata failure is tolerated.
func (h *Handler) DissociateLocations(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	resp := LocationDissociationResponse{
		CoordsA:  vars["coords_a"],
		CoordsB:  vars["coords_b"],
		StudyIDs: []string{},
		Studies:  []store.Study{},
	}

	a, err := store.ParseCoordinate(resp.CoordsA)
	var b store.Coordinate
	if err == nil {
		b, err = store.ParseCoordinate(resp.CoordsB)
	}
	if err != nil {
		resp.Error = err.Error()
		h.RespondWithJSON(w, r, h.StatusFor(err), resp)
		return
	}

	result, err := h.store.DissociateLocations(r.Context(), a, b)
	if err == nil {
		err = result.QueryErr
	}
	if err != nil {
		h.Logger().ErrorContext(r.Context(), "location dissociation failed", "error", err)
		resp.Error = err.Error()
		h.RespondWithJSON(w, r, h.StatusFor(err), resp)
		return
	}

	resp.OK = true
	resp.StudyIDs = result.StudyIDs
	resp.Studies = result.Studies
	if result.MetaErr != nil {
		resp.MetaError = result.MetaErr.Error()
	}
	h.RespondWithJSON(w, r, http.StatusOK, resp)
}
