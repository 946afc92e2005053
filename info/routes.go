package info

import "net/http"

// GetHealthz answers 200 {"status":"ok"} while every liveness check passes.
func (ih *InfoHandler) GetHealthz(w http.ResponseWriter, r *http.Request) {
	ih.serveChecks(w, r, ih.liveness)
}

// GetReadyz answers 200 {"status":"ready"} once the database, the Neurosynth
// tables and PostGIS are reachable. Otherwise it returns a 503 problem whose
// detail lists every failing check.
func (ih *InfoHandler) GetReadyz(w http.ResponseWriter, r *http.Request) {
	ih.serveChecks(w, r, ih.readiness)
}

func (ih *InfoHandler) serveChecks(w http.ResponseWriter, r *http.Request, cs checkSet) {
	if err := cs.run(r.Context()); err != nil {
		ih.HandleAPIError(w, r, http.StatusServiceUnavailable, err, cs.state+" checks failed")
		return
	}
	ih.RespondWithJSON(w, r, http.StatusOK, checkReport{Status: cs.state})
}

func (ih *InfoHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	body := ih.build()
	if body == nil {
		body = map[string]string{}
	}
	ih.RespondWithJSON(w, r, http.StatusOK, body)
}

// GetOpenAPIJSON serves the document from the SwaggerProvider unchanged.
func (ih *InfoHandler) GetOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := ih.document()
	if err != nil {
		ih.HandleInternalServerError(w, r, err, "openapi document unavailable")
		return
	}
	ih.RespondWithBlob(w, http.StatusOK, "application/json", doc)
}

// GetOpenAPIHTML renders the docs page, which loads /openapi.json itself.
func (ih *InfoHandler) GetOpenAPIHTML(w http.ResponseWriter, r *http.Request) {
	page, err := ih.docs.render(r)
	if err != nil {
		ih.HandleInternalServerError(w, r, err, "docs page failed to render")
		return
	}
	ih.RespondWithBlob(w, http.StatusOK, "text/html; charset=utf-8", page)
}
