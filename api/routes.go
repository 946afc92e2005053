package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/drblury/neurosynth/info"
)

// Route binds a handler to a method and a mux path template.
type Route struct {
	Name    string
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Routes lists the data endpoints.
func (h *Handler) Routes() []Route {
	return []Route{
		{"root", http.MethodGet, "/", h.GetRoot},
		{"image", http.MethodGet, "/img", h.GetImage},
		{"term-studies", http.MethodGet, "/terms/{term}/studies", h.GetTermStudies},
		{"location-studies", http.MethodGet, "/locations/{coords}/studies", h.GetLocationStudies},
		{"search-terms", http.MethodGet, "/search/terms", h.SearchTerms},
		{"test-db", http.MethodGet, "/test_db", h.TestDB},
		{"dissociate-terms", http.MethodGet, "/dissociate/terms/{term_a}/{term_b}", h.DissociateTerms},
		{"dissociate-locations", http.MethodGet, "/dissociate/locations/{coords_a}/{coords_b}", h.DissociateLocations},
	}
}

// InfoRoutes lists the operational endpoints served by ih.
func InfoRoutes(ih *info.InfoHandler) []Route {
	return []Route{
		{"healthz", http.MethodGet, "/healthz", ih.GetHealthz},
		{"readyz", http.MethodGet, "/readyz", ih.GetReadyz},
		{"version", http.MethodGet, "/version", ih.GetVersion},
		{"openapi-json", http.MethodGet, "/openapi.json", ih.GetOpenAPIJSON},
		{"docs", http.MethodGet, "/docs", ih.GetOpenAPIHTML},
	}
}

// NewRouter registers h's routes, plus the info routes when ih is non-nil,
// on a gorilla/mux router whose 404 and 405 answers are problem documents.
func NewRouter(h *Handler, ih *info.InfoHandler) *mux.Router {
	r := mux.NewRouter()

	routes := h.Routes()
	if ih != nil {
		routes = append(routes, InfoRoutes(ih)...)
	}
	for _, route := range routes {
		r.HandleFunc(route.Path, route.Handler).Methods(route.Method).Name(route.Name)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		h.HandleAPIError(w, req, http.StatusNotFound, fmt.Errorf("no route for %s", req.URL.Path))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		h.HandleAPIError(w, req, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed on %s", req.Method, req.URL.Path))
	})
	return r
}
