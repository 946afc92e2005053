package api

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"os"

	"github.com/drblury/neurosynth/responder"
	"github.com/drblury/neurosynth/store"
)

//go:embed assets/amygdala.gif
var defaultImage []byte

const imageContentType = "image/gif"

// Querier is the read-only database surface the handlers need.
type Querier interface {
	SearchTerms(ctx context.Context, q store.TermQuery) ([]store.TermAnnotation, error)
	Diagnose(ctx context.Context) (store.Diagnostics, error)
	DissociateTerms(ctx context.Context, termA, termB string) (store.Dissociation, error)
	DissociateLocations(ctx context.Context, a, b store.Coordinate) (store.Dissociation, error)
}

// Option configures a Handler.
type Option func(*Handler)

// Handler implements the data endpoints.
type Handler struct {
	*responder.Responder
	store     Querier
	imagePath string
	readFile  func(string) ([]byte, error)
}

// NewHandler builds a Handler around q. It panics when q is nil.
func NewHandler(q Querier, opts ...Option) *Handler {
	if q == nil {
		panic("api: querier cannot be nil")
	}
	h := &Handler{
		Responder: responder.NewResponder(responder.WithErrorClassifier(ClassifyError)),
		store:     q,
		readFile:  os.ReadFile,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// WithResponder replaces the responder. Callers should install ClassifyError
// (or a superset) so invalid input maps to 400.
func WithResponder(r *responder.Responder) Option {
	return func(h *Handler) {
		if r != nil {
			h.Responder = r
		}
	}
}

// WithImagePath serves the file at path from /img instead of the embedded
// image. The file is read on every request.
func WithImagePath(path string) Option {
	return func(h *Handler) {
		h.imagePath = path
	}
}

// ClassifyError maps domain errors to HTTP status codes for the responder.
func ClassifyError(err error) (int, bool) {
	switch {
	case errors.Is(err, store.ErrInvalidInput):
		return http.StatusBadRequest, true
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, true
	default:
		return 0, false
	}
}
