package router

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	oapiMW "github.com/oapi-codegen/nethttp-middleware"
)

const redacted = "[redacted]"

// requestValidator rejects requests that do not match doc: unknown paths get
// 404, bad parameters 400.
func requestValidator(doc *openapi3.T, onInvalid ValidationErrorHandler) Middleware {
	doc.Servers = nil
	opts := &oapiMW.Options{
		Options: openapi3filter.Options{
			AuthenticationFunc: func(context.Context, *openapi3filter.AuthenticationInput) error { return nil },
		},
	}
	if onInvalid != nil {
		opts.ErrorHandler = oapiMW.ErrorHandler(onInvalid)
	}
	return oapiMW.OapiRequestValidatorWithOptions(doc, opts)
}

// requestLogger writes one debug record per request and one info record per
// response. Requests to quiet paths are not logged.
func requestLogger(logger *slog.Logger, quiet, hidden []string) Middleware {
	quiet = slices.Clone(quiet)
	hidden = slices.Clone(hidden)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(quiet, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			log := logger.With("method", r.Method, "path", r.URL.Path)
			log.DebugContext(r.Context(), "request", "header", maskHeaders(r.Header, hidden))

			start := time.Now()
			rw := &responseMeter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			log.InfoContext(r.Context(), "response",
				"status", rw.status,
				"bytes", rw.bytes,
				"duration", time.Since(start),
			)
		})
	}
}

// maskHeaders copies h with the hidden headers replaced by a placeholder.
func maskHeaders(h http.Header, hidden []string) http.Header {
	out := h.Clone()
	for _, name := range hidden {
		key := http.CanonicalHeaderKey(name)
		if _, ok := out[key]; ok {
			out[key] = []string{redacted}
		}
	}
	return out
}

// responseMeter records the status and body size of a response.
type responseMeter struct {
	http.ResponseWriter
	status  int
	bytes   int
	written bool
}

func (m *responseMeter) WriteHeader(code int) {
	if !m.written {
		m.status = code
		m.written = true
	}
	m.ResponseWriter.WriteHeader(code)
}

func (m *responseMeter) Write(b []byte) (int, error) {
	m.written = true
	n, err := m.ResponseWriter.Write(b)
	m.bytes += n
	return n, err
}

func (m *responseMeter) Unwrap() http.ResponseWriter { return m.ResponseWriter }

// crossOrigin sets the CORS headers for allowed origins and answers
// preflight requests itself.
func crossOrigin(cfg CORSConfig) Middleware {
	cfg = cfg.withDefaults()
	methods := strings.Join(cfg.Methods, ",")
	headers := strings.Join(cfg.Headers, ",")
	anyOrigin := slices.Contains(cfg.Origins, "*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			if anyOrigin || slices.Contains(cfg.Origins, origin) {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			w.WriteHeader(http.StatusOK)
		})
	}
}

// handlerDeadline answers 503 when the handler has not finished within d.
func handlerDeadline(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}
