package info

import (
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/drblury/neurosynth/probe"
	"github.com/drblury/neurosynth/responder"
)

// InfoProvider builds the /version body.
type InfoProvider func() any

// SwaggerProvider returns the OpenAPI document served at /openapi.json.
type SwaggerProvider func() ([]byte, error)

// TemplateDataProvider returns the value the docs template is executed with.
// A nil result falls back to the default title and base URL.
type TemplateDataProvider func(r *http.Request, baseURL string) any

// InfoOption configures an InfoHandler.
type InfoOption func(*InfoHandler)

// ProbeFunc is a single liveness or readiness check.
type ProbeFunc = probe.Func

const defaultCheckTimeout = 2 * time.Second

var errNoDocument = errors.New("no OpenAPI document configured")

// InfoHandler serves the operational routes next to the Neurosynth data API:
// /healthz, /readyz, /version, /openapi.json and /docs.
type InfoHandler struct {
	*responder.Responder

	build     InfoProvider
	document  SwaggerProvider
	docs      docsPage
	liveness  checkSet
	readiness checkSet
}

// NewInfoHandler returns a handler with no checks, an empty version body and
// the Stoplight docs page. /openapi.json fails until WithSwaggerProvider is
// given.
func NewInfoHandler(opts ...InfoOption) *InfoHandler {
	ih := &InfoHandler{
		Responder: responder.NewResponder(),
		build:     func() any { return map[string]string{} },
		document:  func() ([]byte, error) { return nil, errNoDocument },
		docs:      docsPage{tmpl: stoplightPage, data: defaultTemplateData},
		liveness:  checkSet{state: "ok", timeout: defaultCheckTimeout},
		readiness: checkSet{state: "ready", timeout: defaultCheckTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ih)
		}
	}
	return ih
}

func WithInfoResponder(r *responder.Responder) InfoOption {
	return func(ih *InfoHandler) {
		if r != nil {
			ih.Responder = r
		}
	}
}

// WithBaseURL prefixes the /openapi.json link rendered into the docs page.
func WithBaseURL(baseURL string) InfoOption {
	return func(ih *InfoHandler) { ih.docs.baseURL = baseURL }
}

func WithInfoProvider(provider InfoProvider) InfoOption {
	return func(ih *InfoHandler) {
		if provider != nil {
			ih.build = provider
		}
	}
}

func WithSwaggerProvider(provider SwaggerProvider) InfoOption {
	return func(ih *InfoHandler) {
		if provider != nil {
			ih.document = provider
		}
	}
}

// WithOpenAPITemplate replaces the Stoplight page rendered at /docs.
func WithOpenAPITemplate(tmpl *template.Template) InfoOption {
	return func(ih *InfoHandler) {
		if tmpl != nil {
			ih.docs.tmpl = tmpl
		}
	}
}

func WithOpenAPITemplateData(provider TemplateDataProvider) InfoOption {
	return func(ih *InfoHandler) {
		if provider != nil {
			ih.docs.data = provider
		}
	}
}

// WithCheckTimeout bounds each /healthz or /readyz run. Non-positive values
// are ignored.
func WithCheckTimeout(timeout time.Duration) InfoOption {
	return func(ih *InfoHandler) {
		if timeout > 0 {
			ih.liveness.timeout = timeout
			ih.readiness.timeout = timeout
		}
	}
}

// WithLivenessChecks sets the checks run by /healthz. Nil entries are dropped.
func WithLivenessChecks(checks ...ProbeFunc) InfoOption {
	return func(ih *InfoHandler) { ih.liveness.checks = compact(checks) }
}

// WithReadinessChecks sets the checks run by /readyz. Nil entries are dropped.
func WithReadinessChecks(checks ...ProbeFunc) InfoOption {
	return func(ih *InfoHandler) { ih.readiness.checks = compact(checks) }
}
