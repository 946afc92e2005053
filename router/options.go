package router

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Option configures New.
type Option func(*settings)

// ValidationErrorHandler writes the response for a request the OpenAPI
// validator rejected. Without one the validator answers in plain text.
type ValidationErrorHandler func(w http.ResponseWriter, message string, statusCode int)

// Stage names one of the built-in middlewares. Stages wrap the handler in
// declaration order, so StageLogging sees every request and StageTimeout only
// bounds the handler itself.
type Stage int

const (
	StageLogging Stage = iota
	// StageCORS answers preflight requests before validation, since OPTIONS
	// routes are not part of the OpenAPI document.
	StageCORS
	StageValidation
	StageTimeout
	stageCount
)

const defaultTimeout = 30 * time.Second

type settings struct {
	cfg       Config
	logger    *slog.Logger
	doc       *openapi3.T
	onInvalid ValidationErrorHandler
	disabled  [stageCount]bool
	outer     []Middleware
	inner     []Middleware
	// replacement, when non-nil, is used instead of every other middleware.
	replacement []Middleware
}

func newSettings(opts []Option) *settings {
	s := &settings{
		cfg:    Config{Timeout: defaultTimeout},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// stage returns the middleware for st, or nil when it is disabled or has
// nothing configured to do.
func (s *settings) stage(st Stage) Middleware {
	if s.disabled[st] {
		return nil
	}
	switch st {
	case StageLogging:
		if s.logger != nil {
			return requestLogger(s.logger, s.cfg.QuietdownRoutes, s.cfg.HideHeaders)
		}
	case StageCORS:
		if len(s.cfg.CORS.Origins) > 0 {
			return crossOrigin(s.cfg.CORS)
		}
	case StageValidation:
		if s.doc != nil {
			return requestValidator(s.doc, s.onInvalid)
		}
	case StageTimeout:
		if s.cfg.Timeout > 0 {
			return handlerDeadline(s.cfg.Timeout)
		}
	}
	return nil
}

// chain lists the middlewares outermost first.
func (s *settings) chain() []Middleware {
	if s.replacement != nil {
		return s.replacement
	}
	chain := slices.Clone(s.outer)
	for st := range stageCount {
		if mw := s.stage(st); mw != nil {
			chain = append(chain, mw)
		}
	}
	return append(chain, s.inner...)
}

// WithConfig replaces the configuration. The slices are copied.
func WithConfig(cfg Config) Option {
	cfg = cfg.clone()
	return func(s *settings) { s.cfg = cfg }
}

// WithConfigMutator edits the configuration in place after the defaults and
// any earlier WithConfig.
func WithConfigMutator(mutate func(*Config)) Option {
	return func(s *settings) {
		if mutate != nil {
			mutate(&s.cfg)
		}
	}
}

// WithLogger sets the request logger. A nil logger disables StageLogging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithSwagger enables StageValidation against doc. The document's servers
// are cleared so requests are matched on path alone.
func WithSwagger(doc *openapi3.T) Option {
	return func(s *settings) { s.doc = doc }
}

func WithValidationErrorHandler(handler ValidationErrorHandler) Option {
	return func(s *settings) { s.onInvalid = handler }
}

// Without turns the given built-in stages off.
func Without(stages ...Stage) Option {
	return func(s *settings) {
		for _, st := range stages {
			if st >= 0 && st < stageCount {
				s.disabled[st] = true
			}
		}
	}
}

// WithMiddlewares adds middlewares outside the built-in stages.
func WithMiddlewares(mws ...Middleware) Option {
	return func(s *settings) { s.outer = append(s.outer, mws...) }
}

// WithTrailingMiddlewares adds middlewares between the built-in stages and
// the handler.
func WithTrailingMiddlewares(mws ...Middleware) Option {
	return func(s *settings) { s.inner = append(s.inner, mws...) }
}

// WithMiddlewareChain uses exactly mws, outermost first, and ignores every
// other middleware option.
func WithMiddlewareChain(mws ...Middleware) Option {
	mws = append([]Middleware{}, mws...)
	return func(s *settings) { s.replacement = mws }
}
