package responder

import (
	"log/slog"
	"net/http"
	"time"
)

// ErrorClassifierFunc maps an error to an HTTP status. handled is false when
// the classifier does not recognise err; HandleErrors then answers 500.
type ErrorClassifierFunc func(err error) (status int, handled bool)

// ResponderOption configures NewResponder.
type ResponderOption func(*Responder)

// Responder writes JSON bodies and RFC 9457 problem documents and logs every
// problem it writes. Its zero value is usable.
type Responder struct {
	log      *slog.Logger
	statuses map[int]StatusMetadata
	classify ErrorClassifierFunc
	clock    func() time.Time
}

func NewResponder(opts ...ResponderOption) *Responder {
	r := &Responder{
		log: slog.Default(),
		statuses: map[int]StatusMetadata{
			http.StatusBadRequest:         {LogLevel: slog.LevelWarn},
			http.StatusNotFound:           {LogLevel: slog.LevelWarn},
			http.StatusMethodNotAllowed:   {LogLevel: slog.LevelWarn},
			http.StatusServiceUnavailable: {LogLevel: slog.LevelWarn},
		},
		clock: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// WithLogger sets the logger problems are reported to. Nil is ignored.
func WithLogger(logger *slog.Logger) ResponderOption {
	return func(r *Responder) {
		if logger != nil {
			r.log = logger
		}
	}
}

func WithErrorClassifier(classify ErrorClassifierFunc) ResponderOption {
	return func(r *Responder) { r.classify = classify }
}

// WithClock sets the time source of problem timestamps.
func WithClock(clock func() time.Time) ResponderOption {
	return func(r *Responder) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithStatusMetadata overrides the title, type URI and log record used for
// problems with the given status.
func WithStatusMetadata(status int, meta StatusMetadata) ResponderOption {
	return func(r *Responder) {
		if r.statuses == nil {
			r.statuses = map[int]StatusMetadata{}
		}
		r.statuses[status] = meta
	}
}

// Logger returns the logger problems are reported to.
func (r *Responder) Logger() *slog.Logger {
	if r == nil || r.log == nil {
		return slog.Default()
	}
	return r.log
}

// StatusFor reports the status HandleErrors would answer err with.
func (r *Responder) StatusFor(err error) int {
	if r != nil && r.classify != nil {
		if status, ok := r.classify(err); ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

func (r *Responder) now() time.Time {
	if r == nil || r.clock == nil {
		return time.Now()
	}
	return r.clock()
}
