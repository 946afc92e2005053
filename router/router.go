package router

import "net/http"

// New wraps handler in the configured middleware chain and mounts it at "/"
// of a fresh ServeMux. It panics when handler is nil.
func New(handler http.Handler, opts ...Option) *http.ServeMux {
	if handler == nil {
		panic("router: handler cannot be nil")
	}

	chain := newSettings(opts).chain()
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i] != nil {
			handler = chain[i](handler)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/", handler)
	return mux
}
