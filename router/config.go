package router

import (
	"net/http"
	"slices"
	"time"
)

// Config holds the settings of the built-in stages.
type Config struct {
	// Timeout bounds how long a handler may run before a 503 is returned.
	Timeout time.Duration
	CORS    CORSConfig
	// QuietdownRoutes are paths the request logger skips, such as /healthz.
	QuietdownRoutes []string
	// HideHeaders are redacted in request logs.
	HideHeaders []string
}

// CORSConfig controls StageCORS, which is off while Origins is empty. An
// origin of "*" allows any caller. Unset Methods and Headers allow GET, HEAD
// and OPTIONS with Content-Type and X-Request-ID.
type CORSConfig struct {
	Origins          []string
	Methods          []string
	Headers          []string
	AllowCredentials bool
}

func (c Config) clone() Config {
	c.QuietdownRoutes = slices.Clone(c.QuietdownRoutes)
	c.HideHeaders = slices.Clone(c.HideHeaders)
	c.CORS.Origins = slices.Clone(c.CORS.Origins)
	c.CORS.Methods = slices.Clone(c.CORS.Methods)
	c.CORS.Headers = slices.Clone(c.CORS.Headers)
	return c
}

func (c CORSConfig) withDefaults() CORSConfig {
	if len(c.Methods) == 0 {
		c.Methods = []string{http.MethodGet, http.MethodHead, http.MethodOptions}
	}
	if len(c.Headers) == 0 {
		c.Headers = []string{"Content-Type", "X-Request-ID"}
	}
	return c
}
