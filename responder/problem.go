package responder

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const statusDocBaseURL = "https://httpstatuses.io/"

// ProblemDetails is an RFC 9457 problem document. TraceID and Timestamp are
// extension members; InvalidParams is filled from a ParamError.
type ProblemDetails struct {
	Type      string `json:"type,omitempty"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail,omitempty"`
	Instance  string `json:"instance,omitempty"`
	TraceID   string `json:"traceId,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`

	InvalidParams []InvalidParam `json:"invalidParams,omitempty"`
}

// InvalidParam names a rejected request parameter.
type InvalidParam struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ParamError is implemented by errors that blame a single request
// parameter.
type ParamError interface {
	error
	Param() (name, reason string)
}

// StatusMetadata describes how problems with one status are presented and
// logged. Empty fields fall back to the status text, a httpstatuses.io link
// and slog.LevelError.
type StatusMetadata struct {
	TypeURI  string
	Title    string
	LogLevel slog.Level
	LogMsg   string
}

func (m StatusMetadata) orDefaults(status int) StatusMetadata {
	if m.Title == "" {
		m.Title = http.StatusText(status)
	}
	if m.TypeURI == "" {
		m.TypeURI = statusDocBaseURL + strconv.Itoa(status)
	}
	if m.LogMsg == "" {
		m.LogMsg = m.Title
	}
	if m.LogLevel == 0 {
		m.LogLevel = slog.LevelError
	}
	return m
}

func (r *Responder) metadata(status int) StatusMetadata {
	var meta StatusMetadata
	if r != nil {
		meta = r.statuses[status]
	}
	return meta.orDefaults(status)
}

func (r *Responder) newProblem(req *http.Request, status int, err error, meta StatusMetadata) ProblemDetails {
	p := ProblemDetails{
		Type:      meta.TypeURI,
		Title:     meta.Title,
		Status:    status,
		Detail:    err.Error(),
		TraceID:   traceIDFor(req),
		Timestamp: r.now().UTC().Format(time.RFC3339),
	}
	if req != nil && req.URL != nil {
		p.Instance = req.URL.RequestURI()
	}

	var pe ParamError
	if errors.As(err, &pe) {
		name, reason := pe.Param()
		p.InvalidParams = []InvalidParam{{Name: name, Reason: reason}}
	}
	return p
}
