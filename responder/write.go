package responder

import (
	"context"
	"net/http"

	"github.com/drblury/neurosynth/jsonutil"
)

const (
	jsonContentType    = "application/json"
	problemContentType = "application/problem+json"
	textContentType    = "text/plain; charset=utf-8"
	blobContentType    = "application/octet-stream"
)

// HandleAPIError writes err as a problem document with the given status,
// echoes its trace id in the X-Request-ID header and logs it together with
// logMsg. A nil err writes nothing. req may be nil.
func (r *Responder) HandleAPIError(w http.ResponseWriter, req *http.Request, status int, err error, logMsg ...string) {
	if err == nil {
		return
	}

	meta := r.metadata(status)
	problem := r.newProblem(req, status, err, meta)

	attrs := []any{"error", err.Error(), "status", status, "traceId", problem.TraceID}
	if problem.Instance != "" {
		attrs = append(attrs, "path", problem.Instance)
	}
	if len(logMsg) > 0 {
		attrs = append(attrs, "logMessages", logMsg)
	}
	r.Logger().Log(contextOf(req), meta.LogLevel, meta.LogMsg, attrs...)

	if w == nil {
		return
	}
	w.Header().Set(RequestIDHeader, problem.TraceID)
	r.encode(w, req, status, problem, problemContentType)
}

func (r *Responder) HandleInternalServerError(w http.ResponseWriter, req *http.Request, err error, logMsg ...string) {
	r.HandleAPIError(w, req, http.StatusInternalServerError, err, logMsg...)
}

func (r *Responder) HandleBadRequestError(w http.ResponseWriter, req *http.Request, err error, logMsg ...string) {
	r.HandleAPIError(w, req, http.StatusBadRequest, err, logMsg...)
}

// HandleErrors answers with the status the classifier assigns to err, or 500.
func (r *Responder) HandleErrors(w http.ResponseWriter, req *http.Request, err error, logMsg ...string) {
	if err == nil {
		return
	}
	r.HandleAPIError(w, req, r.StatusFor(err), err, logMsg...)
}

// RespondWithJSON encodes v with a trailing newline. An encoding failure is
// logged and answered with a plain 500.
func (r *Responder) RespondWithJSON(w http.ResponseWriter, req *http.Request, status int, v any) {
	r.encode(w, req, status, v, jsonContentType)
}

func (r *Responder) RespondWithText(w http.ResponseWriter, status int, text string) {
	r.write(w, status, textContentType, []byte(text))
}

// RespondWithBlob writes body as is. An empty contentType means
// application/octet-stream.
func (r *Responder) RespondWithBlob(w http.ResponseWriter, status int, contentType string, body []byte) {
	if contentType == "" {
		contentType = blobContentType
	}
	r.write(w, status, contentType, body)
}

func (r *Responder) encode(w http.ResponseWriter, req *http.Request, status int, v any, contentType string) {
	if w == nil {
		return
	}
	body, err := jsonutil.Marshal(v)
	if err != nil {
		r.Logger().ErrorContext(contextOf(req), "failed to encode response", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if n := len(body); n == 0 || body[n-1] != '\n' {
		body = append(body, '\n')
	}
	r.write(w, status, contentType, body)
}

func (r *Responder) write(w http.ResponseWriter, status int, contentType string, body []byte) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		r.Logger().Error("failed to write response", "error", err)
	}
}

func contextOf(req *http.Request) context.Context {
	if req == nil {
		return context.Background()
	}
	return req.Context()
}
