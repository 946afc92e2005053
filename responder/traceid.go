package responder

import (
	"net/http"
	"strings"

	"github.com/oklog/ulid/v2"
)

// RequestIDHeader carries a caller supplied correlation id. When present it
// is reused as the trace id of problem documents.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLength = 128

// traceIDFor returns the caller's request id, or a new ULID when the header
// is missing or longer than maxRequestIDLength.
func traceIDFor(req *http.Request) string {
	if req != nil {
		id := strings.TrimSpace(req.Header.Get(RequestIDHeader))
		if id != "" && len(id) <= maxRequestIDLength {
			return id
		}
	}
	return ulid.Make().String()
}
