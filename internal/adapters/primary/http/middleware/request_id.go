package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// RequestIDKey is the context key the middleware stores the request ID under.
const RequestIDKey contextKey = "request_id"

// requestIDHeader carries the ID in both directions so guests' browser
// consoles and the server logs can be correlated on support tickets.
const requestIDHeader = "X-Request-ID"

// maxRequestIDLen caps inbound header values. Anything longer is treated as
// garbage and replaced, since the value ends up on every log line.
const maxRequestIDLen = 64

// RequestID tags every request with an identifier, honoring a caller-supplied
// X-Request-ID when it looks sane and minting a UUID otherwise. The ID is
// echoed on the response and placed in the request context for the logger
// and the error handler.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, id)

		ctx := context.WithValue(r.Context(), RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request ID stored by RequestID, or "" when the
// middleware did not run (direct handler tests, mostly).
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
