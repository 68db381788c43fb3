// Package recovery converts handler panics into clean JSON 500 responses.
package recovery

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/stridewell/coachcore/internal/api/respond"
)

// Middleware returns a router middleware that intercepts panics from
// downstream handlers, logs the request details and stack, and answers with
// a 500. A panicking coach decision must never take the process down.
func Middleware(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().
						Interface("panic", rec).
						Str("method", r.Method).
						Str("url", r.URL.String()).
						Bytes("stack", debug.Stack()).
						Msg("panic recovered")
					respond.WriteError(w, http.StatusInternalServerError, "unexpected failure handling the request")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
