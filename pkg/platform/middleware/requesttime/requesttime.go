// Package requesttime captures one "now" per request so token checks and log
// lines within a request agree on the time.
package requesttime

import (
	"net/http"
	"time"

	"aiproxy/pkg/requestcontext"
)

// Middleware stores the current time in the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
