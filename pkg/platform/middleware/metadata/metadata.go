// Package metadata lifts per-request client facts into the request context.
package metadata

import (
	"net"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"aiproxy/pkg/requestcontext"
)

// ClientMetadata copies the request ID assigned by chi's RequestID middleware,
// the client IP and the User-Agent into the request context so handlers can
// log them. Mount it after middleware.RequestID and middleware.RealIP.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = requestcontext.WithClientMetadata(ctx, ClientIPFromRequest(r), r.Header.Get("User-Agent"))
		if reqID := chimw.GetReqID(ctx); reqID != "" {
			ctx = requestcontext.WithRequestID(ctx, reqID)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIPFromRequest returns the host part of RemoteAddr. Forwarding headers
// are not read here; RealIP has already folded them into RemoteAddr.
func ClientIPFromRequest(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RealIP stores a bare address without a port.
		return r.RemoteAddr
	}
	return host
}
