package testutil

import (
	"net/http"

	authmw "aiproxy/pkg/platform/middleware/auth"
)

// WithClaims attaches claims to the request context the way RequireAuth
// does for an authenticated request.
func WithClaims(req *http.Request, claims *authmw.JWTClaims) *http.Request {
	return req.WithContext(authmw.WithClaims(req.Context(), claims))
}

// WithSubject is WithClaims for a bare subject.
func WithSubject(req *http.Request, subject string) *http.Request {
	return WithClaims(req, &authmw.JWTClaims{Subject: subject})
}
