package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"aiproxy/pkg/requestcontext"
)

// JWTValidator defines the interface for validating bearer tokens.
type JWTValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (*JWTClaims, error)
}

// VerificationRecorder counts verification outcomes.
type VerificationRecorder interface {
	RecordTokenVerification(result string)
}

// JWTClaims represents the claims we expect from the JWT validator.
type JWTClaims struct {
	Subject  string
	Name     string
	Email    string
	ObjectID string
	Issuer   string
	Audience []string
}

type contextKeyClaims struct{}

// ContextKeyClaims is exported for tests that build authenticated requests by hand.
var ContextKeyClaims = contextKeyClaims{}

// ClaimsFromContext retrieves the authenticated principal. Returns nil outside
// of RequireAuth.
func ClaimsFromContext(ctx context.Context) *JWTClaims {
	claims, ok := ctx.Value(ContextKeyClaims).(*JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// WithClaims injects claims into ctx.
func WithClaims(ctx context.Context, claims *JWTClaims) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClaims, claims)
	return requestcontext.WithSubject(ctx, claims.Subject)
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// bearerToken returns the credential of an "Authorization: Bearer <token>"
// header. The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

// RequireAuth rejects requests without a bearer credential (403) and requests
// whose credential the validator refuses (401 with a Bearer challenge). Every
// request is verified independently; results are never cached.
func RequireAuth(validator JWTValidator, recorder VerificationRecorder, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				logger.WarnContext(ctx, "unauthenticated access - missing bearer credential",
					"request_id", requestID,
					"path", r.URL.Path,
				)
				record(recorder, "missing")
				writeJSONError(w, http.StatusForbidden, "forbidden", "Not authenticated")
				return
			}

			claims, err := validator.ValidateToken(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
					"path", r.URL.Path,
				)
				record(recorder, "invalid")
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			record(recorder, "valid")
			next.ServeHTTP(w, r.WithContext(WithClaims(ctx, claims)))
		})
	}
}

func record(recorder VerificationRecorder, result string) {
	if recorder != nil {
		recorder.RecordTokenVerification(result)
	}
}
