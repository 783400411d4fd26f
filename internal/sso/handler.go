// Package sso serves the browser side of CLI login: it sends the user to the
// identity provider and hands the resulting access token back to the CLI's
// loopback listener.
package sso

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"aiproxy/internal/identity"
	"aiproxy/internal/platform/config"
	"aiproxy/internal/platform/metrics"
	dErrors "aiproxy/pkg/domain-errors"
	"aiproxy/pkg/platform/httputil"
	"aiproxy/pkg/requestcontext"
)

const (
	// DefaultCLICallback receives the token when the provider echoes no state.
	DefaultCLICallback = "http://127.0.0.1:8080/callback"

	// mockCode is exchanged directly when the exchanger needs no browser login.
	mockCode = "mock-code"

	missingCodePage  = `<html><body><h1>Error: No authorization code received.</h1></body></html>`
	exchangeFailPage = `<html><body><h1>Error: Token exchange failed.</h1></body></html>`
)

// Handler serves /sso/login and /sso/callback. It holds no per-attempt
// state: the CLI callback travels through the provider as the state value.
type Handler struct {
	exchanger identity.CodeExchanger
	identity  config.Identity
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// New constructs an SSO handler with its dependencies.
func New(exchanger identity.CodeExchanger, cfg config.Identity, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		exchanger: exchanger,
		identity:  cfg,
		logger:    logger,
		metrics:   m,
	}
}

// Register mounts the SSO endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/sso/login", h.HandleLogin)
	r.Get("/sso/callback", h.HandleCallback)
}

// HandleLogin handles GET /sso/login?redirect=<cli-callback>.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	redirect := r.URL.Query().Get("redirect")
	if redirect == "" {
		h.finish(ctx, "login", "invalid_request")
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "redirect is required"))
		return
	}

	if h.exchanger.Interactive() {
		h.finish(ctx, "login", "provider_redirect")
		redirectTo(w, identity.AuthorizeURL(h.identity, h.identity.RedirectURI, redirect))
		return
	}

	token, ok := h.exchange(ctx, "login", mockCode, redirect)
	if !ok {
		httputil.WriteHTML(w, http.StatusInternalServerError, exchangeFailPage)
		return
	}
	h.finish(ctx, "login", "token_issued")
	redirectTo(w, withToken(redirect, token))
}

// HandleCallback handles GET /sso/callback?code=<code>&state=<cli-callback>.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	code := q.Get("code")
	if code == "" {
		h.logger.WarnContext(ctx, "sso callback without code",
			"request_id", requestcontext.RequestID(ctx),
			"provider_error", q.Get("error"),
		)
		h.finish(ctx, "callback", "missing_code")
		httputil.WriteHTML(w, http.StatusBadRequest, missingCodePage)
		return
	}

	token, ok := h.exchange(ctx, "callback", code, h.identity.RedirectURI)
	if !ok {
		httputil.WriteHTML(w, http.StatusInternalServerError, exchangeFailPage)
		return
	}

	target := q.Get("state")
	if target == "" {
		target = DefaultCLICallback
	}
	h.finish(ctx, "callback", "token_issued")
	redirectTo(w, withToken(target, token))
}

// exchange runs the code exchange and extracts the access token. On failure
// the outcome is already recorded and the caller only renders the error page.
func (h *Handler) exchange(ctx context.Context, endpoint, code, redirectURI string) (string, bool) {
	resp, err := h.exchanger.Exchange(ctx, code, redirectURI)
	if err != nil {
		h.logger.ErrorContext(ctx, "sso token exchange failed",
			"request_id", requestcontext.RequestID(ctx),
			"endpoint", endpoint,
			"error", err,
		)
		h.finish(ctx, endpoint, "exchange_failed")
		return "", false
	}
	token := resp.AccessToken()
	if token == "" {
		h.logger.ErrorContext(ctx, "sso token response has no access_token",
			"request_id", requestcontext.RequestID(ctx),
			"endpoint", endpoint,
		)
		h.finish(ctx, endpoint, "missing_access_token")
		return "", false
	}
	return token, true
}

func (h *Handler) finish(ctx context.Context, endpoint, outcome string) {
	h.metrics.RecordSSOOutcome(endpoint, outcome)
	h.logger.InfoContext(ctx, "sso "+endpoint,
		"request_id", requestcontext.RequestID(ctx),
		"outcome", outcome,
	)
}

// withToken appends the token as a query parameter, keeping any query the
// target already has.
func withToken(target, token string) string {
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + "token=" + url.QueryEscape(token)
}

// redirectTo writes a 307 with the Location exactly as given. http.Redirect
// would clean and resolve the target against the request path.
func redirectTo(w http.ResponseWriter, location string) {
	w.Header().Set("Location", location)
	w.WriteHeader(http.StatusTemporaryRedirect)
}
