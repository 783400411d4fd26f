package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"

	jwttoken "aiproxy/internal/jwt_token"
	"aiproxy/internal/platform/config"
	"aiproxy/internal/platform/metrics"
	"aiproxy/pkg/platform/sentinel"
	"aiproxy/pkg/requestcontext"
)

// ErrExchangeFailed matches every failed code exchange.
var ErrExchangeFailed = errors.New("authorization code exchange failed")

// ExchangeError reports a failed exchange. StatusCode is the provider's HTTP
// status, or 0 when no response was received.
type ExchangeError struct {
	StatusCode int
	Err        error
}

func (e *ExchangeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: provider returned status %d", ErrExchangeFailed, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", ErrExchangeFailed, e.Err)
}

func (e *ExchangeError) Unwrap() error { return e.Err }

func (e *ExchangeError) Is(target error) bool { return target == ErrExchangeFailed }

// TokenResponse is the token endpoint's JSON body. Provider responses are
// passed through untouched.
type TokenResponse map[string]any

// AccessToken returns the access_token field, or "" when it is absent or not
// a string.
func (t TokenResponse) AccessToken() string {
	s, _ := t["access_token"].(string)
	return s
}

// CodeExchanger turns an authorization code into a token response.
type CodeExchanger interface {
	Exchange(ctx context.Context, code, redirectURI string) (TokenResponse, error)
	// Interactive reports whether the user must log in at the provider
	// before a code exists.
	Interactive() bool
}

// Minter issues gateway-signed tokens.
type Minter interface {
	Mint(identity jwttoken.Identity) (string, *jwttoken.Claims, error)
	ExpiresIn() int64
}

// MockIdentity is the principal every mock exchange is issued for.
var MockIdentity = jwttoken.Identity{
	Subject: "mock-user-id",
	Name:    "Mock User",
	Email:   "mock.user@enterprise.local",
}

// NewExchanger selects the exchanger variant for the configuration.
func NewExchanger(cfg config.Identity, minter Minter, client *http.Client, logger *slog.Logger, m *metrics.Metrics) CodeExchanger {
	if cfg.MockMode {
		return NewMockExchanger(minter, logger, m)
	}
	return NewProviderExchanger(cfg, client, logger, m)
}

// MockExchanger mints a token for MockIdentity without any network call.
// The code is ignored.
type MockExchanger struct {
	minter  Minter
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewMockExchanger(minter Minter, logger *slog.Logger, m *metrics.Metrics) *MockExchanger {
	return &MockExchanger{minter: minter, logger: logger, metrics: m}
}

func (e *MockExchanger) Interactive() bool { return false }

func (e *MockExchanger) Exchange(ctx context.Context, code, redirectURI string) (TokenResponse, error) {
	start := time.Now()
	token, claims, err := e.minter.Mint(MockIdentity)
	if err != nil {
		e.metrics.RecordCodeExchange("mock", "failed", time.Since(start))
		return nil, &ExchangeError{Err: err}
	}
	e.metrics.RecordCodeExchange("mock", "ok", time.Since(start))
	e.metrics.IncrementTokensIssued()

	e.logger.InfoContext(ctx, "mock token issued",
		"request_id", requestcontext.RequestID(ctx),
		"subject", claims.Subject,
		"oid", claims.ObjectID,
	)

	return TokenResponse{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   e.minter.ExpiresIn(),
	}, nil
}

// maxErrorBody bounds how much of a failed provider response is logged.
const maxErrorBody = 2048

// ProviderExchanger posts the code to the provider's token endpoint. One
// attempt, bounded by the configured timeout; no retries.
type ProviderExchanger struct {
	oauth   *oauth2.Config
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

func NewProviderExchanger(cfg config.Identity, client *http.Client, logger *slog.Logger, m *metrics.Metrics) *ProviderExchanger {
	if client == nil {
		client = &http.Client{Timeout: cfg.ExchangeTimeout}
	}
	return &ProviderExchanger{
		oauth:   OAuthConfig(cfg, cfg.RedirectURI),
		client:  client,
		timeout: cfg.ExchangeTimeout,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("aiproxy/internal/identity"),
	}
}

func (e *ProviderExchanger) Interactive() bool { return true }

func (e *ProviderExchanger) Exchange(ctx context.Context, code, redirectURI string) (TokenResponse, error) {
	ctx, span := e.tracer.Start(ctx, "identity.exchange_code", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	start := time.Now()
	resp, err := e.exchange(ctx, code, redirectURI)
	elapsed := time.Since(start)
	requestID := requestcontext.RequestID(ctx)

	if err != nil {
		var exErr *ExchangeError
		if errors.As(err, &exErr) && exErr.StatusCode != 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", exErr.StatusCode))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "code exchange failed")
		e.metrics.RecordCodeExchange("provider", "failed", elapsed)
		e.logger.ErrorContext(ctx, "authorization code exchange failed",
			"request_id", requestID,
			"error", err,
			"duration_ms", elapsed.Milliseconds(),
		)
		return nil, err
	}

	e.metrics.RecordCodeExchange("provider", "ok", elapsed)
	e.logger.InfoContext(ctx, "authorization code exchanged",
		"request_id", requestID,
		"duration_ms", elapsed.Milliseconds(),
	)
	return resp, nil
}

func (e *ProviderExchanger) exchange(ctx context.Context, code, redirectURI string) (TokenResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	form := url.Values{
		"client_id":     {e.oauth.ClientID},
		"client_secret": {e.oauth.ClientSecret},
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {redirectURI},
		"scope":         {scopeParam()},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.oauth.Endpoint.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &ExchangeError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &ExchangeError{Err: fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		e.logger.WarnContext(ctx, "identity provider rejected code exchange",
			"request_id", requestcontext.RequestID(ctx),
			"status", resp.StatusCode,
			"body", string(body),
		)
		return nil, &ExchangeError{StatusCode: resp.StatusCode, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var out TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &ExchangeError{Err: fmt.Errorf("decode token response: %w", err)}
	}
	return out, nil
}
