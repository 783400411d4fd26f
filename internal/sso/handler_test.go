package sso

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"aiproxy/internal/identity"
	"aiproxy/internal/platform/config"
	"aiproxy/internal/platform/metrics"
	"aiproxy/internal/sso/mocks"
	"aiproxy/pkg/testutil"
)

//go:generate mockgen -destination=mocks/exchanger_mock.go -package=mocks aiproxy/internal/identity CodeExchanger
type SSOHandlerSuite struct {
	suite.Suite
	router    http.Handler
	exchanger *mocks.MockCodeExchanger
	metrics   *metrics.Metrics
	identity  config.Identity
}

func TestSSOHandlerSuite(t *testing.T) {
	suite.Run(t, new(SSOHandlerSuite))
}

func (s *SSOHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.exchanger = mocks.NewMockCodeExchanger(ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())

	s.identity = config.Default().Identity
	s.identity.Authority = "https://login.example/tenant"
	s.identity.RedirectURI = "http://gateway.test/sso/callback"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(s.exchanger, s.identity, logger, s.metrics)
	r := chi.NewRouter()
	h.Register(r)
	s.router = r
}

func (s *SSOHandlerSuite) get(path string) *http.Response {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, path))
	return rr.Result()
}

func (s *SSOHandlerSuite) outcome(endpoint, outcome string) float64 {
	return promtestutil.ToFloat64(s.metrics.SSOOutcomes.WithLabelValues(endpoint, outcome))
}

func (s *SSOHandlerSuite) TestLogin_MissingRedirect() {
	for _, path := range []string{"/sso/login", "/sso/login?redirect="} {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, path))

		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnprocessableEntity, "validation_error")
		s.Empty(rr.Header().Get("Location"))
	}
	s.Equal(2.0, s.outcome("login", "invalid_request"))
}

func (s *SSOHandlerSuite) TestLogin_NonInteractiveIssuesTokenImmediately() {
	s.exchanger.EXPECT().Interactive().Return(false)
	s.exchanger.EXPECT().
		Exchange(gomock.Any(), "mock-code", "http://localhost:9000/cb").
		Return(identity.TokenResponse{"access_token": "tok.en.value", "token_type": "bearer"}, nil)

	resp := s.get("/sso/login?redirect=" + url.QueryEscape("http://localhost:9000/cb"))

	s.Equal(http.StatusTemporaryRedirect, resp.StatusCode)
	s.Equal("http://localhost:9000/cb?token=tok.en.value", resp.Header.Get("Location"))
	s.Equal(1.0, s.outcome("login", "token_issued"))
}

func (s *SSOHandlerSuite) TestLogin_NonInteractiveKeepsExistingQuery() {
	s.exchanger.EXPECT().Interactive().Return(false)
	s.exchanger.EXPECT().
		Exchange(gomock.Any(), "mock-code", "http://localhost:9000/cb?session=abc").
		Return(identity.TokenResponse{"access_token": "t"}, nil)

	resp := s.get("/sso/login?redirect=" + url.QueryEscape("http://localhost:9000/cb?session=abc"))

	s.Equal("http://localhost:9000/cb?session=abc&token=t", resp.Header.Get("Location"))
}

func (s *SSOHandlerSuite) TestLogin_NonInteractiveExchangeFails() {
	s.exchanger.EXPECT().Interactive().Return(false)
	s.exchanger.EXPECT().Exchange(gomock.Any(), "mock-code", gomock.Any()).
		Return(nil, errors.New("signer unavailable"))

	resp := s.get("/sso/login?redirect=http://localhost:9000/cb")
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	s.Equal(http.StatusInternalServerError, resp.StatusCode)
	s.Empty(resp.Header.Get("Location"))
	s.Contains(string(body), "Token exchange failed.")
	s.Equal(1.0, s.outcome("login", "exchange_failed"))
}

func (s *SSOHandlerSuite) TestLogin_InteractiveRedirectsToProvider() {
	s.exchanger.EXPECT().Interactive().Return(true)

	resp := s.get("/sso/login?redirect=" + url.QueryEscape("http://localhost:9000/cb"))
	s.Require().Equal(http.StatusTemporaryRedirect, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	s.Require().NoError(err)
	s.Equal("login.example", loc.Host)
	s.Equal("/tenant/oauth2/v2.0/authorize", loc.Path)

	q := loc.Query()
	s.Equal(s.identity.ClientID, q.Get("client_id"))
	s.Equal("code", q.Get("response_type"))
	s.Equal("http://gateway.test/sso/callback", q.Get("redirect_uri"))
	s.Equal("query", q.Get("response_mode"))
	s.Equal("openid profile email", q.Get("scope"))
	s.Equal("http://localhost:9000/cb", q.Get("state"))
	s.Equal(1.0, s.outcome("login", "provider_redirect"))
}

func (s *SSOHandlerSuite) TestCallback_MissingCode() {
	for _, path := range []string{"/sso/callback", "/sso/callback?code=&state=http://localhost:9000/cb", "/sso/callback?error=access_denied"} {
		resp := s.get(path)
		body, err := io.ReadAll(resp.Body)
		s.Require().NoError(err)

		s.Equal(http.StatusBadRequest, resp.StatusCode, path)
		s.Equal("text/html; charset=utf-8", resp.Header.Get("Content-Type"))
		s.Empty(resp.Header.Get("Location"))
		s.Contains(string(body), "No authorization code received.")
	}
	s.Equal(3.0, s.outcome("callback", "missing_code"))
}

func (s *SSOHandlerSuite) TestCallback_RedirectsToState() {
	s.exchanger.EXPECT().
		Exchange(gomock.Any(), "abc", "http://gateway.test/sso/callback").
		Return(identity.TokenResponse{"access_token": "provider-token", "id_token": "x"}, nil)

	resp := s.get("/sso/callback?code=abc&state=" + url.QueryEscape("http://localhost:9000/cb"))

	s.Equal(http.StatusTemporaryRedirect, resp.StatusCode)
	s.Equal("http://localhost:9000/cb?token=provider-token", resp.Header.Get("Location"))
	s.Equal(1.0, s.outcome("callback", "token_issued"))
}

func (s *SSOHandlerSuite) TestCallback_DefaultTargetWithoutState() {
	s.exchanger.EXPECT().Exchange(gomock.Any(), "abc", gomock.Any()).
		Return(identity.TokenResponse{"access_token": "t"}, nil)

	resp := s.get("/sso/callback?code=abc")

	s.Equal(http.StatusTemporaryRedirect, resp.StatusCode)
	s.Equal("http://127.0.0.1:8080/callback?token=t", resp.Header.Get("Location"))
}

func (s *SSOHandlerSuite) TestCallback_ExchangeFailureHidesUpstreamDetail() {
	s.exchanger.EXPECT().Exchange(gomock.Any(), "stale", gomock.Any()).
		Return(nil, &identity.ExchangeError{StatusCode: http.StatusBadRequest, Err: errors.New("AADSTS70008")})

	resp := s.get("/sso/callback?code=stale&state=http://localhost:9000/cb")
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	s.Equal(http.StatusInternalServerError, resp.StatusCode)
	s.Empty(resp.Header.Get("Location"))
	s.Contains(string(body), "Token exchange failed.")
	s.NotContains(string(body), "AADSTS70008")
	s.Equal(1.0, s.outcome("callback", "exchange_failed"))
}

func (s *SSOHandlerSuite) TestCallback_ResponseWithoutAccessToken() {
	s.exchanger.EXPECT().Exchange(gomock.Any(), "abc", gomock.Any()).
		Return(identity.TokenResponse{"token_type": "Bearer"}, nil)

	resp := s.get("/sso/callback?code=abc&state=http://localhost:9000/cb")

	s.Equal(http.StatusInternalServerError, resp.StatusCode)
	s.Empty(resp.Header.Get("Location"))
	s.Equal(1.0, s.outcome("callback", "missing_access_token"))
}

func (s *SSOHandlerSuite) TestCallback_PassesRequestContext() {
	type ctxKey struct{}
	s.exchanger.EXPECT().Exchange(gomock.Any(), "abc", gomock.Any()).
		DoAndReturn(func(ctx context.Context, _, _ string) (identity.TokenResponse, error) {
			s.Equal("marker", ctx.Value(ctxKey{}))
			return identity.TokenResponse{"access_token": "t"}, nil
		})

	req := testutil.NewRequest(s.T(), http.MethodGet, "/sso/callback?code=abc")
	req = req.WithContext(context.WithValue(req.Context(), ctxKey{}, "marker"))
	rr := testutil.DoRequest(s.router, req)

	s.Equal(http.StatusTemporaryRedirect, rr.Code)
}

func TestWithToken(t *testing.T) {
	assert.Equal(t, "http://h/cb?token=a.b.c", withToken("http://h/cb", "a.b.c"))
	assert.Equal(t, "http://h/cb?x=1&token=a", withToken("http://h/cb?x=1", "a"))
	assert.Equal(t, "relative?token=a", withToken("relative", "a"))

	u, err := url.Parse(withToken("http://h/cb", "a+b/c=="))
	require.NoError(t, err)
	assert.Equal(t, "a+b/c==", u.Query().Get("token"))
}
