package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"aiproxy/internal/identity"
	jwttoken "aiproxy/internal/jwt_token"
	"aiproxy/internal/platform/config"
	"aiproxy/internal/platform/metrics"
	httptransport "aiproxy/internal/transport/http"
	authmw "aiproxy/pkg/platform/middleware/auth"
)

func newCodec(cfg config.Config) (*jwttoken.JWTService, error) {
	return jwttoken.NewJWTService(cfg.Token.Secret, cfg.Token.Algorithm,
		cfg.Identity.AuthorityURL(), cfg.Identity.ClientID, cfg.Token.Lifetime())
}

// newValidator picks who vouches for bearer tokens: the gateway's own codec
// in mock mode, the provider's published keys otherwise.
func newValidator(ctx context.Context, cfg config.Config, codec *jwttoken.JWTService) authmw.JWTValidator {
	if cfg.Identity.MockMode {
		return jwttoken.NewJWTServiceAdapter(codec)
	}
	return jwttoken.NewOIDCVerifier(ctx, jwttoken.OIDCVerifierConfig{
		Issuer:   cfg.Identity.ProviderIssuer(),
		JWKSURL:  cfg.Identity.JWKSURL(),
		ClientID: cfg.Identity.ClientID,
	}, nil)
}

func buildHandler(ctx context.Context, cfg config.Config, log *slog.Logger) (http.Handler, error) {
	codec, err := newCodec(cfg)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	return httptransport.NewRouter(httptransport.Dependencies{
		Config:    cfg,
		Logger:    log,
		Metrics:   m,
		Gatherer:  reg,
		Exchanger: identity.NewExchanger(cfg.Identity, codec, nil, log, m),
		Validator: newValidator(ctx, cfg, codec),
	}), nil
}
