package jwttoken

import (
	"context"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"

	dErrors "aiproxy/pkg/domain-errors"
	authmw "aiproxy/pkg/platform/middleware/auth"
)

// OIDCVerifier validates access tokens issued by the external identity
// provider. Signing keys come from the provider's JWKS endpoint; go-oidc
// caches them and refetches when it sees an unknown key id, which is how
// provider key rotation is picked up.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// OIDCVerifierConfig holds the provider coordinates for token verification.
type OIDCVerifierConfig struct {
	Issuer   string
	JWKSURL  string
	ClientID string
	// Now overrides the clock used for expiry checks. Defaults to time.Now.
	Now func() time.Time
}

// NewOIDCVerifier builds a verifier. ctx must outlive the verifier: go-oidc
// uses it for every background key fetch.
func NewOIDCVerifier(ctx context.Context, cfg OIDCVerifierConfig, client *http.Client) *OIDCVerifier {
	if client != nil {
		ctx = oidc.ClientContext(ctx, client)
	}
	keySet := oidc.NewRemoteKeySet(ctx, cfg.JWKSURL)
	return &OIDCVerifier{
		verifier: oidc.NewVerifier(cfg.Issuer, keySet, &oidc.Config{
			ClientID: cfg.ClientID,
			Now:      cfg.Now,
		}),
	}
}

type providerClaims struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	PreferredUsername string `json:"preferred_username"`
	ObjectID          string `json:"oid"`
}

func (v *OIDCVerifier) ValidateToken(ctx context.Context, tokenString string) (*authmw.JWTClaims, error) {
	token, err := v.verifier.Verify(ctx, tokenString)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token")
	}

	var pc providerClaims
	if err := token.Claims(&pc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token claims")
	}
	email := pc.Email
	if email == "" {
		email = pc.PreferredUsername
	}

	return &authmw.JWTClaims{
		Subject:  token.Subject,
		Name:     pc.Name,
		Email:    email,
		ObjectID: pc.ObjectID,
		Issuer:   token.Issuer,
		Audience: token.Audience,
	}, nil
}
