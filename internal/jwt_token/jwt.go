package jwttoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "aiproxy/pkg/domain-errors"
	"aiproxy/pkg/platform/sentinel"
)

// ErrInvalidToken is the single verification failure. Callers never need to
// know which check failed.
var ErrInvalidToken = errors.New("invalid token")

// Claims represents the JWT claims of an access token issued by the gateway.
type Claims struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	ObjectID string `json:"oid"`
	jwt.RegisteredClaims
}

// Identity is the principal a token is minted for.
type Identity struct {
	Subject string
	Name    string
	Email   string
}

// Option customises a JWTService.
type Option func(*JWTService)

// WithClock overrides the time source used for minting and validation.
func WithClock(now func() time.Time) Option {
	return func(s *JWTService) { s.now = now }
}

// JWTService handles JWT creation and validation
type JWTService struct {
	signingKey []byte
	method     jwt.SigningMethod
	issuer     string
	audience   string
	lifetime   time.Duration
	now        func() time.Time
}

// NewJWTService builds a codec for one HMAC algorithm (HS256, HS384, HS512).
func NewJWTService(signingKey, algorithm, issuer, audience string, lifetime time.Duration, opts ...Option) (*JWTService, error) {
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q: only HMAC algorithms are allowed", algorithm)
	}
	if signingKey == "" {
		return nil, errors.New("signing key is required")
	}
	if lifetime <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %s", lifetime)
	}

	s := &JWTService{
		signingKey: []byte(signingKey),
		method:     method,
		issuer:     issuer,
		audience:   audience,
		lifetime:   lifetime,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ExpiresIn is the token lifetime in whole seconds.
func (s *JWTService) ExpiresIn() int64 {
	return int64(s.lifetime / time.Second)
}

// Mint issues a signed token for identity. Each call gets a fresh object id.
func (s *JWTService) Mint(identity Identity) (string, *Claims, error) {
	now := s.now()
	objectID := uuid.NewString()
	claims := &Claims{
		Name:     identity.Name,
		Email:    identity.Email,
		ObjectID: objectID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			ID:        objectID,
		},
	}

	signedToken, err := jwt.NewWithClaims(s.method, claims).SignedString(s.signingKey)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return signedToken, claims, nil
}

// ValidateToken verifies tokenString against the service clock.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	return s.ValidateTokenAt(tokenString, s.now())
}

// ValidateTokenAt verifies signature, issuer, audience and the
// [iat, exp) window at the given instant. No leeway is applied.
func (s *JWTService) ValidateTokenAt(tokenString string, now time.Time) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.Wrap(errors.Join(ErrInvalidToken, sentinel.ErrExpired), dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.Wrap(errors.Join(ErrInvalidToken, err), dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.Wrap(ErrInvalidToken, dErrors.CodeUnauthorized, "invalid token")
	}

	return claims, nil
}
