package jwttoken

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "aiproxy/pkg/domain-errors"
	"aiproxy/pkg/platform/sentinel"
	"aiproxy/pkg/requestcontext"
)

const (
	testSecret    = "test-signing-key"
	testIssuer    = "https://login.microsoftonline.com/test-tenant"
	testAudience  = "test-client-id"
	testAlgorithm = "HS256"
)

var identity = Identity{
	Subject: "mock-user-id",
	Name:    "Mock User",
	Email:   "mock.user@enterprise.local",
}

// fixedClock starts at a whole second so NumericDate truncation is a no-op.
type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time { return c.t }

func newClock() *fixedClock {
	return &fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func newService(t *testing.T, clock *fixedClock, secret string) *JWTService {
	t.Helper()
	s, err := NewJWTService(secret, testAlgorithm, testIssuer, testAudience, time.Hour, WithClock(clock.now))
	require.NoError(t, err)
	return s
}

func Test_Mint(t *testing.T) {
	clock := newClock()
	s := newService(t, clock, testSecret)

	token, claims, err := s.Mint(identity)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.Equal(t, identity.Subject, claims.Subject)
	assert.Equal(t, identity.Name, claims.Name)
	assert.Equal(t, identity.Email, claims.Email)
	assert.NotEmpty(t, claims.ObjectID)
	assert.Equal(t, claims.ObjectID, claims.ID)
	assert.Equal(t, testIssuer, claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{testAudience}, claims.Audience)
	assert.Equal(t, clock.t, claims.IssuedAt.Time)
	assert.Equal(t, claims.IssuedAt.Add(time.Hour), claims.ExpiresAt.Time)
	assert.Equal(t, int64(3600), s.ExpiresIn())
}

func Test_Mint_FreshObjectIDPerCall(t *testing.T) {
	s := newService(t, newClock(), testSecret)

	_, first, err := s.Mint(identity)
	require.NoError(t, err)
	_, second, err := s.Mint(identity)
	require.NoError(t, err)

	assert.NotEqual(t, first.ObjectID, second.ObjectID)
}

func Test_ValidateToken_RoundTrip(t *testing.T) {
	clock := newClock()
	s := newService(t, clock, testSecret)

	token, minted, err := s.Mint(identity)
	require.NoError(t, err)

	for _, offset := range []time.Duration{0, time.Minute, time.Hour - time.Second} {
		clock.t = minted.IssuedAt.Add(offset)
		got, err := s.ValidateToken(token)
		require.NoError(t, err, "offset %s", offset)
		assertSameClaims(t, minted, got)
	}
}

func assertSameClaims(t *testing.T, want, got *Claims) {
	t.Helper()
	assert.Equal(t, want.Subject, got.Subject)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Email, got.Email)
	assert.Equal(t, want.ObjectID, got.ObjectID)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Issuer, got.Issuer)
	assert.Equal(t, want.Audience, got.Audience)
	assert.True(t, want.IssuedAt.Equal(got.IssuedAt.Time))
	assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt.Time))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	clock := newClock()
	s := newService(t, clock, testSecret)

	token, minted, err := s.Mint(identity)
	require.NoError(t, err)

	for _, offset := range []time.Duration{time.Hour, time.Hour + time.Second, 48 * time.Hour} {
		clock.t = minted.IssuedAt.Add(offset)
		_, err = s.ValidateToken(token)
		require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "token has expired"), "offset %s", offset)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.ErrorIs(t, err, sentinel.ErrExpired)
	}
}

func Test_ValidateToken_BeforeIssuedAt(t *testing.T) {
	clock := newClock()
	s := newService(t, clock, testSecret)

	token, minted, err := s.Mint(identity)
	require.NoError(t, err)

	clock.t = minted.IssuedAt.Add(-time.Minute)
	_, err = s.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func Test_ValidateToken_ForeignSecret(t *testing.T) {
	clock := newClock()
	foreign := newService(t, clock, "some-other-secret")
	s := newService(t, clock, testSecret)

	token, _, err := foreign.Mint(identity)
	require.NoError(t, err)

	_, err = s.ValidateToken(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func Test_ValidateToken_WrongIssuerOrAudience(t *testing.T) {
	clock := newClock()
	s := newService(t, clock, testSecret)

	otherIssuer, err := NewJWTService(testSecret, testAlgorithm, "https://evil.example", testAudience, time.Hour, WithClock(clock.now))
	require.NoError(t, err)
	otherAudience, err := NewJWTService(testSecret, testAlgorithm, testIssuer, "other-client", time.Hour, WithClock(clock.now))
	require.NoError(t, err)

	for name, minter := range map[string]*JWTService{"issuer": otherIssuer, "audience": otherAudience} {
		t.Run(name, func(t *testing.T) {
			token, _, err := minter.Mint(identity)
			require.NoError(t, err)

			_, err = s.ValidateToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func Test_ValidateToken_AlgorithmMismatch(t *testing.T) {
	clock := newClock()
	s := newService(t, clock, testSecret)
	hs512, err := NewJWTService(testSecret, "HS512", testIssuer, testAudience, time.Hour, WithClock(clock.now))
	require.NoError(t, err)

	token, _, err := hs512.Mint(identity)
	require.NoError(t, err)

	_, err = s.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func Test_ValidateToken_UnsignedToken(t *testing.T) {
	clock := newClock()
	s := newService(t, clock, testSecret)

	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "attacker",
		Issuer:    testIssuer,
		Audience:  jwt.ClaimStrings{testAudience},
		IssuedAt:  jwt.NewNumericDate(clock.t),
		ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = s.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func Test_ValidateToken_Malformed(t *testing.T) {
	s := newService(t, newClock(), testSecret)

	for _, token := range []string{"", "not-a-real-jwt", "invalid-garbage-token", "a.b.c", strings.Repeat(".", 5)} {
		claims, err := s.ValidateToken(token)
		assert.Nil(t, claims, "token %q", token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	}
}

func Test_NewJWTService_RejectsBadSettings(t *testing.T) {
	_, err := NewJWTService(testSecret, "RS256", testIssuer, testAudience, time.Hour)
	assert.Error(t, err)

	_, err = NewJWTService(testSecret, "none", testIssuer, testAudience, time.Hour)
	assert.Error(t, err)

	_, err = NewJWTService("", testAlgorithm, testIssuer, testAudience, time.Hour)
	assert.Error(t, err)

	_, err = NewJWTService(testSecret, testAlgorithm, testIssuer, testAudience, 0)
	assert.Error(t, err)
}

func Test_JWTServiceAdapter(t *testing.T) {
	clock := newClock()
	s := newService(t, clock, testSecret)
	adapter := NewJWTServiceAdapter(s)

	token, minted, err := s.Mint(identity)
	require.NoError(t, err)

	claims, err := adapter.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, identity.Subject, claims.Subject)
	assert.Equal(t, minted.ObjectID, claims.ObjectID)
	assert.Equal(t, []string{testAudience}, claims.Audience)

	t.Run("uses request-scoped time when present", func(t *testing.T) {
		ctx := requestcontext.WithTime(context.Background(), minted.ExpiresAt.Time)
		_, err := adapter.ValidateToken(ctx, token)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})
}
