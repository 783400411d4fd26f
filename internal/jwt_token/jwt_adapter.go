package jwttoken

import (
	"context"

	authmw "aiproxy/pkg/platform/middleware/auth"
	"aiproxy/pkg/requestcontext"
)

func ToMiddlewareClaims(claims *Claims) *authmw.JWTClaims {
	return &authmw.JWTClaims{
		Subject:  claims.Subject,
		Name:     claims.Name,
		Email:    claims.Email,
		ObjectID: claims.ObjectID,
		Issuer:   claims.Issuer,
		Audience: claims.Audience,
	}
}

// JWTServiceAdapter lets the auth middleware validate gateway-issued tokens.
// Validation uses the request-scoped time when the requesttime middleware ran.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(ctx context.Context, tokenString string) (*authmw.JWTClaims, error) {
	now, ok := requestcontext.RequestTime(ctx)
	if !ok {
		now = a.service.now()
	}
	claims, err := a.service.ValidateTokenAt(tokenString, now)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
