package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Lower layers return these
// (optionally wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: requested resource does not exist
//   - ErrExpired: token has passed its expiry
//   - ErrUnavailable: upstream dependency unreachable or timed out
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrExpired     = errors.New("expired")
	ErrUnavailable = errors.New("unavailable")
)
