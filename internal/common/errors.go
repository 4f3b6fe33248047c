// Package common defines shared helpers and sentinel errors used across
// the Life Tracker server layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Registration conflicts.
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")

	// Password reset flow. ErrInvalidChallenge deliberately covers unknown
	// user, missing challenge, expired challenge and secret mismatch so the
	// caller cannot tell them apart.
	ErrInvalidChallenge = errors.New("challenge expired or invalid")
	ErrSessionExpired   = errors.New("reset session expired or invalid")

	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
