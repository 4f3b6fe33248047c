package models

import "time"

// ResetMethod discriminates how a password reset secret is delivered.
type ResetMethod string

const (
	ResetMethodOTP  ResetMethod = "otp"
	ResetMethodLink ResetMethod = "link"
)

// Valid reports whether m is one of the known methods.
func (m ResetMethod) Valid() bool {
	return m == ResetMethodOTP || m == ResetMethodLink
}

// ResetChallenge is one issued OTP or link secret for a user. SecretHash is
// a bcrypt hash of the plaintext secret; the plaintext itself is never
// persisted. Used flips from false to true exactly once, either when the
// reset is committed or when a newer challenge supersedes this one.
type ResetChallenge struct {
	ID         int64
	UserID     string
	Method     ResetMethod
	SecretHash string
	Used       bool
	ExpiresAt  time.Time
	CreatedAt  time.Time
}
