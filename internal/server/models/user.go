package models

import "time"

// User is a registered account. Email is stored lower-cased and is unique;
// PasswordHash is a bcrypt hash and is only ever replaced by registration or
// a completed password reset.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
