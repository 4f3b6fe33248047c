// Package auth mints and verifies the two kinds of signed tokens the server
// hands out: long-lived login tokens and short-lived password reset
// credentials. Both are HS256 JWTs but are signed with separate secrets so a
// login token can never pass as a reset credential.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Ak2k04/Life-Tracker/internal/common"
)

// ResetPurpose is the required purpose claim of a reset credential.
const ResetPurpose = "password_reset"

// Claims are the login token claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ResetClaims are the reset credential claims. The credential is a bearer
// capability: it is never persisted, only its signature and expiry are
// trusted.
type ResetClaims struct {
	jwt.RegisteredClaims
	UserID  string `json:"userId"`
	Purpose string `json:"purpose"`
}

// GenerateToken returns a signed login token for the user.
func GenerateToken(userID, username, email string, secretKey []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		UserID:   userID,
		Username: username,
		Email:    email,
	})
	return token.SignedString(secretKey)
}

// ParseToken verifies a login token and returns its claims. Expired tokens
// yield common.ErrTokenExpired, all other failures common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// GenerateResetToken returns a signed reset credential scoped to userID.
func GenerateResetToken(userID string, secretKey []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ResetClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		UserID:  userID,
		Purpose: ResetPurpose,
	})
	return token.SignedString(secretKey)
}

// ParseResetToken verifies a reset credential and returns the user id it is
// scoped to. Bad signature, expiry, and wrong purpose are all reported as the
// same common.ErrInvalidToken so the caller cannot leak which check failed.
func ParseResetToken(tokenString string, secretKey []byte) (string, error) {
	claims := &ResetClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", common.ErrInvalidToken
	}
	if claims.Purpose != ResetPurpose {
		return "", common.ErrInvalidToken
	}
	return claims.UserID, nil
}
