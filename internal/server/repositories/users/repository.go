// Package users provides the PostgreSQL-backed repository for user accounts.
package users

import (
	"context"

	"github.com/Ak2k04/Life-Tracker/internal/server/models"
)

// Repository is the persistence contract for user accounts. Email arguments
// are expected to be lower-cased by the caller; the repository compares them
// verbatim.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// GetByIdentifier matches either the email or the username column,
	// mirroring the login form's single identifier field.
	GetByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	// UpdatePasswordHash overwrites the stored hash and returns the number
	// of rows touched.
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) (int64, error)
}
