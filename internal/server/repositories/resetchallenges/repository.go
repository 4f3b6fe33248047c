// Package resetchallenges provides the PostgreSQL-backed ledger of issued
// password reset challenges (OTP codes and link tokens).
package resetchallenges

import (
	"context"

	"github.com/Ak2k04/Life-Tracker/internal/server/models"
)

// Repository is the persistence contract for the reset challenge ledger.
// Rows are never deleted here; superseded and consumed challenges are only
// flipped to used=true, and expired rows age out passively.
type Repository interface {
	Create(ctx context.Context, challenge *models.ResetChallenge) (*models.ResetChallenge, error)
	// Latest returns the most recent unused, unexpired challenge for
	// (userID, method), ties broken by highest id. Returns
	// common.ErrorNotFound when no such row exists.
	Latest(ctx context.Context, userID string, method models.ResetMethod) (*models.ResetChallenge, error)
	// InvalidateAll marks every unused challenge for the user as used,
	// regardless of method, and returns the number of rows it touched.
	InvalidateAll(ctx context.Context, userID string) (int64, error)
}
