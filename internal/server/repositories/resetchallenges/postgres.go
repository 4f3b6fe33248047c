package resetchallenges

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Ak2k04/Life-Tracker/internal/common"
	"github.com/Ak2k04/Life-Tracker/internal/dbx"
	"github.com/Ak2k04/Life-Tracker/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, challenge *models.ResetChallenge) (*models.ResetChallenge, error) {
	query :=
		`INSERT INTO password_reset_challenges (user_id, method, secret_hash, expires_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		challenge.UserID, string(challenge.Method), challenge.SecretHash, challenge.ExpiresAt).
		Scan(&challenge.ID, &challenge.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return challenge, nil
}

func (r *PostgresRepository) Latest(ctx context.Context, userID string, method models.ResetMethod) (*models.ResetChallenge, error) {
	// created_at alone is not a total order when two rows land in the same
	// instant, so id is the deterministic tie-break.
	query :=
		`SELECT id, user_id, method, secret_hash, used, expires_at, created_at
		 FROM password_reset_challenges
		 WHERE user_id = $1 AND method = $2 AND used = false AND expires_at > now()
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1
		 `

	challenge := &models.ResetChallenge{}
	err := r.db.QueryRowContext(ctx, query, userID, string(method)).
		Scan(&challenge.ID, &challenge.UserID, &challenge.Method, &challenge.SecretHash,
			&challenge.Used, &challenge.ExpiresAt, &challenge.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return challenge, nil
}

func (r *PostgresRepository) InvalidateAll(ctx context.Context, userID string) (int64, error) {
	query :=
		`UPDATE password_reset_challenges SET used = true
		 WHERE user_id = $1 AND used = false
		 `

	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return affected, nil
}
