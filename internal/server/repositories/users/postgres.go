package users

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

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (username, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, username, email, password_hash, created_at FROM users
		 WHERE email = $1
		 `
	return r.getOne(ctx, query, email)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query :=
		`SELECT id, username, email, password_hash, created_at FROM users
		 WHERE username = $1
		 `
	return r.getOne(ctx, query, username)
}

func (r *PostgresRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	query :=
		`SELECT id, username, email, password_hash, created_at FROM users
		 WHERE email = $1 OR username = $1
		 `
	return r.getOne(ctx, query, identifier)
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) (int64, error) {
	query :=
		`UPDATE users SET password_hash = $1
		 WHERE id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, passwordHash, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return affected, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
