// Package services contains server-side business logic. This file implements
// UserService, which handles registration and login.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Ak2k04/Life-Tracker/internal/common"
	"github.com/Ak2k04/Life-Tracker/internal/server/auth"
	"github.com/Ak2k04/Life-Tracker/internal/server/config"
	"github.com/Ak2k04/Life-Tracker/internal/server/models"
	"github.com/Ak2k04/Life-Tracker/internal/server/repositories/repomanager"

	"database/sql"
)

// RegisterMessage is returned on successful registration.
const RegisterMessage = "Account created successfully. Please log in."

// UserService provides account operations:
//   - Register: create users
//   - Login: verify credentials and mint a login token
type UserService struct {
	db                  *sql.DB
	repomanager         repomanager.RepositoryManager
	jwtSecret           []byte
	accessTokenValidity time.Duration
	bcryptCost          int
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                  db,
		repomanager:         m,
		jwtSecret:           []byte(cfg.SecretKey),
		accessTokenValidity: cfg.AccessTokenValidity,
		bcryptCost:          cfg.BcryptCost,
	}
}

// Register creates a new account. The email is stored lower-cased. Duplicate
// email and username are reported as distinct conflicts so the caller can
// show a precise message (registration is not an enumeration surface the way
// the reset flow is).
func (s *UserService) Register(ctx context.Context, username, email, password string) (string, error) {
	normalizedEmail := strings.ToLower(email)
	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByEmail(ctx, normalizedEmail); err == nil {
		return "", common.ErrEmailTaken
	} else if !errors.Is(err, common.ErrorNotFound) {
		return "", err
	}

	if _, err := repo.GetByUsername(ctx, username); err == nil {
		return "", common.ErrUsernameTaken
	} else if !errors.Is(err, common.ErrorNotFound) {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", common.ErrorInternal
	}

	user := &models.User{Username: username, Email: normalizedEmail, PasswordHash: string(hash)}
	if _, err := repo.Create(ctx, user); err != nil {
		return "", err
	}

	return RegisterMessage, nil
}

// Login verifies the identifier (email or username) and password and, on
// success, returns a signed login token together with the user. Unknown
// identifier and wrong password are both common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, identifier, password string) (string, *models.User, error) {
	normalized := strings.ToLower(identifier)
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByIdentifier(ctx, normalized)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, common.ErrorUnauthorized
		}
		return "", nil, common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, user.Username, user.Email, s.jwtSecret, s.accessTokenValidity)
	if err != nil {
		return "", nil, common.ErrorInternal
	}

	return token, user, nil
}
