// This file implements PasswordResetService: issuing OTP/link challenges,
// verifying them, and committing the new password.
//
// The reset secret is never persisted or logged in plaintext: only a bcrypt
// hash of its SHA-256 digest is stored (the digest step keeps the 128-char
// link token inside bcrypt's 72-byte input limit). Issuing a new challenge
// supersedes every unused one for the user; the consumed challenge is closed
// out at commit time, and commit refuses to run twice for the same
// credential by requiring that close-out to touch at least one row.
package services

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Ak2k04/Life-Tracker/internal/common"
	"github.com/Ak2k04/Life-Tracker/internal/dbx"
	"github.com/Ak2k04/Life-Tracker/internal/logging"
	"github.com/Ak2k04/Life-Tracker/internal/server/auth"
	"github.com/Ak2k04/Life-Tracker/internal/server/config"
	"github.com/Ak2k04/Life-Tracker/internal/server/mail"
	"github.com/Ak2k04/Life-Tracker/internal/server/models"
	"github.com/Ak2k04/Life-Tracker/internal/server/repositories/repomanager"
)

const (
	// ForgotMessage is returned for every well-formed forgot-password
	// request, whether or not the email is registered.
	ForgotMessage = "If this email is registered, you will receive reset instructions shortly."

	// ResetMessage is returned after a successful password commit.
	ResetMessage = "Password updated successfully. Please log in."

	otpDigits     = 6
	linkTokenSize = 64 // bytes of entropy; hex-encoded to 128 characters
)

// PasswordResetService implements the password reset flow: the challenge
// issuer, the challenge verifier, and the password committer.
type PasswordResetService struct {
	db                *sql.DB
	repomanager       repomanager.RepositoryManager
	mailer            mail.Mailer
	logger            logging.Logger
	resetSecret       []byte
	resetValidity     time.Duration
	challengeValidity time.Duration
	bcryptCost        int
	frontendURL       string

	// dummyHash is compared against on early-exit verification paths so
	// "no such user" and "no such challenge" cost the same as a real
	// mismatch.
	dummyHash string
}

// NewPasswordResetService constructs the service. Computing the decoy hash
// up front costs one bcrypt round at startup instead of special-casing the
// first request.
func NewPasswordResetService(db *sql.DB, m repomanager.RepositoryManager, mailer mail.Mailer, logger logging.Logger, cfg *config.Config) (*PasswordResetService, error) {
	s := &PasswordResetService{
		db:                db,
		repomanager:       m,
		mailer:            mailer,
		logger:            logger,
		resetSecret:       []byte(cfg.ResetSecretKey),
		resetValidity:     cfg.ResetTokenValidity,
		challengeValidity: cfg.ChallengeValidity,
		bcryptCost:        cfg.BcryptCost,
		frontendURL:       strings.TrimRight(cfg.FrontendURL, "/"),
	}

	dummy, err := s.hashSecret("decoy")
	if err != nil {
		return nil, fmt.Errorf("decoy hash init: %w", err)
	}
	s.dummyHash = dummy

	return s, nil
}

// Forgot issues a new reset challenge for the account behind email and
// dispatches the secret out-of-band. It always returns the same generic
// message: an unregistered email must be indistinguishable from a registered
// one. Invalidate-then-insert runs in one transaction so no two unused
// challenges can survive a race between concurrent requests.
func (s *PasswordResetService) Forgot(ctx context.Context, email string, method models.ResetMethod) (string, error) {
	normalized := strings.ToLower(email)

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return ForgotMessage, nil
		}
		return "", err
	}

	var secret string
	switch method {
	case models.ResetMethodOTP:
		secret, err = common.MakeRandNumericCode(otpDigits)
	case models.ResetMethodLink:
		secret, err = common.MakeRandHexString(linkTokenSize)
	default:
		return "", fmt.Errorf("unknown reset method %q", method)
	}
	if err != nil {
		return "", common.ErrorInternal
	}

	secretHash, err := s.hashSecret(secret)
	if err != nil {
		return "", common.ErrorInternal
	}

	challenge := &models.ResetChallenge{
		UserID:     user.ID,
		Method:     method,
		SecretHash: secretHash,
		ExpiresAt:  time.Now().Add(s.challengeValidity),
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.ResetChallenges(tx)
		if _, err := repo.InvalidateAll(ctx, user.ID); err != nil {
			return err
		}
		_, err := repo.Create(ctx, challenge)
		return err
	})
	if err != nil {
		return "", err
	}

	s.dispatch(ctx, user, normalized, method, secret)

	return ForgotMessage, nil
}

// VerifyOTP checks a submitted code against the latest unused, unexpired OTP
// challenge for the account and mints a reset credential on match. Unknown
// email, missing challenge, and wrong code all return ErrInvalidChallenge;
// storage failures propagate untouched. A mismatch does not consume the
// challenge, so the user may retry until it expires.
func (s *PasswordResetService) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	normalized := strings.ToLower(email)

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.compareSecret(otp, s.dummyHash)
			return "", common.ErrInvalidChallenge
		}
		return "", err
	}

	return s.verifyChallenge(ctx, user.ID, models.ResetMethodOTP, otp)
}

// ValidateResetLink checks a raw link token for the given user id and mints
// a reset credential on match.
func (s *PasswordResetService) ValidateResetLink(ctx context.Context, rawToken, userID string) (string, error) {
	return s.verifyChallenge(ctx, userID, models.ResetMethodLink, rawToken)
}

// ResetPassword redeems a reset credential: it verifies the signature,
// expiry, and purpose, overwrites the stored password hash, and closes out
// every unused challenge for the user. The close-out doubles as the
// redemption check: when it touches no rows the credential was already
// redeemed (or never backed by a challenge), and the whole transaction rolls
// back with ErrSessionExpired.
func (s *PasswordResetService) ResetPassword(ctx context.Context, resetToken, newPassword string) (string, error) {
	userID, err := auth.ParseResetToken(resetToken, s.resetSecret)
	if err != nil {
		return "", common.ErrSessionExpired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return "", common.ErrorInternal
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		updated, err := s.repomanager.Users(tx).UpdatePasswordHash(ctx, userID, string(hash))
		if err != nil {
			return err
		}
		if updated == 0 {
			return common.ErrSessionExpired
		}

		closed, err := s.repomanager.ResetChallenges(tx).InvalidateAll(ctx, userID)
		if err != nil {
			return err
		}
		if closed == 0 {
			return common.ErrSessionExpired
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return ResetMessage, nil
}

// --- helpers below ---

func (s *PasswordResetService) verifyChallenge(ctx context.Context, userID string, method models.ResetMethod, secret string) (string, error) {
	challenge, err := s.repomanager.ResetChallenges(s.db).Latest(ctx, userID, method)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.compareSecret(secret, s.dummyHash)
			return "", common.ErrInvalidChallenge
		}
		return "", err
	}

	if !s.compareSecret(secret, challenge.SecretHash) {
		return "", common.ErrInvalidChallenge
	}

	token, err := auth.GenerateResetToken(userID, s.resetSecret, s.resetValidity)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

func (s *PasswordResetService) dispatch(ctx context.Context, user *models.User, email string, method models.ResetMethod, secret string) {
	var (
		subject string
		body    string
		err     error
	)

	switch method {
	case models.ResetMethodOTP:
		subject = mail.OTPSubject
		body, err = mail.RenderOTPEmail(secret)
	case models.ResetMethodLink:
		subject = mail.LinkSubject
		link := fmt.Sprintf("%s/reset-password?token=%s&uid=%s", s.frontendURL, secret, user.ID)
		body, err = mail.RenderLinkEmail(link)
	}
	if err != nil {
		s.logger.Error(ctx, "reset email render failed", "user_id", user.ID, "method", method, "error", err)
		return
	}

	// Best-effort: a delivery failure must not change the response, or the
	// endpoint becomes an account-existence oracle.
	if err := s.mailer.Send(ctx, email, subject, body); err != nil {
		s.logger.Error(ctx, "reset email delivery failed", "user_id", user.ID, "method", method, "error", err)
	}
}

// hashSecret stores bcrypt(sha256(secret)). The SHA-256 step keeps long link
// tokens inside bcrypt's 72-byte input limit while preserving the slow-hash
// comparison cost.
func (s *PasswordResetService) hashSecret(secret string) (string, error) {
	digest := sha256.Sum256([]byte(secret))
	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(digest[:])), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *PasswordResetService) compareSecret(secret, secretHash string) bool {
	digest := sha256.Sum256([]byte(secret))
	return bcrypt.CompareHashAndPassword([]byte(secretHash), []byte(hex.EncodeToString(digest[:]))) == nil
}
