package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"github.com/Ak2k04/Life-Tracker/internal/common"
	"github.com/Ak2k04/Life-Tracker/internal/logging"
	"github.com/Ak2k04/Life-Tracker/internal/server/auth"
	"github.com/Ak2k04/Life-Tracker/internal/server/mail"
	"github.com/Ak2k04/Life-Tracker/internal/server/models"
)

type fakeMailer struct {
	to      string
	subject string
	body    string
	calls   int
	err     error
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	m.calls++
	m.to, m.subject, m.body = to, subject, body
	return m.err
}

var (
	otpInBody   = regexp.MustCompile(`>(\d{6})</span>`)
	tokenInBody = regexp.MustCompile(`token=([0-9a-f]{128})`)
)

func newResetService(t *testing.T, rm *fakeRepoManager, mailer *fakeMailer) (*PasswordResetService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newSQLMockDB(t)
	t.Cleanup(func() { db.Close() })

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	s, err := NewPasswordResetService(db, rm, mailer, logger, testConfig())
	if err != nil {
		t.Fatalf("NewPasswordResetService error: %v", err)
	}
	return s, mock
}

func seededManager() *fakeRepoManager {
	repo := newFakeUsersRepo()
	repo.add(&models.User{ID: "u-1", Username: "alice", Email: "alice@example.com", PasswordHash: "$old$hash"})
	return &fakeRepoManager{u: repo, c: &fakeChallengeLedger{}}
}

func TestForgot_UnknownEmail(t *testing.T) {
	rm := seededManager()
	mailer := &fakeMailer{}
	s, _ := newResetService(t, rm, mailer)

	msg, err := s.Forgot(context.Background(), "ghost@example.com", models.ResetMethodOTP)
	if err != nil {
		t.Fatalf("Forgot error: %v", err)
	}
	if msg != ForgotMessage {
		t.Fatalf("unexpected message: %q", msg)
	}
	if mailer.calls != 0 {
		t.Fatal("no email must be sent for an unknown address")
	}
	if len(rm.c.rows) != 0 {
		t.Fatal("no challenge must be recorded for an unknown address")
	}
}

func TestForgot_IssuesOTPChallenge(t *testing.T) {
	rm := seededManager()
	mailer := &fakeMailer{}
	s, mock := newResetService(t, rm, mailer)
	mock.ExpectBegin()
	mock.ExpectCommit()

	msg, err := s.Forgot(context.Background(), "Alice@Example.com", models.ResetMethodOTP)
	if err != nil {
		t.Fatalf("Forgot error: %v", err)
	}
	if msg != ForgotMessage {
		t.Fatalf("unexpected message: %q", msg)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("challenge must be written inside a transaction: %v", err)
	}

	if rm.c.unused("u-1") != 1 {
		t.Fatalf("expected one live challenge, got %d", rm.c.unused("u-1"))
	}
	ch := rm.c.rows[0]
	if ch.Method != models.ResetMethodOTP {
		t.Fatalf("unexpected method: %q", ch.Method)
	}
	left := time.Until(ch.ExpiresAt)
	if left < 14*time.Minute || left > 15*time.Minute {
		t.Fatalf("challenge validity off: %v", left)
	}

	if mailer.calls != 1 || mailer.to != "alice@example.com" {
		t.Fatalf("mail not dispatched to the account address: %+v", mailer)
	}
	if mailer.subject != mail.OTPSubject {
		t.Fatalf("unexpected subject: %q", mailer.subject)
	}
	code := otpInBody.FindStringSubmatch(mailer.body)
	if code == nil {
		t.Fatalf("no six-digit code in body: %q", mailer.body)
	}
	if ch.SecretHash == code[1] {
		t.Fatal("challenge must store a hash, not the plain code")
	}
}

func TestForgot_SupersedesPriorChallenges(t *testing.T) {
	rm := seededManager()
	mailer := &fakeMailer{}
	s, mock := newResetService(t, rm, mailer)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	if _, err := s.Forgot(context.Background(), "alice@example.com", models.ResetMethodOTP); err != nil {
		t.Fatalf("first Forgot error: %v", err)
	}
	firstCode := otpInBody.FindStringSubmatch(mailer.body)[1]

	if _, err := s.Forgot(context.Background(), "alice@example.com", models.ResetMethodOTP); err != nil {
		t.Fatalf("second Forgot error: %v", err)
	}
	secondCode := otpInBody.FindStringSubmatch(mailer.body)[1]

	if rm.c.unused("u-1") != 1 {
		t.Fatalf("only the latest challenge may stay live, got %d", rm.c.unused("u-1"))
	}

	if _, err := s.VerifyOTP(context.Background(), "alice@example.com", firstCode); !errors.Is(err, common.ErrInvalidChallenge) {
		if firstCode != secondCode { // one-in-900k collision would make the old code valid again
			t.Fatalf("superseded code must be rejected, got %v", err)
		}
	}
	if _, err := s.VerifyOTP(context.Background(), "alice@example.com", secondCode); err != nil {
		t.Fatalf("latest code must verify: %v", err)
	}
}

func TestForgot_MailFailureStaysGeneric(t *testing.T) {
	rm := seededManager()
	mailer := &fakeMailer{err: errors.New("smtp down")}
	s, mock := newResetService(t, rm, mailer)
	mock.ExpectBegin()
	mock.ExpectCommit()

	msg, err := s.Forgot(context.Background(), "alice@example.com", models.ResetMethodLink)
	if err != nil {
		t.Fatalf("delivery failure must not surface: %v", err)
	}
	if msg != ForgotMessage {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestVerifyOTP_RoundTrip(t *testing.T) {
	rm := seededManager()
	mailer := &fakeMailer{}
	s, mock := newResetService(t, rm, mailer)
	mock.ExpectBegin()
	mock.ExpectCommit()

	if _, err := s.Forgot(context.Background(), "alice@example.com", models.ResetMethodOTP); err != nil {
		t.Fatalf("Forgot error: %v", err)
	}
	code := otpInBody.FindStringSubmatch(mailer.body)[1]

	token, err := s.VerifyOTP(context.Background(), "ALICE@example.com", code)
	if err != nil {
		t.Fatalf("VerifyOTP error: %v", err)
	}
	userID, err := auth.ParseResetToken(token, []byte("reset-secret"))
	if err != nil {
		t.Fatalf("reset credential does not verify: %v", err)
	}
	if userID != "u-1" {
		t.Fatalf("credential bound to wrong user: %q", userID)
	}

	// Verification alone must not consume the challenge.
	if rm.c.unused("u-1") != 1 {
		t.Fatal("challenge consumed at verification time")
	}
}

func TestVerifyOTP_WrongCodeKeepsChallenge(t *testing.T) {
	rm := seededManager()
	mailer := &fakeMailer{}
	s, mock := newResetService(t, rm, mailer)
	mock.ExpectBegin()
	mock.ExpectCommit()

	if _, err := s.Forgot(context.Background(), "alice@example.com", models.ResetMethodOTP); err != nil {
		t.Fatalf("Forgot error: %v", err)
	}
	code := otpInBody.FindStringSubmatch(mailer.body)[1]

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	for i := 0; i < 3; i++ {
		if _, err := s.VerifyOTP(context.Background(), "alice@example.com", wrong); !errors.Is(err, common.ErrInvalidChallenge) {
			t.Fatalf("expected ErrInvalidChallenge, got %v", err)
		}
	}

	if _, err := s.VerifyOTP(context.Background(), "alice@example.com", code); err != nil {
		t.Fatalf("correct code must still work after mismatches: %v", err)
	}
}

func TestVerifyOTP_UnknownEmail(t *testing.T) {
	rm := seededManager()
	s, _ := newResetService(t, rm, &fakeMailer{})

	_, err := s.VerifyOTP(context.Background(), "ghost@example.com", "123456")
	if !errors.Is(err, common.ErrInvalidChallenge) {
		t.Fatalf("expected ErrInvalidChallenge, got %v", err)
	}
}

func TestVerifyOTP_NoChallenge(t *testing.T) {
	rm := seededManager()
	s, _ := newResetService(t, rm, &fakeMailer{})

	_, err := s.VerifyOTP(context.Background(), "alice@example.com", "123456")
	if !errors.Is(err, common.ErrInvalidChallenge) {
		t.Fatalf("expected ErrInvalidChallenge, got %v", err)
	}
}

func TestVerifyOTP_Expired(t *testing.T) {
	rm := seededManager()
	s, _ := newResetService(t, rm, &fakeMailer{})

	hash, err := s.hashSecret("123456")
	if err != nil {
		t.Fatalf("hashSecret error: %v", err)
	}
	rm.c.Create(context.Background(), &models.ResetChallenge{
		UserID:     "u-1",
		Method:     models.ResetMethodOTP,
		SecretHash: hash,
		ExpiresAt:  time.Now().Add(-time.Minute),
	})

	_, err = s.VerifyOTP(context.Background(), "alice@example.com", "123456")
	if !errors.Is(err, common.ErrInvalidChallenge) {
		t.Fatalf("expired challenge must be rejected, got %v", err)
	}
}

func TestVerifyOTP_StorageErrorPropagates(t *testing.T) {
	rm := seededManager()
	s, _ := newResetService(t, rm, &fakeMailer{})

	outage := errors.New("db error: connection refused")
	rm.c.latestErr = outage

	_, err := s.VerifyOTP(context.Background(), "alice@example.com", "123456")
	if errors.Is(err, common.ErrInvalidChallenge) {
		t.Fatal("a storage outage must not read as an invalid code")
	}
	if !errors.Is(err, outage) {
		t.Fatalf("expected the storage error to propagate, got %v", err)
	}
}

func TestVerifyOTP_UserLookupErrorPropagates(t *testing.T) {
	rm := seededManager()
	s, _ := newResetService(t, rm, &fakeMailer{})

	outage := errors.New("db error: connection refused")
	rm.u.getErr = outage

	_, err := s.VerifyOTP(context.Background(), "alice@example.com", "123456")
	if errors.Is(err, common.ErrInvalidChallenge) {
		t.Fatal("a storage outage must not read as an invalid code")
	}
	if !errors.Is(err, outage) {
		t.Fatalf("expected the storage error to propagate, got %v", err)
	}
}

func TestValidateResetLink_RoundTrip(t *testing.T) {
	rm := seededManager()
	mailer := &fakeMailer{}
	s, mock := newResetService(t, rm, mailer)
	mock.ExpectBegin()
	mock.ExpectCommit()

	if _, err := s.Forgot(context.Background(), "alice@example.com", models.ResetMethodLink); err != nil {
		t.Fatalf("Forgot error: %v", err)
	}
	if mailer.subject != mail.LinkSubject {
		t.Fatalf("unexpected subject: %q", mailer.subject)
	}
	m := tokenInBody.FindStringSubmatch(mailer.body)
	if m == nil {
		t.Fatalf("no link token in body: %q", mailer.body)
	}

	token, err := s.ValidateResetLink(context.Background(), m[1], "u-1")
	if err != nil {
		t.Fatalf("ValidateResetLink error: %v", err)
	}
	userID, err := auth.ParseResetToken(token, []byte("reset-secret"))
	if err != nil || userID != "u-1" {
		t.Fatalf("reset credential invalid: user=%q err=%v", userID, err)
	}
}

func TestValidateResetLink_WrongToken(t *testing.T) {
	rm := seededManager()
	mailer := &fakeMailer{}
	s, mock := newResetService(t, rm, mailer)
	mock.ExpectBegin()
	mock.ExpectCommit()

	if _, err := s.Forgot(context.Background(), "alice@example.com", models.ResetMethodLink); err != nil {
		t.Fatalf("Forgot error: %v", err)
	}

	bogus, err := common.MakeRandHexString(64)
	if err != nil {
		t.Fatalf("MakeRandHexString error: %v", err)
	}
	if _, err := s.ValidateResetLink(context.Background(), bogus, "u-1"); !errors.Is(err, common.ErrInvalidChallenge) {
		t.Fatalf("expected ErrInvalidChallenge, got %v", err)
	}
}

func TestValidateResetLink_Expired(t *testing.T) {
	rm := seededManager()
	s, _ := newResetService(t, rm, &fakeMailer{})

	token, err := common.MakeRandHexString(64)
	if err != nil {
		t.Fatalf("MakeRandHexString error: %v", err)
	}
	hash, err := s.hashSecret(token)
	if err != nil {
		t.Fatalf("hashSecret error: %v", err)
	}
	rm.c.Create(context.Background(), &models.ResetChallenge{
		UserID:     "u-1",
		Method:     models.ResetMethodLink,
		SecretHash: hash,
		ExpiresAt:  time.Now().Add(-time.Minute),
	})

	if _, err := s.ValidateResetLink(context.Background(), token, "u-1"); !errors.Is(err, common.ErrInvalidChallenge) {
		t.Fatalf("expired link must be rejected, got %v", err)
	}
}

func TestValidateResetLink_StorageErrorPropagates(t *testing.T) {
	rm := seededManager()
	s, _ := newResetService(t, rm, &fakeMailer{})

	outage := errors.New("db error: connection refused")
	rm.c.latestErr = outage

	_, err := s.ValidateResetLink(context.Background(), "deadbeef", "u-1")
	if errors.Is(err, common.ErrInvalidChallenge) {
		t.Fatal("a storage outage must not read as an invalid link")
	}
	if !errors.Is(err, outage) {
		t.Fatalf("expected the storage error to propagate, got %v", err)
	}
}

func TestResetPassword_FullFlow(t *testing.T) {
	rm := seededManager()
	mailer := &fakeMailer{}
	s, mock := newResetService(t, rm, mailer)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	if _, err := s.Forgot(context.Background(), "alice@example.com", models.ResetMethodOTP); err != nil {
		t.Fatalf("Forgot error: %v", err)
	}
	code := otpInBody.FindStringSubmatch(mailer.body)[1]

	token, err := s.VerifyOTP(context.Background(), "alice@example.com", code)
	if err != nil {
		t.Fatalf("VerifyOTP error: %v", err)
	}

	msg, err := s.ResetPassword(context.Background(), token, "NewP4ss$word")
	if err != nil {
		t.Fatalf("ResetPassword error: %v", err)
	}
	if msg != ResetMessage {
		t.Fatalf("unexpected message: %q", msg)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("commit must run inside a transaction: %v", err)
	}

	user := rm.u.byID["u-1"]
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("NewP4ss$word")); err != nil {
		t.Fatalf("stored hash does not match the new password: %v", err)
	}
	if rm.c.unused("u-1") != 0 {
		t.Fatal("all challenges must be closed out after commit")
	}
}

func TestResetPassword_SecondUseRejected(t *testing.T) {
	rm := seededManager()
	mailer := &fakeMailer{}
	s, mock := newResetService(t, rm, mailer)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	if _, err := s.Forgot(context.Background(), "alice@example.com", models.ResetMethodOTP); err != nil {
		t.Fatalf("Forgot error: %v", err)
	}
	code := otpInBody.FindStringSubmatch(mailer.body)[1]

	token, err := s.VerifyOTP(context.Background(), "alice@example.com", code)
	if err != nil {
		t.Fatalf("VerifyOTP error: %v", err)
	}

	if _, err := s.ResetPassword(context.Background(), token, "NewP4ss$word"); err != nil {
		t.Fatalf("first ResetPassword error: %v", err)
	}

	// The credential is still a valid token, but its challenges are gone.
	if _, err := s.ResetPassword(context.Background(), token, "An0ther$pass"); !errors.Is(err, common.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired on reuse, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("second attempt must roll back: %v", err)
	}
}

func TestResetPassword_BadToken(t *testing.T) {
	rm := seededManager()
	s, _ := newResetService(t, rm, &fakeMailer{})

	_, err := s.ResetPassword(context.Background(), "not-a-token", "NewP4ss$word")
	if !errors.Is(err, common.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestResetPassword_LoginTokenRejected(t *testing.T) {
	rm := seededManager()
	s, _ := newResetService(t, rm, &fakeMailer{})

	// A login token signed with the reset key must still fail the purpose
	// check.
	token, err := auth.GenerateToken("u-1", "alice", "alice@example.com", []byte("reset-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	if _, err := s.ResetPassword(context.Background(), token, "NewP4ss$word"); !errors.Is(err, common.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}
