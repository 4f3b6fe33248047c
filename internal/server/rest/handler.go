package rest

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Ak2k04/Life-Tracker/internal/common"
	"github.com/Ak2k04/Life-Tracker/internal/server/models"
)

// UserService is the account surface the handlers need.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (string, error)
	Login(ctx context.Context, identifier, password string) (string, *models.User, error)
}

// PasswordResetService is the reset flow surface the handlers need.
type PasswordResetService interface {
	Forgot(ctx context.Context, email string, method models.ResetMethod) (string, error)
	VerifyOTP(ctx context.Context, email, otp string) (string, error)
	ValidateResetLink(ctx context.Context, rawToken, userID string) (string, error)
	ResetPassword(ctx context.Context, resetToken, newPassword string) (string, error)
}

type userPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (s *RestServer) register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := req.Validate(); len(errs) > 0 {
		return respondFieldErrors(c, errs)
	}

	msg, err := s.users.Register(c.UserContext(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrEmailTaken):
			return respondError(c, fiber.StatusConflict, "Email already registered")
		case errors.Is(err, common.ErrUsernameTaken):
			return respondError(c, fiber.StatusConflict, "Username already taken")
		}
		return err
	}

	s.logger.Info(c.UserContext(), "account registered", "username", req.Username)
	return respondOK(c, fiber.StatusCreated, msg, nil)
}

func (s *RestServer) login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := req.Validate(); len(errs) > 0 {
		return respondFieldErrors(c, errs)
	}

	token, user, err := s.users.Login(c.UserContext(), req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return respondError(c, fiber.StatusUnauthorized, "Invalid credentials")
		}
		return err
	}

	return respondOK(c, fiber.StatusOK, "", fiber.Map{
		"token": token,
		"user":  userPayload{ID: user.ID, Username: user.Username, Email: user.Email},
	})
}

func (s *RestServer) me(c *fiber.Ctx) error {
	claims, ok := claimsFromCtx(c)
	if !ok {
		return respondError(c, fiber.StatusUnauthorized, "Authentication required")
	}
	return respondOK(c, fiber.StatusOK, "", userPayload{
		ID:       claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
	})
}

func (s *RestServer) forgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := req.Validate(); len(errs) > 0 {
		return respondFieldErrors(c, errs)
	}

	msg, err := s.resets.Forgot(c.UserContext(), req.Email, models.ResetMethod(req.Method))
	if err != nil {
		return err
	}
	return respondOK(c, fiber.StatusOK, msg, nil)
}

func (s *RestServer) verifyOTP(c *fiber.Ctx) error {
	var req VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := req.Validate(); len(errs) > 0 {
		return respondFieldErrors(c, errs)
	}

	token, err := s.resets.VerifyOTP(c.UserContext(), req.Email, req.OTP)
	if err != nil {
		if errors.Is(err, common.ErrInvalidChallenge) {
			return respondError(c, fiber.StatusBadRequest, "OTP has expired or is invalid")
		}
		return err
	}
	return respondOK(c, fiber.StatusOK, "", fiber.Map{"resetToken": token})
}

func (s *RestServer) validateResetLink(c *fiber.Ctx) error {
	rawToken := c.Query("token")
	uid := c.Query("uid")
	if rawToken == "" || uid == "" {
		// Same wording as a failed lookup so the URL shape leaks nothing.
		return respondError(c, fiber.StatusBadRequest, "Link expired or invalid")
	}
	// A non-uuid uid cannot match any account; reject it here instead of
	// letting the database report it as a syntax error.
	if _, err := uuid.Parse(uid); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Link expired or invalid")
	}

	token, err := s.resets.ValidateResetLink(c.UserContext(), rawToken, uid)
	if err != nil {
		if errors.Is(err, common.ErrInvalidChallenge) {
			return respondError(c, fiber.StatusBadRequest, "Link expired or invalid")
		}
		return err
	}
	return respondOK(c, fiber.StatusOK, "", fiber.Map{"resetToken": token})
}

func (s *RestServer) resetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := req.Validate(); len(errs) > 0 {
		return respondFieldErrors(c, errs)
	}

	msg, err := s.resets.ResetPassword(c.UserContext(), req.ResetToken, req.NewPassword)
	if err != nil {
		if errors.Is(err, common.ErrSessionExpired) {
			return respondError(c, fiber.StatusBadRequest, "Invalid or expired reset session")
		}
		return err
	}

	return respondOK(c, fiber.StatusOK, msg, nil)
}

func (s *RestServer) health(c *fiber.Ctx) error {
	return respondOK(c, fiber.StatusOK, "", fiber.Map{"status": "ok"})
}

func (s *RestServer) banner(c *fiber.Ctx) error {
	return respondOK(c, fiber.StatusOK, "Life Tracker API", nil)
}
