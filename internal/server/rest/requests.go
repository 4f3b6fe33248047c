package rest

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Ak2k04/Life-Tracker/internal/server/models"
)

var (
	emailRegexp    = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	usernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	otpRegexp      = regexp.MustCompile(`^\d{6}$`)
)

// validPassword enforces the account password policy: at least 8 characters
// with an upper, a lower, a digit and a special character.
func validPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	return upper && lower && digit && special
}

const passwordPolicyMessage = "must be at least 8 characters and include upper case, lower case, a digit and a special character"

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *RegisterRequest) Validate() []FieldError {
	var errs []FieldError
	if !usernameRegexp.MatchString(r.Username) {
		errs = append(errs, FieldError{Field: "username", Message: "must be 3-30 characters, letters, digits and underscores only"})
	}
	if !emailRegexp.MatchString(r.Email) {
		errs = append(errs, FieldError{Field: "email", Message: "must be a valid email address"})
	}
	if !validPassword(r.Password) {
		errs = append(errs, FieldError{Field: "password", Message: passwordPolicyMessage})
	}
	return errs
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (r *LoginRequest) Validate() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(r.Identifier) == "" {
		errs = append(errs, FieldError{Field: "identifier", Message: "is required"})
	}
	if r.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "is required"})
	}
	return errs
}

type ForgotPasswordRequest struct {
	Email  string `json:"email"`
	Method string `json:"method"`
}

func (r *ForgotPasswordRequest) Validate() []FieldError {
	var errs []FieldError
	if !emailRegexp.MatchString(r.Email) {
		errs = append(errs, FieldError{Field: "email", Message: "must be a valid email address"})
	}
	if !models.ResetMethod(r.Method).Valid() {
		errs = append(errs, FieldError{Field: "method", Message: "must be \"otp\" or \"link\""})
	}
	return errs
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (r *VerifyOTPRequest) Validate() []FieldError {
	var errs []FieldError
	if !emailRegexp.MatchString(r.Email) {
		errs = append(errs, FieldError{Field: "email", Message: "must be a valid email address"})
	}
	if !otpRegexp.MatchString(r.OTP) {
		errs = append(errs, FieldError{Field: "otp", Message: "must be a 6-digit code"})
	}
	return errs
}

type ResetPasswordRequest struct {
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}

func (r *ResetPasswordRequest) Validate() []FieldError {
	var errs []FieldError
	if r.ResetToken == "" {
		errs = append(errs, FieldError{Field: "resetToken", Message: "is required"})
	}
	if !validPassword(r.NewPassword) {
		errs = append(errs, FieldError{Field: "newPassword", Message: passwordPolicyMessage})
	}
	return errs
}
