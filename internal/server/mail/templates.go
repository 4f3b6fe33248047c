package mail

import (
	"html/template"
	"strings"
)

const (
	OTPSubject  = "Your Life Tracker password reset code"
	LinkSubject = "Reset your Life Tracker password"
)

var otpTemplate = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; background-color: #f9fafb; margin: 0; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background-color: #ffffff; padding: 40px; border-radius: 8px;">
    <h2 style="color: #4f46e5; text-align: center; margin-bottom: 24px;">Life Tracker</h2>
    <p style="color: #374151; font-size: 16px; line-height: 1.5;">You requested a password reset for your Life Tracker account.</p>
    <div style="margin: 32px 0; text-align: center;">
      <span style="display: inline-block; padding: 16px 32px; font-size: 32px; font-weight: bold; letter-spacing: 12px; font-family: monospace; background-color: #f3f4f6; border: 2px dashed #4f46e5; border-radius: 8px; color: #111827;">{{.OTP}}</span>
    </div>
    <p style="color: #6b7280; font-size: 14px; text-align: center;">This code expires in 15 minutes.</p>
    <p style="color: #6b7280; font-size: 14px; text-align: center; margin-top: 24px;">If you did not request this, you can safely ignore this email.</p>
  </div>
</body>
</html>
`))

var linkTemplate = template.Must(template.New("link").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; background-color: #f9fafb; margin: 0; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background-color: #ffffff; padding: 40px; border-radius: 8px;">
    <h2 style="color: #4f46e5; text-align: center; margin-bottom: 24px;">Life Tracker</h2>
    <p style="color: #374151; font-size: 16px; line-height: 1.5;">Click the button below to reset your password.</p>
    <div style="margin: 32px 0; text-align: center;">
      <a href="{{.Link}}" style="display: inline-block; padding: 12px 24px; background-color: #4f46e5; color: #ffffff; text-decoration: none; font-weight: 600; border-radius: 6px; font-size: 16px;">Reset My Password</a>
    </div>
    <p style="color: #6b7280; font-size: 14px; text-align: center;">This link expires in 15 minutes and can only be used once.</p>
    <p style="color: #6b7280; font-size: 14px; text-align: center; margin-top: 24px;">If you did not request this, you can safely ignore this email.</p>
  </div>
</body>
</html>
`))

// RenderOTPEmail returns the HTML body carrying a one-time code.
func RenderOTPEmail(otp string) (string, error) {
	var b strings.Builder
	if err := otpTemplate.Execute(&b, struct{ OTP string }{OTP: otp}); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RenderLinkEmail returns the HTML body carrying a reset link.
func RenderLinkEmail(link string) (string, error) {
	var b strings.Builder
	if err := linkTemplate.Execute(&b, struct{ Link string }{Link: link}); err != nil {
		return "", err
	}
	return b.String(), nil
}
