package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEnv_OverridesSetValues(t *testing.T) {
	t.Setenv("ADDRESS", ":8080")
	t.Setenv("DATABASE_DSN", "postgres://env")
	t.Setenv("SECRET_KEY", "env-secret")
	t.Setenv("RESET_SECRET_KEY", "env-reset-secret")
	t.Setenv("FRONTEND_URL", "https://env.example.com")
	t.Setenv("SMTP_HOST", "mail.example.com")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("SMTP_USER", "mailer")
	t.Setenv("SMTP_PASS", "hunter2")
	t.Setenv("SMTP_FROM", "noreply@example.com")

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, ":8080", c.Address)
	assert.Equal(t, "postgres://env", c.DatabaseDSN)
	assert.Equal(t, "env-secret", c.SecretKey)
	assert.Equal(t, "env-reset-secret", c.ResetSecretKey)
	assert.Equal(t, "https://env.example.com", c.FrontendURL)
	assert.Equal(t, "mail.example.com", c.SMTPHost)
	assert.Equal(t, 465, c.SMTPPort)
	assert.Equal(t, "mailer", c.SMTPUser)
	assert.Equal(t, "hunter2", c.SMTPPass)
	assert.Equal(t, "noreply@example.com", c.SMTPFrom)
}

func TestParseEnv_UnsetLeavesDefaults(t *testing.T) {
	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, ":5000", c.Address)
	assert.Equal(t, 587, c.SMTPPort)
}

func TestParseEnv_InvalidPortIgnored(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-port")

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, 587, c.SMTPPort)
}
