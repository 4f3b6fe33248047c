package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseJson_LoadsAllFields(t *testing.T) {
	path := writeTempConfig(t, `{
		"address": ":7070",
		"database_dsn": "postgres://json",
		"secret_key": "json-secret",
		"reset_secret_key": "json-reset",
		"access_token_validity": "168h",
		"reset_token_validity": "5m",
		"challenge_validity": "15m",
		"bcrypt_cost": 12,
		"frontend_url": "https://json.example.com",
		"smtp_host": "smtp.example.com",
		"smtp_port": 2525,
		"smtp_user": "u",
		"smtp_pass": "p",
		"smtp_from": "from@example.com"
	}`)

	origArgs := os.Args
	os.Args = []string{"cmd", "-c", path}
	defer func() { os.Args = origArgs }()

	config := &Config{}
	parseJson(config)

	assert.Equal(t, ":7070", config.Address)
	assert.Equal(t, "postgres://json", config.DatabaseDSN)
	assert.Equal(t, "json-secret", config.SecretKey)
	assert.Equal(t, "json-reset", config.ResetSecretKey)
	assert.Equal(t, 168*time.Hour, config.AccessTokenValidity)
	assert.Equal(t, 5*time.Minute, config.ResetTokenValidity)
	assert.Equal(t, 15*time.Minute, config.ChallengeValidity)
	assert.Equal(t, 12, config.BcryptCost)
	assert.Equal(t, "https://json.example.com", config.FrontendURL)
	assert.Equal(t, "smtp.example.com", config.SMTPHost)
	assert.Equal(t, 2525, config.SMTPPort)
}

func TestParseJson_NoFlagDoesNothing(t *testing.T) {
	origArgs := os.Args
	os.Args = []string{"cmd"}
	defer func() { os.Args = origArgs }()

	config := &Config{Address: ":5000"}
	parseJson(config)

	assert.Equal(t, ":5000", config.Address)
}

func TestParseJson_InvalidFilePanics(t *testing.T) {
	path := writeTempConfig(t, `{not json`)

	origArgs := os.Args
	os.Args = []string{"cmd", "-c", path}
	defer func() { os.Args = origArgs }()

	require.Panics(t, func() { parseJson(&Config{}) })
}
