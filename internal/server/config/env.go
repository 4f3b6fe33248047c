package config

import (
	"os"
	"strconv"
)

// parseEnv overlays configuration values from environment variables.
// Unset variables leave the current value untouched.
//
// Recognized variables: ADDRESS, DATABASE_DSN, SECRET_KEY, RESET_SECRET_KEY,
// FRONTEND_URL, SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS, SMTP_FROM.
func parseEnv(config *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	setString("ADDRESS", &config.Address)
	setString("DATABASE_DSN", &config.DatabaseDSN)
	setString("SECRET_KEY", &config.SecretKey)
	setString("RESET_SECRET_KEY", &config.ResetSecretKey)
	setString("FRONTEND_URL", &config.FrontendURL)
	setString("SMTP_HOST", &config.SMTPHost)
	setString("SMTP_USER", &config.SMTPUser)
	setString("SMTP_PASS", &config.SMTPPass)
	setString("SMTP_FROM", &config.SMTPFrom)

	if v, ok := os.LookupEnv("SMTP_PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			config.SMTPPort = port
		}
	}
}
