package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/Ak2k04/Life-Tracker/internal/flagx"
	"github.com/Ak2k04/Life-Tracker/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "15m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files; after unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	Address             string         `json:"address"`
	DatabaseDSN         string         `json:"database_dsn"`
	SecretKey           string         `json:"secret_key"`
	ResetSecretKey      string         `json:"reset_secret_key"`
	AccessTokenValidity timex.Duration `json:"access_token_validity"`
	ResetTokenValidity  timex.Duration `json:"reset_token_validity"`
	ChallengeValidity   timex.Duration `json:"challenge_validity"`
	BcryptCost          int            `json:"bcrypt_cost"`
	FrontendURL         string         `json:"frontend_url"`
	SMTPHost            string         `json:"smtp_host"`
	SMTPPort            int            `json:"smtp_port"`
	SMTPUser            string         `json:"smtp_user"`
	SMTPPass            string         `json:"smtp_pass"`
	SMTPFrom            string         `json:"smtp_from"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. When no flag is given, nothing
// is loaded. An unreadable or invalid file panics: a half-applied config is
// worse than a crash at startup.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.Address = c.Address
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.ResetSecretKey = c.ResetSecretKey
	config.AccessTokenValidity = time.Duration(c.AccessTokenValidity.Duration)
	config.ResetTokenValidity = time.Duration(c.ResetTokenValidity.Duration)
	config.ChallengeValidity = time.Duration(c.ChallengeValidity.Duration)
	config.BcryptCost = c.BcryptCost
	config.FrontendURL = c.FrontendURL
	config.SMTPHost = c.SMTPHost
	config.SMTPPort = c.SMTPPort
	config.SMTPUser = c.SMTPUser
	config.SMTPPass = c.SMTPPass
	config.SMTPFrom = c.SMTPFrom
}
