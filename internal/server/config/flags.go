package config

import (
	"flag"
	"os"

	"github.com/Ak2k04/Life-Tracker/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":5000")
//	-d string   PostgreSQL DSN
//	-s string   login JWT HMAC secret key
//	-k string   reset credential HMAC secret key
//	-f string   frontend base URL for reset links
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with the -c/-config flags handled by
// the JSON loader.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-k", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Address, "a", config.Address, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "login token secret key")
	fs.StringVar(&config.ResetSecretKey, "k", config.ResetSecretKey, "reset credential secret key")
	fs.StringVar(&config.FrontendURL, "f", config.FrontendURL, "frontend base URL")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
