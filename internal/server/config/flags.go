package config

import (
	"flag"
	"os"

	"github.com/osenouci/tokenkeeper/internal/flagx"
	"github.com/osenouci/tokenkeeper/internal/timex"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC signing secret
//	-t string   access token lifetime ("1d", "45m", ...)
//	-r string   refresh token lifetime ("30d", ...)
//	-n int      refresh token nonce length, bytes
//	-w int      renewal window, days before refresh expiry
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-r", "-n", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SigningSecret, "s", config.SigningSecret, "token signing secret")

	accessTTL := fs.String("t", config.AccessTokenTTL.String(), "access token lifetime")
	refreshTTL := fs.String("r", config.RefreshTokenTTL.String(), "refresh token lifetime")

	fs.IntVar(&config.RefreshTokenNonceLength, "n", config.RefreshTokenNonceLength, "refresh token nonce length (bytes)")
	fs.IntVar(&config.RenewalWindowDays, "w", config.RenewalWindowDays, "renewal window (days)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	if d, err := timex.ParseDuration(*accessTTL); err == nil {
		config.AccessTokenTTL = d
	}
	if d, err := timex.ParseDuration(*refreshTTL); err == nil {
		config.RefreshTokenTTL = d
	}
}
