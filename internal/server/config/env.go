package config

import (
	"os"
	"strconv"
	"time"

	"github.com/osenouci/tokenkeeper/internal/timex"
)

// parseEnv overlays configuration values from environment variables. The
// variable names follow the original deployment's conventions; lifetimes
// accept day-suffix strings ("1d", "30d") as well as Go duration syntax.
func parseEnv(config *Config) {
	setString(&config.EndpointAddr, "ENDPOINT_ADDR")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.SigningSecret, "SIGNING_SECRET")
	setDuration(&config.AccessTokenTTL, "ACCESS_TOKEN_TTL")
	setDuration(&config.RefreshTokenTTL, "REFRESH_TOKEN_TTL")
	setInt(&config.RefreshTokenNonceLength, "REFRESH_TOKEN_LENGTH")
	setInt(&config.RenewalWindowDays, "RENEWAL_PERIOD_DAYS")
	setInt(&config.MinPasswordLength, "MIN_PASSWORD_LENGTH")
	setString(&config.AccessTokenHeader, "ACCESS_TOKEN_HEADER")
	setString(&config.RefreshTokenHeader, "REFRESH_TOKEN_HEADER")
	setString(&config.RefreshExpiredHeader, "REFRESH_EXPIRED_HEADER")
	setString(&config.DeviceNameHeader, "DEVICE_NAME_HEADER")
	setString(&config.DeviceSignatureHeader, "DEVICE_SIGNATURE_HEADER")
	setString(&config.GoogleTokenInfoURL, "GOOGLE_TOKENINFO_URL")
	setString(&config.FacebookGraphURL, "FACEBOOK_GRAPH_URL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := timex.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
