package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/osenouci/tokenkeeper/internal/flagx"
	"github.com/osenouci/tokenkeeper/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for lifetime fields, which allows parsing both
// string values such as "1d" or "30m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr            string         `json:"endpoint_addr"`
	DatabaseDSN             string         `json:"database_dsn"`
	SigningSecret           string         `json:"signing_secret"`
	AccessTokenTTL          timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL         timex.Duration `json:"refresh_token_ttl"`
	RefreshTokenNonceLength int            `json:"refresh_token_nonce_length"`
	RenewalWindowDays       int            `json:"renewal_window_days"`
	MinPasswordLength       int            `json:"min_password_length"`
	AccessTokenHeader       string         `json:"access_token_header"`
	RefreshTokenHeader      string         `json:"refresh_token_header"`
	RefreshExpiredHeader    string         `json:"refresh_expired_header"`
	DeviceNameHeader        string         `json:"device_name_header"`
	DeviceSignatureHeader   string         `json:"device_signature_header"`
	GoogleTokenInfoURL      string         `json:"google_tokeninfo_url"`
	FacebookGraphURL        string         `json:"facebook_graph_url"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The lookup order for the JSON file path is:
//
//	The -c or -config command-line flags.
//	If it is not set, no JSON file is loaded.
//
// If the file cannot be read or contains invalid JSON, the function panics.
// Zero values in the file leave the corresponding Config field untouched so
// a partial overlay stays partial.
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

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SigningSecret != "" {
		config.SigningSecret = c.SigningSecret
	}
	if c.AccessTokenTTL.Duration != 0 {
		config.AccessTokenTTL = time.Duration(c.AccessTokenTTL.Duration)
	}
	if c.RefreshTokenTTL.Duration != 0 {
		config.RefreshTokenTTL = time.Duration(c.RefreshTokenTTL.Duration)
	}
	if c.RefreshTokenNonceLength != 0 {
		config.RefreshTokenNonceLength = c.RefreshTokenNonceLength
	}
	if c.RenewalWindowDays != 0 {
		config.RenewalWindowDays = c.RenewalWindowDays
	}
	if c.MinPasswordLength != 0 {
		config.MinPasswordLength = c.MinPasswordLength
	}
	if c.AccessTokenHeader != "" {
		config.AccessTokenHeader = c.AccessTokenHeader
	}
	if c.RefreshTokenHeader != "" {
		config.RefreshTokenHeader = c.RefreshTokenHeader
	}
	if c.RefreshExpiredHeader != "" {
		config.RefreshExpiredHeader = c.RefreshExpiredHeader
	}
	if c.DeviceNameHeader != "" {
		config.DeviceNameHeader = c.DeviceNameHeader
	}
	if c.DeviceSignatureHeader != "" {
		config.DeviceSignatureHeader = c.DeviceSignatureHeader
	}
	if c.GoogleTokenInfoURL != "" {
		config.GoogleTokenInfoURL = c.GoogleTokenInfoURL
	}
	if c.FacebookGraphURL != "" {
		config.FacebookGraphURL = c.FacebookGraphURL
	}
}
