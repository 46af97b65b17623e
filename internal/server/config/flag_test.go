package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_parseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin",
		"-a", ":7070",
		"-d", "postgres://flags/db",
		"-s", "flag-secret",
		"-t", "12h",
		"-r", "14d",
		"-n", "16",
		"-w", "2",
	}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":7070", cfg.EndpointAddr)
	assert.Equal(t, "postgres://flags/db", cfg.DatabaseDSN)
	assert.Equal(t, "flag-secret", cfg.SigningSecret)
	assert.Equal(t, 12*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 14*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 16, cfg.RefreshTokenNonceLength)
	assert.Equal(t, 2, cfg.RenewalWindowDays)
}

func Test_parseFlags_IgnoresForeignFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-a", ":7070", "-unknown", "x"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, ":7070", cfg.EndpointAddr)
}
