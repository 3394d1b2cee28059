package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseEnv(t *testing.T) {
	t.Setenv("LIFTAUDIT_SERVER_URL", "https://audits.example.com")
	t.Setenv("LIFTAUDIT_DATABASE_FILE", "env.db")
	t.Setenv("LIFTAUDIT_CHECK_INTERVAL", "7")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "https://audits.example.com", cfg.ServerBaseURL)
	assert.Equal(t, "env.db", cfg.DatabaseFile)
	assert.Equal(t, 7*time.Second, cfg.OnlineCheckInterval)
}

func TestParseEnv_InvalidIntervalIgnored(t *testing.T) {
	t.Setenv("LIFTAUDIT_CHECK_INTERVAL", "soon")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, 3*time.Second, cfg.OnlineCheckInterval)
}
