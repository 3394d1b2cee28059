package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays cfg with environment variables, loading a .env file from
// the working directory first when one exists. A missing .env is fine.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("LIFTAUDIT_SERVER_URL"); v != "" {
		cfg.ServerBaseURL = v
	}
	if v := os.Getenv("LIFTAUDIT_DATABASE_FILE"); v != "" {
		cfg.DatabaseFile = v
	}
	if v := os.Getenv("LIFTAUDIT_CHECK_INTERVAL"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.OnlineCheckInterval = time.Duration(secs) * time.Second
		}
	}
}
