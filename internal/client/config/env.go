package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays cfg with values from environment variables. A .env file
// in the working directory is loaded first if present, without overriding
// variables already set in the process environment. This is the intended
// home for the project API key, which should not live in flags or in a
// committed JSON file.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v, ok := os.LookupEnv("MOVEQUOTE_AUTH_URL"); ok {
		cfg.AuthBaseURL = v
	}
	if v, ok := os.LookupEnv("MOVEQUOTE_AUTH_KEY"); ok {
		cfg.AuthAPIKey = v
	}
	if v, ok := os.LookupEnv("MOVEQUOTE_QUOTE_URL"); ok {
		cfg.QuoteAPIBaseURL = v
	}
	if v, ok := os.LookupEnv("MOVEQUOTE_DATABASE_DSN"); ok {
		cfg.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("MOVEQUOTE_POLL_INTERVAL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.PollInterval = d
		}
	}
	if v, ok := os.LookupEnv("MOVEQUOTE_REFRESH_BUFFER"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RefreshBuffer = d
		}
	}
}
