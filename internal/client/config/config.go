package config

import "time"

// Config holds runtime settings for the movequote CLI.
//
// Fields:
//   - AuthBaseURL: base URL of the hosted auth service.
//   - AuthAPIKey: project API key sent with every auth and data store request.
//   - QuoteAPIBaseURL: base URL of the quote backend.
//   - DatabaseDSN: sqlite DSN for the local cache database.
//   - PollInterval: how often inquiry rows are re-fetched while watching.
//   - RefreshBuffer: how close to expiry a session token is refreshed.
type Config struct {
	AuthBaseURL     string
	AuthAPIKey      string
	QuoteAPIBaseURL string
	DatabaseDSN     string
	PollInterval    time.Duration
	RefreshBuffer   time.Duration
}

// LoadDefaults populates Config with development defaults. The API key has
// no sensible default and must come from JSON, environment, or flags.
func (c *Config) LoadDefaults() {
	c.AuthBaseURL = "http://127.0.0.1:54321"
	c.QuoteAPIBaseURL = "http://127.0.0.1:8000"
	c.DatabaseDSN = "movequote.db"
	c.PollInterval = 5 * time.Second
	c.RefreshBuffer = 5 * time.Minute
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, environment variables, and finally
// command-line flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
