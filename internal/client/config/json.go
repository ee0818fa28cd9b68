package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/example/movequote/internal/flagx"
	"github.com/example/movequote/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "5s"
// or as integer nanoseconds.
type JsonConfig struct {
	AuthBaseURL     string         `json:"auth_base_url"`
	AuthAPIKey      string         `json:"auth_api_key"`
	QuoteAPIBaseURL string         `json:"quote_api_base_url"`
	DatabaseDSN     string         `json:"database_dsn"`
	PollInterval    timex.Duration `json:"poll_interval"`
	RefreshBuffer   timex.Duration `json:"refresh_buffer"`
}

// parseJson overlays cfg with values loaded from the JSON file named by the
// -c/-config flag. Absent fields keep their current values. Panics on read
// or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.AuthBaseURL != "" {
		cfg.AuthBaseURL = jc.AuthBaseURL
	}
	if jc.AuthAPIKey != "" {
		cfg.AuthAPIKey = jc.AuthAPIKey
	}
	if jc.QuoteAPIBaseURL != "" {
		cfg.QuoteAPIBaseURL = jc.QuoteAPIBaseURL
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.PollInterval.Duration != 0 {
		cfg.PollInterval = time.Duration(jc.PollInterval.Duration)
	}
	if jc.RefreshBuffer.Duration != 0 {
		cfg.RefreshBuffer = time.Duration(jc.RefreshBuffer.Duration)
	}
}
