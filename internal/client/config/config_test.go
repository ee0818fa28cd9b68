package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:54321", c.AuthBaseURL)
	assert.Equal(t, "http://127.0.0.1:8000", c.QuoteAPIBaseURL)
	assert.Equal(t, "movequote.db", c.DatabaseDSN)
	assert.Equal(t, 5*time.Second, c.PollInterval)
	assert.Equal(t, 5*time.Minute, c.RefreshBuffer)
	assert.Empty(t, c.AuthAPIKey, "the API key must never have a default")
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://127.0.0.1:54321", cfg.AuthBaseURL)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
}

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"auth_base_url": "https://project.example.co",
		"auth_api_key":  "anon-key",
		"poll_interval": "10s",
	})

	t.Run("loads from flags", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "https://project.example.co", cfg.AuthBaseURL)
		assert.Equal(t, "anon-key", cfg.AuthAPIKey)
		assert.Equal(t, 10*time.Second, cfg.PollInterval)
		assert.Equal(t, "movequote.db", cfg.DatabaseDSN, "absent fields keep defaults")
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{AuthBaseURL: "defaults:1234", PollInterval: 42 * time.Second}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.AuthBaseURL)
		assert.Equal(t, 42*time.Second, cfg.PollInterval)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}

func Test_parseEnv(t *testing.T) {
	t.Setenv("MOVEQUOTE_AUTH_KEY", "env-key")
	t.Setenv("MOVEQUOTE_POLL_INTERVAL", "7s")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, "env-key", cfg.AuthAPIKey)
	assert.Equal(t, 7*time.Second, cfg.PollInterval)
	assert.Equal(t, "http://127.0.0.1:54321", cfg.AuthBaseURL, "unset vars keep earlier values")
}

func Test_parseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-q", "http://quotes:8000", "-p", "30"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, "http://quotes:8000", cfg.QuoteAPIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, "http://127.0.0.1:54321", cfg.AuthBaseURL)
}
