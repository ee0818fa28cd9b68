// Package config loads runtime configuration for the movequote CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables, with an optional .env file (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the auth service
//	-q string   base URL of the quote backend
//	-d string   sqlite DSN for the local cache
//	-p int      inquiry poll interval (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "5s" or integer nanoseconds:
//
//	{
//	  "auth_base_url": "https://project.example.co",
//	  "auth_api_key": "anon-key",
//	  "quote_api_base_url": "http://127.0.0.1:8000",
//	  "database_dsn": "movequote.db",
//	  "poll_interval": "5s",
//	  "refresh_buffer": "5m"
//	}
//
// Environment variables
//
//	MOVEQUOTE_AUTH_URL, MOVEQUOTE_AUTH_KEY, MOVEQUOTE_QUOTE_URL,
//	MOVEQUOTE_DATABASE_DSN, MOVEQUOTE_POLL_INTERVAL, MOVEQUOTE_REFRESH_BUFFER
package config
