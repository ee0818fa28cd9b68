package config

import (
	"flag"
	"os"
	"time"

	"github.com/example/movequote/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the auth service
//	-q string   base URL of the quote backend
//	-d string   sqlite DSN for the local cache
//	-p int      inquiry poll interval in seconds
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-q", "-d", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.AuthBaseURL, "a", cfg.AuthBaseURL, "base URL of the auth service")
	fs.StringVar(&cfg.QuoteAPIBaseURL, "q", cfg.QuoteAPIBaseURL, "base URL of the quote backend")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "sqlite DSN for the local cache")
	pollInterval := fs.Int("p", int(cfg.PollInterval.Seconds()), "inquiry poll interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.PollInterval = time.Duration(*pollInterval) * time.Second
}
