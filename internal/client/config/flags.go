package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// The args are filtered with flagx.FilterArgs first, so flags meant for
// other components do not cause errors.
func parseFlags(cfg *Config, argv []string) error {
	args := flagx.FilterArgs(argv, []string{"-a", "-f", "-i", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.SessionDBPath, "f", cfg.SessionDBPath, "session database file")
	pollInterval := fs.Int("i", int(cfg.VerificationPollInterval.Seconds()), "verification poll interval (in seconds)")
	fs.StringVar(&cfg.LogFormat, "l", cfg.LogFormat, "log format")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.VerificationPollInterval = time.Duration(*pollInterval) * time.Second
	return nil
}
