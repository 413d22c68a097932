package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the MedTrack client.
type Config struct {
	ServerEndpointAddr       string
	SessionDBPath            string
	VerificationPollInterval time.Duration
	LogFormat                string
	LogLevel                 string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.SessionDBPath = "medtrack_session.db"
	c.VerificationPollInterval = 3 * time.Second
	c.LogFormat = "console"
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the config file and environment and finally command-line flags. Later
// sources take precedence over earlier ones. It panics on bad input.
func LoadConfig() *Config {
	cfg, err := load(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return cfg
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
