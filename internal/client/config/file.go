package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/flagx"
	"github.com/spf13/viper"
)

const EnvPrefix = "MEDTRACK_CLIENT"

// FileConfig is decoded by viper; intervals accept strings such as "3s".
type FileConfig struct {
	ServerEndpointAddr       string        `mapstructure:"server_endpoint_addr"`
	SessionDBPath            string        `mapstructure:"session_db_path"`
	VerificationPollInterval time.Duration `mapstructure:"verification_poll_interval"`
	LogFormat                string        `mapstructure:"log_format"`
	LogLevel                 string        `mapstructure:"log_level"`
}

func parseFile(cfg *Config, args []string) error {
	v := viper.New()
	v.SetDefault("server_endpoint_addr", cfg.ServerEndpointAddr)
	v.SetDefault("session_db_path", cfg.SessionDBPath)
	v.SetDefault("verification_poll_interval", cfg.VerificationPollInterval)
	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("log_level", cfg.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := flagx.ConfigFileFlag(args); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var fc FileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	cfg.ServerEndpointAddr = fc.ServerEndpointAddr
	cfg.SessionDBPath = fc.SessionDBPath
	cfg.VerificationPollInterval = fc.VerificationPollInterval
	cfg.LogFormat = fc.LogFormat
	cfg.LogLevel = fc.LogLevel
	return nil
}
