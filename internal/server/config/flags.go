package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/medtrack/internal/flagx"
)

// parseFlags overlays selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   gRPC bind address (e.g. ":50051")
//	-w string   HTTP bind address for action links (e.g. ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-m string   document backend: postgres | firestore
//	-k string   Gemini API key
//	-l string   log format: json | console
//
// Only these flags are looked at, so -c/-config and foreign flags pass through.
func parseFlags(config *Config, argv []string) error {
	args := flagx.FilterArgs(argv, []string{"-a", "-w", "-d", "-s", "-t", "-r", "-u", "-p", "-b", "-g", "-e", "-m", "-k", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessMinutes := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (minutes)")
	refreshMinutes := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.DocumentBackend, "m", config.DocumentBackend, "document backend")
	fs.StringVar(&config.GeminiAPIKey, "k", config.GeminiAPIKey, "Gemini API key")
	fs.StringVar(&config.LogFormat, "l", config.LogFormat, "log format")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.AccessTokenValidityDuration = time.Duration(*accessMinutes) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshMinutes) * time.Minute
	return nil
}
