// Package config loads runtime configuration for the MedTrack client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config (JSON, YAML or TOML),
//     overlaid with MEDTRACK_CLIENT_* environment variables.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-f string   path of the local session database
//	-i int      email verification poll interval (seconds)
//	-l string   log format: json | console
//
// Example YAML:
//
//	server_endpoint_addr: 127.0.0.1:50051
//	verification_poll_interval: 3s
package config
