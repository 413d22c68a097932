package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected *Config
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{
				"-a", "127.0.0.1:9090", "-w", ":8181", "-d", "db", "-s", "secret",
				"-t", "1", "-r", "3", "-u", "user", "-p", "password", "-b", "bucket",
				"-g", "us-west-1", "-e", "http://endpoint", "-m", "firestore", "-k", "gem", "-l", "console",
			},
			expected: &Config{
				EndpointAddrGRPC:             "127.0.0.1:9090",
				EndpointAddrHTTP:             ":8181",
				DatabaseDSN:                  "db",
				SecretKey:                    "secret",
				AccessTokenValidityDuration:  1 * time.Minute,
				RefreshTokenValidityDuration: 3 * time.Minute,
				S3RootUser:                   "user",
				S3RootPassword:               "password",
				S3Bucket:                     "bucket",
				S3Region:                     "us-west-1",
				S3BaseEndpoint:               "http://endpoint",
				DocumentBackend:              "firestore",
				GeminiAPIKey:                 "gem",
				LogFormat:                    "console",
			},
		},
		{
			name: "foreign flags are ignored",
			args: []string{"-c", "cfg.yaml", "-x", "1", "-a", ":1"},
			expected: &Config{
				EndpointAddrGRPC: ":1",
			},
		},
		{
			name:    "bad integer",
			args:    []string{"-t", "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}
			err := parseFlags(config, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
