package config

import (
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

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, "medtrack_session.db", c.SessionDBPath)
	assert.Equal(t, 3*time.Second, c.VerificationPollInterval)
}

func TestLoad_NoSourcesKeepsDefaults(t *testing.T) {
	c, err := load(nil)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, c)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_endpoint_addr: api:9000\nverification_poll_interval: 10s\n"), 0o600))
	t.Setenv("MEDTRACK_CLIENT_SESSION_DB_PATH", "/tmp/s.db")

	c, err := load([]string{"-c", path, "-l", "json"})
	require.NoError(t, err)

	assert.Equal(t, "api:9000", c.ServerEndpointAddr)
	assert.Equal(t, 10*time.Second, c.VerificationPollInterval)
	assert.Equal(t, "/tmp/s.db", c.SessionDBPath)
	assert.Equal(t, "json", c.LogFormat)
}
