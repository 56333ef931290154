package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("CHARGE_CONFIG", "")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 0, cfg.CentralServer.Retries)
	assert.Equal(t, []time.Duration{200 * time.Millisecond, 500 * time.Millisecond, time.Second}, cfg.CentralServer.Backoff)
	assert.Equal(t, uint32(5), cfg.CentralServer.Breaker.MinRequests)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "dev", cfg.Auth.DevActor.ID)
	assert.Equal(t, 30, cfg.RateLimit.RequestsPerMin)
	assert.False(t, cfg.Database.Enabled)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
http:
  addr: ":9090"
centralServer:
  baseURL: https://central.example.com
  retries: 2
  timeout: 5s
auth:
  enabled: true
  jwtSecret: from-file
`)
	t.Setenv("CHARGE_AUTH_JWTSECRET", "from-env")
	t.Setenv("CHARGE_SESSION_TTL", "5m")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "https://central.example.com", cfg.CentralServer.BaseURL)
	assert.Equal(t, 2, cfg.CentralServer.Retries)
	assert.Equal(t, 5*time.Second, cfg.CentralServer.Timeout)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 5*time.Minute, cfg.Session.TTL)
}

func TestLoad_ConfigFromEnvPath(t *testing.T) {
	path := writeConfig(t, "app:\n  name: from-env-path\n")
	t.Setenv("CHARGE_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env-path", cfg.App.Name)
}

func TestLoad_InvalidFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "http: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{CentralServer: CentralServerConfig{BaseURL: "http://x"}}
	}

	c := base()
	assert.NoError(t, c.Validate())

	c = base()
	c.CentralServer.BaseURL = " "
	assert.ErrorContains(t, c.Validate(), "baseURL")

	c = base()
	c.Auth.Enabled = true
	assert.ErrorContains(t, c.Validate(), "jwtSecret")

	c = base()
	c.Database = DatabaseConfig{Enabled: true}
	assert.ErrorContains(t, c.Validate(), "dsn")

	c = base()
	c.CentralServer.Retries = -1
	assert.ErrorContains(t, c.Validate(), "retries")
}
