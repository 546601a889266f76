package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTmpConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeTmpConfig(t, `
acparse:
  transport:
    server_port: 9001
  fragment:
    max_groups: 128
    group_ttl_ms: 5000
  log:
    level: "debug"
    format: "json"
  metrics:
    enabled: true
    addr: "0.0.0.0:9464"
`))
	require.NoError(t, err)

	assert.EqualValues(t, 9001, cfg.Transport.ServerPort)
	assert.Equal(t, 128, cfg.Fragment.MaxGroups)
	assert.Equal(t, 5000, cfg.Fragment.GroupTTLMs)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeTmpConfig(t, `
acparse:
  log:
    level: "info"
    format: "text"
`))
	require.NoError(t, err)

	assert.EqualValues(t, 9000, cfg.Transport.ServerPort)
	assert.Equal(t, 4096, cfg.Fragment.MaxGroups)
	assert.Equal(t, 30000, cfg.Fragment.GroupTTLMs)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadInvalidLogLevel(t *testing.T) {
	_, err := Load(writeTmpConfig(t, `
acparse:
  log:
    level: "verbose"
    format: "text"
`))
	require.Error(t, err)
}

func TestLoadInvalidLogFormat(t *testing.T) {
	_, err := Load(writeTmpConfig(t, `
acparse:
  log:
    level: "info"
    format: "xml"
`))
	require.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ACPARSE_LOG_LEVEL", "debug")

	cfg, err := Load(writeTmpConfig(t, `
acparse:
  log:
    level: "info"
    format: "text"
`))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
}
