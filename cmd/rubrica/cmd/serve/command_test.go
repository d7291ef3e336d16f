package serve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rubrica/internal/cmd/application"
	"github.com/agentstation/rubrica/pkg/errors"
)

func TestParseConfigDefaults(t *testing.T) {
	t.Setenv("HTTP_HOST", "")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("RUBRICA_AUTH_TOKEN", "")

	cmd := NewCommand(&application.Mock{})
	require.NoError(t, cmd.ParseFlags(nil))

	cfg, err := parseConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 60, cfg.RateLimit)
	assert.Equal(t, 15*time.Minute, cfg.WriteTimeout)
	assert.Empty(t, cfg.AuthToken)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestParseConfigEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_HOST", "0.0.0.0")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("RUBRICA_AUTH_TOKEN", "from-env")

	cmd := NewCommand(&application.Mock{})
	require.NoError(t, cmd.ParseFlags(nil))

	cfg, err := parseConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "from-env", cfg.AuthToken)
}

func TestParseConfigFlagsWin(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("RUBRICA_AUTH_TOKEN", "from-env")

	cmd := NewCommand(&application.Mock{})
	require.NoError(t, cmd.ParseFlags([]string{"--port", "7000", "--auth-token", "flag", "--rate-limit", "0", "--static-dir", "./web"}))

	cfg, err := parseConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "flag", cfg.AuthToken)
	assert.Equal(t, 0, cfg.RateLimit)
	assert.Equal(t, "./web", cfg.StaticDir)
}

func TestParseConfigTrustedProxies(t *testing.T) {
	t.Setenv("HTTP_PORT", "")

	cmd := NewCommand(&application.Mock{})
	require.NoError(t, cmd.ParseFlags([]string{"--trusted-proxies", "10.0.0.0/8,127.0.0.1"}))

	cfg, err := parseConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.TrustedProxies)
}

func TestParseConfigRejectsBadValues(t *testing.T) {
	t.Setenv("HTTP_PORT", "")

	cmd := NewCommand(&application.Mock{})
	require.NoError(t, cmd.ParseFlags([]string{"--port", "70000"}))
	_, err := parseConfig(cmd)
	assert.Error(t, err)

	t.Setenv("HTTP_PORT", "nope")
	cmd = NewCommand(&application.Mock{})
	require.NoError(t, cmd.ParseFlags(nil))
	_, err = parseConfig(cmd)
	assert.Error(t, err)
}

func TestParsePort(t *testing.T) {
	p, err := parsePort("8081")
	require.NoError(t, err)
	assert.Equal(t, 8081, p)

	_, err = parsePort("0")
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	_, err = parsePort("abc")
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Contains(t, err.Error(), "port")
}
