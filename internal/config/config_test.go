package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lamphost.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", newFlags(t))
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, &want, cfg)
}

func TestLoad_Layering(t *testing.T) {
	path := writeYAML(t, `
plugins_path: /srv/plugins
log_level: debug
log_format: text
healthcheck_port: 8080
relay_url: http://console:3000
`)

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := Load(path, newFlags(t))
		require.NoError(t, err)
		assert.Equal(t, "/srv/plugins", cfg.PluginsPath)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, 8080, cfg.HealthcheckPort)
		assert.Equal(t, "http://console:3000", cfg.RelayURL)
		assert.Equal(t, "/", cfg.RelayNamespace)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("LAMPHOST_LOG_LEVEL", "WARN")
		t.Setenv("LAMPHOST_MAX_DEPTH", "8")

		cfg, err := Load(path, newFlags(t))
		require.NoError(t, err)
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, 8, cfg.MaxDepth)
		assert.Equal(t, "/srv/plugins", cfg.PluginsPath)
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Setenv("LAMPHOST_LOG_LEVEL", "warn")

		cfg, err := Load(path, newFlags(t, "--log-level=error", "--plugins-path=./local"))
		require.NoError(t, err)
		assert.Equal(t, "error", cfg.LogLevel)
		assert.Equal(t, "./local", cfg.PluginsPath)
		assert.Equal(t, 8080, cfg.HealthcheckPort, "unset flags do not override the file")
	})
}

func TestLoad_NilFlags(t *testing.T) {
	t.Setenv("LAMPHOST_RELAY_NAMESPACE", "/ops")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "/ops", cfg.RelayNamespace)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "bad level", args: []string{"--log-level=loud"}, wantErr: "invalid log-level"},
		{name: "bad format", args: []string{"--log-format=xml"}, wantErr: "invalid log-format"},
		{name: "bad port", args: []string{"--healthcheck-port=70000"}, wantErr: "invalid healthcheck-port"},
		{name: "bad depth", args: []string{"--max-depth=0"}, wantErr: "invalid max-depth"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load("", newFlags(t, tc.args...))
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
		assert.ErrorContains(t, err, "failed to read config file")
	})
}
