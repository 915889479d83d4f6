package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORTALSEND_PRESENTATION_DELAY", "PORTALSEND_DISMISS_DELAY", "PORTALSEND_DIAL_TIMEOUT",
	"PORTALSEND_DEFAULT_PORT", "PORTALSEND_USE_SIMULATION", "PORTALSEND_RECEIVER_DIR",
	"PORTALSEND_LISTEN", "PORTALSEND_SETTINGS", "PORTALSEND_SOCKET", "PORTALSEND_LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 300*time.Millisecond, cfg.PresentationDelay())
	assert.Equal(t, 3*time.Second, cfg.DismissDelay())
	assert.Equal(t, 10000, cfg.Transfer.DialTimeout)
	assert.Equal(t, 8080, cfg.Transfer.DefaultPort)
	assert.False(t, cfg.Transfer.UseSimulation)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Empty(t, cfg.Path)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[session]
dismiss-delay = 1500

[transfer]
dial-timeout = 2500
use-simulation = true

[receiver]
dir = "/tmp/inbox"

[log]
format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1500, cfg.Session.DismissDelay)
	assert.Equal(t, 300, cfg.Session.PresentationDelay, "unset keys keep defaults")
	assert.Equal(t, 2500, cfg.Transfer.DialTimeout)
	assert.True(t, cfg.Transfer.UseSimulation)
	assert.Equal(t, "/tmp/inbox", cfg.Receiver.Dir)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, path, cfg.Path)

	sc := cfg.SenderConfig()
	assert.True(t, sc.UseSimulation)
	assert.Equal(t, 2500, sc.DialTimeout)
	assert.NoError(t, sc.Validate())
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "[session\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "[transfer]\ndial-timeout = 5\n"))
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = Load(writeConfig(t, "[log]\nformat = \"xml\"\n"))
	assert.ErrorIs(t, err, ErrBadLogFormat)
}

func TestEnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid values applied",
			env: map[string]string{
				"PORTALSEND_DISMISS_DELAY":  "500",
				"PORTALSEND_USE_SIMULATION": "true",
				"PORTALSEND_SOCKET":         "/tmp/x.sock",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 500, cfg.Session.DismissDelay)
				assert.True(t, cfg.Transfer.UseSimulation)
				assert.Equal(t, "/tmp/x.sock", cfg.Launcher.Socket)
			},
		},
		{
			name: "out of bounds ignored",
			env:  map[string]string{"PORTALSEND_DIAL_TIMEOUT": "1", "PORTALSEND_DEFAULT_PORT": "99999"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 10000, cfg.Transfer.DialTimeout)
				assert.Equal(t, 8080, cfg.Transfer.DefaultPort)
			},
		},
		{
			name: "unparsable ignored",
			env:  map[string]string{"PORTALSEND_PRESENTATION_DELAY": "soon", "PORTALSEND_USE_SIMULATION": "perhaps"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 300, cfg.Session.PresentationDelay)
				assert.False(t, cfg.Transfer.UseSimulation)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load("")
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestEnvironmentBeatsFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORTALSEND_DIAL_TIMEOUT", "4000")
	cfg, err := Load(writeConfig(t, "[transfer]\ndial-timeout = 2500\n"))
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Transfer.DialTimeout)
}
