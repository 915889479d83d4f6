// Package config loads portalsend.toml and applies PORTALSEND_* environment
// overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/opd-ai/portalsend/interfaces"
	"github.com/sirupsen/logrus"
)

// FileName is the configuration file looked up by Default.
const FileName = "portalsend.toml"

// Bounds for duration settings, in milliseconds.
const (
	MinPresentationDelay = 0
	MaxPresentationDelay = 10000
	MinDismissDelay      = 100
	MaxDismissDelay      = 60000
	MinDialTimeout       = 100
	MaxDialTimeout       = 600000
)

// Config is the full portalsend.toml document.
type Config struct {
	Receiver ReceiverConfig `toml:"receiver"`
	Session  SessionConfig  `toml:"session"`
	Transfer TransferConfig `toml:"transfer"`
	Settings SettingsConfig `toml:"settings"`
	Launcher LauncherConfig `toml:"launcher"`
	Log      LogConfig      `toml:"log"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

// ReceiverConfig configures the receive command.
type ReceiverConfig struct {
	Listen string `toml:"listen"`
	Dir    string `toml:"dir"`
}

// SessionConfig holds send session timings in milliseconds.
type SessionConfig struct {
	PresentationDelay int `toml:"presentation-delay"`
	DismissDelay      int `toml:"dismiss-delay"`
}

// TransferConfig configures the sender.
type TransferConfig struct {
	DialTimeout   int  `toml:"dial-timeout"`
	DefaultPort   int  `toml:"default-port"`
	UseSimulation bool `toml:"use-simulation"`
}

// SettingsConfig locates the settings database.
type SettingsConfig struct {
	Path string `toml:"path"`
}

// LauncherConfig locates the launcher socket.
type LauncherConfig struct {
	Socket string `toml:"socket"`
}

// LogConfig configures logrus.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the built-in configuration. Paths live under the user
// config directory, falling back to the working directory.
func Default() *Config {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	dir := filepath.Join(base, "portalsend")

	return &Config{
		Receiver: ReceiverConfig{Listen: ":8080", Dir: "received"},
		Session:  SessionConfig{PresentationDelay: 300, DismissDelay: 3000},
		Transfer: TransferConfig{DialTimeout: 10000, DefaultPort: 8080},
		Settings: SettingsConfig{Path: filepath.Join(dir, "settings.db")},
		Launcher: LauncherConfig{Socket: filepath.Join(os.TempDir(), "portalsend.sock")},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error when path is empty.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", path, err)
		}
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parse error in %s: %w", path, err)
		}
		cfg.Path = path
	}

	applyEnvironmentOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":     "config.Load",
		"path":         cfg.Path,
		"dial_timeout": cfg.Transfer.DialTimeout,
		"simulation":   cfg.Transfer.UseSimulation,
	}).Debug("Loaded configuration")

	return cfg, nil
}

var (
	// ErrOutOfRange is returned by Validate for a setting outside its bounds
	ErrOutOfRange = errors.New("config value out of range")
	// ErrBadLogFormat is returned for a log format other than text or json
	ErrBadLogFormat = errors.New("log format must be text or json")
)

// Validate checks every bounded setting.
func (c *Config) Validate() error {
	checks := []struct {
		name     string
		value    int
		min, max int
	}{
		{"session.presentation-delay", c.Session.PresentationDelay, MinPresentationDelay, MaxPresentationDelay},
		{"session.dismiss-delay", c.Session.DismissDelay, MinDismissDelay, MaxDismissDelay},
		{"transfer.dial-timeout", c.Transfer.DialTimeout, MinDialTimeout, MaxDialTimeout},
		{"transfer.default-port", c.Transfer.DefaultPort, 1, 65535},
	}
	for _, check := range checks {
		if check.value < check.min || check.value > check.max {
			return fmt.Errorf("%w: %s=%d (want %d..%d)", ErrOutOfRange, check.name, check.value, check.min, check.max)
		}
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("%w: %q", ErrBadLogFormat, c.Log.Format)
	}
	return nil
}

// SenderConfig projects the transfer section for the sender factory.
func (c *Config) SenderConfig() *interfaces.SenderConfig {
	return &interfaces.SenderConfig{
		UseSimulation: c.Transfer.UseSimulation,
		DialTimeout:   c.Transfer.DialTimeout,
	}
}

// PresentationDelay returns the commit animation delay.
func (c *Config) PresentationDelay() time.Duration {
	return time.Duration(c.Session.PresentationDelay) * time.Millisecond
}

// DismissDelay returns how long a failure stays visible.
func (c *Config) DismissDelay() time.Duration {
	return time.Duration(c.Session.DismissDelay) * time.Millisecond
}

// applyEnvironmentOverrides updates configuration based on environment variables.
func applyEnvironmentOverrides(cfg *Config) {
	overrideInt("PORTALSEND_PRESENTATION_DELAY", &cfg.Session.PresentationDelay, MinPresentationDelay, MaxPresentationDelay)
	overrideInt("PORTALSEND_DISMISS_DELAY", &cfg.Session.DismissDelay, MinDismissDelay, MaxDismissDelay)
	overrideInt("PORTALSEND_DIAL_TIMEOUT", &cfg.Transfer.DialTimeout, MinDialTimeout, MaxDialTimeout)
	overrideInt("PORTALSEND_DEFAULT_PORT", &cfg.Transfer.DefaultPort, 1, 65535)
	overrideBool("PORTALSEND_USE_SIMULATION", &cfg.Transfer.UseSimulation)
	overrideString("PORTALSEND_RECEIVER_DIR", &cfg.Receiver.Dir)
	overrideString("PORTALSEND_LISTEN", &cfg.Receiver.Listen)
	overrideString("PORTALSEND_SETTINGS", &cfg.Settings.Path)
	overrideString("PORTALSEND_SOCKET", &cfg.Launcher.Socket)
	overrideString("PORTALSEND_LOG_LEVEL", &cfg.Log.Level)
}

// overrideInt replaces *dst when env holds an integer within [min, max].
// Bad values are logged and ignored.
func overrideInt(env string, dst *int, min, max int) {
	raw := os.Getenv(env)
	if raw == "" {
		return
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "overrideInt",
			"env_var":     env,
			"value":       raw,
			"error":       err.Error(),
			"using_value": *dst,
		}).Warn("Failed to parse environment variable, using default")
		return
	}
	if value < min || value > max {
		logrus.WithFields(logrus.Fields{
			"function":    "overrideInt",
			"env_var":     env,
			"value":       value,
			"min":         min,
			"max":         max,
			"using_value": *dst,
		}).Warn("Environment variable out of bounds, using default")
		return
	}
	*dst = value
}

func overrideBool(env string, dst *bool) {
	raw := os.Getenv(env)
	if raw == "" {
		return
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "overrideBool",
			"env_var":     env,
			"value":       raw,
			"using_value": *dst,
		}).Warn("Failed to parse environment variable, using default")
		return
	}
	*dst = value
}

func overrideString(env string, dst *string) {
	if raw := os.Getenv(env); raw != "" {
		*dst = raw
	}
}
