// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// FormVisibility selects when the enrollment form is shown.
type FormVisibility string

const (
	// FormWhenLoggedOut shows the form only while no teacher is logged
	// in. This is the registry web page's long-standing behavior and
	// the default.
	FormWhenLoggedOut FormVisibility = "logged-out"

	// FormWhenLoggedIn shows the form only to a logged-in teacher.
	FormWhenLoggedIn FormVisibility = "logged-in"
)

// Visible reports whether the form is shown for the given auth state.
// Unknown values behave like FormWhenLoggedOut.
func (v FormVisibility) Visible(authenticated bool) bool {
	if v == FormWhenLoggedIn {
		return authenticated
	}
	return !authenticated
}

// Config is the roster viewer's configuration.
type Config struct {
	// Server configures the registry connection.
	Server ServerConfig `yaml:"server"`

	// Credentials configures where the teacher token is kept.
	Credentials CredentialsConfig `yaml:"credentials"`

	// Log configures diagnostic logging.
	Log LogConfig `yaml:"log"`

	// UI configures the terminal interface.
	UI UIConfig `yaml:"ui"`
}

// ServerConfig configures the registry connection.
type ServerConfig struct {
	// URL is the registry base URL.
	// Default: http://localhost:8000
	URL string `yaml:"url"`

	// Timeout bounds each HTTP request, as a Go duration string.
	// Default: "" (no client-side timeout; transport defaults apply)
	Timeout string `yaml:"timeout"`
}

// CredentialsConfig configures token persistence.
type CredentialsConfig struct {
	// Path is the credentials file. Empty selects the default under
	// $XDG_STATE_HOME.
	Path string `yaml:"path"`

	// Ephemeral keeps the token in memory only; nothing is written.
	Ephemeral bool `yaml:"ephemeral"`

	// Identity is an age identity file (age-keygen output). When set,
	// the credentials file is stored encrypted to it.
	Identity string `yaml:"identity"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`

	// Output is a file receiving JSON log records while the viewer
	// runs. Empty disables file logging.
	Output string `yaml:"output"`
}

// UIConfig configures the terminal interface.
type UIConfig struct {
	// FormVisibility is "logged-out" or "logged-in".
	// Default: logged-out
	FormVisibility FormVisibility `yaml:"form_visibility"`
}

// envOverrides lists the environment variables that override file
// values. Unset variables leave the file value alone.
type envOverrides struct {
	Server      string        `env:"BUREAU_ROSTER_SERVER"`
	Credentials string        `env:"BUREAU_ROSTER_CREDENTIALS"`
	Identity    string        `env:"BUREAU_ROSTER_IDENTITY"`
	Timeout     time.Duration `env:"BUREAU_ROSTER_TIMEOUT"`
	LogLevel    string        `env:"BUREAU_ROSTER_LOG_LEVEL"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL: "http://localhost:8000",
		},
		Log: LogConfig{
			Level: "info",
		},
		UI: UIConfig{
			FormVisibility: FormWhenLoggedOut,
		},
	}
}

// Load loads configuration from the file named by BUREAU_ROSTER_CONFIG.
// Fails if the variable is unset; callers that can run without a file
// should check the variable themselves and fall back to Default.
func Load() (*Config, error) {
	configPath := os.Getenv("BUREAU_ROSTER_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("BUREAU_ROSTER_CONFIG environment variable not set; " +
			"set it to the path of your roster.yaml config file, or use --config flag")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path over the defaults and expands
// ${VAR} and ${VAR:-default} patterns in path fields.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// ApplyEnv overrides file values from BUREAU_ROSTER_* environment
// variables.
func (c *Config) ApplyEnv() error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if overrides.Server != "" {
		c.Server.URL = overrides.Server
	}
	if overrides.Credentials != "" {
		c.Credentials.Path = expandVars(overrides.Credentials, nil)
	}
	if overrides.Identity != "" {
		c.Credentials.Identity = expandVars(overrides.Identity, nil)
	}
	if overrides.Timeout != 0 {
		c.Server.Timeout = overrides.Timeout.String()
	}
	if overrides.LogLevel != "" {
		c.Log.Level = overrides.LogLevel
	}
	return nil
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Credentials.Path = expandVars(c.Credentials.Path, vars)
	c.Credentials.Identity = expandVars(c.Credentials.Identity, vars)
	c.Log.Output = expandVars(c.Log.Output, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.URL == "" {
		errs = append(errs, fmt.Errorf("server.url is required"))
	} else if parsed, err := url.Parse(c.Server.URL); err != nil {
		errs = append(errs, fmt.Errorf("server.url: %w", err))
	} else if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		errs = append(errs, fmt.Errorf("server.url must be an http or https URL with a host, got %q", c.Server.URL))
	}

	if c.Server.Timeout != "" {
		timeout, err := time.ParseDuration(c.Server.Timeout)
		if err != nil {
			errs = append(errs, fmt.Errorf("server.timeout: %w", err))
		} else if timeout < 0 {
			errs = append(errs, fmt.Errorf("server.timeout must not be negative, got %s", c.Server.Timeout))
		}
	}

	if c.Credentials.Ephemeral && c.Credentials.Identity != "" {
		errs = append(errs, fmt.Errorf("credentials.identity has no effect with credentials.ephemeral"))
	}

	if !slices.Contains(logLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", logLevels))
	}

	if c.UI.FormVisibility != FormWhenLoggedOut && c.UI.FormVisibility != FormWhenLoggedIn {
		errs = append(errs, fmt.Errorf("ui.form_visibility must be %q or %q, got %q",
			FormWhenLoggedOut, FormWhenLoggedIn, c.UI.FormVisibility))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// RequestTimeout returns the parsed server timeout, or zero when unset
// or invalid. Call Validate first to surface parse errors.
func (c *Config) RequestTimeout() time.Duration {
	if c.Server.Timeout == "" {
		return 0
	}
	timeout, err := time.ParseDuration(c.Server.Timeout)
	if err != nil || timeout < 0 {
		return 0
	}
	return timeout
}

// SlogLevel returns Log.Level as a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
