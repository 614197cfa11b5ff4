// Package config resolves tada settings. Sources are applied in order,
// later ones winning:
//  1. Defaults
//  2. User file (~/.tada/config.toml, or $TADA_HOME/config.toml)
//  3. Project file (./tada.toml)
//  4. File given with --config
//  5. Environment (TADA_*)
//  6. Command-line flags (applied by the cli package)
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultBaseURL   = "https://jsonplaceholder.typicode.com"
	DefaultUserID    = 1
	DefaultTimeout   = 10 * time.Second
	DefaultTheme     = "classic"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	userFileName    = "config.toml"
	projectFileName = "tada.toml"
)

// Duration decodes "5s"-style strings from TOML and env.
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

type Config struct {
	BaseURL      string   `toml:"base_url"`
	UserID       int      `toml:"user_id"`
	Timeout      Duration `toml:"timeout"`
	StrictSchema bool     `toml:"strict_schema"`
	Theme        string   `toml:"theme"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogFile   string `toml:"log_file"` // empty: stderr for commands, Dir()/tada.log for the TUI

	// Files that were actually read, in order.
	Files []string `toml:"-"`
}

func Default() *Config {
	return &Config{
		BaseURL:   DefaultBaseURL,
		UserID:    DefaultUserID,
		Timeout:   Duration{DefaultTimeout},
		Theme:     DefaultTheme,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
	}
}

// Load resolves defaults, files and environment. explicit may be empty.
func Load(explicit string) (*Config, error) {
	user := ""
	if dir, err := Dir(); err == nil {
		user = filepath.Join(dir, userFileName)
	}
	return load([]string{user, projectFileName}, explicit, os.Getenv)
}

func load(optional []string, explicit string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	for _, p := range optional {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if err := decodeFile(cfg, p); err != nil {
			return nil, err
		}
	}
	if explicit != "" {
		if err := decodeFile(cfg, explicit); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(cfg, getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("loading config file %s: %w", path, err)
	}
	cfg.Files = append(cfg.Files, path)
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("TADA_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := getenv("TADA_USER_ID"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TADA_USER_ID: %w", err)
		}
		cfg.UserID = n
	}
	if v := getenv("TADA_TIMEOUT"); v != "" {
		if err := cfg.Timeout.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("TADA_TIMEOUT: %w", err)
		}
	}
	if v := getenv("TADA_STRICT_SCHEMA"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TADA_STRICT_SCHEMA: %w", err)
		}
		cfg.StrictSchema = b
	}
	if v := getenv("TADA_THEME"); v != "" {
		cfg.Theme = v
	}
	if v := getenv("TADA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv("TADA_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := getenv("TADA_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	return nil
}

// Validate checks values that would only fail later at request time.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url %q: scheme must be http or https", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url %q: missing host", c.BaseURL)
	}
	if c.UserID < 1 {
		return fmt.Errorf("user_id must be >= 1, got %d", c.UserID)
	}
	if c.Timeout.Duration <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("log_format %q: must be text, json or logfmt", c.LogFormat)
	}
	return nil
}

// Dir is the per-user tada directory: $TADA_HOME or ~/.tada.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("TADA_HOME")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".tada"), nil
}
