// ABOUTME: Healthtrends configuration management with backend selection.
// ABOUTME: Loads settings from JSON and HEALTHTRENDS_* env vars; opens the storage backend.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/healthtrends/internal/charm"
	"github.com/harperreed/healthtrends/internal/storage"
	"github.com/harperreed/healthtrends/internal/trends"
	"github.com/spf13/viper"
)

const (
	DefaultBackend    = "sqlite"
	DefaultUserID     = "anonymous"
	DefaultLogLevel   = "info"
	DefaultListenAddr = "127.0.0.1:5001"

	// EnvPrefix prefixes environment overrides, e.g. HEALTHTRENDS_BACKEND.
	EnvPrefix = "HEALTHTRENDS"
)

// Config stores healthtrends configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default) or "charm".
	Backend string `json:"backend,omitempty" mapstructure:"backend"`

	// DataDir is the root directory for data storage.
	// SQLite puts healthtrends.db here. Supports ~ expansion for home directory.
	// Defaults to ~/.local/share/healthtrends.
	DataDir string `json:"data_dir,omitempty" mapstructure:"data_dir"`

	// UserID is the user whose logs are read and written when none is given.
	UserID string `json:"user_id,omitempty" mapstructure:"user_id"`

	LogLevel   string `json:"log_level,omitempty" mapstructure:"log_level"`
	ListenAddr string `json:"listen_addr,omitempty" mapstructure:"listen_addr"`

	// CharmHost overrides the Charm server for the charm backend.
	CharmHost string `json:"charm_host,omitempty" mapstructure:"charm_host"`

	// FieldAliases adds source field names per canonical field, e.g.
	// {"sleepHours": ["slept"]}. They are tried after the built-in names.
	FieldAliases map[string][]string `json:"field_aliases,omitempty" mapstructure:"field_aliases"`
}

var validBackends = map[string]bool{"sqlite": true, "charm": true}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true, "off": true,
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return DefaultBackend
	}
	return strings.ToLower(c.Backend)
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetUserID returns the configured user, defaulting to "anonymous".
func (c *Config) GetUserID() string {
	if c.UserID == "" {
		return DefaultUserID
	}
	return c.UserID
}

// GetLogLevel returns the configured log level, defaulting to "info".
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return DefaultLogLevel
	}
	return strings.ToLower(c.LogLevel)
}

// GetListenAddr returns the HTTP listen address, defaulting to 127.0.0.1:5001.
func (c *Config) GetListenAddr() string {
	if c.ListenAddr == "" {
		return DefaultListenAddr
	}
	return c.ListenAddr
}

// FieldMap returns the normalizer field table with configured aliases merged in.
func (c *Config) FieldMap() trends.FieldMap {
	return trends.DefaultFieldMap().Merge(c.FieldAliases)
}

// Validate reports every invalid setting.
func (c *Config) Validate() []error {
	var errs []error

	if !validBackends[c.GetBackend()] {
		errs = append(errs, fmt.Errorf("invalid backend: %s (valid: sqlite, charm)", c.Backend))
	}
	if !validLogLevels[c.GetLogLevel()] {
		errs = append(errs, fmt.Errorf("invalid log level: %s", c.LogLevel))
	}
	for field := range c.FieldAliases {
		if !trends.IsField(field) {
			errs = append(errs, fmt.Errorf("unknown field in field_aliases: %s", field))
		}
	}

	return errs
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage() (storage.Repository, error) {
	backend := c.GetBackend()

	switch backend {
	case "sqlite":
		dbPath := filepath.Join(c.GetDataDir(), storage.DBFileName)
		return storage.Open(dbPath)
	case "charm":
		client, err := charm.InitClient(c.CharmHost)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "healthtrends", "config.json")
}

// Load reads config from disk, then applies HEALTHTRENDS_* environment overrides.
// A missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(GetConfigPath())
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	// Register every key so AutomaticEnv can resolve it during Unmarshal.
	for _, key := range []string{"backend", "data_dir", "user_id", "log_level", "listen_addr", "charm_host"} {
		v.SetDefault(key, "")
	}

	if _, err := os.Stat(GetConfigPath()); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
