package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone whose wall clock activities repeat in
	// (e.g. "Asia/Seoul").
	Timezone string `yaml:"timezone" json:"timezone"`

	// DataPath is the SQLite database file holding accounts and activities.
	DataPath string `yaml:"data_path" json:"data_path"`

	// HalfRangeDays is half the rolling expansion window: occurrences are
	// generated from today-HalfRangeDays to today+HalfRangeDays.
	HalfRangeDays int `yaml:"half_range_days" json:"half_range_days"`

	// MaxSubCharacters caps sub characters per account.
	MaxSubCharacters int `yaml:"max_sub_characters" json:"max_sub_characters"`

	// Rollover is a cron-style schedule (e.g. "0 0 * * *") evaluated in
	// Timezone at which the cached expansion is dropped.
	Rollover string `yaml:"rollover" json:"rollover"`

	// LogLevel is one of debug, info, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// ICSCacheDir holds HTTP cache metadata for imported ICS URLs.
	ICSCacheDir string `yaml:"ics_cache_dir" json:"ics_cache_dir"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen           = "127.0.0.1:8080"
	defaultTimezone         = "Local"
	defaultHalfRangeDays    = 30
	defaultMaxSubCharacters = 4
	defaultRollover         = "0 0 * * *"
	defaultLogLevel         = "info"
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:           defaultListen,
		Timezone:         defaultTimezone,
		DataPath:         defaultDataPath(),
		HalfRangeDays:    defaultHalfRangeDays,
		MaxSubCharacters: defaultMaxSubCharacters,
		Rollover:         defaultRollover,
		LogLevel:         defaultLogLevel,
		ICSCacheDir:      filepath.Join(filepath.Dir(defaultDataPath()), "ics-cache"),
		BasicAuth:        nil,
	}
}

func defaultDataPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "./var/odincal.db"
	}
	return filepath.Join(dir, "odincal", "odincal.db")
}

// DefaultPath is where the config file lives when --config is not given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "./odincal.yaml"
	}
	return filepath.Join(dir, "odincal", "config.yaml")
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.DataPath == "" {
		c.DataPath = defaultDataPath()
	}
	if c.HalfRangeDays <= 0 {
		c.HalfRangeDays = defaultHalfRangeDays
	}
	if c.MaxSubCharacters <= 0 {
		c.MaxSubCharacters = defaultMaxSubCharacters
	}
	if c.Rollover == "" {
		c.Rollover = defaultRollover
	}
	switch c.LogLevel {
	case "debug", "info", "error":
	default:
		c.LogLevel = defaultLogLevel
	}
	if c.ICSCacheDir == "" {
		c.ICSCacheDir = filepath.Join(filepath.Dir(c.DataPath), "ics-cache")
	}
}

// Location resolves Timezone, falling back to time.Local when it is empty,
// "Local" or unknown.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local, err
	}
	return loc, nil
}

// envOverrides are read from ODINCAL_* variables; empty values leave the
// file config alone.
type envOverrides struct {
	Listen           string `envconfig:"LISTEN"`
	Timezone         string `envconfig:"TIMEZONE"`
	DataPath         string `envconfig:"DATA_PATH"`
	HalfRangeDays    int    `envconfig:"HALF_RANGE_DAYS"`
	MaxSubCharacters int    `envconfig:"MAX_SUB_CHARACTERS"`
	LogLevel         string `envconfig:"LOG_LEVEL"`
}

// ApplyEnv overlays ODINCAL_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	var o envOverrides
	if err := envconfig.Process("odincal", &o); err != nil {
		return err
	}
	if o.Listen != "" {
		c.Listen = o.Listen
	}
	if o.Timezone != "" {
		c.Timezone = o.Timezone
	}
	if o.DataPath != "" {
		c.DataPath = o.DataPath
	}
	if o.HalfRangeDays > 0 {
		c.HalfRangeDays = o.HalfRangeDays
	}
	if o.MaxSubCharacters > 0 {
		c.MaxSubCharacters = o.MaxSubCharacters
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	c.Normalize()
	return nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically
// (temp file + rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".odincal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
