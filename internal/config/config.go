// Package config loads and saves the YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	defaultListen      = "127.0.0.1:8080"
	defaultLogLevel    = "info"
	defaultBackupCron  = "0 * * * *"
	defaultBackupKeep  = 24
	defaultSnapWidth   = 1280
	defaultSnapHeight  = 960
	defaultSnapTimeout = 30
	defaultHorizonDays = 90
)

// ICSConfig describes a single ICS subscription source.
type ICSConfig struct {
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the web server.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// BackupConfig controls scheduled copies of the calendar file.
type BackupConfig struct {
	// Cron is a five-field cron schedule. An empty value disables backups.
	Cron string `yaml:"cron" json:"cron"`
	// Dir holds the copies. Empty means a "backups" directory next to the
	// calendar file.
	Dir string `yaml:"dir" json:"dir"`
	// Keep is how many copies survive pruning.
	Keep int `yaml:"keep" json:"keep"`
}

// SnapshotConfig sizes the headless browser used for PNG snapshots.
type SnapshotConfig struct {
	Width          int `yaml:"width" json:"width"`
	Height         int `yaml:"height" json:"height"`
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// Config is the top-level application configuration.
type Config struct {
	// CalendarPath is the .mycal file. Empty selects
	// ~/Documents/MyCalendar/calendar.mycal.
	CalendarPath string `yaml:"calendar_path" json:"calendar_path"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Listen is the HTTP listen address for `mycal serve`.
	Listen string `yaml:"listen" json:"listen"`

	// BasicAuth, if set, protects every endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`

	Backup   BackupConfig   `yaml:"backup" json:"backup"`
	Snapshot SnapshotConfig `yaml:"snapshot" json:"snapshot"`

	// ICS lists subscriptions imported by `mycal import-ics`.
	ICS []ICSConfig `yaml:"ics" json:"ics"`

	// ImportHorizonDays is how far ahead recurring ICS events are expanded.
	ImportHorizonDays int `yaml:"import_horizon_days" json:"import_horizon_days"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: defaultLogLevel,
		Listen:   defaultListen,
		Backup: BackupConfig{
			Cron: defaultBackupCron,
			Keep: defaultBackupKeep,
		},
		Snapshot: SnapshotConfig{
			Width:          defaultSnapWidth,
			Height:         defaultSnapHeight,
			TimeoutSeconds: defaultSnapTimeout,
		},
		ICS:               []ICSConfig{},
		ImportHorizonDays: defaultHorizonDays,
	}
}

// DefaultPath is config.yaml under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: locate config directory: %w", err)
	}
	return filepath.Join(dir, "mycal", "config.yaml"), nil
}

// Normalize fills in zero values so that partially-filled files still
// behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.Backup.Keep <= 0 {
		c.Backup.Keep = defaultBackupKeep
	}
	if c.Snapshot.Width <= 0 {
		c.Snapshot.Width = defaultSnapWidth
	}
	if c.Snapshot.Height <= 0 {
		c.Snapshot.Height = defaultSnapHeight
	}
	if c.Snapshot.TimeoutSeconds <= 0 {
		c.Snapshot.TimeoutSeconds = defaultSnapTimeout
	}
	if c.ImportHorizonDays <= 0 {
		c.ImportHorizonDays = defaultHorizonDays
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
	if c.BasicAuth != nil && (c.BasicAuth.Username == "" || c.BasicAuth.Password == "") {
		c.BasicAuth = nil
	}
}

// Validate reports values Normalize cannot repair.
func (c *Config) Validate() error {
	var errs []error
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if c.Backup.Cron != "" {
		if _, err := cron.ParseStandard(c.Backup.Cron); err != nil {
			errs = append(errs, fmt.Errorf("backup.cron %q: %w", c.Backup.Cron, err))
		}
	}
	seen := make(map[string]bool)
	for i, src := range c.ICS {
		if src.URL == "" {
			errs = append(errs, fmt.Errorf("ics[%d]: url is empty", i))
		}
		if src.ID != "" && seen[src.ID] {
			errs = append(errs, fmt.Errorf("ics[%d]: duplicate id %q", i, src.ID))
		}
		seen[src.ID] = true
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// BackupDir resolves Backup.Dir against the calendar file location.
func (c *Config) BackupDir(calendarPath string) string {
	if c.Backup.Dir != "" {
		return c.Backup.Dir
	}
	return filepath.Join(filepath.Dir(calendarPath), "backups")
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms and returned.
//   - Otherwise the YAML is read, normalized and validated.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config: path is empty")
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
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg to path atomically via a temp file + rename, leaving the
// file with 0600 permissions inside a 0700 directory.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config: path is empty")
	}
	if cfg == nil {
		return errors.New("config: nil config")
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

	tmp, err := os.CreateTemp(dir, ".mycal-config-*.tmp")
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

// Save is a convenience method that delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
