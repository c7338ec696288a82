package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/sadopc/liftlog/internal/ordering"
)

// Config is the startup configuration. Preferences edited inside the app
// (units, rest timer) live in the database instead.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Ordering OrderingConfig `yaml:"ordering"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// File receives all log output; the terminal belongs to the UI.
	File string `yaml:"file"`
	JSON bool   `yaml:"json"`
}

// OrderingConfig tunes the set reordering engine.
type OrderingConfig struct {
	// Scope is "group" (persist only the moved exercise's sets) or
	// "workout" (persist every set of the workout).
	Scope string `yaml:"scope"`
	// RowHeight is the number of terminal rows one set occupies when
	// translating a drag distance into a drop index.
	RowHeight int `yaml:"row_height"`
}

// ReorderScope returns the parsed ordering scope. Load has already
// validated it.
func (c *Config) ReorderScope() ordering.Scope {
	s, _ := ordering.ParseScope(c.Ordering.Scope)
	return s
}

// Load reads configuration with precedence: defaults, YAML file, env vars.
func Load() (*Config, error) {
	cfg := newDefaults()

	if err := loadYAMLFile(cfg, Path()); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	cfg.expandPaths()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a file that must exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	applyEnvOverrides(cfg)
	cfg.expandPaths()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path is $LIFTLOG_CONFIG_PATH, or config.yaml in the liftlog config dir.
func Path() string {
	if v := os.Getenv("LIFTLOG_CONFIG_PATH"); v != "" {
		return v
	}
	return filepath.Join(Dir(), "config.yaml")
}

// Dir is $XDG_CONFIG_HOME/liftlog, falling back to ~/.config/liftlog.
func Dir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		if d, err := os.UserConfigDir(); err == nil {
			base = d
		} else {
			home, _ := os.UserHomeDir()
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, "liftlog")
}

func newDefaults() *Config {
	dir := Dir()
	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(dir, "liftlog.db"),
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "liftlog.log"),
		},
		Ordering: OrderingConfig{
			Scope:     string(ordering.ScopeGroup),
			RowHeight: 1,
		},
	}
}

// loadYAMLFile reads path if it exists. A missing file means defaults.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// applyEnvOverrides applies non-empty environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIFTLOG_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("LIFTLOG_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LIFTLOG_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("LIFTLOG_LOG_JSON"); v != "" {
		cfg.Log.JSON = v == "true" || v == "1"
	}
	if v := os.Getenv("LIFTLOG_REORDER_SCOPE"); v != "" {
		cfg.Ordering.Scope = v
	}
	if v := os.Getenv("LIFTLOG_ROW_HEIGHT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Ordering.RowHeight = n
		}
	}
}

func (c *Config) expandPaths() {
	c.Database.Path = ExpandPath(c.Database.Path)
	c.Log.File = ExpandPath(c.Log.File)
}

func (c *Config) validate() error {
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := ordering.ParseScope(c.Ordering.Scope); err != nil {
		return fmt.Errorf("ordering.scope: %w", err)
	}
	if c.Ordering.RowHeight < 1 {
		return fmt.Errorf("ordering.row_height must be at least 1, got %d", c.Ordering.RowHeight)
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
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

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
