// Package config loads the history viewer service configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/historyviewer/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvAddr      = "HISTORYVIEWER_ADDR"
	EnvRedisAddr = "HISTORYVIEWER_REDIS_ADDR"
	EnvLogLevel  = "HISTORYVIEWER_LOG_LEVEL"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the service configuration.
type Config struct {
	Addr     string `yaml:"addr" json:"addr"`
	LogLevel string `yaml:"log_level" json:"log_level"`

	Store StoreConfig `yaml:"store" json:"store"`

	// VersionsDir is the Loam repository holding <class>/<id>/v<N>.md documents.
	// Empty means no stored versions; only the diff endpoints are useful then.
	VersionsDir string `yaml:"versions_dir" json:"versions_dir"`

	Diff   DiffConfig   `yaml:"diff" json:"diff"`
	Schema SchemaConfig `yaml:"schema" json:"schema"`

	// Forms maps a record class to the layout of its edit form.
	Forms map[string][]domain.FieldSpec `yaml:"forms" json:"forms"`
}

// StoreConfig selects where selections are kept.
type StoreConfig struct {
	Backend string `yaml:"backend" json:"backend"`

	// Dir is used by the file backend.
	Dir string `yaml:"dir" json:"dir"`

	Redis RedisConfig `yaml:"redis" json:"redis"`
}

// RedisConfig configures the redis backend and distributed locking.
type RedisConfig struct {
	Addr     string   `yaml:"addr" json:"addr"`
	Password string   `yaml:"password" json:"password"`
	DB       int      `yaml:"db" json:"db"`
	Prefix   string   `yaml:"prefix" json:"prefix"`
	TTL      Duration `yaml:"ttl" json:"ttl"`
	Lock     bool     `yaml:"lock" json:"lock"`
}

// DiffConfig tunes the diff transformation.
type DiffConfig struct {
	ProtectedFields []string `yaml:"protected_fields" json:"protected_fields"`
	Sanitize        *bool    `yaml:"sanitize" json:"sanitize"`
	Escape          bool     `yaml:"escape" json:"escape"`
}

// SchemaConfig holds the base URLs of the form-schema endpoints.
type SchemaConfig struct {
	DetailBase  string `yaml:"detail_base" json:"detail_base"`
	CompareBase string `yaml:"compare_base" json:"compare_base"`
}

// Duration accepts "30s" style strings in YAML and JSON.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.set(s)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.set(s)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) set(s string) error {
	if s == "" {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = v
	return nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Addr:     ":8080",
		LogLevel: "info",
		Store: StoreConfig{
			Backend: StoreMemory,
			Dir:     filepath.Join(".historyviewer", "sessions"),
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "historyviewer:selection:",
			},
		},
		Diff: DiffConfig{
			ProtectedFields: []string{"SecurityID"},
		},
		Schema: SchemaConfig{
			DetailBase:  "admin/history/schema/versionForm",
			CompareBase: "admin/history/schema/compareForm",
		},
	}
}

// SanitizeEnabled reports whether diff output is filtered; on unless disabled.
func (d DiffConfig) SanitizeEnabled() bool {
	return d.Sanitize == nil || *d.Sanitize
}

// Load reads a configuration file (YAML or JSON, by extension) over the
// defaults and applies environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".json" {
			if err := json.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
			}
		}
	}

	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		cfg.Store.Redis.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
}

// Validate checks settings that cannot be defaulted.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	for class, layout := range c.Forms {
		if _, err := domain.FieldsOf(layout); err != nil {
			return fmt.Errorf("form %s: %w", class, err)
		}
	}
	return nil
}
