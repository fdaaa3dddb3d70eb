// Package config loads the routecard configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverRemote = "remote"
	DriverMemory = "memory"
)

// Config represents the complete routecard configuration
type Config struct {
	Storage  StorageConfig `yaml:"storage"`
	HTTP     HTTPConfig    `yaml:"http"`
	Log      LogConfig     `yaml:"log"`
	Auth     AuthConfig    `yaml:"auth"`
	SeedDemo bool          `yaml:"seed_demo"`
	// Actor names the person recorded in audit entries written from the CLI.
	Actor string `yaml:"actor"`
}

// StorageConfig selects and configures the collection store
type StorageConfig struct {
	Driver string       `yaml:"driver"`
	SQLite SQLiteConfig `yaml:"sqlite"`
	File   FileConfig   `yaml:"file"`
	Redis  RedisConfig  `yaml:"redis"`
	Remote RemoteConfig `yaml:"remote"`
}

// SQLiteConfig configures the sqlite store
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// FileConfig configures the JSON file store
type FileConfig struct {
	Path string `yaml:"path"`
}

// RedisConfig configures the redis store
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

// RemoteConfig configures the store backed by another routecard server
type RemoteConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// HTTPConfig configures `routecard serve`
type HTTPConfig struct {
	Addr               string        `yaml:"addr"`
	MaxBodyBytes       int64         `yaml:"max_body_bytes"`
	MaxAttachmentBytes int64         `yaml:"max_attachment_bytes"`
	ReadTimeout        time.Duration `yaml:"read_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AuthConfig configures the default account and password hashing
type AuthConfig struct {
	DefaultUser     string `yaml:"default_user"`
	DefaultPassword string `yaml:"default_password"`
	Iterations      int    `yaml:"iterations"`
}

// Dir returns ~/.routecard.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".routecard"), nil
}

// DefaultPath returns the default config file path.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	dir, err := Dir()
	if err != nil {
		dir = ".routecard"
	}
	return &Config{
		Storage: StorageConfig{
			Driver: DriverSQLite,
			SQLite: SQLiteConfig{Path: filepath.Join(dir, "routecard.db")},
			File:   FileConfig{Path: filepath.Join(dir, "routecard.json")},
			Redis:  RedisConfig{Addr: "localhost:6379", Key: "routecard:collection"},
		},
		HTTP: HTTPConfig{
			Addr:               ":8080",
			MaxBodyBytes:       20 << 20,
			MaxAttachmentBytes: 15 << 20,
			ReadTimeout:        30 * time.Second,
			WriteTimeout:       60 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Auth: AuthConfig{
			DefaultUser: "admin",
			Iterations:  310000,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required")
		}
	case DriverFile:
		if c.Storage.File.Path == "" {
			return fmt.Errorf("storage.file.path is required")
		}
	case DriverRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr is required")
		}
	case DriverRemote:
		if c.Storage.Remote.URL == "" {
			return fmt.Errorf("storage.remote.url is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("storage.driver %q is not one of sqlite, file, redis, remote, memory", c.Storage.Driver)
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return fmt.Errorf("http.max_body_bytes must be positive")
	}
	if c.HTTP.MaxAttachmentBytes <= 0 || c.HTTP.MaxAttachmentBytes > c.HTTP.MaxBodyBytes {
		return fmt.Errorf("http.max_attachment_bytes must be positive and at most http.max_body_bytes")
	}
	if c.Auth.Iterations < 1000 {
		return fmt.Errorf("auth.iterations must be at least 1000")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file over the defaults
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load reads path when it exists, falls back to the defaults otherwise,
// then applies environment overrides and validates.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		loaded, err := LoadFromFile(path)
		switch {
		case err == nil:
			cfg = loaded
		case !errors.Is(err, fs.ErrNotExist):
			return nil, err
		}
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides settings from ROUTECARD_* variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	get := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	c.Storage.Driver = get("ROUTECARD_STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.SQLite.Path = get("ROUTECARD_DB_PATH", c.Storage.SQLite.Path)
	c.Storage.Redis.Addr = get("ROUTECARD_REDIS_ADDR", c.Storage.Redis.Addr)
	c.Storage.Remote.URL = get("ROUTECARD_REMOTE_URL", c.Storage.Remote.URL)
	c.Storage.Remote.Password = get("ROUTECARD_REMOTE_PASSWORD", c.Storage.Remote.Password)
	c.HTTP.Addr = get("ROUTECARD_HTTP_ADDR", c.HTTP.Addr)
	c.Log.Level = get("ROUTECARD_LOG_LEVEL", c.Log.Level)
	c.Log.Format = get("ROUTECARD_LOG_FORMAT", c.Log.Format)
	c.Auth.DefaultPassword = get("ROUTECARD_ADMIN_PASSWORD", c.Auth.DefaultPassword)
	c.Actor = get("ROUTECARD_ACTOR", c.Actor)
	if v, err := strconv.ParseBool(getenv("ROUTECARD_SEED_DEMO")); err == nil {
		c.SeedDemo = v
	}
}

// CLIActor returns the configured actor, falling back to $USER.
func (c *Config) CLIActor() string {
	if c.Actor != "" {
		return c.Actor
	}
	return os.Getenv("USER")
}
