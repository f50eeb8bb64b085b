package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when neither a flag nor CONTENTSETS_CONFIG names a file.
	DefaultConfigPath = "config.yaml"
	// ConfigPathEnv overrides the configuration file location.
	ConfigPathEnv = "CONTENTSETS_CONFIG"
	// DefaultDotEnvPath is the optional dotenv file loaded before environment overrides.
	DefaultDotEnvPath = ".env"

	defaultListenAddr  = ":8080"
	defaultDatabaseDSN = "file:data/contentsets.db"
)

var errEmptyDSN = errors.New("config: database dsn is empty")

// AppConfig carries process-level options from the command line.
type AppConfig struct {
	ConfigPath string
}

// Config is the full service configuration.
type Config struct {
	ListenAddr string         `yaml:"listen-addr" env:"LISTEN_ADDR"`
	Database   DatabaseConfig `yaml:"database"`
	Redis      RedisConfig    `yaml:"redis"`
	Shopify    ShopifyConfig  `yaml:"shopify"`
	Log        LogConfig      `yaml:"log"`
}

// DatabaseConfig selects and tunes the storage backend.
type DatabaseConfig struct {
	DSN          string `yaml:"dsn" env:"DATABASE_DSN"`                       // Postgres URL or SQLite file DSN.
	MaxOpenConns int    `yaml:"max-open-conns" env:"DATABASE_MAX_OPEN_CONNS"` // Zero keeps the driver default.
}

// RedisConfig enables the shared storefront cache when Addr is set.
type RedisConfig struct {
	Addr      string `yaml:"addr" env:"REDIS_ADDR"`
	Password  string `yaml:"password" env:"REDIS_PASSWORD"`
	DB        int    `yaml:"db" env:"REDIS_DB"`
	KeyPrefix string `yaml:"key-prefix" env:"REDIS_KEY_PREFIX"`
}

// ShopifyConfig holds the app credentials used to verify session tokens.
type ShopifyConfig struct {
	APIKey    string `yaml:"api-key" env:"SHOPIFY_API_KEY"`
	APISecret string `yaml:"api-secret" env:"SHOPIFY_API_SECRET"`
}

// SessionTokensEnabled reports whether admin requests must carry a session token.
func (c ShopifyConfig) SessionTokensEnabled() bool {
	return strings.TrimSpace(c.APISecret) != ""
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`   // debug, info, warn, error.
	Format     string `yaml:"format" env:"LOG_FORMAT"` // text or json.
	File       string `yaml:"file" env:"LOG_FILE"`     // Optional rotating log file.
	MaxSizeMB  int    `yaml:"max-size-mb"`
	MaxBackups int    `yaml:"max-backups"`
	MaxAgeDays int    `yaml:"max-age-days"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr: defaultListenAddr,
		Database: DatabaseConfig{
			DSN: defaultDatabaseDSN,
		},
		Redis: RedisConfig{
			KeyPrefix: "contentsets:",
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 28,
		},
	}
}

// ResolveConfigPath returns the explicit path, then CONTENTSETS_CONFIG, then the default.
func ResolveConfigPath(path string) string {
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		return trimmed
	}
	if fromEnv := strings.TrimSpace(os.Getenv(ConfigPathEnv)); fromEnv != "" {
		return fromEnv
	}
	return DefaultConfigPath
}

// Load reads the YAML file at path, then .env, then environment overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	return load(path, DefaultDotEnvPath)
}

func load(path, dotEnvPath string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, errRead := os.ReadFile(path)
		switch {
		case errRead == nil:
			if errUnmarshal := yaml.Unmarshal(data, cfg); errUnmarshal != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
			}
		case errors.Is(errRead, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, errRead)
		}
	}

	if errDotEnv := loadDotEnv(dotEnvPath); errDotEnv != nil {
		return nil, errDotEnv
	}
	if errEnv := env.Parse(cfg); errEnv != nil {
		return nil, fmt.Errorf("config: parse env: %w", errEnv)
	}

	cfg.normalize()
	if errValidate := cfg.Validate(); errValidate != nil {
		return nil, errValidate
	}
	return cfg, nil
}

// loadDotEnv exports variables from an optional dotenv file. Variables that
// are already set keep their values.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, errStat := os.Stat(path); errStat != nil {
		if errors.Is(errStat, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: stat %s: %w", path, errStat)
	}
	if errLoad := godotenv.Load(path); errLoad != nil {
		return fmt.Errorf("config: load %s: %w", path, errLoad)
	}
	return nil
}

func (c *Config) normalize() {
	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}
	c.Database.DSN = strings.TrimSpace(c.Database.DSN)
	c.Redis.Addr = strings.TrimSpace(c.Redis.Addr)
	c.Shopify.APIKey = strings.TrimSpace(c.Shopify.APIKey)
	c.Shopify.APISecret = strings.TrimSpace(c.Shopify.APISecret)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errEmptyDSN
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unsupported log format %q", c.Log.Format)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: invalid redis db %d", c.Redis.DB)
	}
	return nil
}
