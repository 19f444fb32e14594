// Package config provides configuration loading for the Roster application.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
)

// Config holds environment configuration for the Roster application.
type Config struct {
	// Port is the port on which the HTTP server listens.
	Port     string `env:"ROSTER_PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"debug"`
	// LogFormat is "text" or "json".
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	GinMode   string `env:"GIN_MODE" envDefault:"release"`

	// StorageBackend selects the primary student repository.
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`

	PostgresURL      string `env:"POSTGRES_URL"`
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"127.0.0.1"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"roster"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	SQLitePath string `env:"SQLITE_PATH" envDefault:"roster.db"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// CacheEnabled wraps the primary repository with a Redis cache-aside layer.
	CacheEnabled    bool `env:"CACHE_ENABLED" envDefault:"false"`
	CacheTTLSeconds int  `env:"CACHE_TTL_SECONDS" envDefault:"60"`

	// SeedFile is an optional YAML file of students loaded at startup.
	SeedFile string `env:"SEED_FILE"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// CacheTTL returns the cache entry lifetime.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// PostgresDSN returns POSTGRES_URL when set, otherwise a DSN built from the discrete settings.
func (c Config) PostgresDSN() string {
	if c.PostgresURL != "" {
		return c.PostgresURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSLMode)
}

// NeedsRedis reports whether a Redis client must be created.
func (c Config) NeedsRedis() bool {
	return c.StorageBackend == BackendRedis || c.CacheEnabled
}

// Validate checks settings that cannot be expressed as struct tags.
func (c Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory, BackendPostgres, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.Port == "" {
		return fmt.Errorf("ROSTER_PORT must not be empty")
	}
	if c.CacheEnabled && c.CacheTTLSeconds < 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must be >= 0, got %d", c.CacheTTLSeconds)
	}
	return nil
}

// loadDotEnv loads the comma separated .env files named in DOTENV_PATHS.
// Existing environment variables are not overridden.
func loadDotEnv() error {
	path := os.Getenv("DOTENV_PATHS")
	if path == "" {
		return nil
	}
	if err := godotenv.Load(strings.Split(path, ",")...); err != nil {
		return fmt.Errorf("load dotenv: %w", err)
	}
	return nil
}

// Load reads .env files and the environment into a validated Config.
func Load() (Config, error) {
	var cfg Config
	if err := loadDotEnv(); err != nil {
		return cfg, err
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
