// Package config loads service configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then a
// .env file and the process environment. Command-line flags are applied last
// by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the service. Env tags carry no defaults so
// that an unset variable never clobbers a value read from the YAML file.
type Config struct {
	Port         string `yaml:"port" env:"PORT"`
	DatabasePath string `yaml:"database_path" env:"DATABASE_PATH"`

	JWTSecret  string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL   time.Duration `yaml:"token_ttl" env:"TOKEN_TTL"`
	BcryptCost int           `yaml:"bcrypt_cost" env:"BCRYPT_COST"`

	HistoryDefaultLimit int           `yaml:"history_default_limit" env:"HISTORY_DEFAULT_LIMIT"`
	HistoryMaxLimit     int           `yaml:"history_max_limit" env:"HISTORY_MAX_LIMIT"`
	HistoryWriteTimeout time.Duration `yaml:"history_write_timeout" env:"HISTORY_WRITE_TIMEOUT"`

	// AllowedOrigins is semicolon-separated in the environment.
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS"`

	// AuthRateLimit is requests per second per client on /api/register and
	// /api/login. Zero disables limiting.
	AuthRateLimit float64 `yaml:"auth_rate_limit" env:"AUTH_RATE_LIMIT"`
	AuthRateBurst int     `yaml:"auth_rate_burst" env:"AUTH_RATE_BURST"`

	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// Default returns the built-in configuration. JWTSecret is left empty and must
// be supplied.
func Default() *Config {
	return &Config{
		Port:                "5000",
		DatabasePath:        "calculator.db",
		TokenTTL:            24 * time.Hour,
		BcryptCost:          10,
		HistoryDefaultLimit: 50,
		HistoryMaxLimit:     500,
		HistoryWriteTimeout: 5 * time.Second,
		AllowedOrigins:      []string{"*"},
		AuthRateLimit:       5,
		AuthRateBurst:       10,
		LogLevel:            "info",
		LogFormat:           "text",
		ShutdownTimeout:     10 * time.Second,
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when path
// is empty), the .env file at envFile (a missing file is not an error) and the
// environment. The result is not validated.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// Validate reports the first setting that would prevent the service from
// running correctly.
func (c *Config) Validate() error {
	switch {
	case c.JWTSecret == "":
		return errors.New("JWT_SECRET is not set")
	case c.Port == "":
		return errors.New("port is required")
	case c.DatabasePath == "":
		return errors.New("database path is required")
	case c.TokenTTL <= 0:
		return fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL)
	case c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost:
		return fmt.Errorf("bcrypt cost must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	case c.HistoryDefaultLimit <= 0:
		return fmt.Errorf("history default limit must be positive, got %d", c.HistoryDefaultLimit)
	case c.HistoryMaxLimit < c.HistoryDefaultLimit:
		return fmt.Errorf("history max limit %d is below the default limit %d", c.HistoryMaxLimit, c.HistoryDefaultLimit)
	case c.HistoryWriteTimeout <= 0:
		return fmt.Errorf("history write timeout must be positive, got %s", c.HistoryWriteTimeout)
	case c.AuthRateLimit < 0:
		return fmt.Errorf("auth rate limit must not be negative, got %v", c.AuthRateLimit)
	case c.AuthRateLimit > 0 && c.AuthRateBurst <= 0:
		return fmt.Errorf("auth rate burst must be positive when limiting is enabled, got %d", c.AuthRateBurst)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
