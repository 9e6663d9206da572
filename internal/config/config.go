// Package config loads service settings from the environment, optionally
// primed from a .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Shivanand-hulikatti/library-circulation/internal/database"
)

const devJWTSecret = "dev-secret-change-me"

// Storage backends selectable with STORAGE.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config is the full runtime configuration.
type Config struct {
	Port     string
	Storage  string
	Database database.Config

	JWTSecret string
	TokenTTL  time.Duration

	LoanPeriodDays    int
	MaxLoanPeriodDays int
	FinePerDay        int64

	AdminEmail    string
	AdminPassword string
	AdminName     string
	SeedSample    bool

	LogLevel     slog.Level
	LogFormat    string
	HTTPThrottle int

	// EnvFileLoaded is true when a .env file was found and applied.
	EnvFileLoaded bool
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	envFileErr := godotenv.Load()

	cfg := Config{
		Port:    getEnv("PORT", "8080"),
		Storage: strings.ToLower(getEnv("STORAGE", StoragePostgres)),
		Database: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "library"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWTSecret:     getEnv("JWT_SECRET", devJWTSecret),
		AdminEmail:    strings.ToLower(getEnv("ADMIN_EMAIL", "admin@library.com")),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
		AdminName:     getEnv("ADMIN_NAME", "System Administrator"),
		LogFormat:     strings.ToLower(getEnv("LOG_FORMAT", "text")),
		EnvFileLoaded: envFileErr == nil,
	}

	var err error
	if cfg.Database.MaxConns, err = intEnv("DB_MAX_CONNS", 20); err != nil {
		return Config{}, err
	}
	if cfg.TokenTTL, err = durationEnv("TOKEN_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.LoanPeriodDays, err = intEnv("LOAN_PERIOD_DAYS", 14); err != nil {
		return Config{}, err
	}
	if cfg.MaxLoanPeriodDays, err = intEnv("MAX_LOAN_PERIOD_DAYS", 365); err != nil {
		return Config{}, err
	}
	fine, err := intEnv("FINE_PER_DAY", 1)
	if err != nil {
		return Config{}, err
	}
	cfg.FinePerDay = int64(fine)
	if cfg.SeedSample, err = boolEnv("SEED_SAMPLE_BOOKS", false); err != nil {
		return Config{}, err
	}
	if cfg.HTTPThrottle, err = intEnv("HTTP_THROTTLE", 100); err != nil {
		return Config{}, err
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	if envFileErr != nil && !os.IsNotExist(envFileErr) {
		return Config{}, fmt.Errorf("load .env: %w", envFileErr)
	}
	return cfg, nil
}

// UsesDevSecret reports whether the built-in development JWT secret is in use.
func (c Config) UsesDevSecret() bool {
	return c.JWTSecret == devJWTSecret
}

func (c Config) validate() error {
	switch {
	case c.Storage != StoragePostgres && c.Storage != StorageMemory:
		return fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, c.Storage)
	case c.LoanPeriodDays < 1:
		return fmt.Errorf("LOAN_PERIOD_DAYS must be positive")
	case c.MaxLoanPeriodDays < c.LoanPeriodDays:
		return fmt.Errorf("MAX_LOAN_PERIOD_DAYS must be at least LOAN_PERIOD_DAYS")
	case c.FinePerDay < 0:
		return fmt.Errorf("FINE_PER_DAY cannot be negative")
	case c.TokenTTL <= 0:
		return fmt.Errorf("TOKEN_TTL must be positive")
	case c.Database.MaxConns < 1:
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("LOG_FORMAT must be text or json")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
