// Package config loads application settings from environment variables.
// A .env file, when present, is loaded first and never overrides variables
// already set in the process environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"sales_backend/internal/platform/db"
	"sales_backend/internal/platform/redis"
)

// Config is the full application configuration.
type Config struct {
	Addr     string
	Env      string
	LogLevel string

	CORSAllowedOrigins []string
	CacheTTL           time.Duration
	CacheNamespace     string

	RateLimitRPS   float64 // 0 disables rate limiting
	RateLimitBurst int

	ShutdownTimeout time.Duration
	RunMigrations   bool

	DB    db.Config
	Redis redis.Config
}

var defaultOrigins = []string{"http://localhost:3000", "http://localhost:3001"}

// LoadDotEnv loads the given .env files, ignoring files that do not exist.
// It reports whether anything was loaded.
func LoadDotEnv(files ...string) bool {
	if len(files) == 0 {
		files = []string{".env"}
	}
	return godotenv.Load(files...) == nil
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var (
		cfg  Config
		errs []error
		err  error
	)

	cfg.Addr = getEnv("APP_ADDR", ":8080")
	cfg.Env = getEnv("APP_ENV", "production")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.CORSAllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", defaultOrigins)
	cfg.CacheNamespace = getEnv("CACHE_NAMESPACE", "sales")

	if cfg.CacheTTL, err = getEnvAsDuration("CACHE_TTL", 5*time.Minute); err != nil {
		errs = append(errs, err)
	}
	if cfg.RateLimitRPS, err = getEnvAsFloat("RATE_LIMIT_RPS", 0); err != nil {
		errs = append(errs, err)
	}
	if cfg.RateLimitBurst, err = getEnvAsInt("RATE_LIMIT_BURST", 20); err != nil {
		errs = append(errs, err)
	}
	if cfg.ShutdownTimeout, err = getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.RunMigrations, err = getEnvAsBool("RUN_MIGRATIONS", false); err != nil {
		errs = append(errs, err)
	}

	cfg.DB = db.Config{
		Driver:       getEnv("DB_DRIVER", db.DriverPostgres),
		User:         getEnv("DB_USER", ""),
		Password:     getEnv("DB_PASSWORD", ""),
		Name:         getEnv("DB_NAME", "sales"),
		Host:         getEnv("DB_HOST", "localhost"),
		Port:         getEnv("DB_PORT", ""),
		SSLMode:      getEnv("DB_SSLMODE", "disable"),
		InstanceName: getEnv("INSTANCE_CONNECTION_NAME", ""),
		SQLitePath:   getEnv("DB_SQLITE_PATH", ""),
	}
	if cfg.DB.MaxOpenConns, err = getEnvAsInt("DB_MAX_OPEN_CONNS", 10); err != nil {
		errs = append(errs, err)
	}
	if cfg.DB.MaxIdleConns, err = getEnvAsInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		errs = append(errs, err)
	}
	if cfg.DB.ConnMaxLifetime, err = getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute); err != nil {
		errs = append(errs, err)
	}
	if cfg.DB.ConnectTimeout, err = getEnvAsDuration("DB_CONNECT_TIMEOUT", 60*time.Second); err != nil {
		errs = append(errs, err)
	}
	switch cfg.DB.Driver {
	case db.DriverPostgres, db.DriverMySQL, db.DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER: unsupported driver %q", cfg.DB.Driver))
	}

	cfg.Redis = redis.Config{
		Host:     getEnv("REDIS_HOST", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
	}
	if cfg.Redis.Port, err = getEnvAsInt("REDIS_PORT", 6379); err != nil {
		errs = append(errs, err)
	}
	if cfg.Redis.DB, err = getEnvAsInt("REDIS_DB", 0); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

func invalid(key, value string, err error) error {
	return fmt.Errorf("%s: invalid value %q: %w", key, value, err)
}
