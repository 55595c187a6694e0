package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	EnvProduction = "production"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Config struct {
	Addr               string        `env:"APP_ADDR" envDefault:":8080"`
	Environment        string        `env:"APP_ENV" envDefault:"development"`
	PrimaryAPIURL      string        `env:"PRIMARY_API_URL" envDefault:"http://localhost:5000"`
	CreditsAPIURL      string        `env:"CREDITS_API_URL" envDefault:"http://localhost:8081"`
	BackendTimeout     time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`
	SessionSecret      string        `env:"SESSION_SECRET"`
	SessionSealKey     string        `env:"SESSION_SEAL_KEY"`
	SessionTTL         time.Duration `env:"SESSION_TTL" envDefault:"8h"`
	CacheBackend       string        `env:"CACHE_BACKEND" envDefault:"memory"`
	RedisURL           string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	MaxBodyBytes       int64         `env:"MAX_BODY_BYTES" envDefault:"33554432"`
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"300"`
	DemoEnabled        bool          `env:"DEMO_ENABLED" envDefault:"false"`
	MetricsEnabled     bool          `env:"METRICS_ENABLED" envDefault:"true"`
}

// Load reads optional .env files and then the process environment.
func Load() (Config, error) {
	if err := loadEnvFiles(".env", ".env.local"); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.PrimaryAPIURL = strings.TrimRight(strings.TrimSpace(cfg.PrimaryAPIURL), "/")
	cfg.CreditsAPIURL = strings.TrimRight(strings.TrimSpace(cfg.CreditsAPIURL), "/")
	return cfg, nil
}

func loadEnvFiles(files ...string) error {
	existing := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func (c Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.PrimaryAPIURL) == "" {
		return fmt.Errorf("PRIMARY_API_URL is required")
	}
	if strings.TrimSpace(c.CreditsAPIURL) == "" {
		return fmt.Errorf("CREDITS_API_URL is required")
	}
	if strings.TrimSpace(c.SessionSecret) == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.IsProduction() && len(c.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 characters in production")
	}
	if c.IsProduction() && strings.TrimSpace(c.SessionSealKey) == "" {
		return fmt.Errorf("SESSION_SEAL_KEY must be set in production")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.BackendTimeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	switch c.CacheBackend {
	case CacheMemory:
	case CacheRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			return fmt.Errorf("REDIS_URL must be set when CACHE_BACKEND is redis")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be 'memory' or 'redis', got %q", c.CacheBackend)
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}
