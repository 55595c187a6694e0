package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Addr:               ":8080",
		Environment:        "development",
		PrimaryAPIURL:      "http://primary.local",
		CreditsAPIURL:      "http://credits.local",
		BackendTimeout:     5 * time.Second,
		SessionSecret:      "test-secret",
		SessionTTL:         time.Hour,
		CacheBackend:       CacheMemory,
		MaxBodyBytes:       1 << 20,
		RateLimitPerMinute: 60,
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "from-env")
	t.Setenv("PRIMARY_API_URL", "http://primary.local/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "http://primary.local", cfg.PrimaryAPIURL)
	assert.Equal(t, CacheMemory, cfg.CacheBackend)
	assert.Equal(t, 8*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "from-env", cfg.SessionSecret)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing secret", func(c *Config) { c.SessionSecret = "" }},
		{"missing primary", func(c *Config) { c.PrimaryAPIURL = " " }},
		{"missing credits", func(c *Config) { c.CreditsAPIURL = "" }},
		{"unknown cache", func(c *Config) { c.CacheBackend = "memcached" }},
		{"redis without url", func(c *Config) { c.CacheBackend = CacheRedis; c.RedisURL = "" }},
		{"tiny body", func(c *Config) { c.MaxBodyBytes = 10 }},
		{"zero rate", func(c *Config) { c.RateLimitPerMinute = 0 }},
		{"short production secret", func(c *Config) { c.Environment = EnvProduction; c.SessionSealKey = "k" }},
		{"production without seal key", func(c *Config) {
			c.Environment = EnvProduction
			c.SessionSecret = "0123456789abcdef0123456789abcdef"
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, validConfig().Validate())
}
