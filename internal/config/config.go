package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/alex-user-go/feriados/internal/providers"
)

// Holiday sources.
const (
	SourceBrasilAPI = "brasilapi"
	SourceLocal     = "local"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Upstream holiday source.
	HolidayAPIURL   string        `mapstructure:"HOLIDAY_API_URL"`
	HolidaySource   string        `mapstructure:"HOLIDAY_SOURCE"`
	UpstreamTimeout time.Duration `mapstructure:"UPSTREAM_TIMEOUT"`

	// Response cache.
	CacheBackend  string        `mapstructure:"CACHE_BACKEND"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int           `mapstructure:"REDIS_CACHE_DB"`

	MaxRequestsPerMin int `mapstructure:"MAX_REQUESTS_PER_MIN"`
}

var keys = []string{
	"APP_PORT", "ENV", "LOG_LEVEL",
	"HOLIDAY_API_URL", "HOLIDAY_SOURCE", "UPSTREAM_TIMEOUT",
	"CACHE_BACKEND", "CACHE_TTL", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_CACHE_DB",
	"MAX_REQUESTS_PER_MIN",
}

// Load reads configuration from defaults, an optional config.yaml (current
// directory or ./config), the environment and the given .env file. A missing
// .env file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HOLIDAY_API_URL", providers.DefaultBaseURL)
	v.SetDefault("HOLIDAY_SOURCE", SourceBrasilAPI)
	v.SetDefault("UPSTREAM_TIMEOUT", 5*time.Second)
	v.SetDefault("CACHE_BACKEND", CacheMemory)
	v.SetDefault("CACHE_TTL", 10*time.Minute)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("MAX_REQUESTS_PER_MIN", 60)

	// Unmarshal only sees environment values for keys viper already knows.
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", k, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.HolidaySource = strings.ToLower(strings.TrimSpace(cfg.HolidaySource))
	cfg.CacheBackend = strings.ToLower(strings.TrimSpace(cfg.CacheBackend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.HolidaySource {
	case SourceBrasilAPI, SourceLocal:
	default:
		return fmt.Errorf("HOLIDAY_SOURCE must be %q or %q, got %q", SourceBrasilAPI, SourceLocal, c.HolidaySource)
	}
	switch c.CacheBackend {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("CACHE_BACKEND must be %q, %q or %q, got %q", CacheMemory, CacheRedis, CacheNone, c.CacheBackend)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %s", c.UpstreamTimeout)
	}
	if c.HolidaySource == SourceBrasilAPI && c.HolidayAPIURL == "" {
		return errors.New("HOLIDAY_API_URL is required")
	}
	return nil
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
