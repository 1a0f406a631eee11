package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/kitbuilder587/gcsearch-plugin/internal/domain"
)

var (
	ErrPartialCredentials = errors.New("GOOGLE_CUSTOM_SEARCH_API_KEY and GOOGLE_CUSTOM_SEARCH_ENGINE_ID must be set together")
	ErrMissingHTTPAddr    = errors.New("HTTP_ADDR is required")
	ErrInvalidRateLimit   = errors.New("RATE_LIMIT_PER_MINUTE must be positive")
)

type Config struct {
	Google    GoogleConfig
	HTTP      HTTPConfig
	Telegram  TelegramConfig
	Database  DatabaseConfig
	Log       LogConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

type GoogleConfig struct {
	// дефолтные креды, используются если у пользователя нет своих
	APIKey   string
	EngineID string
	BaseURL  string
	Timeout  time.Duration
	Language string
}

type HTTPConfig struct {
	Addr string
}

type TelegramConfig struct {
	Token string
	Debug bool
}

type DatabaseConfig struct {
	URL string
}

type LogConfig struct {
	Level string
	// json или console
	Format string
}

type CacheConfig struct {
	// 0 - кеш выключен
	TTL time.Duration
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

func Load() (*Config, error) {
	cfg := &Config{
		Google: GoogleConfig{
			APIKey:   os.Getenv("GOOGLE_CUSTOM_SEARCH_API_KEY"),
			EngineID: os.Getenv("GOOGLE_CUSTOM_SEARCH_ENGINE_ID"),
			BaseURL:  os.Getenv("GOOGLE_CUSTOM_SEARCH_BASE_URL"),
			Timeout:  time.Duration(getEnvIntOrDefault("GOOGLE_CUSTOM_SEARCH_TIMEOUT_SEC", 30)) * time.Second,
			Language: getEnvOrDefault("GOOGLE_CUSTOM_SEARCH_LANGUAGE", "lang_ja"),
		},
		HTTP: HTTPConfig{
			Addr: getEnvOrDefault("HTTP_ADDR", ":8080"),
		},
		Telegram: TelegramConfig{
			Token: os.Getenv("TELEGRAM_BOT_TOKEN"),
			Debug: getEnvBool("TELEGRAM_DEBUG"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		Cache: CacheConfig{
			TTL: time.Duration(getEnvIntOrDefault("CACHE_TTL_SEC", 0)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvIntOrDefault("RATE_LIMIT_PER_MINUTE", 10),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if creds := c.credentials(); !creds.IsZero() && creds.Validate() != nil {
		return ErrPartialCredentials
	}
	if c.HTTP.Addr == "" {
		return ErrMissingHTTPAddr
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		return ErrInvalidRateLimit
	}
	return nil
}

// DefaultCredentials - креды из окружения; ok=false если они не заданы
func (c *Config) DefaultCredentials() (domain.Credentials, bool) {
	creds := c.credentials()
	return creds, !creds.IsZero() && creds.Validate() == nil
}

func (c *Config) credentials() domain.Credentials {
	return domain.Credentials{
		APIKey:   c.Google.APIKey,
		EngineID: c.Google.EngineID,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
