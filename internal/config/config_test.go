package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr error
	}{
		{
			name:    "empty environment",
			envVars: map[string]string{},
			wantErr: nil,
		},
		{
			name: "default credentials",
			envVars: map[string]string{
				"GOOGLE_CUSTOM_SEARCH_API_KEY":   "key",
				"GOOGLE_CUSTOM_SEARCH_ENGINE_ID": "cx",
			},
			wantErr: nil,
		},
		{
			name: "api key without engine id",
			envVars: map[string]string{
				"GOOGLE_CUSTOM_SEARCH_API_KEY": "key",
			},
			wantErr: ErrPartialCredentials,
		},
		{
			name: "engine id without api key",
			envVars: map[string]string{
				"GOOGLE_CUSTOM_SEARCH_ENGINE_ID": "cx",
			},
			wantErr: ErrPartialCredentials,
		},
		{
			name: "non-positive rate limit",
			envVars: map[string]string{
				"RATE_LIMIT_PER_MINUTE": "-1",
			},
			wantErr: ErrInvalidRateLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars()

			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}
			defer clearEnvVars()

			cfg, err := Load()

			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("Load() unexpected error = %v", err)
				return
			}

			if cfg == nil {
				t.Error("Load() returned nil config")
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	clearEnvVars()
	defer clearEnvVars()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %v, want %v", cfg.Log.Level, "info")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %v, want json", cfg.Log.Format)
	}
	if cfg.Google.Timeout != 30*time.Second {
		t.Errorf("Google.Timeout = %v, want 30s", cfg.Google.Timeout)
	}
	if cfg.Google.Language != "lang_ja" {
		t.Errorf("Google.Language = %v, want lang_ja", cfg.Google.Language)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %v, want :8080", cfg.HTTP.Addr)
	}
	if cfg.Cache.TTL != 0 {
		t.Errorf("Cache.TTL = %v, want disabled", cfg.Cache.TTL)
	}
	if cfg.RateLimit.RequestsPerMinute != 10 {
		t.Errorf("RateLimit.RequestsPerMinute = %v, want 10", cfg.RateLimit.RequestsPerMinute)
	}
	if _, ok := cfg.DefaultCredentials(); ok {
		t.Error("DefaultCredentials() should be unset by default")
	}
}

func TestOverrides(t *testing.T) {
	clearEnvVars()
	os.Setenv("GOOGLE_CUSTOM_SEARCH_API_KEY", "key")
	os.Setenv("GOOGLE_CUSTOM_SEARCH_ENGINE_ID", "cx")
	os.Setenv("GOOGLE_CUSTOM_SEARCH_TIMEOUT_SEC", "5")
	os.Setenv("GOOGLE_CUSTOM_SEARCH_LANGUAGE", "lang_en")
	os.Setenv("CACHE_TTL_SEC", "120")
	os.Setenv("TELEGRAM_DEBUG", "true")
	defer clearEnvVars()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	creds, ok := cfg.DefaultCredentials()
	if !ok || creds.APIKey != "key" || creds.EngineID != "cx" {
		t.Errorf("DefaultCredentials() = %+v, %v", creds, ok)
	}
	if cfg.Google.Timeout != 5*time.Second {
		t.Errorf("Google.Timeout = %v, want 5s", cfg.Google.Timeout)
	}
	if cfg.Google.Language != "lang_en" {
		t.Errorf("Google.Language = %v, want lang_en", cfg.Google.Language)
	}
	if cfg.Cache.TTL != 2*time.Minute {
		t.Errorf("Cache.TTL = %v, want 2m", cfg.Cache.TTL)
	}
	if !cfg.Telegram.Debug {
		t.Error("Telegram.Debug should be true")
	}
}

func TestGetEnvIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		envValue   string
		defaultVal int
		want       int
	}{
		{"valid int", "42", 10, 42},
		{"empty string", "", 10, 10},
		{"invalid int", "abc", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("TEST_INT", tt.envValue)
			defer os.Unsetenv("TEST_INT")

			got := getEnvIntOrDefault("TEST_INT", tt.defaultVal)
			if got != tt.want {
				t.Errorf("getEnvIntOrDefault() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate_EmptyAddr(t *testing.T) {
	cfg := &Config{
		RateLimit: RateLimitConfig{RequestsPerMinute: 1},
	}

	if err := cfg.Validate(); err != ErrMissingHTTPAddr {
		t.Errorf("Validate() error = %v, want %v", err, ErrMissingHTTPAddr)
	}
}

func TestDefaultCredentials_Partial(t *testing.T) {
	tests := []struct {
		name   string
		google GoogleConfig
		wantOK bool
	}{
		{name: "both set", google: GoogleConfig{APIKey: "key", EngineID: "cx"}, wantOK: true},
		{name: "none set", google: GoogleConfig{}, wantOK: false},
		{name: "only api key", google: GoogleConfig{APIKey: "key"}, wantOK: false},
		{name: "only engine id", google: GoogleConfig{EngineID: "cx"}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Google: tt.google}
			if _, ok := cfg.DefaultCredentials(); ok != tt.wantOK {
				t.Errorf("DefaultCredentials() ok = %v, want %v", ok, tt.wantOK)
			}
		})
	}
}

func clearEnvVars() {
	envVars := []string{
		"GOOGLE_CUSTOM_SEARCH_API_KEY",
		"GOOGLE_CUSTOM_SEARCH_ENGINE_ID",
		"GOOGLE_CUSTOM_SEARCH_BASE_URL",
		"GOOGLE_CUSTOM_SEARCH_TIMEOUT_SEC",
		"GOOGLE_CUSTOM_SEARCH_LANGUAGE",
		"HTTP_ADDR",
		"TELEGRAM_BOT_TOKEN",
		"TELEGRAM_DEBUG",
		"DATABASE_URL",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"CACHE_TTL_SEC",
		"RATE_LIMIT_PER_MINUTE",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}
