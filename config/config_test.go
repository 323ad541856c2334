package config

import (
	"os"
	"testing"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

var envKeys = []string{
	"STOREFRONT_SERVER_PORT",
	"STOREFRONT_SERVER_ENVIRONMENT",
	"STOREFRONT_SERVER_ALLOWED_ORIGINS",
	"STOREFRONT_FEED_URL",
	"STOREFRONT_FEED_TIMEOUT",
	"STOREFRONT_FEED_REQUESTS_PER_MINUTE",
	"STOREFRONT_FEED_REFRESH_INTERVAL",
	"STOREFRONT_STORAGE_TYPE",
	"STOREFRONT_STORAGE_PATH",
	"STOREFRONT_STORAGE_REDIS_URL",
	"STOREFRONT_STORAGE_KEY",
	"STOREFRONT_STORAGE_TTL",
	"STOREFRONT_CART_PERSIST_DELAY",
	"STOREFRONT_ORDER_LOCALE",
	"STOREFRONT_ORDER_CURRENCY",
	"STOREFRONT_ORDER_WHATSAPP_NUMBER",
	"STOREFRONT_RATELIMIT_PER_IP",
	"STOREFRONT_LOG_LEVEL",
}

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		for _, k := range envKeys {
			os.Unsetenv(k)
		}
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		// Set required feed URL
		os.Setenv("STOREFRONT_FEED_URL", "https://docs.example.com/feed.csv")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Feed.Timeout != 15*time.Second {
			t.Errorf("Feed.Timeout = %v, want 15s", cfg.Feed.Timeout)
		}
		if cfg.Feed.RequestsPerMinute != 30 {
			t.Errorf("Feed.RequestsPerMinute = %d, want 30", cfg.Feed.RequestsPerMinute)
		}
		if cfg.Feed.RefreshInterval != 5*time.Minute {
			t.Errorf("Feed.RefreshInterval = %v, want 5m", cfg.Feed.RefreshInterval)
		}
		if cfg.Storage.Type != "memory" {
			t.Errorf("Storage.Type = %s, want memory", cfg.Storage.Type)
		}
		if cfg.Storage.Key != "taabal-select:cart:v1" {
			t.Errorf("Storage.Key = %s, want taabal-select:cart:v1", cfg.Storage.Key)
		}
		if cfg.Storage.TTL != 0 {
			t.Errorf("Storage.TTL = %v, want 0", cfg.Storage.TTL)
		}
		if cfg.Cart.PersistDelay != 120*time.Millisecond {
			t.Errorf("Cart.PersistDelay = %v, want 120ms", cfg.Cart.PersistDelay)
		}
		if cfg.Cart.PlaceholderImage != "/assets/images/imagen-prueba.webp" {
			t.Errorf("Cart.PlaceholderImage = %s", cfg.Cart.PlaceholderImage)
		}
		if cfg.Order.Title != "Pedido Taabal Select" {
			t.Errorf("Order.Title = %s, want Pedido Taabal Select", cfg.Order.Title)
		}
		if cfg.Order.WhatsAppNumber != "111" {
			t.Errorf("Order.WhatsAppNumber = %s, want 111", cfg.Order.WhatsAppNumber)
		}
		if cfg.RateLimit.PerIP != 120 {
			t.Errorf("RateLimit.PerIP = %d, want 120", cfg.RateLimit.PerIP)
		}
		if cfg.Log.Level != "info" {
			t.Errorf("Log.Level = %s, want info", cfg.Log.Level)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("STOREFRONT_SERVER_PORT", "9090")
		os.Setenv("STOREFRONT_SERVER_ENVIRONMENT", "production")
		os.Setenv("STOREFRONT_FEED_URL", "/srv/feed.csv")
		os.Setenv("STOREFRONT_FEED_TIMEOUT", "3s")
		os.Setenv("STOREFRONT_FEED_REFRESH_INTERVAL", "0s")
		os.Setenv("STOREFRONT_STORAGE_TYPE", "redis")
		os.Setenv("STOREFRONT_STORAGE_REDIS_URL", "redis://localhost:6379/0")
		os.Setenv("STOREFRONT_STORAGE_TTL", "720h")
		os.Setenv("STOREFRONT_CART_PERSIST_DELAY", "500ms")
		os.Setenv("STOREFRONT_ORDER_WHATSAPP_NUMBER", "5215550000000")
		os.Setenv("STOREFRONT_RATELIMIT_PER_IP", "10")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Feed.URL != "/srv/feed.csv" {
			t.Errorf("Feed.URL = %s, want /srv/feed.csv", cfg.Feed.URL)
		}
		if cfg.Feed.Timeout != 3*time.Second {
			t.Errorf("Feed.Timeout = %v, want 3s", cfg.Feed.Timeout)
		}
		if cfg.Feed.RefreshInterval != 0 {
			t.Errorf("Feed.RefreshInterval = %v, want 0", cfg.Feed.RefreshInterval)
		}
		if cfg.Storage.Type != "redis" {
			t.Errorf("Storage.Type = %s, want redis", cfg.Storage.Type)
		}
		if cfg.Storage.RedisURL != "redis://localhost:6379/0" {
			t.Errorf("Storage.RedisURL = %s, want redis://localhost:6379/0", cfg.Storage.RedisURL)
		}
		if cfg.Storage.TTL != 720*time.Hour {
			t.Errorf("Storage.TTL = %v, want 720h", cfg.Storage.TTL)
		}
		if cfg.Cart.PersistDelay != 500*time.Millisecond {
			t.Errorf("Cart.PersistDelay = %v, want 500ms", cfg.Cart.PersistDelay)
		}
		if cfg.Order.WhatsAppNumber != "5215550000000" {
			t.Errorf("Order.WhatsAppNumber = %s, want 5215550000000", cfg.Order.WhatsAppNumber)
		}
		if cfg.RateLimit.PerIP != 10 {
			t.Errorf("RateLimit.PerIP = %d, want 10", cfg.RateLimit.PerIP)
		}
	})

	t.Run("fails validation when feed URL is missing", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Fatal("Load() error = nil, want error for missing feed URL")
		}
		if err.Error() != "invalid configuration: feed URL is required (set STOREFRONT_FEED_URL)" {
			t.Errorf("Load() error = %v, want 'feed URL is required'", err)
		}
	})

	t.Run("fails validation for invalid storage type", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("STOREFRONT_FEED_URL", "feed.csv")
		os.Setenv("STOREFRONT_STORAGE_TYPE", "invalid")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for invalid storage type")
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		os.Chdir(t.TempDir())

		if err := loadEnvFile(); err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables from .env file", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		os.Chdir(t.TempDir())

		envContent := `
# Comment line
STOREFRONT_TEST_VAR_1=value1

STOREFRONT_TEST_VAR_2=value2
# STOREFRONT_TEST_COMMENTED=should_not_load
`
		if err := os.WriteFile(".env", []byte(envContent), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}
		defer func() {
			os.Unsetenv("STOREFRONT_TEST_VAR_1")
			os.Unsetenv("STOREFRONT_TEST_VAR_2")
		}()

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("STOREFRONT_TEST_VAR_1") != "value1" {
			t.Errorf("STOREFRONT_TEST_VAR_1 = %s, want value1", os.Getenv("STOREFRONT_TEST_VAR_1"))
		}
		if os.Getenv("STOREFRONT_TEST_VAR_2") != "value2" {
			t.Errorf("STOREFRONT_TEST_VAR_2 = %s, want value2", os.Getenv("STOREFRONT_TEST_VAR_2"))
		}
		if os.Getenv("STOREFRONT_TEST_COMMENTED") != "" {
			t.Errorf("STOREFRONT_TEST_COMMENTED should not be loaded from comment")
		}
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		os.Chdir(t.TempDir())

		os.Setenv("STOREFRONT_TEST_OVERRIDE", "existing-value")
		defer os.Unsetenv("STOREFRONT_TEST_OVERRIDE")

		if err := os.WriteFile(".env", []byte("STOREFRONT_TEST_OVERRIDE=new-value"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("STOREFRONT_TEST_OVERRIDE") != "existing-value" {
			t.Errorf("STOREFRONT_TEST_OVERRIDE = %s, want existing-value", os.Getenv("STOREFRONT_TEST_OVERRIDE"))
		}
	})
}

func validConfig() *Config {
	return &Config{
		Feed:    FeedConfig{URL: "https://docs.example.com/feed.csv"},
		Storage: StorageConfig{Type: "memory"},
		Cart:    CartConfig{PersistDelay: 120 * time.Millisecond},
		Order:   OrderConfig{Locale: "es-MX", Currency: "MXN"},
		Log:     LogConfig{Level: "info"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing feed URL", mutate: func(c *Config) { c.Feed.URL = "  " }, wantErr: true},
		{name: "unknown storage type", mutate: func(c *Config) { c.Storage.Type = "s3" }, wantErr: true},
		{name: "file without path", mutate: func(c *Config) { c.Storage.Type = "file" }, wantErr: true},
		{name: "file with path", mutate: func(c *Config) { c.Storage.Type = "file"; c.Storage.Path = "/tmp/cart" }},
		{name: "sqlite without path", mutate: func(c *Config) { c.Storage.Type = "sqlite" }, wantErr: true},
		{name: "redis with URL", mutate: func(c *Config) { c.Storage.Type = "redis"; c.Storage.RedisURL = "redis://localhost:6379" }},
		{name: "redis without URL", mutate: func(c *Config) { c.Storage.Type = "redis" }, wantErr: true},
		{name: "storage ttl", mutate: func(c *Config) { c.Storage.TTL = time.Hour }},
		{name: "negative storage ttl", mutate: func(c *Config) { c.Storage.TTL = -time.Second }, wantErr: true},
		{name: "zero persist delay", mutate: func(c *Config) { c.Cart.PersistDelay = 0 }, wantErr: true},
		{name: "bad locale", mutate: func(c *Config) { c.Order.Locale = "not a locale!" }, wantErr: true},
		{name: "bad currency", mutate: func(c *Config) { c.Order.Currency = "PESOS" }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOrderConfigParsing(t *testing.T) {
	o := OrderConfig{Locale: "es-MX", Currency: "USD"}
	if o.LocaleTag() != language.MustParse("es-MX") {
		t.Errorf("LocaleTag() = %v, want es-MX", o.LocaleTag())
	}
	if o.CurrencyUnit() != currency.USD {
		t.Errorf("CurrencyUnit() = %v, want USD", o.CurrencyUnit())
	}

	bad := OrderConfig{Locale: "???", Currency: "???"}
	if bad.CurrencyUnit() != currency.MXN {
		t.Errorf("CurrencyUnit() = %v, want MXN fallback", bad.CurrencyUnit())
	}
}
