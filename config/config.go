package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Feed      FeedConfig
	Storage   StorageConfig
	Cart      CartConfig
	Order     OrderConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// FeedConfig holds product feed configuration
type FeedConfig struct {
	URL               string        `mapstructure:"url"` // http(s) URL or local file path
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	RefreshInterval   time.Duration `mapstructure:"refresh_interval"`
}

// StorageConfig holds cart persistence configuration
type StorageConfig struct {
	Type     string        `mapstructure:"type"` // "memory", "file", "sqlite" or "redis"
	Path     string        `mapstructure:"path"`
	RedisURL string        `mapstructure:"redis_url"`
	Key      string        `mapstructure:"key"`
	TTL      time.Duration `mapstructure:"ttl"` // memory and redis only, 0 keeps records forever
}

// CartConfig holds cart behavior configuration
type CartConfig struct {
	PersistDelay     time.Duration `mapstructure:"persist_delay"`
	PlaceholderImage string        `mapstructure:"placeholder_image"`
}

// OrderConfig holds order summary configuration
type OrderConfig struct {
	Title          string `mapstructure:"title"`
	Footer         string `mapstructure:"footer"`
	WhatsAppNumber string `mapstructure:"whatsapp_number"`
	EmailTo        string `mapstructure:"email_to"`
	Locale         string `mapstructure:"locale"`
	Currency       string `mapstructure:"currency"`
	CurrencySymbol string `mapstructure:"currency_symbol"`
}

// LocaleTag returns the parsed locale, falling back to es-MX
func (o OrderConfig) LocaleTag() language.Tag {
	tag, err := language.Parse(o.Locale)
	if err != nil {
		return language.MustParse("es-MX")
	}
	return tag
}

// CurrencyUnit returns the parsed currency, falling back to MXN
func (o OrderConfig) CurrencyUnit() currency.Unit {
	unit, err := currency.ParseISO(o.Currency)
	if err != nil {
		return currency.MXN
	}
	return unit
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute, 0 disables
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Storage types accepted by storage.type
var storageTypes = []string{"memory", "file", "sqlite", "redis"}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/storefront/")

	// Environment variable settings
	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory if present.
// Variables already set in the environment win.
func loadEnvFile() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// setDefaults sets default configuration values. Every key needs a default
// so AutomaticEnv can bind it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Feed defaults
	v.SetDefault("feed.url", "")
	v.SetDefault("feed.timeout", "15s")
	v.SetDefault("feed.requests_per_minute", 30)
	v.SetDefault("feed.refresh_interval", "5m")

	// Storage defaults
	v.SetDefault("storage.type", "memory")
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.redis_url", "")
	v.SetDefault("storage.key", "taabal-select:cart:v1")
	v.SetDefault("storage.ttl", "0s")

	// Cart defaults
	v.SetDefault("cart.persist_delay", "120ms")
	v.SetDefault("cart.placeholder_image", "/assets/images/imagen-prueba.webp")

	// Order defaults
	v.SetDefault("order.title", "Pedido Taabal Select")
	v.SetDefault("order.footer", "Para facturación es necesaria su constancia de situación fiscal no mayor a 3 meses de antigüedad.")
	v.SetDefault("order.whatsapp_number", "111")
	v.SetDefault("order.email_to", "Ventas@TabaalSelect.com")
	v.SetDefault("order.locale", "es-MX")
	v.SetDefault("order.currency", "MXN")
	v.SetDefault("order.currency_symbol", "$")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 120)

	v.SetDefault("log.level", "info")
}

// validate validates the configuration
func validate(config *Config) error {
	if strings.TrimSpace(config.Feed.URL) == "" {
		return fmt.Errorf("feed URL is required (set STOREFRONT_FEED_URL)")
	}

	if !contains(storageTypes, config.Storage.Type) {
		return fmt.Errorf("storage type must be one of %s, got: %s", strings.Join(storageTypes, ", "), config.Storage.Type)
	}

	if (config.Storage.Type == "file" || config.Storage.Type == "sqlite") && config.Storage.Path == "" {
		return fmt.Errorf("storage path is required when storage type is '%s'", config.Storage.Type)
	}

	if config.Storage.Type == "redis" && config.Storage.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when storage type is 'redis'")
	}

	if config.Storage.TTL < 0 {
		return fmt.Errorf("storage TTL must not be negative, got: %s", config.Storage.TTL)
	}

	if config.Cart.PersistDelay <= 0 {
		return fmt.Errorf("cart persist delay must be positive, got: %s", config.Cart.PersistDelay)
	}

	if _, err := language.Parse(config.Order.Locale); err != nil {
		return fmt.Errorf("invalid order locale %q: %w", config.Order.Locale, err)
	}

	if _, err := currency.ParseISO(config.Order.Currency); err != nil {
		return fmt.Errorf("invalid order currency %q: %w", config.Order.Currency, err)
	}

	if _, err := zapcore.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
