package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	FoodDB     FoodDBConfig `mapstructure:"fooddb"`
	Advisory   AdvisoryConfig
	Cache      CacheConfig
	History    HistoryConfig
	Classifier ClassifierConfig
	RateLimit  RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// FoodDBConfig holds food database (Open Food Facts) configuration
type FoodDBConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
}

// AdvisoryConfig holds advisory endpoint configuration. An empty URL
// disables advisory consultation entirely.
type AdvisoryConfig struct {
	URL               string        `mapstructure:"url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	ConsultOnNotFound bool          `mapstructure:"consult_on_not_found"`
}

// CacheConfig holds verdict cache configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// HistoryConfig holds scan history configuration
type HistoryConfig struct {
	Capacity int    `mapstructure:"capacity"`
	File     string `mapstructure:"file"`
}

// ClassifierConfig holds classifier configuration
type ClassifierConfig struct {
	DefaultLang string `mapstructure:"default_lang"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/labelsafe/")

	v.SetEnvPrefix("LABELSAFE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything.
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

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"capacitor://localhost", "http://localhost"})

	v.SetDefault("fooddb.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("fooddb.user_agent", "labelsafe-backend/1.0")

	v.SetDefault("advisory.url", "")
	v.SetDefault("advisory.timeout", "12s")
	v.SetDefault("advisory.consult_on_not_found", true)

	v.SetDefault("cache.ttl", "6h")

	v.SetDefault("history.capacity", 50)
	v.SetDefault("history.file", "")

	v.SetDefault("classifier.default_lang", "sk")

	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.FoodDB.BaseURL == "" {
		return fmt.Errorf("food database base URL is required (set LABELSAFE_FOODDB_BASE_URL)")
	}

	if config.Advisory.Timeout <= 0 {
		return fmt.Errorf("advisory timeout must be positive, got: %s", config.Advisory.Timeout)
	}

	if config.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got: %s", config.Cache.TTL)
	}

	if config.History.Capacity <= 0 {
		return fmt.Errorf("history capacity must be positive, got: %d", config.History.Capacity)
	}

	switch config.Classifier.DefaultLang {
	case "sk", "cs", "en":
	default:
		return fmt.Errorf("classifier default language must be one of sk, cs, en, got: %s", config.Classifier.DefaultLang)
	}

	return nil
}
