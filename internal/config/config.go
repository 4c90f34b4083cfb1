package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Cart    CartConfig    `mapstructure:"cart"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Log     LogConfig     `mapstructure:"log"`
}

// BackendConfig holds storefront backend connection settings
type BackendConfig struct {
	BaseURL              string   `mapstructure:"base_url"`
	Timeout              int      `mapstructure:"timeout"` // Seconds, 0 keeps the HTTP client default
	MaxRequestsPerSecond int      `mapstructure:"max_requests_per_second"`
	Proxies              []string `mapstructure:"proxies"`
	UserAgent            string   `mapstructure:"user_agent"`

	// Session
	SessionCookieName string `mapstructure:"session_cookie_name"`
	SessionCookie     string `mapstructure:"session_cookie"`
}

// CartConfig holds cart store behaviour
type CartConfig struct {
	FeeProductID          string `mapstructure:"fee_product_id"` // Empty means ask the backend
	MaxQuantity           int    `mapstructure:"max_quantity"`
	DiscardStaleResponses bool   `mapstructure:"discard_stale_responses"`
}

// RedisConfig holds Redis connection details for session state
type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	Database  int    `mapstructure:"database"`
	KeyPrefix string `mapstructure:"key_prefix"`
	Session   string `mapstructure:"session"` // Key suffix, one per local profile
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads .env, then config.yaml from the current directory (or path when
// given), with environment variable overrides. A missing config.yaml is only
// an error when path was set explicitly.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debugf("No .env file loaded: %v", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug("config.yaml not found, using defaults and environment")
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url must be set")
	}
	if c.Cart.MaxQuantity < 1 {
		return fmt.Errorf("cart.max_quantity must be at least 1, got %d", c.Cart.MaxQuantity)
	}
	if c.Backend.MaxRequestsPerSecond < 0 {
		return fmt.Errorf("backend.max_requests_per_second must not be negative")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.base_url", "http://localhost:8080")
	v.SetDefault("backend.timeout", 0)
	v.SetDefault("backend.max_requests_per_second", 10)
	v.SetDefault("backend.proxies", []string{})
	v.SetDefault("backend.user_agent", "storefront-cli/1.0")
	v.SetDefault("backend.session_cookie_name", "JSESSIONID")
	v.SetDefault("backend.session_cookie", "")

	v.SetDefault("cart.fee_product_id", "")
	v.SetDefault("cart.max_quantity", 99)
	v.SetDefault("cart.discard_stale_responses", false)

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.key_prefix", "storefront:session:")
	v.SetDefault("redis.session", "default")

	v.SetDefault("log.level", "info")
}
