// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/currency"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/models"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/store"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "WEALTHWISE"

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Currency struct {
		Primary   string `mapstructure:"primary" yaml:"primary"`
		Secondary string `mapstructure:"secondary" yaml:"secondary"`
		// Rate is units of the secondary currency per unit of the primary one.
		Rate string `mapstructure:"rate" yaml:"rate"`
	} `mapstructure:"currency" yaml:"currency"`

	Store struct {
		Driver   string               `mapstructure:"driver" yaml:"driver"`
		Path     string               `mapstructure:"path" yaml:"path"`
		Postgres store.PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
	} `mapstructure:"store" yaml:"store"`

	Import struct {
		DefaultBank string        `mapstructure:"default_bank" yaml:"default_bank"`
		Banks       []models.Bank `mapstructure:"banks" yaml:"banks"`
	} `mapstructure:"import" yaml:"import"`

	Webhook struct {
		TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		Attempts       int `mapstructure:"attempts" yaml:"attempts"`
		DelayMillis    int `mapstructure:"delay_ms" yaml:"delay_ms"`
	} `mapstructure:"webhook" yaml:"webhook"`

	AI struct {
		Enabled         bool   `mapstructure:"enabled" yaml:"enabled"`
		Model           string `mapstructure:"model" yaml:"model"`
		MaxTransactions int    `mapstructure:"max_transactions" yaml:"max_transactions"`
		TimeoutSeconds  int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
		APIKey          string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	} `mapstructure:"ai" yaml:"ai"`

	Server struct {
		Addr string `mapstructure:"addr" yaml:"addr"`
		Mode string `mapstructure:"mode" yaml:"mode"`
	} `mapstructure:"server" yaml:"server"`

	Settings struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"settings" yaml:"settings"`

	Categories struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"categories" yaml:"categories"`
}

// InitializeConfig loads configuration from the default locations.
func InitializeConfig() (*Config, error) {
	return Load("")
}

// Load initializes Viper configuration with hierarchical loading. A non-empty
// configFile replaces the search paths.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.wealthwise")
		v.AddConfigPath(".wealthwise")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// 5. Handle special case for API key (always from env, not prefixed)
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// DataDir is the directory holding the default database and settings files.
func DataDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".wealthwise")
	}
	return ".wealthwise"
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	dataDir := DataDir()

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Currency defaults
	v.SetDefault("currency.primary", currency.GBP)
	v.SetDefault("currency.secondary", currency.AED)
	v.SetDefault("currency.rate", currency.DefaultRate.String())

	// Store defaults
	v.SetDefault("store.driver", store.DriverSQLite)
	v.SetDefault("store.path", filepath.Join(dataDir, "wealthwise.db"))
	v.SetDefault("store.postgres.host", "localhost")
	v.SetDefault("store.postgres.port", 5432)
	v.SetDefault("store.postgres.database", "wealthwise")
	v.SetDefault("store.postgres.user", "wealthwise")
	v.SetDefault("store.postgres.password", "")
	v.SetDefault("store.postgres.sslmode", "disable")
	v.SetDefault("store.postgres.max_pool_size", 4)

	// Import defaults
	v.SetDefault("import.default_bank", "Monzo")
	v.SetDefault("import.banks", []map[string]string{
		{"name": "Monzo", "currency": currency.GBP},
		{"name": "Barclays", "currency": currency.GBP},
		{"name": "Emirates NBD", "currency": currency.AED},
	})

	// Webhook defaults
	v.SetDefault("webhook.timeout_seconds", 10)
	v.SetDefault("webhook.attempts", 1)
	v.SetDefault("webhook.delay_ms", 500)

	// AI defaults
	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.max_transactions", 50)
	v.SetDefault("ai.timeout_seconds", 30)

	// Server defaults
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")

	// File defaults
	v.SetDefault("settings.file", filepath.Join(dataDir, "settings.yaml"))
	v.SetDefault("categories.file", "")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	// Validate log level
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	// Validate log format
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	// Validate currency
	if !strings.EqualFold(config.Currency.Primary, currency.GBP) || !strings.EqualFold(config.Currency.Secondary, currency.AED) {
		return fmt.Errorf("unsupported currency pair %s/%s (only %s/%s)",
			config.Currency.Primary, config.Currency.Secondary, currency.GBP, currency.AED)
	}
	if _, err := config.ExchangeRate(); err != nil {
		return err
	}

	// Validate store
	switch strings.ToLower(config.Store.Driver) {
	case store.DriverMemory, store.DriverPostgres:
	case store.DriverSQLite:
		if config.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("invalid store driver: %s (must be 'memory', 'sqlite' or 'postgres')", config.Store.Driver)
	}

	// Validate import banks
	for _, b := range config.Import.Banks {
		if b.Name == "" {
			return fmt.Errorf("import.banks entries need a name")
		}
		if !strings.EqualFold(b.Currency, currency.GBP) && !strings.EqualFold(b.Currency, currency.AED) {
			return fmt.Errorf("bank %s has unsupported currency %q", b.Name, b.Currency)
		}
	}

	// Validate webhook
	if config.Webhook.Attempts < 1 || config.Webhook.Attempts > 10 {
		return fmt.Errorf("webhook.attempts must be between 1 and 10, got: %d", config.Webhook.Attempts)
	}
	if config.Webhook.TimeoutSeconds < 1 || config.Webhook.TimeoutSeconds > 300 {
		return fmt.Errorf("webhook.timeout_seconds must be between 1 and 300, got: %d", config.Webhook.TimeoutSeconds)
	}

	// Validate AI configuration
	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
	}

	// Validate server mode
	switch config.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid server mode: %s (must be 'debug', 'release' or 'test')", config.Server.Mode)
	}

	return nil
}

// ExchangeRate parses the configured conversion rate.
func (c *Config) ExchangeRate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(c.Currency.Rate))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid currency rate %q: %w", c.Currency.Rate, err)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("currency rate must be positive, got: %s", c.Currency.Rate)
	}
	return rate, nil
}

// StoreConfig returns the persistence backend settings.
func (c *Config) StoreConfig() store.Config {
	return store.Config{
		Driver:     strings.ToLower(c.Store.Driver),
		SQLitePath: c.Store.Path,
		Postgres:   c.Store.Postgres,
	}
}

// WebhookTimeout returns the per-request webhook timeout.
func (c *Config) WebhookTimeout() time.Duration {
	return time.Duration(c.Webhook.TimeoutSeconds) * time.Second
}

// WebhookDelay returns the pause between webhook attempts.
func (c *Config) WebhookDelay() time.Duration {
	return time.Duration(c.Webhook.DelayMillis) * time.Millisecond
}

// AITimeout returns the deadline for one advice request.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}
