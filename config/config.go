// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "HOMEKEEP_"

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Billing  BillingConfig  `yaml:"billing"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	OpenAPI  OpenAPIConfig  `yaml:"openapi"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	CORSOrigins  []string      `yaml:"cors_origins"` // empty disables CORS
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DatabaseConfig configures the database.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // only "sqlite"
	DSN    string `yaml:"dsn"`
}

// BillingConfig configures the billing engine. All fields are reloadable.
type BillingConfig struct {
	PlatformFee string `yaml:"platform_fee"` // decimal string, e.g. "5.00"
	Currency    string `yaml:"currency"`
	Timezone    string `yaml:"timezone"` // IANA name used for anchor dates
	TrialDays   int    `yaml:"trial_days"`
}

// Fee parses the platform fee.
func (b BillingConfig) Fee() (decimal.Decimal, error) {
	fee, err := decimal.NewFromString(strings.TrimSpace(b.PlatformFee))
	if err != nil {
		return decimal.Zero, fmt.Errorf("billing.platform_fee %q: %w", b.PlatformFee, err)
	}
	return fee, nil
}

// Location loads the billing timezone.
func (b BillingConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return nil, fmt.Errorf("billing.timezone %q: %w", b.Timezone, err)
	}
	return loc, nil
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// OpenAPIConfig configures the Swagger UI.
type OpenAPIConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Database: DatabaseConfig{Driver: "sqlite", DSN: "homekeep.db"},
		Billing: BillingConfig{
			PlatformFee: "5.00",
			Currency:    "USD",
			Timezone:    "UTC",
			TrialDays:   7,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
		OpenAPI: OpenAPIConfig{Enabled: true},
	}
}

// Load reads configuration from a YAML file. Keys missing from the file keep
// their defaults; HOMEKEEP_* variables override both.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse builds a configuration from raw YAML.
func Parse(data []byte) (*Config, error) {
	data = []byte(os.ExpandEnv(string(data)))

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return finish(&cfg)
}

// LoadFromEnv creates configuration from defaults and environment variables.
//
// Environment variables:
//
//	HOMEKEEP_SERVER_HOST            - Server host (default: 0.0.0.0)
//	HOMEKEEP_SERVER_PORT            - Server port (default: 8080)
//	HOMEKEEP_SERVER_CORS_ORIGINS    - Comma-separated allowed origins
//	HOMEKEEP_DATABASE_DSN           - Database path (default: homekeep.db)
//	HOMEKEEP_BILLING_PLATFORM_FEE   - Monthly platform fee (default: 5.00)
//	HOMEKEEP_BILLING_CURRENCY       - Display currency (default: USD)
//	HOMEKEEP_BILLING_TIMEZONE       - Billing calendar timezone (default: UTC)
//	HOMEKEEP_BILLING_TRIAL_DAYS     - Default trial length (default: 7)
//	HOMEKEEP_LOG_LEVEL              - debug, info, warn, error (default: info)
//	HOMEKEEP_LOG_FORMAT             - json or console (default: json)
//	HOMEKEEP_METRICS_ENABLED        - Enable /metrics (default: true)
//	HOMEKEEP_OPENAPI_ENABLED        - Enable Swagger UI (default: true)
func LoadFromEnv() (*Config, error) {
	cfg := Default()
	return finish(&cfg)
}

// LoadWithFallback loads path when it exists and falls back to the
// environment otherwise.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// Save writes cfg to path as YAML.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func finish(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg)
	setDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies HOMEKEEP_* environment variables to the config.
func applyEnvOverrides(cfg *Config) {
	env := func(key string) string {
		return os.Getenv(EnvPrefix + key)
	}

	// Server configuration
	if v := env("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := env("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := env("SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := env("SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if v := env("SERVER_CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}

	// Database configuration
	if v := env("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := env("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	// Billing configuration
	if v := env("BILLING_PLATFORM_FEE"); v != "" {
		cfg.Billing.PlatformFee = v
	}
	if v := env("BILLING_CURRENCY"); v != "" {
		cfg.Billing.Currency = v
	}
	if v := env("BILLING_TIMEZONE"); v != "" {
		cfg.Billing.Timezone = v
	}
	if v := env("BILLING_TRIAL_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Billing.TrialDays = n
		}
	}

	// Logging configuration
	if v := env("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := env("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Metrics configuration
	if v := env("METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := env("METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}

	// OpenAPI configuration
	if v := env("OPENAPI_ENABLED"); v != "" {
		cfg.OpenAPI.Enabled = parseBool(v)
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// setDefaults fills values that were explicitly blanked in the file.
func setDefaults(cfg *Config) {
	def := Default()

	if cfg.Server.Host == "" {
		cfg.Server.Host = def.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = def.Server.ReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = def.Server.WriteTimeout
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = def.Database.Driver
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = def.Database.DSN
	}

	if cfg.Billing.PlatformFee == "" {
		cfg.Billing.PlatformFee = "0"
	}
	if cfg.Billing.Currency == "" {
		cfg.Billing.Currency = def.Billing.Currency
	}
	cfg.Billing.Currency = strings.ToUpper(cfg.Billing.Currency)
	if cfg.Billing.Timezone == "" {
		cfg.Billing.Timezone = def.Billing.Timezone
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = def.Metrics.Path
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	if cfg.Database.Driver != "sqlite" {
		return fmt.Errorf("database.driver must be 'sqlite', got %q", cfg.Database.Driver)
	}

	fee, err := cfg.Billing.Fee()
	if err != nil {
		return err
	}
	if fee.IsNegative() {
		return fmt.Errorf("billing.platform_fee cannot be negative, got %s", fee)
	}
	if _, err := cfg.Billing.Location(); err != nil {
		return err
	}
	if cfg.Billing.TrialDays < 0 {
		return fmt.Errorf("billing.trial_days cannot be negative, got %d", cfg.Billing.TrialDays)
	}

	if _, err := zerolog.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/', got %q", cfg.Metrics.Path)
	}

	return nil
}
