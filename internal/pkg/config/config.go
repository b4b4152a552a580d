// Package config assembles the service configuration from the environment.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/giftcraft/ingest/internal/pkg/env"
)

// Config is read once at startup and passed to the components that need it.
type Config struct {
	AppEnv   string `validate:"oneof=dev prod test"`
	HTTPAddr string `validate:"required"`

	// Empty secrets disable verification for that provider.
	PaymentWebhookSecret   string
	LogisticsWebhookSecret string
	WebhookTimeout         time.Duration `validate:"gt=0"`
	DefaultCurrency        string        `validate:"len=3,alpha"`

	DB    DBConfig
	Cache CacheConfig
	Ops   OpsConfig
}

type DBConfig struct {
	User        string
	Password    string
	Host        string `validate:"required"`
	Port        string `validate:"required,numeric"`
	Name        string `validate:"required"`
	AutoMigrate bool
}

type CacheConfig struct {
	Host     string `validate:"required"`
	Port     string `validate:"required,numeric"`
	Password string
	DB       int `validate:"gte=0,lte=15"`
}

// OpsConfig guards the operator endpoints. An empty PasswordHash disables them.
type OpsConfig struct {
	User         string `validate:"required_with=PasswordHash"`
	PasswordHash string `validate:"omitempty,startswith=$2"`
	RateLimit    int    `validate:"gt=0"`
}

// Enabled reports whether operator endpoints are mounted.
func (o OpsConfig) Enabled() bool {
	return o.PasswordHash != ""
}

var validate = validator.New()

// Load reads the configuration via env.GetEnv and validates it.
func Load() (*Config, error) {
	timeout, err := time.ParseDuration(env.GetEnv("WEBHOOK_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("config: WEBHOOK_TIMEOUT: %w", err)
	}
	cacheDB, err := strconv.Atoi(env.GetEnv("CACHE_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("config: CACHE_DB: %w", err)
	}
	rateLimit, err := strconv.Atoi(env.GetEnv("OPS_RATE_LIMIT", "30"))
	if err != nil {
		return nil, fmt.Errorf("config: OPS_RATE_LIMIT: %w", err)
	}

	cfg := &Config{
		AppEnv:                 env.GetEnv("APP_ENV", "prod"),
		HTTPAddr:               env.GetEnv("HTTP_ADDR", ":8080"),
		PaymentWebhookSecret:   strings.TrimSpace(env.GetEnv("RAZORPAY_WEBHOOK_SECRET", "")),
		LogisticsWebhookSecret: strings.TrimSpace(env.GetEnv("SHIPROCKET_WEBHOOK_TOKEN", "")),
		WebhookTimeout:         timeout,
		DefaultCurrency:        strings.ToUpper(env.GetEnv("DEFAULT_CURRENCY", "INR")),
		DB: DBConfig{
			User:        env.GetEnv("DB_USER", ""),
			Password:    env.GetEnv("DB_PASSWORD", ""),
			Host:        env.GetEnv("DB_HOST", "127.0.0.1"),
			Port:        env.GetEnv("DB_PORT", "3306"),
			Name:        env.GetEnv("DB_NAME", "giftcraft"),
			AutoMigrate: env.GetEnv("DB_AUTO_MIGRATE", "false") == "true",
		},
		Cache: CacheConfig{
			Host:     env.GetEnv("CACHE_HOST", "localhost"),
			Port:     env.GetEnv("CACHE_PORT", "6379"),
			Password: env.GetEnv("CACHE_PASSWORD", ""),
			DB:       cacheDB,
		},
		Ops: OpsConfig{
			User:         env.GetEnv("OPS_USER", ""),
			PasswordHash: env.GetEnv("OPS_PASSWORD_HASH", ""),
			RateLimit:    rateLimit,
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// DSN returns the MySQL data source name. clientFoundRows makes RowsAffected
// count matched rows, so an identical re-application is not reported as stale.
func (d DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC&clientFoundRows=true",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// MigrateURL returns the golang-migrate database URL.
func (d DBConfig) MigrateURL() string {
	return fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s?multiStatements=true",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

// Addr returns host:port for the Redis client.
func (c CacheConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}
