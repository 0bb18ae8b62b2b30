package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const defaultJWTSecret = "change-me-jwt-secret"

type Config struct {
	App struct {
		Env      string `envconfig:"APP_ENV" default:"development"`
		Port     int    `envconfig:"PORT" default:"8080"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	}

	DB struct {
		URL         string `envconfig:"DATABASE_URL" default:"petclinic.db"`
		AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`
	}

	JWT struct {
		Secret string        `envconfig:"JWT_SECRET" default:"change-me-jwt-secret"`
		TTL    time.Duration `envconfig:"JWT_TTL" default:"12h"`
	}

	Redis struct {
		Addr     string `envconfig:"REDIS_ADDR"`
		Password string `envconfig:"REDIS_PASSWORD"`
		DB       int    `envconfig:"REDIS_DB" default:"0"`
	}

	Assignment struct {
		LeaseTTL  time.Duration `envconfig:"ASSIGNMENT_LEASE_TTL" default:"5s"`
		LeaseWait time.Duration `envconfig:"ASSIGNMENT_LEASE_WAIT" default:"2s"`
	}

	Kafka struct {
		Brokers       []string `envconfig:"KAFKA_BROKERS"`
		TopicBookings string   `envconfig:"KAFKA_TOPIC_BOOKINGS" default:"petclinic.bookings"`
		TopicInvoices string   `envconfig:"KAFKA_TOPIC_INVOICES" default:"petclinic.invoices"`
	}

	Loyalty struct {
		PointUnit int64 `envconfig:"LOYALTY_POINT_UNIT" default:"1000"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`
	}
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if c.Assignment.LeaseTTL <= 0 {
		return fmt.Errorf("ASSIGNMENT_LEASE_TTL must be > 0")
	}
	if c.Assignment.LeaseWait < 0 {
		return fmt.Errorf("ASSIGNMENT_LEASE_WAIT must be >= 0")
	}
	if c.Loyalty.PointUnit <= 0 {
		return fmt.Errorf("LOYALTY_POINT_UNIT must be > 0")
	}
	if c.IsProduction() && strings.TrimSpace(c.JWT.Secret) == defaultJWTSecret {
		return fmt.Errorf("in production JWT_SECRET must be set and not default")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.App.Env))
	return env == "prod" || env == "production" || env == "release"
}
