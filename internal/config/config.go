package config

import (
	"fmt"
	"net/url"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
)

// RecommendationConfig selects which recommendation catalog the service serves.
// The value is checked by the recommendation service itself, so other services
// sharing the environment ignore it.
type RecommendationConfig struct {
	Version string `env:"VERSION" envDefault:"v1"`
}

// AppConfig is the centralized configuration struct for a stub service.
// It is populated from environment variables; a .env file can be auto-loaded by
// importing _ "github.com/joho/godotenv/autoload" in main.
type AppConfig struct {
	ServiceName        string `env:"SERVICE_NAME"`
	Port               int    `env:"PORT" envDefault:"8080"`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`
	Timezone           string `env:"APP_TIMEZONE" envDefault:"UTC"`
	ShutdownTimeoutSec int    `env:"SHUTDOWN_TIMEOUT_SEC" envDefault:"10"`
	ReadTimeoutSec     int    `env:"READ_TIMEOUT_SEC" envDefault:"5"`
	WriteTimeoutSec    int    `env:"WRITE_TIMEOUT_SEC" envDefault:"10"`
	MetricsEnabled     bool   `env:"METRICS_ENABLED" envDefault:"true"`
	SwaggerEnabled     bool   `env:"SWAGGER_ENABLED" envDefault:"true"`

	// CustomHeader is injected into every inbound request as "name:value".
	// Empty or malformed values use x-wasm-custom:istio-plugin-example.
	CustomHeader string `env:"CUSTOM_HEADER"`

	Recommendation RecommendationConfig `envPrefix:"RECOMMENDATION_"`

	location *time.Location
}

// Load reads configuration from environment variables.
// serviceName is used when SERVICE_NAME is not set.
func Load(serviceName string) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = serviceName
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	if cfg.ShutdownTimeoutSec <= 0 {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT_SEC %d", cfg.ShutdownTimeoutSec)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.location = loc

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *AppConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Location returns the timezone used for log timestamps. Defaults to UTC.
func (c *AppConfig) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func (c *AppConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSec) * time.Second
}

func (c *AppConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSec) * time.Second
}

func (c *AppConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSec) * time.Second
}

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string `env:"HOST"`
	Port               string `env:"PORT" envDefault:"5432"`
	User               string `env:"USER"`
	Password           string `env:"PASSWORD"`
	Name               string `env:"NAME"`
	SSLMode            string `env:"SSLMODE" envDefault:"disable"`
	MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetimeSec int    `env:"CONN_MAX_LIFETIME_SEC" envDefault:"300"`
}

// OrderProcessingConfig is the extra configuration of the order-processing
// service: its database and the inventory and payment services it calls.
type OrderProcessingConfig struct {
	Database DatabaseConfig `envPrefix:"DB_"`

	InventoryURL     string `env:"INVENTORY_SERVICE_URL" envDefault:"http://inventory-service:8080"`
	PaymentURL       string `env:"PAYMENT_SERVICE_URL" envDefault:"http://payment-service:8080"`
	ClientTimeoutSec int    `env:"CLIENT_TIMEOUT_SEC" envDefault:"5"`
	Currency         string `env:"PAYMENT_CURRENCY" envDefault:"USD"`
	AutoMigrate      bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

// LoadOrderProcessing reads the order-processing configuration from environment variables.
func LoadOrderProcessing() (*OrderProcessingConfig, error) {
	cfg := &OrderProcessingConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	for key, raw := range map[string]string{
		"INVENTORY_SERVICE_URL": cfg.InventoryURL,
		"PAYMENT_SERVICE_URL":   cfg.PaymentURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("invalid %s %q", key, raw)
		}
	}
	if cfg.ClientTimeoutSec <= 0 {
		return nil, fmt.Errorf("invalid CLIENT_TIMEOUT_SEC %d", cfg.ClientTimeoutSec)
	}
	if cfg.Currency == "" {
		return nil, fmt.Errorf("PAYMENT_CURRENCY is required")
	}

	return cfg, nil
}

func (c *OrderProcessingConfig) ClientTimeout() time.Duration {
	return time.Duration(c.ClientTimeoutSec) * time.Second
}
