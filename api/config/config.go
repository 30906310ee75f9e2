package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds the global application configuration
var AppConfig *Config

// Config holds the application configuration
type Config struct {
	DatabaseURL         string
	StripeSecretKey     string
	StripeWebhookSecret string
	RedisURL            string
	// Path to the YAML price catalog (plan -> cycle -> item kind -> price id)
	PriceCatalogFile string
	// Frontend origin that plan-change redirects are rendered against
	FrontendURL string
	// Server ports
	HTTPPort string
	GRPCPort string

	GiftTrialTTL      time.Duration
	StripeRateLimitRP float64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{}

	// Try to load .env file from current directory and parent directories
	currentDir, _ := os.Getwd()
	for currentDir != "/" {
		envPath := filepath.Join(currentDir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			err = godotenv.Load(envPath)
			if err != nil {
				return nil, fmt.Errorf("failed to load .env file: %v", err)
			}
			break
		}
		currentDir = filepath.Dir(currentDir)
	}

	stringVars := []struct {
		name     string
		envVar   string
		display  string
		required bool
	}{
		{"DatabaseURL", "DATABASE_URL", "Database URL", true},
		{"StripeSecretKey", "STRIPE_SECRET_KEY", "Stripe Secret Key", true},
		{"StripeWebhookSecret", "STRIPE_WEBHOOK_SECRET", "Stripe Webhook Secret", true},
		{"RedisURL", "REDIS_URL", "Redis URL", false},
		{"PriceCatalogFile", "PRICE_CATALOG_FILE", "Price Catalog File", false},
		{"FrontendURL", "AP_FRONTEND_URL", "Frontend URL", false},
		{"HTTPPort", "PORT", "HTTP Port", false},
		{"GRPCPort", "GRPC_PORT", "gRPC Port", false},
	}

	for _, v := range stringVars {
		value := os.Getenv(v.envVar)
		if v.required && value == "" {
			return nil, fmt.Errorf("missing required environment variable: %s", v.display)
		}
		configField := reflect.ValueOf(config).Elem().FieldByName(v.name)
		configField.SetString(value)
	}

	if raw := os.Getenv("GIFT_TRIAL_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid GIFT_TRIAL_TTL %q: %v", raw, err)
		}
		config.GiftTrialTTL = ttl
	}
	if raw := os.Getenv("STRIPE_RATE_LIMIT_RPS"); raw != "" {
		rps, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid STRIPE_RATE_LIMIT_RPS %q: %v", raw, err)
		}
		config.StripeRateLimitRP = rps
	}

	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.HTTPPort == "" {
		config.HTTPPort = "8080"
	}
	if config.GRPCPort == "" {
		config.GRPCPort = "50051"
	}
	if config.RedisURL == "" {
		config.RedisURL = "redis://localhost:6379/0"
	}
	if config.PriceCatalogFile == "" {
		config.PriceCatalogFile = DefaultCatalogFile
	}
	if config.FrontendURL == "" {
		config.FrontendURL = "http://localhost:5000"
	}
	if config.GiftTrialTTL <= 0 {
		config.GiftTrialTTL = DefaultGiftTrialTTL
	}
	if config.StripeRateLimitRP <= 0 {
		config.StripeRateLimitRP = DefaultStripeRateLimit
	}
}
