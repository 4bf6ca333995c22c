package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Overlap policies accepted by BOOKING_OVERLAP_POLICY
const (
	OverlapPolicyInclusive = "inclusive"
	OverlapPolicyHalfOpen  = "half_open"
)

// Confirmation modes accepted by BOOKING_CONFIRMATION_MODE
const (
	ConfirmationModeLegacy     = "legacy"
	ConfirmationModeSerialized = "serialized"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Identity token configuration
	Auth AuthConfig

	// CORS configuration
	CORS CORSConfig

	// Payment provider configuration
	Payment PaymentConfig

	// Redis configuration (drafts, rate limiting)
	Redis RedisConfig

	// RabbitMQ configuration (booking events)
	RabbitMQ RabbitMQConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// Booking behaviour
	Booking BookingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error

	// Proxies (IPs or CIDRs) whose X-Forwarded-For and X-Real-IP headers are
	// believed. Empty means the socket peer is the client.
	TrustedProxies []string
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// AuthConfig holds the identity token settings
type AuthConfig struct {
	JWTSecret   string
	Issuer      string
	TokenExpiry time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// PaymentConfig holds Stripe configuration
type PaymentConfig struct {
	StripeSecretKey string // SECRET - never expose to client
	WebhookSecret   string
	DefaultCurrency string
	VerifyOnConfirm bool // require the remote intent to be succeeded before confirming
}

// RedisConfig holds Redis connection settings. Empty URL disables Redis.
type RedisConfig struct {
	URL string
}

// RabbitMQConfig holds broker settings. Empty URL disables publishing.
type RabbitMQConfig struct {
	URL   string
	Queue string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled       bool
	Requests      int
	WindowSeconds int
}

// BookingConfig holds booking rules
type BookingConfig struct {
	OverlapPolicy      string // inclusive or half_open
	ConfirmationMode   string // legacy or serialized
	DraftTTL           time.Duration
	EnforceOwnerDelete bool
	PurgeUnpaidAfter   time.Duration // 0 keeps abandoned intents forever
	PurgeSchedule      string        // cron expression with seconds
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Environment:    getEnv("ENVIRONMENT", "development"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			TrustedProxies: getEnvAsSlice("TRUSTED_PROXIES", nil),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("AUTH_JWT_SECRET", ""),
			Issuer:      getEnv("AUTH_ISSUER", "staynest-identity"),
			TokenExpiry: getEnvAsDuration("AUTH_TOKEN_EXPIRY", time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Payment: PaymentConfig{
			StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret:   getEnv("STRIPE_WEBHOOK_SECRET", ""),
			DefaultCurrency: strings.ToLower(getEnv("PAYMENT_DEFAULT_CURRENCY", "usd")),
			VerifyOnConfirm: getEnvAsBool("PAYMENT_VERIFY_ON_CONFIRM", false),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   getEnv("RABBITMQ_URL", ""),
			Queue: getEnv("RABBITMQ_BOOKING_QUEUE", "booking.events"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getEnvAsBool("RATE_LIMIT_ENABLED", true),
			Requests:      getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
			WindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		},
		Booking: BookingConfig{
			OverlapPolicy:      getEnv("BOOKING_OVERLAP_POLICY", OverlapPolicyInclusive),
			ConfirmationMode:   getEnv("BOOKING_CONFIRMATION_MODE", ConfirmationModeLegacy),
			DraftTTL:           getEnvAsDuration("BOOKING_DRAFT_TTL", 30*time.Minute),
			EnforceOwnerDelete: getEnvAsBool("BOOKING_ENFORCE_OWNER_DELETE", false),
			PurgeUnpaidAfter:   getEnvAsDuration("BOOKING_PURGE_UNPAID_AFTER", 0),
			PurgeSchedule:      getEnv("BOOKING_PURGE_SCHEDULE", "0 0 3 * * *"),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}

	switch c.Booking.OverlapPolicy {
	case OverlapPolicyInclusive, OverlapPolicyHalfOpen:
	default:
		return fmt.Errorf("invalid BOOKING_OVERLAP_POLICY: %s (must be '%s' or '%s')",
			c.Booking.OverlapPolicy, OverlapPolicyInclusive, OverlapPolicyHalfOpen)
	}

	switch c.Booking.ConfirmationMode {
	case ConfirmationModeLegacy, ConfirmationModeSerialized:
	default:
		return fmt.Errorf("invalid BOOKING_CONFIRMATION_MODE: %s (must be '%s' or '%s')",
			c.Booking.ConfirmationMode, ConfirmationModeLegacy, ConfirmationModeSerialized)
	}

	for _, proxy := range c.Server.TrustedProxies {
		if net.ParseIP(proxy) == nil {
			if _, _, err := net.ParseCIDR(proxy); err != nil {
				return fmt.Errorf("invalid TRUSTED_PROXIES entry: %s", proxy)
			}
		}
	}

	if c.Booking.DraftTTL <= 0 {
		return fmt.Errorf("BOOKING_DRAFT_TTL must be positive")
	}

	if c.Booking.PurgeUnpaidAfter < 0 {
		return fmt.Errorf("BOOKING_PURGE_UNPAID_AFTER must not be negative")
	}

	// A live Stripe key without a webhook secret would accept unsigned confirmations
	if c.Server.Environment == "production" && c.Payment.StripeSecretKey != "" && c.Payment.WebhookSecret == "" {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET is required when STRIPE_SECRET_KEY is set in production")
	}

	return nil
}

// StrictConfirmation reports whether confirmations are serialized per room
func (c BookingConfig) StrictConfirmation() bool {
	return c.ConfirmationMode == ConfirmationModeSerialized
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go duration strings ("45m") or plain seconds ("2700")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if seconds, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(seconds) * time.Second
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid duration value for %s, using default: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
