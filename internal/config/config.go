package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds application configuration
type Config struct {
	DatabaseURL string `validate:"required"`
	ServerPort  string `validate:"required,numeric"`
	BaseURL     string `validate:"required,url"`
	FrontendURL string

	// Token verification
	JWTSecret       string        // shared secret for symmetric (HS256) tokens
	JWKSURL         string        `validate:"omitempty,url"` // remote key set for asymmetric tokens
	JWTAudience     string
	JWTIssuer       string
	JWKSCacheMaxAge time.Duration `validate:"min=0"`

	// Admission throttling
	RateLimitWindow        time.Duration `validate:"gt=0"`
	RateLimitMax           int           `validate:"gt=0"`
	RateLimitMaxChat       int           `validate:"gt=0"`
	RateLimitSweepInterval time.Duration `validate:"gt=0"`

	// Decision telemetry
	TelemetrySink string `validate:"oneof=redis rabbitmq none"`
	RedisURL      string
	RabbitMQURL   string

	EnableHSTS      bool
	ServerDebugMode bool
	OTELEnabled     bool
	OTELEndpoint    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWKSURL:         getEnv("JWKS_URL", ""),
		JWTAudience:     getEnv("JWT_AUDIENCE", ""),
		JWTIssuer:       getEnv("JWT_ISSUER", ""),
		JWKSCacheMaxAge: getEnvDuration("JWKS_CACHE_MAX_AGE", 10*time.Minute),

		RateLimitWindow:        time.Duration(getEnvInt("RATE_LIMIT_WINDOW_MS", 60000)) * time.Millisecond,
		RateLimitMax:           getEnvInt("RATE_LIMIT_MAX", 100),
		RateLimitMaxChat:       getEnvInt("RATE_LIMIT_MAX_CHAT", 10),
		RateLimitSweepInterval: getEnvDuration("RATE_LIMIT_SWEEP_INTERVAL", 5*time.Minute),

		TelemetrySink: getEnv("TELEMETRY_SINK", "none"),
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RabbitMQURL:   getEnv("RABBITMQ_URL", ""),

		EnableHSTS:      getEnvBool("ENABLE_HSTS", false),
		ServerDebugMode: getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:     getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.JWTSecret == "" && cfg.JWKSURL == "" {
		return nil, fmt.Errorf("at least one of JWT_SECRET or JWKS_URL is required")
	}

	if cfg.TelemetrySink == "rabbitmq" && cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required when TELEMETRY_SINK=rabbitmq")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
