package config

import (
	"testing"
	"time"
)

// setBaseEnv sets the minimum environment for Load to succeed.
func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/chat_api_test")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.RateLimitWindow != time.Minute {
		t.Errorf("RateLimitWindow = %v, want 1m", cfg.RateLimitWindow)
	}
	if cfg.RateLimitMax != 100 {
		t.Errorf("RateLimitMax = %d, want 100", cfg.RateLimitMax)
	}
	if cfg.RateLimitMaxChat != 10 {
		t.Errorf("RateLimitMaxChat = %d, want 10", cfg.RateLimitMaxChat)
	}
	if cfg.RateLimitSweepInterval != 5*time.Minute {
		t.Errorf("RateLimitSweepInterval = %v, want 5m", cfg.RateLimitSweepInterval)
	}
	if cfg.JWKSCacheMaxAge != 10*time.Minute {
		t.Errorf("JWKSCacheMaxAge = %v, want 10m", cfg.JWKSCacheMaxAge)
	}
	if cfg.TelemetrySink != "none" {
		t.Errorf("TelemetrySink = %q, want none", cfg.TelemetrySink)
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "test-secret")

	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is missing")
	}
}

func TestLoad_RequiresSecretOrKeySet(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/chat_api_test")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWKS_URL", "")

	if _, err := Load(); err == nil {
		t.Error("expected error when neither JWT_SECRET nor JWKS_URL is set")
	}
}

func TestLoad_InvalidTelemetrySink(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TELEMETRY_SINK", "kafka")

	if _, err := Load(); err == nil {
		t.Error("expected error for unknown TELEMETRY_SINK")
	}
}

func TestLoad_RabbitSinkRequiresURL(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TELEMETRY_SINK", "rabbitmq")
	t.Setenv("RABBITMQ_URL", "")

	if _, err := Load(); err == nil {
		t.Error("expected error when TELEMETRY_SINK=rabbitmq without RABBITMQ_URL")
	}
}

func TestLoad_Overrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("RATE_LIMIT_WINDOW_MS", "5000")
	t.Setenv("RATE_LIMIT_MAX", "25")
	t.Setenv("RATE_LIMIT_MAX_CHAT", "3")
	t.Setenv("JWKS_CACHE_MAX_AGE", "1m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RateLimitWindow != 5*time.Second {
		t.Errorf("RateLimitWindow = %v, want 5s", cfg.RateLimitWindow)
	}
	if cfg.RateLimitMax != 25 || cfg.RateLimitMaxChat != 3 {
		t.Errorf("ceilings = %d/%d, want 25/3", cfg.RateLimitMax, cfg.RateLimitMaxChat)
	}
	if cfg.JWKSCacheMaxAge != time.Minute {
		t.Errorf("JWKSCacheMaxAge = %v, want 1m", cfg.JWKSCacheMaxAge)
	}
}
