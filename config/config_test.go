package config

import (
	"testing"
	"time"

	"github.com/pion/logging"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENVIRONMENT", "ALLOWED_ORIGINS", "ADMIN_JWT_SECRET",
		"CLEANUP_DELAY", "LOG_LEVEL", "REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8081" {
		t.Errorf("Port = %q, want 8081", cfg.Port)
	}
	if cfg.CleanupDelay != 2*time.Second {
		t.Errorf("CleanupDelay = %v, want 2s", cfg.CleanupDelay)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.Redis.Enabled() {
		t.Error("Redis should be disabled without REDIS_HOST")
	}
	if cfg.LogLevel != logging.LogLevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("CLEANUP_DELAY", "500ms")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()

	if cfg.Port != "9000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.CleanupDelay != 500*time.Millisecond {
		t.Errorf("CleanupDelay = %v", cfg.CleanupDelay)
	}
	if cfg.LogLevel != logging.LogLevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if !cfg.Redis.Enabled() || cfg.Redis.DB != 3 {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("CLEANUP_DELAY", "soon")
	t.Setenv("REDIS_DB", "x")

	cfg := Load()

	if cfg.CleanupDelay != 2*time.Second {
		t.Errorf("CleanupDelay = %v, want default", cfg.CleanupDelay)
	}
	if cfg.Redis.DB != 0 {
		t.Errorf("Redis.DB = %d, want 0", cfg.Redis.DB)
	}
}
