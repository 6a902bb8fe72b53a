package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.APIBaseURL != "http://127.0.0.1:8000/api/" {
		t.Fatalf("unexpected base url %q", cfg.APIBaseURL)
	}
	if cfg.SessionBackend != "file" {
		t.Fatalf("expected file backend, got %q", cfg.SessionBackend)
	}
	if cfg.HTTPTimeout != 0 {
		t.Fatalf("expected no timeout by default, got %v", cfg.HTTPTimeout)
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com/api/")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("HTTP_TIMEOUT", "15s")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.APIBaseURL != "https://api.example.com/api/" || cfg.SessionBackend != "redis" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.RedisDB != 3 || cfg.HTTPTimeout != 15*time.Second {
		t.Fatalf("unexpected redis db / timeout: %d %v", cfg.RedisDB, cfg.HTTPTimeout)
	}
}

func TestLoadConfig_InvalidNumber(t *testing.T) {
	t.Setenv("REDIS_DB", "nope")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadServerConfig_Defaults(t *testing.T) {
	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("load server config: %v", err)
	}
	if cfg.HTTPPort != "8000" || cfg.RateGBP != 0.74 || cfg.RateZAR != 17.75 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}
