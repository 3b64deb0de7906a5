package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.ServerPort)
	}
	if cfg.JWTExpiry != 24*time.Hour {
		t.Errorf("expected 24h JWT expiry, got %v", cfg.JWTExpiry)
	}
	if cfg.PollDetailTTL != 30*time.Second {
		t.Errorf("expected 30s poll detail TTL, got %v", cfg.PollDetailTTL)
	}
	if cfg.MaxUploadBytes != 10*1024*1024 {
		t.Errorf("expected 10MB upload cap, got %d", cfg.MaxUploadBytes)
	}
	if cfg.AllowedOrigins != nil {
		t.Errorf("expected nil origins (allow all), got %v", cfg.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_EXPIRY_HOURS", "2")
	t.Setenv("MAX_DB_CONNS", "not-a-number")

	cfg := Load()

	if cfg.ServerPort != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.ServerPort)
	}
	if cfg.JWTExpiry != 2*time.Hour {
		t.Errorf("expected 2h JWT expiry, got %v", cfg.JWTExpiry)
	}
	if cfg.MaxDBConns != 16 {
		t.Errorf("expected fallback 16 on bad int, got %d", cfg.MaxDBConns)
	}
}

func TestParseOrigins(t *testing.T) {
	got := parseOrigins("https://a.example, https://b.example ,")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("unexpected origins: %v", got)
	}
	if parseOrigins("") != nil {
		t.Error("expected nil for empty input")
	}
}
