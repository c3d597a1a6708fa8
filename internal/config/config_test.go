package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.PostgresURL == "" {
		t.Fatalf("expected default postgres url")
	}
	if cfg.EnginePreset == "" {
		t.Fatalf("expected default engine preset")
	}
	if cfg.SpeedLimitMps <= 0 {
		t.Fatalf("expected default speed limit")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("POSTGRES_URL", "postgres://example")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ENGINE_PRESET", "sensitive")
	t.Setenv("TRIPLOG_URL", "http://triplog.example")

	cfg := Load()
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.PostgresURL != "postgres://example" {
		t.Fatalf("expected override postgres")
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected override redis")
	}
	if cfg.JWTSecret != "secret" {
		t.Fatalf("expected override secret")
	}
	if cfg.EnginePreset != "sensitive" {
		t.Fatalf("expected override preset")
	}
	if cfg.TripLogURL != "http://triplog.example" {
		t.Fatalf("expected override triplog url")
	}
}
