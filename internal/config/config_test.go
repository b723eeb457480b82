package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("SSID_SOURCE", "")
	t.Setenv("JWT_EXPIRY_HOURS", "")

	cfg := Load()
	if cfg.StorageBackend != StorageCSV {
		t.Errorf("StorageBackend = %q, want %q", cfg.StorageBackend, StorageCSV)
	}
	if cfg.SSIDSource != SSIDSourceClient {
		t.Errorf("SSIDSource = %q, want %q", cfg.SSIDSource, SSIDSourceClient)
	}
	if cfg.JWTExpiry != 12*time.Hour {
		t.Errorf("JWTExpiry = %s, want 12h", cfg.JWTExpiry)
	}
	if cfg.QRSize != 200 {
		t.Errorf("QRSize = %d, want 200", cfg.QRSize)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "Postgres")
	t.Setenv("MIGRATE_ON_START", "true")
	t.Setenv("MAX_DB_CONNS", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", " http://a.test , ,http://b.test")

	cfg := Load()
	if cfg.StorageBackend != StoragePostgres {
		t.Errorf("StorageBackend = %q, want %q", cfg.StorageBackend, StoragePostgres)
	}
	if !cfg.MigrateOnStart {
		t.Error("MigrateOnStart = false, want true")
	}
	if cfg.MaxDBConns != 8 {
		t.Errorf("MaxDBConns = %d, want fallback 8", cfg.MaxDBConns)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "http://a.test" || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestCacheKeys(t *testing.T) {
	if got := CacheKey.LoginSessionKey("student", "11"); got != "login:student:11" {
		t.Errorf("LoginSessionKey = %q", got)
	}
	if got := CacheKey.ClassLiveChannel("LMP-2"); got != "class:LMP-2:live" {
		t.Errorf("ClassLiveChannel = %q", got)
	}
}
