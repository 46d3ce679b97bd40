package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "AMZHUB_DB_DRIVER", "AMZHUB_DB_PATH", "AMZHUB_DATABASE_URL",
		"AMZHUB_SECRET_PASSPHRASE", "AMZHUB_REDIS_ADDR", "AMZHUB_CACHE_TTL_HOURS",
		"AMZHUB_CONFIG_FILE", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8090" {
		t.Fatalf("default port = %q", cfg.Port)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("default driver = %q", cfg.DBDriver)
	}
	if cfg.CacheTTLHours != 24 {
		t.Fatalf("default cache ttl = %d", cfg.CacheTTLHours)
	}
}

func TestLoadReadsEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("AMZHUB_DB_DRIVER", "postgres")
	t.Setenv("AMZHUB_CACHE_TTL_HOURS", "6")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9000" || cfg.DBDriver != "postgres" || cfg.CacheTTLHours != 6 {
		t.Fatalf("env not honored: %+v", cfg)
	}
}

func TestLoadMergesConfigFileUnderEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "amzhub.yaml")
	content := "port: \"7070\"\ndb_driver: postgres\nredis_addr: localhost:6379\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("AMZHUB_CONFIG_FILE", path)
	// Env wins over the file where both are set.
	t.Setenv("AMZHUB_DB_DRIVER", "sqlite")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "7070" {
		t.Fatalf("file port not applied: %q", cfg.Port)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Fatalf("file redis addr not applied: %q", cfg.RedisAddr)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("env should win over file, got driver %q", cfg.DBDriver)
	}
}

func TestLoadRejectsMalformedConfigFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte(":\n  - not yaml"), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("AMZHUB_CONFIG_FILE", path)

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for malformed config file")
	}
}
