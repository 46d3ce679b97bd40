package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server
	Port string

	// Database
	DBDriver string // "sqlite" | "postgres"
	DBPath   string // SQLite path
	DBUrl    string // Postgres DSN

	// Security
	SecretPassphrase string // at-rest encryption passphrase, min 32 chars

	// Expansion cache
	RedisAddr     string // empty disables the cache
	CacheTTLHours int

	// Logging
	LogLevel string
}

// fileConfig mirrors Config for the optional YAML config file. File values
// fill in only what the environment leaves unset.
type fileConfig struct {
	Port             string `yaml:"port"`
	DBDriver         string `yaml:"db_driver"`
	DBPath           string `yaml:"db_path"`
	DBUrl            string `yaml:"db_url"`
	SecretPassphrase string `yaml:"secret_passphrase"`
	RedisAddr        string `yaml:"redis_addr"`
	CacheTTLHours    int    `yaml:"cache_ttl_hours"`
	LogLevel         string `yaml:"log_level"`
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", ""),
		DBDriver:         getEnv("AMZHUB_DB_DRIVER", ""),
		DBPath:           getEnv("AMZHUB_DB_PATH", ""),
		DBUrl:            getEnv("AMZHUB_DATABASE_URL", ""),
		SecretPassphrase: getEnv("AMZHUB_SECRET_PASSPHRASE", ""),
		RedisAddr:        getEnv("AMZHUB_REDIS_ADDR", ""),
		CacheTTLHours:    getEnvInt("AMZHUB_CACHE_TTL_HOURS", 0),
		LogLevel:         getEnv("LOG_LEVEL", ""),
	}

	if path := os.Getenv("AMZHUB_CONFIG_FILE"); path != "" {
		if err := mergeFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyDefaults(cfg)
	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if cfg.Port == "" {
		cfg.Port = fc.Port
	}
	if cfg.DBDriver == "" {
		cfg.DBDriver = fc.DBDriver
	}
	if cfg.DBPath == "" {
		cfg.DBPath = fc.DBPath
	}
	if cfg.DBUrl == "" {
		cfg.DBUrl = fc.DBUrl
	}
	if cfg.SecretPassphrase == "" {
		cfg.SecretPassphrase = fc.SecretPassphrase
	}
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = fc.RedisAddr
	}
	if cfg.CacheTTLHours == 0 {
		cfg.CacheTTLHours = fc.CacheTTLHours
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = fc.LogLevel
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Port == "" {
		cfg.Port = "8090"
	}
	if cfg.DBDriver == "" {
		cfg.DBDriver = "sqlite"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./data/amzhub.db"
	}
	if cfg.CacheTTLHours == 0 {
		cfg.CacheTTLHours = 24
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// CacheTTL returns the expansion cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
