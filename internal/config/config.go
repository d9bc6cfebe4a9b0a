package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// minMasterKeyLen is the minimum length of the vault master key. Anything
// shorter is rejected at startup rather than surfacing at encrypt time.
const minMasterKeyLen = 32

// Config holds all configuration for the credvault service.
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Vault    VaultConfig
	Probe    ProbeConfig
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// VaultConfig carries the master secret every per-record key is derived
// from. MasterKey must never be logged.
type VaultConfig struct {
	MasterKey string
}

// ProbeConfig bounds outbound vendor credential checks.
type ProbeConfig struct {
	Timeout time.Duration
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Vault: VaultConfig{
			MasterKey: os.Getenv("CREDVAULT_MASTER_KEY"),
		},
		Probe: ProbeConfig{
			Timeout: envDuration("CREDVAULT_PROBE_TIMEOUT", 10*time.Second),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Vault.MasterKey == "" {
		return fmt.Errorf("CREDVAULT_MASTER_KEY is required")
	}
	if len(c.Vault.MasterKey) < minMasterKeyLen {
		return fmt.Errorf("CREDVAULT_MASTER_KEY must be at least %d characters", minMasterKeyLen)
	}

	return nil
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
