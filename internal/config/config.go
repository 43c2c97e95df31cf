// Package config loads the external-collaborator configuration the
// QuantLab cores need at their boundaries: seed-universe and session-rules
// file paths, the calendar baseline version id, and storage roots. It never
// holds pricer registries, calendar baselines, or session rules themselves
// as process-wide state -- those are explicit values built from what this
// package loads, per spec.md's "no implicit process-wide state" design note.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the environment-derived configuration for a QuantLab
// deployment.
type Config struct {
	// SeedUniversePath points at the JSON seed universe file (instrument_id
	// <-> mic/vendor_symbol/currency/timezone_local mapping).
	SeedUniversePath string
	// SessionRulesPath points at the JSON session-rules seed file.
	SessionRulesPath string
	// CalendarBaselineName/Version identify the calendar baseline in use.
	CalendarBaselineName    string
	CalendarBaselineVersion string

	// RawZoneRoot / CanonicalZoneRoot / CacheRoot are storage-layout roots
	// per spec.md section 6.
	RawZoneRoot       string
	CanonicalZoneRoot string
	CacheRoot         string

	// RegistryDSN is the modernc.org/sqlite DSN for the dataset registry.
	RegistryDSN string

	// RedisAddr, if non-empty, enables the manifest-index accelerator.
	RedisAddr string

	LogLevel string
	Pretty   bool
}

// Load reads configuration from environment variables, optionally seeded
// from a .env file in the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		SeedUniversePath:        getEnv("QUANTLAB_SEED_UNIVERSE", "./seed/universe.json"),
		SessionRulesPath:        getEnv("QUANTLAB_SESSION_RULES", "./seed/sessionrules.json"),
		CalendarBaselineName:    getEnv("QUANTLAB_CALENDAR_NAME", "XNYS_BASELINE"),
		CalendarBaselineVersion: getEnv("QUANTLAB_CALENDAR_VERSION", "2026.1"),
		RawZoneRoot:             getEnv("QUANTLAB_RAW_ROOT", "./data/raw"),
		CanonicalZoneRoot:       getEnv("QUANTLAB_CANONICAL_ROOT", "./data/canonical"),
		CacheRoot:               getEnv("QUANTLAB_CACHE_ROOT", "./data/cache"),
		RegistryDSN:             getEnv("QUANTLAB_REGISTRY_DSN", "./data/registry.sqlite"),
		RedisAddr:               getEnv("QUANTLAB_REDIS_ADDR", ""),
		LogLevel:                getEnv("QUANTLAB_LOG_LEVEL", "info"),
		Pretty:                  getEnvAsBool("QUANTLAB_LOG_PRETTY", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	if c.SeedUniversePath == "" {
		return fmt.Errorf("QUANTLAB_SEED_UNIVERSE is required")
	}
	if c.SessionRulesPath == "" {
		return fmt.Errorf("QUANTLAB_SESSION_RULES is required")
	}
	if c.CalendarBaselineName == "" || c.CalendarBaselineVersion == "" {
		return fmt.Errorf("QUANTLAB_CALENDAR_NAME and QUANTLAB_CALENDAR_VERSION are required")
	}
	if c.RawZoneRoot == "" || c.CanonicalZoneRoot == "" || c.CacheRoot == "" {
		return fmt.Errorf("storage roots must be non-empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
