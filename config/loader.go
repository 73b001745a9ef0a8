package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Defaults   (defaults.go)

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the MODEFIND_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("MODEFIND_STRATEGY"); v != "" {
		cfg.Strategy = v
	}
	if v := envInt("MODEFIND_WORKERS"); v > 0 {
		cfg.Workers = v
	}
	if envBool("MODEFIND_STRICT") {
		cfg.Strict = true
	}
	if envBool("MODEFIND_JSON") {
		cfg.JSON = true
	}

	// Server
	if v := os.Getenv("MODEFIND_PORT"); v != "" {
		if port, err := ParsePort(v); err == nil {
			cfg.LocalPort = port
		}
	}
	if envBool("MODEFIND_LISTEN") {
		cfg.Listen = true
	}
	if envBool("MODEFIND_UDP") {
		cfg.UDP = true
	}
	if envBool("MODEFIND_KEEP_OPEN") {
		cfg.KeepOpen = true
	}
	if v := envInt("MODEFIND_TIMEOUT"); v > 0 {
		cfg.Timeout = secondsDuration(v)
	}
	if v, ok := envIntSet("MODEFIND_CACHE"); ok && v >= 0 {
		cfg.CacheSize = v
	}

	// Client
	if v := os.Getenv("MODEFIND_CONNECT"); v != "" {
		cfg.Connect = v
	}
	if v, ok := envIntSet("MODEFIND_RETRIES"); ok && v >= 0 {
		cfg.Retries = v
	}

	// Output
	if v := envInt("MODEFIND_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	n, _ := envIntSet(key)
	return n
}

// envIntSet distinguishes an explicit "0" from an unset variable.
func envIntSet(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

func secondsDuration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}
