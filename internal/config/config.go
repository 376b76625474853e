// Package config reads the engine settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every setting of the certify CLI.
type Config struct {
	// DBPath is the SQLite file. Empty selects the XDG default.
	DBPath string

	Log LogConfig

	// Redis backs the duplicate-completion guard. Empty Addr selects an
	// in-process guard.
	Redis RedisConfig

	// RescoreConcurrency bounds parallel scoring runs. Default: 4.
	RescoreConcurrency int

	// ReferentialPath is the YAML referential loaded by `seed`.
	ReferentialPath string

	// MaxReachableLevel caps classic competence levels. Default: 5.
	MaxReachableLevel int

	// PlacementMaxLength ends smart placements after that many answers.
	// Zero means unlimited.
	PlacementMaxLength int
}

// LogConfig configures structured logging.
type LogConfig struct {
	Mode     string // "dev" or "prod". Default: "dev".
	Debug    bool
	HashSalt string
}

// RedisConfig configures the Redis claim guard.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Default: "certify:scoring:"
	ClaimTTL time.Duration // Default: 24h.
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{Mode: "dev"},
		Redis: RedisConfig{
			Prefix:   "certify:scoring:",
			ClaimTTL: 24 * time.Hour,
		},
		RescoreConcurrency: 4,
		MaxReachableLevel:  5,
	}
}

// FromEnv builds a Config from CERTIFY_* environment variables, falling
// back to defaults for unset values. Malformed numbers are reported.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	cfg.DBPath = envOr("CERTIFY_DB", cfg.DBPath)
	cfg.Log.Mode = envOr("CERTIFY_LOG_MODE", cfg.Log.Mode)
	cfg.Log.HashSalt = envOr("CERTIFY_LOG_HASH_SALT", cfg.Log.HashSalt)
	cfg.Redis.Addr = envOr("CERTIFY_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envOr("CERTIFY_REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.Prefix = envOr("CERTIFY_REDIS_PREFIX", cfg.Redis.Prefix)
	cfg.ReferentialPath = envOr("CERTIFY_REFERENTIAL", cfg.ReferentialPath)

	var err error
	if cfg.Log.Debug, err = envBool("CERTIFY_LOG_DEBUG", cfg.Log.Debug); err != nil {
		return Config{}, err
	}
	if cfg.Redis.DB, err = envInt("CERTIFY_REDIS_DB", cfg.Redis.DB); err != nil {
		return Config{}, err
	}
	if cfg.Redis.ClaimTTL, err = envDuration("CERTIFY_REDIS_CLAIM_TTL", cfg.Redis.ClaimTTL); err != nil {
		return Config{}, err
	}
	if cfg.RescoreConcurrency, err = envInt("CERTIFY_RESCORE_CONCURRENCY", cfg.RescoreConcurrency); err != nil {
		return Config{}, err
	}
	if cfg.MaxReachableLevel, err = envInt("CERTIFY_MAX_REACHABLE_LEVEL", cfg.MaxReachableLevel); err != nil {
		return Config{}, err
	}
	if cfg.PlacementMaxLength, err = envInt("CERTIFY_PLACEMENT_MAX_LENGTH", cfg.PlacementMaxLength); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch c.Log.Mode {
	case "dev", "prod":
	default:
		return fmt.Errorf("CERTIFY_LOG_MODE must be dev or prod, got %q", c.Log.Mode)
	}
	if c.RescoreConcurrency < 1 {
		return fmt.Errorf("CERTIFY_RESCORE_CONCURRENCY must be positive, got %d", c.RescoreConcurrency)
	}
	if c.MaxReachableLevel < 1 || c.MaxReachableLevel > 8 {
		return fmt.Errorf("CERTIFY_MAX_REACHABLE_LEVEL must be in [1, 8], got %d", c.MaxReachableLevel)
	}
	if c.PlacementMaxLength < 0 {
		return fmt.Errorf("CERTIFY_PLACEMENT_MAX_LENGTH must not be negative, got %d", c.PlacementMaxLength)
	}
	return nil
}

func envOr(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

func envInt(name string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return i, nil
}

func envBool(name string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", name, err)
	}
	return b, nil
}

func envDuration(name string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}
