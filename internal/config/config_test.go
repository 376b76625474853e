package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{
		"CERTIFY_DB", "CERTIFY_LOG_MODE", "CERTIFY_LOG_DEBUG", "CERTIFY_REDIS_ADDR",
		"CERTIFY_RESCORE_CONCURRENCY", "CERTIFY_REFERENTIAL", "CERTIFY_MAX_REACHABLE_LEVEL",
		"CERTIFY_PLACEMENT_MAX_LENGTH", "CERTIFY_REDIS_CLAIM_TTL", "CERTIFY_REDIS_DB",
	} {
		t.Setenv(k, "")
	}

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Log.Mode != "dev" {
		t.Errorf("Log.Mode = %q, want dev", cfg.Log.Mode)
	}
	if cfg.RescoreConcurrency != 4 {
		t.Errorf("RescoreConcurrency = %d, want 4", cfg.RescoreConcurrency)
	}
	if cfg.MaxReachableLevel != 5 {
		t.Errorf("MaxReachableLevel = %d, want 5", cfg.MaxReachableLevel)
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("Redis.Addr = %q, want empty", cfg.Redis.Addr)
	}
	if cfg.Redis.ClaimTTL != 24*time.Hour {
		t.Errorf("Redis.ClaimTTL = %v, want 24h", cfg.Redis.ClaimTTL)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("CERTIFY_DB", "/tmp/x.db")
	t.Setenv("CERTIFY_LOG_MODE", "prod")
	t.Setenv("CERTIFY_LOG_DEBUG", "true")
	t.Setenv("CERTIFY_REDIS_ADDR", "localhost:6379")
	t.Setenv("CERTIFY_REDIS_CLAIM_TTL", "90m")
	t.Setenv("CERTIFY_RESCORE_CONCURRENCY", "8")
	t.Setenv("CERTIFY_REFERENTIAL", "ref.yaml")
	t.Setenv("CERTIFY_PLACEMENT_MAX_LENGTH", "20")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.DBPath != "/tmp/x.db" || cfg.Log.Mode != "prod" || !cfg.Log.Debug {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.ClaimTTL != 90*time.Minute {
		t.Errorf("unexpected redis config %+v", cfg.Redis)
	}
	if cfg.RescoreConcurrency != 8 || cfg.ReferentialPath != "ref.yaml" || cfg.PlacementMaxLength != 20 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad mode", "CERTIFY_LOG_MODE", "verbose"},
		{"bad int", "CERTIFY_RESCORE_CONCURRENCY", "many"},
		{"zero concurrency", "CERTIFY_RESCORE_CONCURRENCY", "0"},
		{"bad bool", "CERTIFY_LOG_DEBUG", "maybe"},
		{"bad duration", "CERTIFY_REDIS_CLAIM_TTL", "soon"},
		{"level too high", "CERTIFY_MAX_REACHABLE_LEVEL", "9"},
	}
	for _, tt := range tests {
		tt := tt // per-iteration copy (go directive is 1.21)
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := FromEnv(); err == nil {
				t.Errorf("%s=%q: expected error", tt.key, tt.value)
			}
		})
	}
}
