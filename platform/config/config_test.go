package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/wedding_crm")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("CORS_ALLOW_ALL", "false")
}

func TestLoadAppliesDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GetVendorMatchRowCap() != 200 {
		t.Fatalf("expected default row cap 200, got %d", cfg.GetVendorMatchRowCap())
	}
	if cfg.GetPipelineRoom() != "pipeline" {
		t.Fatalf("expected default pipeline room, got %q", cfg.GetPipelineRoom())
	}
	if cfg.GetReconcileLockTTL() != 30*time.Second {
		t.Fatalf("expected 30s lock ttl, got %s", cfg.GetReconcileLockTTL())
	}
	if cfg.IsRedisEnabled() {
		t.Fatal("expected redis disabled without REDIS_URL")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}

func TestLoadRejectsNonPositiveRowCap(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("VENDOR_MATCH_ROW_CAP", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero row cap")
	}
}

func TestLoadWildcardOriginRequiresNoCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CORS_ORIGINS", "*")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for wildcard origin with credentials")
	}
}
