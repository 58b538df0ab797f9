// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// RedisConfig provides the shared Redis connection used for locks and queues.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// SchedulerConfig provides settings for the asynq notification queue.
type SchedulerConfig interface {
	RedisConfig
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// MatcherConfig provides vendor matcher limits.
type MatcherConfig interface {
	GetVendorMatchRowCap() int
	GetAutoAssignTopVendors() int
}

// PipelineConfig provides settings for pipeline broadcasts.
type PipelineConfig interface {
	GetPipelineRoom() string
	GetBroadcastTimeout() time.Duration
}

// LockConfig provides settings for per-lead reconciliation locks.
type LockConfig interface {
	GetReconcileLockTTL() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration.
type Config struct {
	Env              string
	HTTPAddr         string
	DatabaseURL      string
	MigrationsOnBoot bool
	JWTAccessSecret  string
	CORSAllowAll     bool
	CORSOrigins      []string
	CORSAllowCreds   bool

	RedisURL         string
	RedisTLSInsecure bool
	AsynqQueueName   string
	AsynqConcurrency int

	VendorMatchRowCap    int
	AutoAssignTopVendors int
	PipelineRoom         string
	BroadcastTimeout     time.Duration
	ReconcileLockTTL     time.Duration
}

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// RedisConfig / SchedulerConfig implementation
func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool  { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string  { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int   { return c.AsynqConcurrency }

// MatcherConfig implementation
func (c *Config) GetVendorMatchRowCap() int    { return c.VendorMatchRowCap }
func (c *Config) GetAutoAssignTopVendors() int { return c.AutoAssignTopVendors }

// PipelineConfig implementation
func (c *Config) GetPipelineRoom() string              { return c.PipelineRoom }
func (c *Config) GetBroadcastTimeout() time.Duration   { return c.BroadcastTimeout }

// LockConfig implementation
func (c *Config) GetReconcileLockTTL() time.Duration { return c.ReconcileLockTTL }

// IsRedisEnabled reports whether a Redis URL is configured.
func (c *Config) IsRedisEnabled() bool { return c.RedisURL != "" }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		MigrationsOnBoot:     strings.EqualFold(getEnv("MIGRATIONS_ON_BOOT", "true"), "true"),
		JWTAccessSecret:      getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:         corsAllowAll,
		CORSOrigins:          corsOrigins,
		CORSAllowCreds:       strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RedisURL:             getEnv("REDIS_URL", ""),
		RedisTLSInsecure:     strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:       getEnv("ASYNQ_QUEUE", "notifications"),
		AsynqConcurrency:     mustInt(getEnv("ASYNQ_CONCURRENCY", "5"), 5),
		VendorMatchRowCap:    mustInt(getEnv("VENDOR_MATCH_ROW_CAP", "200"), 200),
		AutoAssignTopVendors: mustInt(getEnv("AUTO_ASSIGN_TOP_VENDORS", "0"), 0),
		PipelineRoom:         getEnv("PIPELINE_ROOM", "pipeline"),
		BroadcastTimeout:     mustDuration(getEnv("BROADCAST_TIMEOUT", "5s"), 5*time.Second),
		ReconcileLockTTL:     mustDuration(getEnv("RECONCILE_LOCK_TTL", "30s"), 30*time.Second),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.VendorMatchRowCap <= 0 {
		return nil, fmt.Errorf("VENDOR_MATCH_ROW_CAP must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func mustInt(value string, fallback int) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
