package db

import (
	"context"
	"embed"
	"fmt"

	"wedding_crm_backend/platform/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// RunMigrations applies all pending embedded goose migrations.
func RunMigrations(ctx context.Context, cfg config.DatabaseConfig) error {
	connConfig, err := pgx.ParseConfig(cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("parse database url: %w", err)
	}

	sqlDB := stdlib.OpenDB(*connConfig)
	defer sqlDB.Close()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, sqlDB, migrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}
