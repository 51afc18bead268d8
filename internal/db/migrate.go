package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

// Schema ships inside the binary; a deploy is one file plus its .env.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

// gooseDialect translates our driver names to goose's.
func gooseDialect(driver string) string {
	switch driver {
	case "sqlite":
		return "sqlite3"
	case "pgx":
		return "postgres"
	default:
		return driver
	}
}

func prepare(driver string) error {
	if err := goose.SetDialect(gooseDialect(driver)); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	goose.SetBaseFS(sub)

	return nil
}

// RunMigrations applies anything pending. It runs on every boot, so a
// fresh database and an up-to-date one come out identical.
func RunMigrations(db *sql.DB, driver string) error {
	if err := prepare(driver); err != nil {
		return err
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("migrations up to date")
	return nil
}

// MigrateDown rolls back the latest migration. Reached through
// trainctl only, never on the boot path.
func MigrateDown(db *sql.DB, driver string) error {
	if err := prepare(driver); err != nil {
		return err
	}

	if err := goose.Down(db, "."); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}

	slog.Info("rolled back one migration")
	return nil
}
