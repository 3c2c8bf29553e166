package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver for database/sql
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/meteora/weather-history/internal/config"
)

// Connect creates a database connection based on configuration using sqlx
func Connect(ctx context.Context, cfg config.DBConfig) (*sqlx.DB, error) {
	driverName := "pgx"
	if cfg.IsMemory() {
		driverName = "sqlite3"
	}

	db, err := sqlx.ConnectContext(ctx, driverName, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.IsMemory() {
		// The pragma is per connection and the shared in-memory database
		// lives only as long as a connection does.
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	return db, nil
}

// Migrate applies all pending migrations from dir/{sqlite,postgres}.
func Migrate(db *sqlx.DB, cfg config.DBConfig, dir string) error {
	m, err := newMigrate(db, cfg, dir)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// NewMigrate builds a migrate instance for standalone tooling.
func NewMigrate(cfg config.DBConfig, dir string) (*migrate.Migrate, error) {
	return migrate.New(SourceURL(cfg, dir), migrateDSN(cfg))
}

// SourceURL returns the file:// source holding the dialect's migrations.
func SourceURL(cfg config.DBConfig, dir string) string {
	sub := "postgres"
	if cfg.IsMemory() {
		sub = "sqlite"
	}
	return "file://" + filepath.ToSlash(filepath.Join(dir, sub))
}

func newMigrate(db *sqlx.DB, cfg config.DBConfig, dir string) (*migrate.Migrate, error) {
	source := SourceURL(cfg, dir)

	if !cfg.IsMemory() {
		m, err := migrate.New(source, migrateDSN(cfg))
		if err != nil {
			return nil, fmt.Errorf("could not create migrate instance: %w", err)
		}
		return m, nil
	}

	// Use driver instance directly to avoid DSN parsing issues with in-memory SQLite
	driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("could not create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(source, "sqlite3", driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}

func migrateDSN(cfg config.DBConfig) string {
	if cfg.IsMemory() {
		return "sqlite3://" + cfg.DSN()
	}
	return cfg.DSN()
}
