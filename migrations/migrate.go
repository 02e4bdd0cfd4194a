// Package migrations holds the embedded goose migrations for both
// persistence engines: the remote Postgres schema and the local SQLite
// key-value schema.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var embedMigrations embed.FS

// MigratePostgres applies pending migrations to the remote store.
func MigratePostgres(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.Up(db, "postgres"); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}

// MigrateSQLite applies pending migrations to the on-device store.
func MigrateSQLite(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.Up(db, "sqlite"); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}
