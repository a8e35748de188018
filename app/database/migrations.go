package database

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

func newMigrator(db *DB) (*migrate.Migrate, error) {
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}

	return migrate.NewWithInstance("iofs", source, "sqlite", driver)
}

// RunMigrations brings the feed cache schema up to date and returns its
// version. Cached feeds are disposable, so a schema left dirty by an
// interrupted migration is dropped and rebuilt instead of repaired.
func RunMigrations(db *DB) (uint, error) {
	m, err := newMigrator(db)
	if err != nil {
		return 0, err
	}

	if version, dirty, err := m.Version(); err == nil && dirty {
		slog.Warn("Feed cache schema is dirty, rebuilding", "version", version)

		if err := m.Drop(); err != nil {
			return 0, fmt.Errorf("failed to drop dirty feed cache schema: %w", err)
		}
		// a dropped schema needs a fresh migrator
		if m, err = newMigrator(db); err != nil {
			return 0, err
		}
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("failed to migrate feed cache schema: %w", err)
	}

	version, _, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("failed to read feed cache schema version: %w", err)
	}

	return version, nil
}
