// Package migrations manages the schemas of the two tvc databases: the
// per-tree version database and the global registry database. Migration
// files are embedded so a daemon can create tree databases on the fly.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed tree/*.sql
var treeFiles embed.FS

//go:embed registry/*.sql
var registryFiles embed.FS

// TreeUp brings a per-tree database (versions, last_commit) to the latest
// schema version.
func TreeUp(db *sql.DB) error {
	return up(db, treeFiles, "tree")
}

// RegistryUp brings the global registry database (monitored_dirs,
// daemon_control) to the latest schema version.
func RegistryUp(db *sql.DB) error {
	return up(db, registryFiles, "registry")
}

func up(db *sql.DB, files embed.FS, dir string) error {
	m, err := newMigrate(db, files, dir)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	// Note: We don't close m here because it would close the db connection.
	// The caller owns the db and is responsible for closing it.

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			// Database is already at latest version - this is fine
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// newMigrate creates a new migrate instance over the embedded files in dir.
func newMigrate(db *sql.DB, files embed.FS, dir string) (*migrate.Migrate, error) {
	sourceDriver, err := iofs.New(files, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	dbDriver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		sourceDriver.Close()
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", dbDriver)
	if err != nil {
		sourceDriver.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}
