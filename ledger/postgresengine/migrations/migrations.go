// Package migrations holds the embedded lending schema and applies it with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // registers the postgres:// scheme
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

const sourceDir = "sql"

//go:embed sql/*.sql
var files embed.FS

// ErrMigrationFailed is returned when applying or reverting the schema fails.
var ErrMigrationFailed = errors.New("schema migration failed")

// Source returns the embedded migrations as a golang-migrate source driver.
func Source() (source.Driver, error) {
	src, err := iofs.New(files, sourceDir)
	if err != nil {
		return nil, errors.Join(ErrMigrationFailed, err)
	}

	return src, nil
}

// Up applies all pending migrations to the database behind dsn (postgres:// URL form).
// An already current schema is not an error.
func Up(dsn string) error {
	return run(dsn, func(m *migrate.Migrate) error { return m.Up() })
}

// Down reverts all migrations.
func Down(dsn string) error {
	return run(dsn, func(m *migrate.Migrate) error { return m.Down() })
}

// Version reports the currently applied schema version and whether it is dirty.
func Version(dsn string) (uint, bool, error) {
	var version uint
	var dirty bool

	err := run(dsn, func(m *migrate.Migrate) error {
		var versionErr error
		version, dirty, versionErr = m.Version()
		if errors.Is(versionErr, migrate.ErrNilVersion) {
			return nil
		}

		return versionErr
	})

	return version, dirty, err
}

func run(dsn string, step func(m *migrate.Migrate) error) error {
	src, err := Source()
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return errors.Join(ErrMigrationFailed, fmt.Errorf("opening migrator failed: %w", err))
	}
	defer func() { _, _ = m.Close() }()

	if stepErr := step(m); stepErr != nil && !errors.Is(stepErr, migrate.ErrNoChange) {
		return errors.Join(ErrMigrationFailed, stepErr)
	}

	return nil
}
