package postgres

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// CodecampMigrations creates the camps, location, talks and speakers tables.
//
//go:embed migrations/*.sql
var CodecampMigrations embed.FS

// Migrate applies all pending up migrations of Config.Migrations.
// An up to date schema is not an error.
func (h *Handler) Migrate() error {
	if h.Config.Migrations == nil {
		return fmt.Errorf("%w: no migration files given", ErrMigrationFailed)
	}

	source, err := iofs.New(h.Config.Migrations, "migrations")
	if err != nil {
		return fmt.Errorf("%w: could not read migration files: %v", ErrMigrationFailed, err) //nolint:errorlint // prevent err in api
	}

	target, err := migratepg.WithInstance(h.DB, &migratepg.Config{}) //nolint:exhaustruct
	if err != nil {
		return fmt.Errorf("%w: could not prepare database: %v", ErrMigrationFailed, err) //nolint:errorlint // prevent err in api
	}

	m, err := migrate.NewWithInstance("iofs", source, h.Config.Database, target)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMigrationFailed, err) //nolint:errorlint // prevent err in api
	}

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: could not migrate up: %v", ErrMigrationFailed, err) //nolint:errorlint // prevent err in api
	}

	return nil
}
