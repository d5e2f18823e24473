package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// migrateSQLite applies the embedded SQLite migrations on db. The migrate
// instance is not closed because that would close db.
func migrateSQLite(db *sql.DB) error {
	driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite migrate driver: %w", err)
	}
	_, err = runMigrations("migrations/sqlite", "sqlite", driver)
	return err
}

// migratePostgres applies the embedded Postgres migrations. db is a
// throwaway handle and is closed before returning, on every path.
func migratePostgres(db *sql.DB) error {
	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return errors.Join(fmt.Errorf("create postgres migrate driver: %w", err), db.Close())
	}
	m, err := runMigrations("migrations/postgres", "pgx5", driver)
	if m == nil {
		// the driver owns db and closes it
		return errors.Join(err, driver.Close())
	}
	srcErr, dbErr := m.Close()
	return errors.Join(err, srcErr, dbErr)
}

func runMigrations(dir, dbName string, driver database.Driver) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, dbName, driver)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return m, fmt.Errorf("migrate up: %w", err)
	}
	return m, nil
}
