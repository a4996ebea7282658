package db

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq" // registers the "postgres" database/sql driver
)

// ErrDirtySchema means a previous migration failed halfway and needs
// `migrate force` before the service can start.
var ErrDirtySchema = errors.New("db: schema is dirty")

// Migrator applies embedded SQL migrations over a database/sql connection.
type Migrator struct {
	m *migrate.Migrate
}

// NewMigrator reads *.up.sql / *.down.sql from the root of src.
//
//	migrator, err := db.NewMigrator(cfg.Postgres.DSN(), migrations.FS)
func NewMigrator(dsn string, src fs.FS) (*Migrator, error) {
	source, err := iofs.New(src, ".")
	if err != nil {
		return nil, fmt.Errorf("db: read migrations: %w", err)
	}

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}
	driver, err := postgres.WithInstance(conn, &postgres.Config{})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("db: migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("db: migrator: %w", err)
	}
	return &Migrator{m: m}, nil
}

// Version returns the applied version, 0 before the first migration.
func (m *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// Apply runs pending up migrations and returns the versions before and after.
func (m *Migrator) Apply() (from, to uint, err error) {
	from, dirty, err := m.Version()
	if err != nil {
		return 0, 0, err
	}
	if dirty {
		return from, from, fmt.Errorf("%w at version %d", ErrDirtySchema, from)
	}

	if err := m.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return from, from, fmt.Errorf("db: migrate up: %w", err)
	}
	to, _, err = m.Version()
	return from, to, err
}

// Close releases the source and the database connection.
func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}
