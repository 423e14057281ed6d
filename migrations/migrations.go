// Package migrations holds the schema for every supported driver and runs it
// through golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/Tarun9121/project-lambok/db"
)

//go:embed postgres/*.sql mysql/*.sql sqlite3/*.sql
var files embed.FS

// Migrator runs schema migrations against one database. Close releases the
// database handle it was created with.
type Migrator struct {
	m *migrate.Migrate
}

// New prepares migrations for d. dir overrides the embedded SQL with a
// directory on disk; leave it empty to use the files for d's driver.
func New(d *db.DB, dir string, logger *slog.Logger) (*Migrator, error) {
	name := d.DriverName()
	target, err := databaseDriver(d)
	if err != nil {
		return nil, err
	}

	var m *migrate.Migrate
	if dir != "" {
		m, err = migrate.NewWithDatabaseInstance("file://"+dir, name, target)
	} else {
		src, serr := iofs.New(files, name)
		if serr != nil {
			return nil, fmt.Errorf("migrations: embedded source for %s: %w", name, serr)
		}
		m, err = migrate.NewWithInstance("iofs", src, name, target)
	}
	if err != nil {
		return nil, fmt.Errorf("migrations: init: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	m.Log = &migrateLogger{logger: logger}
	return &Migrator{m: m}, nil
}

func databaseDriver(d *db.DB) (database.Driver, error) {
	var (
		drv database.Driver
		err error
	)
	switch d.DriverName() {
	case "postgres":
		drv, err = postgres.WithInstance(d.Raw(), &postgres.Config{})
	case "mysql":
		drv, err = mysql.WithInstance(d.Raw(), &mysql.Config{})
	case "sqlite3":
		drv, err = sqlite3.WithInstance(d.Raw(), &sqlite3.Config{})
	default:
		return nil, fmt.Errorf("migrations: unsupported driver %q", d.DriverName())
	}
	if err != nil {
		return nil, fmt.Errorf("migrations: %s: %w", d.DriverName(), err)
	}
	return drv, nil
}

// Up applies all pending migrations. Being up to date is not an error.
func (r *Migrator) Up() error {
	if err := r.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}

// Down rolls back steps migrations.
func (r *Migrator) Down(steps int) error {
	if steps < 1 {
		return fmt.Errorf("migrations: down: steps must be positive, got %d", steps)
	}
	if err := r.m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: down: %w", err)
	}
	return nil
}

// Version returns the applied version. A fresh database reports 0.
func (r *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = r.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("migrations: version: %w", err)
	}
	return version, dirty, nil
}

// Force sets the version without running migrations, clearing the dirty
// flag.
func (r *Migrator) Force(version int) error {
	if err := r.m.Force(version); err != nil {
		return fmt.Errorf("migrations: force: %w", err)
	}
	return nil
}

// Drop removes every table in the database.
func (r *Migrator) Drop() error {
	if err := r.m.Drop(); err != nil {
		return fmt.Errorf("migrations: drop: %w", err)
	}
	return nil
}

// Close releases the source and the database handle.
func (r *Migrator) Close() error {
	srcErr, dbErr := r.m.Close()
	return errors.Join(srcErr, dbErr)
}

type migrateLogger struct {
	logger *slog.Logger
}

func (l *migrateLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrate")
}

func (l *migrateLogger) Verbose() bool { return false }
