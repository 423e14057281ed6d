// Package db is the SQL layer under the catalog repositories. It wraps
// *sql.DB with context-aware helpers, statement hooks, unified error mapping
// and transaction management. All SQL stays explicit; there is no ORM here.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Config
// ─────────────────────────────────────────────────────────────────────────────

// Config holds all options for opening and managing the connection pool.
type Config struct {
	// DriverName is a registered driver: "postgres", "mysql" or "sqlite3".
	DriverName string

	// DSN is the driver-specific data-source name. When empty, the DSN is
	// built from Options by the registered Driver.
	DSN     string
	Options DriverOptions

	// Pool settings. Zero leaves the database/sql default in place.
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// DefaultTimeout is applied to statements whose context has no deadline.
	// Zero means no default timeout.
	DefaultTimeout time.Duration

	// Hooks run around every statement. Nil entries are skipped.
	Hooks []Hook
}

// ─────────────────────────────────────────────────────────────────────────────
// DB
// ─────────────────────────────────────────────────────────────────────────────

// DB is a concurrency-safe wrapper around *sql.DB. The underlying handle is
// available through Raw.
type DB struct {
	sqldb  *sql.DB
	cfg    Config
	hooks  hookChain
	errMap ErrorMapper
}

// Open resolves the DSN, opens the pool and verifies connectivity with Ping.
// Callers must Close the returned DB.
func Open(cfg Config) (*DB, error) {
	if cfg.DriverName == "" {
		return nil, fmt.Errorf("lambok/db: DriverName must not be empty")
	}

	errMap := DefaultErrorMapper()
	if drv, err := LookupDriver(cfg.DriverName); err == nil {
		if cfg.DSN == "" {
			dsn, err := drv.DSN(cfg.Options)
			if err != nil {
				return nil, fmt.Errorf("lambok/db: build DSN: %w", err)
			}
			cfg.DSN = dsn
		}
		errMap = ChainMapper(drv.ErrorMapper(), errMap)
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("lambok/db: DSN must not be empty")
	}

	sqldb, err := sql.Open(cfg.DriverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("lambok/db: open: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqldb.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("lambok/db: ping: %w", err)
	}

	return &DB{
		sqldb:  sqldb,
		cfg:    cfg,
		hooks:  newHookChain(cfg.Hooks),
		errMap: errMap,
	}, nil
}

// Raw returns the underlying *sql.DB.
func (d *DB) Raw() *sql.DB { return d.sqldb }

// DriverName reports the driver the pool was opened with.
func (d *DB) DriverName() string { return d.cfg.DriverName }

// Close closes all pooled connections.
func (d *DB) Close() error { return d.sqldb.Close() }

// Ping verifies that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	ctx, cancel := d.withDefaultTimeout(ctx)
	defer cancel()
	return d.mapErr(d.sqldb.PingContext(ctx))
}

// Stats returns pool statistics.
func (d *DB) Stats() sql.DBStats { return d.sqldb.Stats() }

// ─────────────────────────────────────────────────────────────────────────────
// Statement execution
// ─────────────────────────────────────────────────────────────────────────────

// Exec runs a statement that returns no rows.
func (d *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, cancel := d.withDefaultTimeout(ctx)
	defer cancel()

	start := time.Now()
	d.hooks.Before(ctx, query, args)
	res, err := d.sqldb.ExecContext(ctx, query, args...)
	err = d.mapErr(err)
	d.hooks.After(ctx, query, args, time.Since(start), err)
	return res, err
}

// Query runs a statement that returns rows. The caller must close the rows.
// The default timeout is not applied here because it would cancel the rows
// before the caller iterates them; pass a context with a deadline instead.
func (d *DB) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	d.hooks.Before(ctx, query, args)
	rows, err := d.sqldb.QueryContext(ctx, query, args...)
	err = d.mapErr(err)
	d.hooks.After(ctx, query, args, time.Since(start), err)
	return rows, err
}

// QueryRow runs a statement expected to return at most one row. Scan on the
// returned Row reports ErrNotFound when nothing matched.
func (d *DB) QueryRow(ctx context.Context, query string, args ...any) *Row {
	start := time.Now()
	d.hooks.Before(ctx, query, args)
	raw := d.sqldb.QueryRowContext(ctx, query, args...)
	return &Row{raw: raw, errMap: d.errMap, done: d.hooks.afterFunc(ctx, query, args, start)}
}

// Prepare creates a prepared statement. The caller must Close it.
func (d *DB) Prepare(ctx context.Context, query string) (*Stmt, error) {
	s, err := d.sqldb.PrepareContext(ctx, query)
	if err != nil {
		return nil, d.mapErr(err)
	}
	return &Stmt{stmt: s, query: query, hooks: d.hooks, errMap: d.errMap}, nil
}

// BatchExec runs query once per item inside a single transaction, binding
// the arguments returned by argsFn. Either every row is written or none is.
//
//	err := db.BatchExec(d, ctx, "INSERT INTO products (product_name, price) VALUES ($1, $2)", items,
//	    func(p models.Product) []any { return []any{p.ProductName(), p.Price()} })
func BatchExec[T any](d *DB, ctx context.Context, query string, items []T, argsFn func(T) []any) error {
	return d.ExecTx(ctx, func(tx *Tx) error {
		stmt, err := tx.Prepare(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, item := range items {
			if _, err := stmt.Exec(ctx, argsFn(item)...); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *DB) withDefaultTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.cfg.DefaultTimeout == 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d.cfg.DefaultTimeout)
}

func (d *DB) mapErr(err error) error {
	if err == nil {
		return nil
	}
	return d.errMap.Map(err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Row and Stmt
// ─────────────────────────────────────────────────────────────────────────────

// Row wraps *sql.Row. Hooks observe the row once Scan reports its error.
type Row struct {
	raw    *sql.Row
	errMap ErrorMapper
	done   func(error)
}

// Scan copies the matched row into dest. ErrNotFound is returned when no row
// matched.
func (r *Row) Scan(dest ...any) error {
	err := r.raw.Scan(dest...)
	if err != nil {
		err = r.errMap.Map(err)
	}
	if r.done != nil {
		r.done(err)
	}
	return err
}

// Stmt wraps a prepared *sql.Stmt with hook dispatch and error mapping.
type Stmt struct {
	stmt   *sql.Stmt
	query  string
	hooks  hookChain
	errMap ErrorMapper
}

// Exec runs the prepared statement.
func (s *Stmt) Exec(ctx context.Context, args ...any) (sql.Result, error) {
	start := time.Now()
	s.hooks.Before(ctx, s.query, args)
	res, err := s.stmt.ExecContext(ctx, args...)
	if err != nil {
		err = s.errMap.Map(err)
	}
	s.hooks.After(ctx, s.query, args, time.Since(start), err)
	return res, err
}

// QueryRow runs the prepared statement expecting one row.
func (s *Stmt) QueryRow(ctx context.Context, args ...any) *Row {
	start := time.Now()
	s.hooks.Before(ctx, s.query, args)
	raw := s.stmt.QueryRowContext(ctx, args...)
	return &Row{raw: raw, errMap: s.errMap, done: s.hooks.afterFunc(ctx, s.query, args, start)}
}

// Close releases the prepared statement.
func (s *Stmt) Close() error { return s.stmt.Close() }
