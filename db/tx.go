package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Querier
// ─────────────────────────────────────────────────────────────────────────────

// Querier is the surface shared by *DB and *Tx. Repositories accept a
// Querier so the same code runs inside and outside transactions.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) *Row
	Prepare(ctx context.Context, query string) (*Stmt, error)
}

var (
	_ Querier = (*DB)(nil)
	_ Querier = (*Tx)(nil)
)

// ─────────────────────────────────────────────────────────────────────────────
// Tx
// ─────────────────────────────────────────────────────────────────────────────

// Tx wraps *sql.Tx with the same hooks and error mapping as DB.
type Tx struct {
	sqltx  *sql.Tx
	hooks  hookChain
	errMap ErrorMapper
}

// Raw returns the underlying *sql.Tx.
func (t *Tx) Raw() *sql.Tx { return t.sqltx }

// Exec runs a statement that returns no rows.
func (t *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	t.hooks.Before(ctx, query, args)
	res, err := t.sqltx.ExecContext(ctx, query, args...)
	err = t.mapErr(err)
	t.hooks.After(ctx, query, args, time.Since(start), err)
	return res, err
}

// Query runs a statement returning rows. The caller must close the rows.
func (t *Tx) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	t.hooks.Before(ctx, query, args)
	rows, err := t.sqltx.QueryContext(ctx, query, args...)
	err = t.mapErr(err)
	t.hooks.After(ctx, query, args, time.Since(start), err)
	return rows, err
}

// QueryRow runs a statement expected to return at most one row.
func (t *Tx) QueryRow(ctx context.Context, query string, args ...any) *Row {
	start := time.Now()
	t.hooks.Before(ctx, query, args)
	raw := t.sqltx.QueryRowContext(ctx, query, args...)
	return &Row{raw: raw, errMap: t.errMap, done: t.hooks.afterFunc(ctx, query, args, start)}
}

// Prepare creates a statement bound to the transaction.
func (t *Tx) Prepare(ctx context.Context, query string) (*Stmt, error) {
	s, err := t.sqltx.PrepareContext(ctx, query)
	if err != nil {
		return nil, t.mapErr(err)
	}
	return &Stmt{stmt: s, query: query, hooks: t.hooks, errMap: t.errMap}, nil
}

func (t *Tx) mapErr(err error) error {
	if err == nil {
		return nil
	}
	return t.errMap.Map(err)
}

// ─────────────────────────────────────────────────────────────────────────────
// ExecTx
// ─────────────────────────────────────────────────────────────────────────────

// TxOptions sets the isolation level and read-only flag.
type TxOptions struct {
	Isolation sql.IsolationLevel
	ReadOnly  bool
}

// ExecTx runs fn inside a transaction. It commits when fn returns nil and
// rolls back when fn returns an error or panics; panics are re-raised after
// the rollback. Nested transactions are not supported.
//
//	err := d.ExecTx(ctx, func(tx *db.Tx) error {
//		r := repo.NewProductRepo(tx)
//		_, err := r.Insert(ctx, product)
//		return err
//	})
func (d *DB) ExecTx(ctx context.Context, fn func(*Tx) error, opts ...TxOptions) (err error) {
	ctx, cancel := d.withDefaultTimeout(ctx)
	defer cancel()

	var sqlOpts *sql.TxOptions
	if len(opts) > 0 {
		sqlOpts = &sql.TxOptions{Isolation: opts[0].Isolation, ReadOnly: opts[0].ReadOnly}
	}

	sqltx, err := d.sqldb.BeginTx(ctx, sqlOpts)
	if err != nil {
		return d.mapErr(err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqltx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := sqltx.Rollback(); rbErr != nil {
				err = fmt.Errorf("lambok/db: rollback failed (%v) after: %w", rbErr, err)
			}
		}
	}()

	if err = fn(&Tx{sqltx: sqltx, hooks: d.hooks, errMap: d.errMap}); err != nil {
		return d.mapErr(err)
	}
	if err = sqltx.Commit(); err != nil {
		return d.mapErr(err)
	}
	return nil
}
