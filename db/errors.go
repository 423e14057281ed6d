package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sentinel errors
// ─────────────────────────────────────────────────────────────────────────────

var (
	// ErrNotFound is returned when a query matches no rows.
	ErrNotFound = errors.New("lambok/db: record not found")

	// ErrDuplicateKey is returned on unique constraint violations.
	ErrDuplicateKey = errors.New("lambok/db: duplicate key")

	// ErrForeignKeyViolation is returned when a foreign key constraint fails.
	ErrForeignKeyViolation = errors.New("lambok/db: foreign key violation")

	// ErrCheckViolation is returned when a CHECK constraint fails.
	ErrCheckViolation = errors.New("lambok/db: check constraint violation")

	// ErrDeadlock is returned when the database reports a deadlock or a busy lock.
	ErrDeadlock = errors.New("lambok/db: deadlock detected")

	// ErrTimeout is returned when a statement exceeds its deadline or is canceled.
	ErrTimeout = errors.New("lambok/db: query timeout")

	// ErrConnectionFailed is returned when the server cannot be reached.
	ErrConnectionFailed = errors.New("lambok/db: connection failed")
)

func IsNotFound(err error) bool            { return errors.Is(err, ErrNotFound) }
func IsDuplicateKey(err error) bool        { return errors.Is(err, ErrDuplicateKey) }
func IsForeignKeyViolation(err error) bool { return errors.Is(err, ErrForeignKeyViolation) }
func IsCheckViolation(err error) bool      { return errors.Is(err, ErrCheckViolation) }
func IsDeadlock(err error) bool            { return errors.Is(err, ErrDeadlock) }
func IsTimeout(err error) bool             { return errors.Is(err, ErrTimeout) }
func IsConnectionFailed(err error) bool    { return errors.Is(err, ErrConnectionFailed) }

// ─────────────────────────────────────────────────────────────────────────────
// DBError
// ─────────────────────────────────────────────────────────────────────────────

// DBError pairs a sentinel with the driver error it was mapped from, so
// callers can match with errors.Is and still reach the raw cause.
type DBError struct {
	Sentinel error
	Cause    error
}

func (e *DBError) Error() string {
	return fmt.Sprintf("%s (cause: %v)", e.Sentinel, e.Cause)
}

func (e *DBError) Is(target error) bool { return errors.Is(e.Sentinel, target) }
func (e *DBError) Unwrap() error        { return e.Cause }

func wrap(sentinel, cause error) error { return &DBError{Sentinel: sentinel, Cause: cause} }

// ─────────────────────────────────────────────────────────────────────────────
// ErrorMapper
// ─────────────────────────────────────────────────────────────────────────────

// ErrorMapper translates raw driver errors into the package sentinels.
// Mappers return err unchanged when they do not recognise it.
type ErrorMapper interface {
	Map(err error) error
}

// ErrorMapperFunc adapts a function to ErrorMapper.
type ErrorMapperFunc func(error) error

func (f ErrorMapperFunc) Map(err error) error { return f(err) }

// DefaultErrorMapper handles database/sql, context, PostgreSQL (lib/pq and
// pgx), MySQL and SQLite errors.
func DefaultErrorMapper() ErrorMapper {
	return ErrorMapperFunc(func(err error) error {
		if err == nil {
			return nil
		}
		if isMapped(err) {
			return err
		}
		if errors.Is(err, sql.ErrNoRows) {
			return wrap(ErrNotFound, err)
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return wrap(ErrTimeout, err)
		}
		for _, m := range []func(error) error{mapPostgresError, mapMySQLError, mapSQLiteError} {
			if mapped := m(err); mapped != nil {
				return mapped
			}
		}
		return err
	})
}

// ChainMapper tries each mapper in order and returns the first result that
// carries a sentinel.
func ChainMapper(mappers ...ErrorMapper) ErrorMapper {
	return ErrorMapperFunc(func(err error) error {
		if err == nil {
			return nil
		}
		for _, m := range mappers {
			if mapped := m.Map(err); isMapped(mapped) {
				return mapped
			}
		}
		return err
	})
}

func isMapped(err error) bool {
	var dbe *DBError
	return errors.As(err, &dbe)
}

func onlyMapper(fn func(error) error) ErrorMapper {
	return ErrorMapperFunc(func(err error) error {
		if err == nil {
			return nil
		}
		if mapped := fn(err); mapped != nil {
			return mapped
		}
		return err
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// PostgreSQL: lib/pq exposes GetCode (older releases: Code field only, which
// is also rendered as "(SQLSTATE xxxxx)"), pgx exposes SQLState.
// ─────────────────────────────────────────────────────────────────────────────

func mapPostgresError(err error) error {
	type pgxError interface{ SQLState() string }
	var pge pgxError
	if errors.As(err, &pge) {
		return mapByPGCode(pge.SQLState(), err)
	}

	type pqError interface{ GetCode() string }
	var pqe pqError
	if errors.As(err, &pqe) {
		return mapByPGCode(pqe.GetCode(), err)
	}

	return mapByPGCode(sqlStateFromMessage(err.Error()), err)
}

func sqlStateFromMessage(s string) string {
	const marker = "(SQLSTATE "
	idx := strings.LastIndex(s, marker)
	if idx < 0 {
		return ""
	}
	rest := s[idx+len(marker):]
	if end := strings.IndexByte(rest, ')'); end >= 0 {
		return rest[:end]
	}
	return rest
}

// https://www.postgresql.org/docs/current/errcodes-appendix.html
func mapByPGCode(code string, cause error) error {
	switch code {
	case "23505":
		return wrap(ErrDuplicateKey, cause)
	case "23503":
		return wrap(ErrForeignKeyViolation, cause)
	case "23514":
		return wrap(ErrCheckViolation, cause)
	case "40P01":
		return wrap(ErrDeadlock, cause)
	case "57014":
		return wrap(ErrTimeout, cause)
	case "08000", "08001", "08003", "08004", "08006", "08007", "08P01":
		return wrap(ErrConnectionFailed, cause)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// MySQL: *mysql.MySQLError carries the server error number.
// ─────────────────────────────────────────────────────────────────────────────

func mapMySQLError(err error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return nil
	}
	switch me.Number {
	case 1062:
		return wrap(ErrDuplicateKey, err)
	case 1216, 1217, 1451, 1452:
		return wrap(ErrForeignKeyViolation, err)
	case 3819:
		return wrap(ErrCheckViolation, err)
	case 1205, 1213:
		return wrap(ErrDeadlock, err)
	case 3024:
		return wrap(ErrTimeout, err)
	case 1045, 2002, 2003, 2006, 2013:
		return wrap(ErrConnectionFailed, err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// SQLite: sqlite3.Error exposes the extended result code.
// ─────────────────────────────────────────────────────────────────────────────

func mapSQLiteError(err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return wrap(ErrDuplicateKey, err)
		case sqlite3.ErrConstraintForeignKey:
			return wrap(ErrForeignKeyViolation, err)
		case sqlite3.ErrConstraintCheck:
			return wrap(ErrCheckViolation, err)
		}
		if se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked {
			return wrap(ErrDeadlock, err)
		}
		return nil
	}

	// Drivers that only expose messages.
	s := err.Error()
	switch {
	case strings.Contains(s, "UNIQUE constraint failed"):
		return wrap(ErrDuplicateKey, err)
	case strings.Contains(s, "FOREIGN KEY constraint failed"):
		return wrap(ErrForeignKeyViolation, err)
	case strings.Contains(s, "CHECK constraint failed"):
		return wrap(ErrCheckViolation, err)
	case strings.Contains(s, "database is locked"):
		return wrap(ErrDeadlock, err)
	}
	return nil
}
