package db

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// ─────────────────────────────────────────────────────────────────────────────
// Driver
// ─────────────────────────────────────────────────────────────────────────────

// Driver carries the database-specific parts of Open: DSN construction and
// error mapping. The database/sql driver itself registers through its own
// package import.
type Driver interface {
	// Name is the database/sql driver name, e.g. "postgres".
	Name() string
	// DSN turns structured options into the driver's DSN format.
	DSN(opts DriverOptions) (string, error)
	// ErrorMapper translates this driver's errors.
	ErrorMapper() ErrorMapper
}

// DriverOptions are the connection parameters shared by every driver.
type DriverOptions struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	// Extra holds driver-specific parameters appended to the DSN.
	Extra map[string]string `yaml:"extra"`
}

var (
	driversMu sync.RWMutex
	drivers   = map[string]Driver{}
)

func init() {
	for _, d := range []Driver{PostgresDriver{}, MySQLDriver{}, SQLiteDriver{}} {
		drivers[d.Name()] = d
	}
}

// RegisterDriver adds d to the registry. It panics on a duplicate name.
func RegisterDriver(d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if _, ok := drivers[d.Name()]; ok {
		panic(fmt.Sprintf("lambok/db: driver %q already registered", d.Name()))
	}
	drivers[d.Name()] = d
}

// LookupDriver returns the registered driver called name.
func LookupDriver(name string) (Driver, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	d, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("lambok/db: driver %q not registered", name)
	}
	return d, nil
}

// sortedExtra renders Extra deterministically as k=v pairs.
func sortedExtra(extra map[string]string) []string {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + extra[k]
	}
	return pairs
}

// ─────────────────────────────────────────────────────────────────────────────
// PostgreSQL (github.com/lib/pq)
// ─────────────────────────────────────────────────────────────────────────────

// PostgresDriver builds lib/pq keyword/value DSNs.
type PostgresDriver struct{}

func (PostgresDriver) Name() string { return "postgres" }

func (PostgresDriver) DSN(o DriverOptions) (string, error) {
	if o.Host == "" || o.Database == "" {
		return "", fmt.Errorf("postgres: host and database are required")
	}
	port := o.Port
	if port == 0 {
		port = 5432
	}
	sslMode := o.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	parts := []string{
		"host=" + o.Host,
		fmt.Sprintf("port=%d", port),
		"dbname=" + o.Database,
		"sslmode=" + sslMode,
	}
	if o.User != "" {
		parts = append(parts, "user="+o.User)
	}
	if o.Password != "" {
		parts = append(parts, "password="+o.Password)
	}
	parts = append(parts, sortedExtra(o.Extra)...)
	return strings.Join(parts, " "), nil
}

func (PostgresDriver) ErrorMapper() ErrorMapper { return onlyMapper(mapPostgresError) }

// ─────────────────────────────────────────────────────────────────────────────
// MySQL (github.com/go-sql-driver/mysql)
// ─────────────────────────────────────────────────────────────────────────────

// MySQLDriver builds go-sql-driver/mysql DSNs with parseTime enabled.
type MySQLDriver struct{}

func (MySQLDriver) Name() string { return "mysql" }

func (MySQLDriver) DSN(o DriverOptions) (string, error) {
	if o.Host == "" || o.Database == "" {
		return "", fmt.Errorf("mysql: host and database are required")
	}
	port := o.Port
	if port == 0 {
		port = 3306
	}
	params := append([]string{"parseTime=true"}, sortedExtra(o.Extra)...)
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		o.User, o.Password, o.Host, port, o.Database, strings.Join(params, "&")), nil
}

func (MySQLDriver) ErrorMapper() ErrorMapper { return onlyMapper(mapMySQLError) }

// ─────────────────────────────────────────────────────────────────────────────
// SQLite (github.com/mattn/go-sqlite3)
// ─────────────────────────────────────────────────────────────────────────────

// SQLiteDriver uses Database as the file path (or ":memory:").
type SQLiteDriver struct{}

func (SQLiteDriver) Name() string { return "sqlite3" }

func (SQLiteDriver) DSN(o DriverOptions) (string, error) {
	if o.Database == "" {
		return "", fmt.Errorf("sqlite3: database path is required")
	}
	if len(o.Extra) == 0 {
		return o.Database, nil
	}
	q := url.Values{}
	for k, v := range o.Extra {
		q.Set(k, v)
	}
	return "file:" + o.Database + "?" + q.Encode(), nil
}

func (SQLiteDriver) ErrorMapper() ErrorMapper { return onlyMapper(mapSQLiteError) }
