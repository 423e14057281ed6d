package config_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tarun9121/project-lambok/config"
	"github.com/Tarun9121/project-lambok/db"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		config.EnvAddr, config.EnvLogLevel, config.EnvDatabaseURL,
		config.EnvDatabaseDriver, config.EnvMigrationsPath,
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load("", "")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.False(t, cfg.Database.Enabled())
}

func TestLoad_MissingFilesAreIgnored(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := config.Load(filepath.Join(dir, "nope.yaml"), filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
server:
  addr: ":9090"
  shutdown_timeout: 3s
log:
  level: debug
  log_args: true
database:
  driver: postgres
  options:
    host: db.internal
    port: 5432
    database: lambok
    sslmode: disable
  max_open_conns: 4
  default_timeout: 2s
`)

	cfg, err := config.Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadHeaderTimeout, "unset keys keep defaults")
	assert.True(t, cfg.Log.LogArgs)
	assert.True(t, cfg.Database.Enabled())

	dbc := cfg.Database.DBConfig()
	assert.Equal(t, "postgres", dbc.DriverName)
	assert.Equal(t, "db.internal", dbc.Options.Host)
	assert.Equal(t, 5432, dbc.Options.Port)
	assert.Equal(t, 4, dbc.MaxOpenConns)
	assert.Equal(t, 2*time.Second, dbc.DefaultTimeout)
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	yamlPath := writeFile(t, "config.yaml", `
server:
  addr: ":1111"
log:
  level: warn
database:
  migrations_path: /yaml/migrations
`)
	envPath := writeFile(t, ".env", `
LAMBOK_ADDR=:2222
LAMBOK_LOG_LEVEL=error
DATABASE_URL=postgres://u:p@localhost:5432/lambok?sslmode=disable
`)
	t.Setenv(config.EnvAddr, ":3333")

	cfg, err := config.Load(yamlPath, envPath)
	require.NoError(t, err)

	assert.Equal(t, ":3333", cfg.Server.Addr, "environment beats .env")
	assert.Equal(t, "error", cfg.Log.Level, ".env beats YAML")
	assert.Equal(t, "/yaml/migrations", cfg.Database.MigrationsPath, "YAML beats defaults")
	assert.Equal(t, "postgres", cfg.Database.Driver, "driver inferred from URL scheme")
	assert.Equal(t, "postgres://u:p@localhost:5432/lambok?sslmode=disable", cfg.Database.DSN)
}

func TestLoad_DriverOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvDatabaseURL, "file:lambok.db?cache=shared")
	t.Setenv(config.EnvDatabaseDriver, "sqlite3")

	cfg, err := config.Load("", "")
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
}

func TestLoad_DatabaseURL_MySQL(t *testing.T) {
	tests := []struct {
		name, url, addr, user, pass, dbName string
	}{
		{"explicit port", "mysql://u:p@localhost:3307/shop", "localhost:3307", "u", "p", "shop"},
		{"default port", "mysql://u:p@db.internal/shop", "db.internal:3306", "u", "p", "shop"},
		{"no password", "mysql://reader@localhost/catalog", "localhost:3306", "reader", "", "catalog"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(config.EnvDatabaseURL, tt.url)

			cfg, err := config.Load("", "")
			require.NoError(t, err)
			assert.Equal(t, "mysql", cfg.Database.Driver)

			parsed, err := mysql.ParseDSN(cfg.Database.DSN)
			require.NoError(t, err)
			assert.Equal(t, "tcp", parsed.Net)
			assert.Equal(t, tt.addr, parsed.Addr)
			assert.Equal(t, tt.user, parsed.User)
			assert.Equal(t, tt.pass, parsed.Passwd)
			assert.Equal(t, tt.dbName, parsed.DBName)
			assert.True(t, parsed.ParseTime)
		})
	}
}

func TestLoad_DatabaseURL_MySQLParams(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvDatabaseURL, "mysql://u:p@localhost/shop?timeout=5s")

	cfg, err := config.Load("", "")
	require.NoError(t, err)

	parsed, err := mysql.ParseDSN(cfg.Database.DSN)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, parsed.Timeout)
}

func TestLoad_DatabaseURL_SQLiteOpens(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name, url, dsn string
	}{
		{"sqlite3 scheme", "sqlite3://" + filepath.Join(dir, "a.db"), filepath.Join(dir, "a.db")},
		{"sqlite scheme", "sqlite://" + filepath.Join(dir, "b.db"), filepath.Join(dir, "b.db")},
		{"file url", "file://" + filepath.Join(dir, "c.db"), "file:" + filepath.Join(dir, "c.db")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(config.EnvDatabaseURL, tt.url)

			cfg, err := config.Load("", "")
			require.NoError(t, err)
			assert.Equal(t, "sqlite3", cfg.Database.Driver)
			assert.Equal(t, tt.dsn, cfg.Database.DSN)

			d, err := db.Open(cfg.Database.DBConfig())
			require.NoError(t, err)
			t.Cleanup(func() { _ = d.Close() })
			require.NoError(t, d.Ping(context.Background()))
		})
	}
}

func TestLoad_DatabaseURL_PostgresUnchanged(t *testing.T) {
	clearEnv(t)
	const url = "postgresql://u:p@localhost:5432/lambok?sslmode=disable"
	t.Setenv(config.EnvDatabaseURL, url)

	cfg, err := config.Load("", "")
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, url, cfg.Database.DSN)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "bad log level", yaml: "log:\n  level: loud\n"},
		{name: "unknown driver", yaml: "database:\n  driver: oracle\n"},
		{name: "dsn without driver", env: map[string]string{config.EnvDatabaseURL: "db.sqlite"}},
		{name: "empty addr", yaml: "server:\n  addr: \"\"\n"},
		{name: "unknown scheme", env: map[string]string{config.EnvDatabaseURL: "oracle://u:p@host/db"}},
		{name: "malformed mysql url", env: map[string]string{config.EnvDatabaseURL: "mysql://u:p@[::1/shop"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.yaml != "" {
				path = writeFile(t, "config.yaml", tt.yaml)
			}
			_, err := config.Load(path, "")
			assert.ErrorIs(t, err, config.ErrInvalid)
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", "server: [unclosed")

	_, err := config.Load(path, "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, config.ErrInvalid)
}

func TestLogConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := config.LogConfig{Level: "warn"}.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"k":"v"`)
}
