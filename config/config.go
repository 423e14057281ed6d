// Package config loads runtime settings for the lambok binary.
//
// Sources, lowest precedence first: built-in defaults, a YAML file, a .env
// file, the process environment. Missing files are not errors.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Tarun9121/project-lambok/db"
)

// Environment variables that override file settings.
const (
	EnvAddr           = "LAMBOK_ADDR"
	EnvLogLevel       = "LAMBOK_LOG_LEVEL"
	EnvDatabaseURL    = "DATABASE_URL"
	EnvDatabaseDriver = "DATABASE_DRIVER"
	EnvMigrationsPath = "MIGRATIONS_PATH"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the root of config.yaml.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
}

// ServerConfig configures the HTTP host.
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig configures slog and the statement log hook.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level              string        `yaml:"level"`
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold"`
	// LogArgs includes bound parameters in statement logs. Leave it off
	// where rows carry credentials.
	LogArgs bool `yaml:"log_args"`
}

// DatabaseConfig maps onto db.Config. An empty Driver means no database.
type DatabaseConfig struct {
	Driver          string           `yaml:"driver"`
	DSN             string           `yaml:"dsn"`
	Options         db.DriverOptions `yaml:"options"`
	MaxOpenConns    int              `yaml:"max_open_conns"`
	MaxIdleConns    int              `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration    `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration    `yaml:"conn_max_idle_time"`
	DefaultTimeout  time.Duration    `yaml:"default_timeout"`
	// MigrationsPath points at a directory of SQL migrations. Empty uses the
	// migrations embedded in the binary.
	MigrationsPath string `yaml:"migrations_path"`
}

// Default returns the settings used when nothing else is configured.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Log: LogConfig{
			Level:              "info",
			SlowQueryThreshold: 200 * time.Millisecond,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    10,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 2 * time.Minute,
			DefaultTimeout:  10 * time.Second,
		},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Loading
// ─────────────────────────────────────────────────────────────────────────────

// Load reads the YAML file at path and the dotenv file at envFile, then
// applies environment overrides. Either path may be empty.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	dotenv := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", envFile, err)
		default:
			dotenv = m
		}
	}

	err := cfg.applyEnvOverrides(func(key string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		return dotenv[key]
	})
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides(lookup func(string) string) error {
	if v := lookup(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := lookup(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := lookup(EnvDatabaseURL); v != "" {
		driver, dsn, err := dsnFromURL(v)
		if err != nil {
			return err
		}
		c.Database.DSN = dsn
		if c.Database.Driver == "" {
			c.Database.Driver = driver
		}
	}
	if v := lookup(EnvDatabaseDriver); v != "" {
		c.Database.Driver = v
	}
	if v := lookup(EnvMigrationsPath); v != "" {
		c.Database.MigrationsPath = v
	}
	return nil
}

// dsnFromURL picks the driver for a DATABASE_URL and rewrites the URL into
// the DSN form that driver opens. Values without a known scheme are returned
// unchanged with no driver.
//
//	postgres://u:p@host/db        -> postgres, unchanged
//	mysql://u:p@host:3306/db      -> mysql, u:p@tcp(host:3306)/db?parseTime=true
//	sqlite3://data/lambok.db      -> sqlite3, data/lambok.db
//	file://data/lambok.db?mode=ro -> sqlite3, file:data/lambok.db?mode=ro
func dsnFromURL(raw string) (driver, dsn string, err error) {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		if strings.HasPrefix(raw, "file:") {
			return "sqlite3", raw, nil
		}
		return "", raw, nil
	}

	switch scheme {
	case "postgres", "postgresql":
		return "postgres", raw, nil
	case "mysql":
		dsn, err = mysqlDSN(raw)
		return "mysql", dsn, err
	case "sqlite", "sqlite3":
		return "sqlite3", rest, nil
	case "file":
		return "sqlite3", "file:" + rest, nil
	}
	return "", raw, nil
}

func mysqlDSN(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalid, EnvDatabaseURL, err)
	}

	cfg := mysql.NewConfig()
	cfg.User = u.User.Username()
	cfg.Passwd, _ = u.User.Password()
	cfg.Net = "tcp"
	if host := u.Hostname(); host != "" {
		port := u.Port()
		if port == "" {
			port = "3306"
		}
		cfg.Addr = net.JoinHostPort(host, port)
	}
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	cfg.ParseTime = true
	for k, vs := range u.Query() {
		if cfg.Params == nil {
			cfg.Params = make(map[string]string)
		}
		cfg.Params[k] = vs[len(vs)-1]
	}
	return cfg.FormatDSN(), nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is empty", ErrInvalid)
	}
	if c.Database.Driver != "" {
		if _, err := db.LookupDriver(c.Database.Driver); err != nil {
			return fmt.Errorf("%w: database.driver: %v", ErrInvalid, err)
		}
	}
	if c.Database.Driver == "" && c.Database.DSN != "" {
		return fmt.Errorf("%w: database.dsn set without database.driver", ErrInvalid)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Derived values
// ─────────────────────────────────────────────────────────────────────────────

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalid, l.Level)
	}
	return lvl, nil
}

// NewLogger returns a JSON slog logger writing to w at the configured level.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	lvl, err := l.SlogLevel()
	if err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// Enabled reports whether a database is configured.
func (d DatabaseConfig) Enabled() bool { return d.Driver != "" }

// DBConfig converts the settings into a db.Config carrying hooks.
func (d DatabaseConfig) DBConfig(hooks ...db.Hook) db.Config {
	return db.Config{
		DriverName:      d.Driver,
		DSN:             d.DSN,
		Options:         d.Options,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
		ConnMaxIdleTime: d.ConnMaxIdleTime,
		DefaultTimeout:  d.DefaultTimeout,
		Hooks:           hooks,
	}
}
