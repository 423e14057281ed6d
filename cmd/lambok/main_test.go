package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tarun9121/project-lambok/config"
	"github.com/Tarun9121/project-lambok/db"
	"github.com/Tarun9121/project-lambok/repo"
)

const demoLine = "Product(productId=12, productName=pocoMobile, price=100.0) " +
	"Product(productId=10, productName=samsung, price=100.0)\n"

// execute runs the CLI with args and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{
		config.EnvAddr, config.EnvLogLevel, config.EnvDatabaseURL,
		config.EnvDatabaseDriver, config.EnvMigrationsPath,
	} {
		t.Setenv(k, "")
	}

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

// sqliteConfig writes a config file pointing at a fresh SQLite file.
func sqliteConfig(t *testing.T) (cfgPath, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "lambok.db")
	cfgPath = filepath.Join(dir, "config.yaml")
	yaml := "log:\n  level: error\ndatabase:\n  driver: sqlite3\n  dsn: " + dbPath + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o600))
	return cfgPath, dbPath
}

func TestDemo(t *testing.T) {
	out, err := execute(t, "", "demo", "--config", "", "--env-file", "")
	require.NoError(t, err)
	assert.Equal(t, demoLine, out)
}

func TestDemoCatalog(t *testing.T) {
	poco, samsung := demoCatalog()
	assert.Equal(t, poco.Price(), samsung.Price())
	assert.Equal(t, 12, poco.ProductID(), "deriving samsung must not touch pocoMobile")

	var buf bytes.Buffer
	printDemo(&buf, poco, samsung)
	assert.Equal(t, demoLine, buf.String())
}

func TestDemo_PersistWithoutDatabase(t *testing.T) {
	_, err := execute(t, "", "demo", "--persist", "--config", "", "--env-file", "")
	assert.ErrorContains(t, err, "no database configured")
}

func TestMigrateAndPersist(t *testing.T) {
	cfgPath, dbPath := sqliteConfig(t)
	flags := []string{"--config", cfgPath, "--env-file", ""}

	_, err := execute(t, "", append([]string{"migrate", "up"}, flags...)...)
	require.NoError(t, err)

	out, err := execute(t, "", append([]string{"migrate", "version"}, flags...)...)
	require.NoError(t, err)
	assert.Equal(t, "version: 2  dirty: false\n", out)

	out, err = execute(t, "", append([]string{"demo", "--persist"}, flags...)...)
	require.NoError(t, err)
	assert.Equal(t, demoLine, out)

	d, err := db.Open(db.Config{DriverName: "sqlite3", DSN: dbPath})
	require.NoError(t, err)
	defer d.Close()

	products, err := repo.NewProductRepo(d).List(context.Background(), 50, 0)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "samsung", products[0].ProductName())
	assert.Equal(t, "pocoMobile", products[1].ProductName())
}

func TestMigrate_DownAndForce(t *testing.T) {
	cfgPath, _ := sqliteConfig(t)
	flags := []string{"--config", cfgPath, "--env-file", ""}

	_, err := execute(t, "", append([]string{"migrate", "up"}, flags...)...)
	require.NoError(t, err)
	_, err = execute(t, "", append([]string{"migrate", "down", "2"}, flags...)...)
	require.NoError(t, err)

	out, err := execute(t, "", append([]string{"migrate", "version"}, flags...)...)
	require.NoError(t, err)
	assert.Equal(t, "version: 0  dirty: false\n", out)

	_, err = execute(t, "", append([]string{"migrate", "force", "1"}, flags...)...)
	require.NoError(t, err)
	out, _ = execute(t, "", append([]string{"migrate", "version"}, flags...)...)
	assert.Equal(t, "version: 1  dirty: false\n", out)

	_, err = execute(t, "", append([]string{"migrate", "down", "zero"}, flags...)...)
	assert.ErrorContains(t, err, "invalid steps")
}

func TestMigrate_DropNeedsConfirmation(t *testing.T) {
	cfgPath, _ := sqliteConfig(t)
	flags := []string{"--config", cfgPath, "--env-file", ""}

	_, err := execute(t, "", append([]string{"migrate", "up"}, flags...)...)
	require.NoError(t, err)

	out, err := execute(t, "no\n", append([]string{"migrate", "drop"}, flags...)...)
	require.NoError(t, err)
	assert.Equal(t, "aborted\n", out)

	_, err = execute(t, "yes\n", append([]string{"migrate", "drop"}, flags...)...)
	require.NoError(t, err)
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: loud\n"), 0o600))

	_, err := execute(t, "", "demo", "--config", path, "--env-file", "")
	assert.ErrorIs(t, err, config.ErrInvalid)
}
