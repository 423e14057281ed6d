package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Tarun9121/project-lambok/config"
	"github.com/Tarun9121/project-lambok/db"
	"github.com/Tarun9121/project-lambok/telemetry"
)

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	envFile    string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "lambok",
		Short:        "Builder-backed catalog service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath, a.envFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cfg.Log.NewLogger(cmd.ErrOrStderr())
			slog.SetDefault(a.logger)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "config.yaml", "YAML configuration file")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file with environment overrides")

	root.AddCommand(
		newServeCmd(a),
		newDemoCmd(a),
		newMigrateCmd(a),
	)
	return root
}

// openDB opens the configured database with statement logging and, when
// given, metrics and tracing hooks.
func (a *app) openDB(metrics *telemetry.Collector, tracer *telemetry.Tracer) (*db.DB, error) {
	if !a.cfg.Database.Enabled() {
		return nil, fmt.Errorf("no database configured: set database.driver or %s", config.EnvDatabaseURL)
	}

	hooks := []db.Hook{
		db.NewLogHook(db.LogHookConfig{
			Logger:             a.logger,
			SlowQueryThreshold: a.cfg.Log.SlowQueryThreshold,
			LogArgs:            a.cfg.Log.LogArgs,
		}),
	}
	if metrics != nil {
		hooks = append(hooks, db.NewMetricsHook(metrics))
	}
	if tracer != nil {
		hooks = append(hooks, db.NewTracingHook(tracer))
	}

	d, err := db.Open(a.cfg.Database.DBConfig(hooks...))
	if err != nil {
		return nil, err
	}
	stats := d.Stats()
	a.logger.Info("database connected",
		"driver", d.DriverName(),
		"max_open_connections", stats.MaxOpenConnections,
		"open_connections", stats.OpenConnections,
	)
	return d, nil
}
