package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tarun9121/project-lambok/migrations"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}

	// withMigrator opens the database, runs fn and always closes.
	withMigrator := func(fn func(*migrations.Migrator) error) error {
		d, err := a.openDB(nil, nil)
		if err != nil {
			return err
		}
		m, err := migrations.New(d, a.cfg.Database.MigrationsPath, a.logger)
		if err != nil {
			_ = d.Close()
			return err
		}
		defer m.Close()
		return fn(m)
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return withMigrator(func(m *migrations.Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				a.logger.Info("migrations: up completed")
				return nil
			})
		},
	}

	down := &cobra.Command{
		Use:   "down [N]",
		Short: "Roll back N migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("down: invalid steps argument %q", args[0])
				}
				steps = n
			}
			return withMigrator(func(m *migrations.Migrator) error {
				if err := m.Down(steps); err != nil {
					return err
				}
				a.logger.Info("migrations: down completed", "steps", steps)
				return nil
			})
		},
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the applied migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(func(m *migrations.Migrator) error {
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version: %d  dirty: %v\n", v, dirty)
				return nil
			})
		},
	}

	force := &cobra.Command{
		Use:   "force V",
		Short: "Set the version without running migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("force: invalid version %q", args[0])
			}
			return withMigrator(func(m *migrations.Migrator) error {
				if err := m.Force(v); err != nil {
					return err
				}
				a.logger.Info("migrations: forced", "version", v)
				return nil
			})
		},
	}

	var yes bool
	drop := &cobra.Command{
		Use:   "drop",
		Short: "Drop every table (asks for confirmation)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				fmt.Fprintln(cmd.ErrOrStderr(), "WARNING: drop will destroy all tables. Type 'yes' to confirm:")
				line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if strings.TrimSpace(line) != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "aborted")
					return nil
				}
			}
			return withMigrator(func(m *migrations.Migrator) error {
				if err := m.Drop(); err != nil {
					return err
				}
				a.logger.Info("migrations: all tables dropped")
				return nil
			})
		},
	}
	drop.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")

	cmd.AddCommand(up, down, version, force, drop)
	return cmd
}
