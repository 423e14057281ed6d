package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Tarun9121/project-lambok/api"
	"github.com/Tarun9121/project-lambok/repo"
	"github.com/Tarun9121/project-lambok/telemetry"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, cmd)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func (a *app) serve(ctx context.Context, cmd *cobra.Command) error {
	poco, samsung := demoCatalog()
	printDemo(cmd.OutOrStdout(), poco, samsung)

	metrics := telemetry.NewCollector(nil)
	tracer := telemetry.NewTracer(nil)

	apiCfg := api.Config{
		Logger:            a.logger,
		Metrics:           metrics,
		Tracer:            tracer,
		ReadHeaderTimeout: a.cfg.Server.ReadHeaderTimeout,
	}

	if a.cfg.Database.Enabled() {
		d, err := a.openDB(metrics, tracer)
		if err != nil {
			return err
		}
		defer d.Close()

		apiCfg.DB = d
		apiCfg.Users = repo.NewUserRepo(d)
		apiCfg.Products = repo.NewProductRepo(d)
	} else {
		a.logger.Info("no database configured; serving /user only")
	}

	ln, err := net.Listen("tcp", a.cfg.Server.Addr)
	if err != nil {
		return err
	}
	return api.NewServer(apiCfg).Run(ctx, ln, a.cfg.Server.ShutdownTimeout)
}
