package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/employee-directory/internal/server"
	"github.com/jonathan/employee-directory/internal/server/ratelimit"
)

func newServeCmd(a *app) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long:  "Start an HTTP server exposing the directory as a JSON API, with Prometheus metrics at /metrics.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Port = port
			}

			rl, err := ratelimit.LoadConfig()
			if err != nil {
				return err
			}

			srv := server.New(a.service, server.Config{
				Port:           a.cfg.Port,
				RateLimit:      rl,
				AllowedOrigins: a.cfg.AllowedOrigins,
				PerPage:        a.cfg.PerPage,
				Logger:         a.logger,
				Metrics:        a.metrics,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Start(ctx)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "Port to listen on (overrides PORT)")
	return cmd
}
