package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"incidents-dashboard/core/appbootstrap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rt, err := appbootstrap.NewRuntime(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := rt.Close(); err != nil {
				logger.Errorf("close runtime: %v", err)
			}
		}()
		return rt.Server.Run(ctx)
	},
}
