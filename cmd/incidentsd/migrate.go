package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"incidents-dashboard/core/appbootstrap"
	"incidents-dashboard/core/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()
		db, err := appbootstrap.OpenDB(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		v, err := store.SchemaVersion(cmd.Context(), db)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
		return nil
	},
}
