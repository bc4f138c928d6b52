package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"incidents-dashboard/config"
	"incidents-dashboard/core/utils"
)

var (
	configPath string
	version    = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "incidentsd",
	Short: "Incident dashboard service",
	Long: `Serves the incident dashboard: sign-in, KPI indicators and charts,
and a searchable incident table over the configured incident collection.

Configuration is read from --config (yaml or .env) and INCIDENTS_* environment
variables, which always win.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("INCIDENTS_CONFIG"), "Path to config file (yaml or .env)")
	rootCmd.SetUsageTemplate(rootCmd.UsageTemplate() + "\nEnvironment:\n" + config.Usage() + "\n")
	rootCmd.AddCommand(serveCmd, migrateCmd, usersCmd, summaryCmd)
}

func loadConfig() (*config.AppConfig, *utils.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, utils.NewLoggerWithLevel(cfg.LogLevel), nil
}
