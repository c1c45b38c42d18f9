package main

import (
	"fmt"
	"os"

	"github.com/artpar/homekeep/bootstrap"
	"github.com/artpar/homekeep/config"
	"github.com/spf13/cobra"
)

var (
	hotReload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the homekeep HTTP API.

The server will:
  - Load configuration from homekeep.yaml (or --config)
  - Or use defaults and HOMEKEEP_* environment variables
  - Open and migrate the SQLite database
  - Serve /api/v1/accounts/{userID}/... plus health, metrics and Swagger UI

With --hot-reload (default) billing settings and the log level are reloaded
when the file changes or the process receives SIGHUP.

Environment variables:
  HOMEKEEP_DATABASE_DSN           - Database path (default: homekeep.db)
  HOMEKEEP_SERVER_PORT            - Server port (default: 8080)
  HOMEKEEP_BILLING_PLATFORM_FEE   - Monthly platform fee (default: 5.00)
  HOMEKEEP_BILLING_TIMEZONE       - Billing calendar timezone (default: UTC)
  HOMEKEEP_LOG_LEVEL              - Log level: debug, info, warn, error

Examples:
  homekeep serve
  homekeep serve --config /etc/homekeep/homekeep.yaml
  homekeep serve --hot-reload=false`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "enable hot reload of configuration")
}

func runServe(cmd *cobra.Command, args []string) error {
	hasConfigFile := false
	if _, err := os.Stat(cfgFile); err == nil {
		hasConfigFile = true
	}

	opts := bootstrap.Options{Version: version}

	var app *bootstrap.App
	var err error

	if hasConfigFile && hotReload {
		// Hot reload only works with config file
		app, err = bootstrap.NewWithHotReload(cfgFile, opts)
	} else {
		cfg, loadErr := config.LoadWithFallback(cfgFile)
		if loadErr != nil {
			return fmt.Errorf("error loading config: %w", loadErr)
		}
		if !hasConfigFile {
			fmt.Fprintf(cmd.ErrOrStderr(), "No %s found, running with defaults and environment variables\n", cfgFile)
		}
		app, err = bootstrap.New(cfg, opts)
	}
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}
