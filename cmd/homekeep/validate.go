package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/artpar/homekeep/adapters/sqlite"
	"github.com/artpar/homekeep/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration before deployment",
	Long: `Validate the homekeep configuration file.

Checks:
  - YAML syntax is valid
  - Platform fee is a non-negative decimal
  - Billing timezone exists
  - Database is writable (optional)

Examples:
  homekeep validate
  homekeep validate --config /etc/homekeep/homekeep.yaml --check-database`,
	RunE: runValidate,
}

var validateCheckDatabase bool

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateCheckDatabase, "check-database", false, "check if database is writable")
}

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s...\n\n", cfgFile)

	// Check file exists
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Fprintf(out, "  %s Config file exists\n", crossMark)
		return fmt.Errorf("config file not found: %s", cfgFile)
	}
	fmt.Fprintf(out, "  %s Config file exists\n", checkMark)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(out, "  %s Config valid\n", crossMark)
		return fmt.Errorf("config error: %w", err)
	}
	fmt.Fprintf(out, "  %s Config valid\n", checkMark)

	fee, _ := cfg.Billing.Fee()
	fmt.Fprintf(out, "  %s Server: %s\n", checkMark, cfg.Server.Addr())
	fmt.Fprintf(out, "  %s Database: %s (%s)\n", checkMark, cfg.Database.DSN, cfg.Database.Driver)
	fmt.Fprintf(out, "  %s Platform fee: %s %s\n", checkMark, fee.StringFixed(2), cfg.Billing.Currency)
	fmt.Fprintf(out, "  %s Billing timezone: %s\n", checkMark, cfg.Billing.Timezone)
	fmt.Fprintf(out, "  %s Trial length: %d days\n", checkMark, cfg.Billing.TrialDays)

	if validateCheckDatabase {
		if err := checkDatabaseWritable(cfg.Database.DSN); err != nil {
			fmt.Fprintf(out, "  %s Database writable\n", crossMark)
			fmt.Fprintf(out, "      Error: %v\n", err)
			return err
		}
		fmt.Fprintf(out, "  %s Database writable\n", checkMark)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration is valid.")
	return nil
}

func checkDatabaseWritable(dsn string) error {
	db, err := sqlite.Open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.MigrateContext(ctx); err != nil {
		return err
	}
	return db.HealthCheck(ctx)
}
