package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile     string
	cliLogLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "homekeep",
	Short: "Subscription ledger and billing for home tools",
	Long: `homekeep tracks the tools a household subscribes to and computes
what the account is charged now and on its next billing date.

Every account is billed on one anchor day of the month, taken from its
earliest subscription. Trials are free until they convert and a flat
platform fee applies while any tool is held.

Quick start:
  homekeep init       # Write a default homekeep.yaml
  homekeep serve      # Start the HTTP API

Management:
  homekeep subscriptions  # Add, cancel and remove tools
  homekeep billing        # Show current charge and projection
  homekeep validate       # Validate configuration`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		if !cmd.Flags().Changed("config") {
			if v := os.Getenv("HOMEKEEP_CONFIG"); v != "" {
				cfgFile = v
			}
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "homekeep.yaml", "config file path (env HOMEKEEP_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&cliLogLevel, "log-level", "warn", "log level for management commands")
}
