package main

import (
	"fmt"
	"os"

	"github.com/artpar/homekeep/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write homekeep.yaml (or --config) with the default settings.

Examples:
  homekeep init
  homekeep init --config /etc/homekeep/homekeep.yaml --force`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfgFile); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgFile)
	}

	cfg := config.Default()
	if err := config.Save(&cfg, cfgFile); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s Wrote %s\n", checkMark, cfgFile)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintf(out, "  homekeep validate --config %s\n", cfgFile)
	fmt.Fprintf(out, "  homekeep serve --config %s\n", cfgFile)
	return nil
}
