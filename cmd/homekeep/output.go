package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/artpar/homekeep/bootstrap"
	"github.com/artpar/homekeep/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var outputFormat string

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json or yaml")
}

// render writes v as JSON or YAML, or calls table for the table format.
func render(w io.Writer, v interface{}, table func(io.Writer) error) error {
	switch outputFormat {
	case "table", "":
		return table(w)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		// Round-trip through JSON so YAML keys match the API's field names.
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic interface{}
		if err := json.Unmarshal(data, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", outputFormat)
	}
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// openAccounts builds the account service for a management command. Logs go
// to stderr and metrics are off.
func openAccounts(cmd *cobra.Command) (*bootstrap.App, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Metrics.Enabled = false
	cfg.Logging.Level = cliLogLevel

	return bootstrap.NewCore(cfg, bootstrap.Options{
		Version:   version,
		LogOutput: cmd.ErrOrStderr(),
	})
}
