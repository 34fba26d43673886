package main

import (
	"fmt"
	"io"

	"github.com/jpalmerr/buildbar/config"
	"github.com/spf13/cobra"
)

// monitorsCmd lists the compiled-in monitor table without fetching anything.
var monitorsCmd = &cobra.Command{
	Use:   "monitors",
	Short: "List the compiled-in monitors",
	Long: `List the monitors compiled into this binary, in render order.

The table is decoded, environment variables are expanded, and grids are
expanded to individual monitors. Nothing is fetched. It's useful for
checking that a rebuilt binary carries the intended table.

Exit codes:
  0 - Table is valid
  1 - Table is invalid (error details printed to stderr)

Example:
  buildbar monitors
  buildbar monitors --raw`,
	RunE: runMonitors,
}

func init() {
	rootCmd.AddCommand(monitorsCmd)

	monitorsCmd.Flags().Bool("raw", false, "print the embedded YAML source instead")
}

func runMonitors(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if raw, _ := cmd.Flags().GetBool("raw"); raw {
		_, err := out.Write(config.DefaultSource())
		return err
	}

	cfg, err := config.Default()
	if err != nil {
		return fmt.Errorf("invalid monitor table: %w", err)
	}
	return listMonitors(out, cfg)
}

// listMonitors prints a summary of cfg followed by one line per monitor.
func listMonitors(out io.Writer, cfg *config.Config) error {
	monitors, err := config.BuildMonitors(cfg)
	if err != nil {
		return fmt.Errorf("invalid monitor table: %w", err)
	}

	gridMonitors := len(monitors) - len(cfg.Monitors)

	timeout := "none"
	if cfg.Timeout.Duration() > 0 {
		timeout = cfg.Timeout.Duration().String()
	}
	concurrency := "unlimited"
	if cfg.MaxConcurrency > 0 {
		concurrency = fmt.Sprintf("%d", cfg.MaxConcurrency)
	}

	fmt.Fprintf(out, "Monitor table is valid!\n")
	fmt.Fprintf(out, "  Timeout:     %s\n", timeout)
	fmt.Fprintf(out, "  Concurrency: %s\n", concurrency)
	fmt.Fprintf(out, "  Monitors:    %d direct + %d from grids = %d total\n",
		len(cfg.Monitors), gridMonitors, len(monitors))

	for i, m := range monitors {
		fmt.Fprintf(out, "%3d  %-9s  %s\n", i+1, m.Parser().Name(), m.URL())
	}
	return nil
}
