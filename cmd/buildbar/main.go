// Package main is the entry point for the buildbar CLI.
//
// buildbar is meant to be run by a menu-bar host such as BitBar on every
// refresh: it collects the latest build of every monitored repository and
// prints the plugin text to stdout.
//
// Usage:
//
//	buildbar                   # Print status-bar text once
//	buildbar --format table    # Print a coloured table instead
//	buildbar monitors          # List the compiled-in monitor table
//	buildbar watch -i 1m       # Re-collect every minute
//	buildbar version           # Show version info
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd collects once when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "buildbar",
	Short: "Menu-bar summary of container image builds",
	Long: `buildbar shows the latest build of each monitored repository on
Docker Hub and Quay.io.

Every monitor is fetched concurrently. If any of them fails, only the
error is printed, so the menu bar never shows a half-updated view.

The monitor table is compiled into the binary from config/monitors.yaml.
URLs may reference environment variables, e.g. ${QUAY_TOKEN}.

Quick start:
  1. Add your repositories to config/monitors.yaml and rebuild
  2. Copy the binary into your BitBar plugins folder as buildbar.1m.cgi
  3. Or run it by hand: buildbar --format table`,
	SilenceUsage: true,
	RunE:         runCollect,
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// newLogger creates a JSON logger on stderr so stdout stays plugin text.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this buildbar binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "buildbar %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log every fetch to stderr")
	rootCmd.Flags().StringP("format", "f", formatBitBar, "output format: bitbar or table")

	rootCmd.AddCommand(versionCmd)
}
