package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/jpalmerr/buildbar"
	"github.com/jpalmerr/buildbar/config"
	"github.com/jpalmerr/buildbar/internal/view"
	"github.com/spf13/cobra"
)

const (
	formatBitBar = "bitbar"
	formatTable  = "table"
)

func runCollect(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	format, _ := cmd.Flags().GetString("format")
	if format != formatBitBar && format != formatTable {
		return fmt.Errorf("unknown format %q (want %s or %s)", format, formatBitBar, formatTable)
	}

	logger := newLogger(verbose)

	cfg, err := config.Default()
	if err != nil {
		return fmt.Errorf("invalid monitor table: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return collect(ctx, cfg, cmd.OutOrStdout(), format, logger)
}

// collect runs one collection and writes the result in the given format.
//
// A failed collection is reported on w and logged, but is not an error:
// the menu-bar host shows whatever we print, and a non-zero exit would
// replace it with a generic failure.
func collect(ctx context.Context, cfg *config.Config, w io.Writer, format string, logger *slog.Logger) error {
	bb, err := newBuildBar(cfg, logger)
	if err != nil {
		return err
	}
	defer bb.Close()

	logger.Debug("collecting", "monitor_count", len(bb.Monitors()))

	if format == formatTable {
		results, err := bb.Collect(ctx)
		if err != nil {
			logger.Error("collection failed", "error", err)
			_, werr := io.WriteString(w, view.Error(err, view.DefaultStyles()))
			return werr
		}
		_, err = io.WriteString(w, view.Table(results, nil, view.DefaultStyles()))
		return err
	}

	if err := bb.Run(ctx, w); err != nil {
		logger.Error("collection failed", "error", err)
	}
	return nil
}

// newBuildBar converts the monitor table into a BuildBar.
func newBuildBar(cfg *config.Config, logger *slog.Logger, extra ...buildbar.Option) (*buildbar.BuildBar, error) {
	opts, err := config.Options(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build monitors: %w", err)
	}
	opts = append(opts, buildbar.WithLogger(logger))
	opts = append(opts, extra...)

	bb, err := buildbar.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create buildbar: %w", err)
	}
	return bb, nil
}
