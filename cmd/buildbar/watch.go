package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/buildbar"
	"github.com/jpalmerr/buildbar/config"
	"github.com/jpalmerr/buildbar/internal/store"
	"github.com/jpalmerr/buildbar/internal/view"
	"github.com/spf13/cobra"
)

const defaultWatchInterval = time.Minute

// watchCmd re-collects on an interval until interrupted.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Collect repeatedly and print a table each time",
	Long: `Collect every monitor on a fixed interval and print a coloured table
after each collection.

Collections never overlap; a slow registry delays the next one. Status
changes between collections are logged to stderr. The command runs until
interrupted (Ctrl+C) or it receives SIGTERM.

Example:
  buildbar watch
  buildbar watch --interval 30s`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationP("interval", "i", defaultWatchInterval, "time between collections")
}

func runWatch(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	interval, _ := cmd.Flags().GetDuration("interval")
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", interval)
	}

	logger := newLogger(verbose)

	cfg, err := config.Default()
	if err != nil {
		return fmt.Errorf("invalid monitor table: %w", err)
	}

	// cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return watch(ctx, cfg, cmd.OutOrStdout(), interval, logger)
}

// watch collects every interval, printing a table per collection and
// logging status transitions, until ctx is cancelled.
func watch(ctx context.Context, cfg *config.Config, out io.Writer, interval time.Duration, logger *slog.Logger) error {
	statuses := store.NewMemoryStore()

	bb, err := newBuildBar(cfg, logger, buildbar.WithStatusCallback(func(s buildbar.BuildStatus) {
		statuses.Update(s)
	}))
	if err != nil {
		return err
	}
	defer bb.Close()

	transitions := statuses.Subscribe()
	logDone := make(chan struct{})
	go func() {
		defer close(logDone)
		logTransitions(transitions, logger)
	}()

	styles := view.DefaultStyles()
	err = bb.Watch(ctx, interval, func(results []buildbar.BuildStatus, err error) {
		if err != nil {
			logger.Error("collection failed", "error", err)
		}
		writeSnapshot(out, time.Now(), results, err, styles)
	})

	statuses.Unsubscribe(transitions)
	<-logDone
	return err
}

// logTransitions logs every transition until ch is closed.
func logTransitions(ch <-chan store.Transition, logger *slog.Logger) {
	for t := range ch {
		if t.First {
			logger.Debug("build status", "name", t.Name, "url", t.Key, "status", t.To.String())
			continue
		}
		logger.Info("build status changed",
			"name", t.Name,
			"url", t.Key,
			"from", t.From.String(),
			"to", t.To.String(),
		)
	}
}

// writeSnapshot prints one collection outcome under a timestamp header.
func writeSnapshot(out io.Writer, at time.Time, results []buildbar.BuildStatus, err error, styles view.Styles) {
	fmt.Fprintln(out, styles.Muted.Render(at.Format(time.DateTime)))
	if err != nil {
		_, _ = io.WriteString(out, view.Error(err, styles))
	} else {
		_, _ = io.WriteString(out, view.Table(results, nil, styles))
	}
	fmt.Fprintln(out)
}
