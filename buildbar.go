package buildbar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/jpalmerr/buildbar/internal/poller"
)

// BuildBar fetches every configured [Monitor], parses the responses and
// hands back the results in monitor order.
//
// A BuildBar is created with [New] and is safe for concurrent use; each
// call to [BuildBar.Collect] is an independent run.
//
//	bb, err := buildbar.New(buildbar.WithMonitors(monitors...))
//	if err != nil {
//	    slog.Error("failed to create buildbar", "error", err)
//	    os.Exit(1)
//	}
//	_ = bb.Run(context.Background(), os.Stdout)
type BuildBar struct {
	monitors        []Monitor
	maxConcurrency  int
	client          *poller.Client
	logger          *slog.Logger
	statusCallbacks []func(BuildStatus)
}

// New creates a [BuildBar] with the given options.
//
// A BuildBar with no monitors is valid; it collects an empty result set.
func New(opts ...Option) (*BuildBar, error) {
	cfg := &bbConfig{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	for i, m := range cfg.monitors {
		if m.parser == nil {
			return nil, fmt.Errorf("monitor %d: not created with NewMonitor", i)
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &BuildBar{
		monitors:        cfg.monitors,
		maxConcurrency:  cfg.maxConcurrency,
		client:          poller.NewClient(),
		logger:          logger,
		statusCallbacks: cfg.statusCallbacks,
	}, nil
}

// Monitors returns a copy of the configured monitors.
func (bb *BuildBar) Monitors() []Monitor {
	cp := make([]Monitor, len(bb.monitors))
	copy(cp, bb.monitors)
	return cp
}

// Collect fetches and parses every monitor concurrently.
//
// Collect waits for every fetch to settle before returning, even after
// one has failed. On success the results have the same length and order
// as the monitors. If any monitor fails with a [*TransportError] or
// [*ParseError], Collect returns the first such error and no results.
//
// Cancelling ctx aborts outstanding fetches; without a deadline and
// without per-monitor timeouts an unresponsive registry blocks Collect.
func (bb *BuildBar) Collect(ctx context.Context) ([]BuildStatus, error) {
	results := make([]BuildStatus, len(bb.monitors))

	err := poller.FanOut(ctx, len(bb.monitors), bb.maxConcurrency, func(ctx context.Context, i int) error {
		status, err := bb.collectOne(ctx, bb.monitors[i])
		if err != nil {
			return err
		}
		// each task owns its slot
		results[i] = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, status := range results {
		for _, cb := range bb.statusCallbacks {
			invokeCallbackSafe(cb, status, bb.logger)
		}
	}

	return results, nil
}

// collectOne fetches and parses a single monitor.
func (bb *BuildBar) collectOne(ctx context.Context, m Monitor) (BuildStatus, error) {
	resp := bb.client.Fetch(ctx, m.url, m.timeout)

	logAttrs := []any{
		"url", m.url,
		"status_code", resp.StatusCode,
		"latency_ms", resp.Latency.Milliseconds(),
	}

	if resp.Error != nil {
		bb.logger.Debug("fetch failed", append(logAttrs, "error", resp.Error.Error())...)
		return BuildStatus{}, &TransportError{URL: m.url, StatusCode: resp.StatusCode, Err: transportCause(resp.Error)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bb.logger.Debug("fetch rejected", logAttrs...)
		return BuildStatus{}, &TransportError{URL: m.url, StatusCode: resp.StatusCode}
	}
	bb.logger.Debug("fetch completed", append(logAttrs, "bytes", len(resp.Body))...)

	return bb.safeParse(m, resp.Body)
}

// transportCause maps poller sentinels onto the package's own.
func transportCause(err error) error {
	if errors.Is(err, poller.ErrBodyTooLarge) {
		return fmt.Errorf("%w: %w", ErrResponseTooLarge, err)
	}
	return err
}

// safeParse calls the monitor's parser with panic recovery.
// A panic is logged with its stack under a correlation ID and returned as
// a [*ParseError] naming that ID.
func (bb *BuildBar) safeParse(m Monitor, body []byte) (status BuildStatus, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()

			bb.logger.Error("parser panic",
				"correlation_id", correlationID,
				"parser", m.parser.Name(),
				"url", m.url,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)

			status = BuildStatus{}
			err = &ParseError{
				Parser: m.parser.Name(),
				URL:    m.url,
				Reason: fmt.Sprintf("parser panic (correlation_id: %s)", correlationID),
			}
		}
	}()

	status, err = m.parser.Parse(body, m)
	if err != nil {
		return BuildStatus{}, err
	}
	status.Monitor = m
	return status, nil
}

// Run collects once and writes the status-bar text to w.
//
// On failure Run writes the error description instead, without markup,
// and returns the error so the caller can log it. Write errors are
// returned as-is.
func (bb *BuildBar) Run(ctx context.Context, w io.Writer, opts ...RenderOption) error {
	results, err := bb.Collect(ctx)
	if err != nil {
		if _, werr := io.WriteString(w, RenderError(err)); werr != nil {
			return werr
		}
		return err
	}

	_, err = io.WriteString(w, Render(results, opts...))
	return err
}

// Watch collects immediately and then once per interval until ctx is
// cancelled, passing each outcome to fn.
//
// Collections never overlap: a slow collection delays the next tick.
// Returns an error only if interval is not positive.
func (bb *BuildBar) Watch(ctx context.Context, interval time.Duration, fn func([]BuildStatus, error)) error {
	if interval <= 0 {
		return errors.New("watch interval must be positive")
	}

	bb.logger.Info("watch started", "monitor_count", len(bb.monitors), "interval", interval.String())

	if ctx.Err() != nil {
		return nil
	}
	fn(bb.Collect(ctx))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			bb.logger.Info("watch stopped")
			return nil
		case <-ticker.C:
			fn(bb.Collect(ctx))
		}
	}
}

// Close releases idle connections held by the fetcher.
func (bb *BuildBar) Close() {
	bb.client.Close()
}

// invokeCallbackSafe calls a status callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(BuildStatus), status BuildStatus, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("status callback panicked",
				"panic", r,
				"name", status.Name,
				"url", status.Monitor.URL(),
			)
		}
	}()
	cb(status)
}
