package buildbar

import (
	"errors"
	"log/slog"
)

// bbConfig holds mutable state during BuildBar construction.
type bbConfig struct {
	monitors        []Monitor
	maxConcurrency  int
	logger          *slog.Logger
	statusCallbacks []func(BuildStatus)
}

// Option is a function that configures a [BuildBar] during construction.
//
// Built-in options: [WithMonitor], [WithMonitors], [WithMaxConcurrency],
// [WithLogger], [WithStatusCallback].
type Option func(*bbConfig) error

// WithMonitor appends a single [Monitor].
//
// Monitors are rendered in the order they are added.
func WithMonitor(m Monitor) Option {
	return func(cfg *bbConfig) error {
		cfg.monitors = append(cfg.monitors, m)
		return nil
	}
}

// WithMonitors appends several monitors, keeping their order.
//
// Example:
//
//	bb, err := buildbar.New(
//	    buildbar.WithMonitors(monitors...),
//	)
func WithMonitors(monitors ...Monitor) Option {
	return func(cfg *bbConfig) error {
		cfg.monitors = append(cfg.monitors, monitors...)
		return nil
	}
}

// WithMaxConcurrency caps how many monitors are fetched at once.
//
// By default every monitor is fetched concurrently. Returns an error if
// the value is negative; zero keeps the default.
func WithMaxConcurrency(n int) Option {
	return func(cfg *bbConfig) error {
		if n < 0 {
			return errors.New("max concurrency cannot be negative")
		}
		cfg.maxConcurrency = n
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the BuildBar instance.
//
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *bbConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithStatusCallback registers a function called with every [BuildStatus]
// of a successful collection.
//
// Callbacks run after all monitors have settled, in monitor order, so a
// callback never sees the results of a collection that failed as a whole.
// Multiple callbacks run in registration order. Panics are recovered and
// logged.
//
// Example:
//
//	bb, err := buildbar.New(
//	    buildbar.WithMonitors(monitors...),
//	    buildbar.WithStatusCallback(func(s buildbar.BuildStatus) {
//	        if s.Status.Canonical() == buildbar.StatusError {
//	            log.Printf("build failed: %s", s.Name)
//	        }
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithStatusCallback(cb func(BuildStatus)) Option {
	return func(cfg *bbConfig) error {
		if cb == nil {
			return nil
		}
		cfg.statusCallbacks = append(cfg.statusCallbacks, cb)
		return nil
	}
}
