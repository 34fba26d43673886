package buildbar

import (
	"errors"
	"time"
)

// monitorConfig holds mutable state during monitor construction.
type monitorConfig struct {
	webURL  string
	timeout time.Duration
}

// MonitorOption configures a [Monitor] during construction.
//
// Built-in options: [WithWebURL], [WithTimeout].
type MonitorOption func(*monitorConfig) error

// WithWebURL sets the human-facing link rendered next to the monitor's
// status, typically the registry's build page for the repository.
func WithWebURL(webURL string) MonitorOption {
	return func(cfg *monitorConfig) error {
		cfg.webURL = webURL
		return nil
	}
}

// WithTimeout bounds the fetch of this monitor.
//
// Monitors have no timeout by default: an unresponsive registry holds up
// the whole collection until it answers or the caller's context ends.
//
// Returns an error if the duration is negative. Zero keeps the default.
func WithTimeout(d time.Duration) MonitorOption {
	return func(cfg *monitorConfig) error {
		if d < 0 {
			return errors.New("timeout cannot be negative")
		}
		cfg.timeout = d
		return nil
	}
}
