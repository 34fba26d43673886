package buildbar

import (
	"errors"
	"fmt"
	"time"
)

// gridConfig holds configuration during monitor grid construction.
type gridConfig struct {
	urlTemplate string
	webTemplate string
	dimensions  map[string][]string
	timeout     time.Duration
}

// GridOption configures monitor grid generation for [NewMonitorGrid].
type GridOption func(*gridConfig) error

// WithURLTemplate sets the registry API URL template.
//
// Returns an error if the template string is empty.
func WithURLTemplate(tmpl string) GridOption {
	return func(cfg *gridConfig) error {
		if tmpl == "" {
			return errors.New("URL template required")
		}
		cfg.urlTemplate = tmpl
		return nil
	}
}

// WithWebTemplate sets the template for each monitor's web link.
// Optional; without it the generated monitors have no link.
func WithWebTemplate(tmpl string) GridOption {
	return func(cfg *gridConfig) error {
		cfg.webTemplate = tmpl
		return nil
	}
}

// WithDimensions sets the dimension values for cartesian product expansion.
// Each key becomes a template variable.
//
// Returns an error if the map is empty, any dimension has no values, or
// any value is empty or repeated.
func WithDimensions(dims map[string][]string) GridOption {
	return func(cfg *gridConfig) error {
		if len(dims) == 0 {
			return errors.New("at least one dimension required")
		}

		cp := make(map[string][]string, len(dims))
		for k, values := range dims {
			if len(values) == 0 {
				return fmt.Errorf("dimension %q has no values", k)
			}
			seen := make(map[string]struct{}, len(values))
			for _, v := range values {
				if v == "" {
					return fmt.Errorf("dimension %q contains an empty value", k)
				}
				if _, dup := seen[v]; dup {
					return fmt.Errorf("dimension %q has duplicate value %q", k, v)
				}
				seen[v] = struct{}{}
			}
			cp[k] = append([]string(nil), values...)
		}
		cfg.dimensions = cp
		return nil
	}
}

// WithGridTimeout sets the request timeout for every generated monitor.
//
// Returns an error if the duration is negative.
func WithGridTimeout(d time.Duration) GridOption {
	return func(cfg *gridConfig) error {
		if d < 0 {
			return errors.New("timeout cannot be negative")
		}
		cfg.timeout = d
		return nil
	}
}
