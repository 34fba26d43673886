package config

import (
	"fmt"
	"time"

	"github.com/jpalmerr/buildbar"
)

// BuildMonitors converts a parsed table into SDK monitors.
//
// Direct monitors come first, in table order, followed by each grid's
// expansion in table order.
func BuildMonitors(cfg *Config) ([]buildbar.Monitor, error) {
	var monitors []buildbar.Monitor

	for i, mc := range cfg.Monitors {
		m, err := buildMonitor(mc, cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("monitors[%d]: %w", i, err)
		}
		monitors = append(monitors, m)
	}

	for i, gc := range cfg.Grids {
		grid, err := buildGrid(gc, cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("grids[%d]: %w", i, err)
		}
		monitors = append(monitors, grid...)
	}

	return monitors, nil
}

// Options returns the SDK options described by the table, monitors included.
func Options(cfg *Config) ([]buildbar.Option, error) {
	monitors, err := BuildMonitors(cfg)
	if err != nil {
		return nil, err
	}

	return []buildbar.Option{
		buildbar.WithMonitors(monitors...),
		buildbar.WithMaxConcurrency(cfg.MaxConcurrency),
	}, nil
}

// buildMonitor converts a single MonitorConfig to an SDK Monitor.
func buildMonitor(mc MonitorConfig, defaultTimeout Duration) (buildbar.Monitor, error) {
	parser, ok := buildbar.LookupParser(mc.Parser)
	if !ok {
		return buildbar.Monitor{}, fmt.Errorf("unknown parser %q", mc.Parser)
	}

	opts := []buildbar.MonitorOption{
		buildbar.WithTimeout(effectiveTimeout(mc.Timeout, defaultTimeout)),
	}
	if mc.Web != "" {
		opts = append(opts, buildbar.WithWebURL(mc.Web))
	}

	return buildbar.NewMonitor(mc.URL, parser, opts...)
}

// buildGrid expands a GridConfig via the SDK grid builder.
func buildGrid(gc GridConfig, defaultTimeout Duration) ([]buildbar.Monitor, error) {
	parser, ok := buildbar.LookupParser(gc.Parser)
	if !ok {
		return nil, fmt.Errorf("unknown parser %q", gc.Parser)
	}

	opts := []buildbar.GridOption{
		buildbar.WithURLTemplate(gc.URLTemplate),
		buildbar.WithDimensions(gc.Dimensions),
		buildbar.WithGridTimeout(effectiveTimeout(gc.Timeout, defaultTimeout)),
	}
	if gc.WebTemplate != "" {
		opts = append(opts, buildbar.WithWebTemplate(gc.WebTemplate))
	}

	return buildbar.NewMonitorGrid(parser, opts...)
}

// effectiveTimeout prefers a per-entry timeout over the table default.
func effectiveTimeout(own, fallback Duration) time.Duration {
	if own != 0 {
		return own.Duration()
	}
	return fallback.Duration()
}
