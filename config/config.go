// Package config decodes the monitor table compiled into buildbar.
//
// The table is a YAML document embedded in the binary; nothing is read from
// disk at run time. To change the monitored repositories, edit
// monitors.yaml and rebuild.
//
// Example table:
//
//	timeout: 30s
//
//	monitors:
//	  - url: https://hub.docker.com/v2/repositories/myorg/myimage/buildhistory/
//	    web: https://hub.docker.com/r/myorg/myimage/builds/
//	    parser: dockerhub
//
//	grids:
//	  - url_template: "https://quay.io/api/v1/repository/acme/{{.repo}}/build/?token=${QUAY_TOKEN}"
//	    web_template: "https://quay.io/repository/acme/{{.repo}}?tab=builds"
//	    parser: quay
//	    dimensions:
//	      repo: [widget, gadget]
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"text/template"
	"time"

	"github.com/jpalmerr/buildbar"
	"gopkg.in/yaml.v3"
)

//go:embed monitors.yaml
var defaultTable []byte

// Config is the root structure of the monitor table.
type Config struct {
	// Timeout is the default request timeout for every monitor.
	// Zero, the default, means no timeout.
	Timeout Duration `yaml:"timeout"`

	// MaxConcurrency caps simultaneous fetches. Zero means no cap.
	MaxConcurrency int `yaml:"max_concurrency"`

	// Monitors are individual registry endpoints, rendered in order.
	Monitors []MonitorConfig `yaml:"monitors"`

	// Grids expand to monitors via cartesian product and are rendered
	// after Monitors, in order.
	Grids []GridConfig `yaml:"grids"`
}

// MonitorConfig defines a single monitored repository.
type MonitorConfig struct {
	// URL is the registry API endpoint.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url"`

	// Web is the link shown next to the status. Supports substitution.
	Web string `yaml:"web"`

	// Parser is the registered parser name, e.g. "dockerhub" or "quay".
	Parser string `yaml:"parser"`

	// Timeout overrides the table-wide timeout for this monitor.
	Timeout Duration `yaml:"timeout"`
}

// GridConfig defines a family of monitors sharing one parser.
//
// For example, with dimensions {org: [acme], repo: [widget, gadget]}, the
// grid expands to acme/widget and acme/gadget.
type GridConfig struct {
	// URLTemplate is a Go template for the registry API URLs.
	URLTemplate string `yaml:"url_template"`

	// WebTemplate is a Go template for the links. Optional.
	WebTemplate string `yaml:"web_template"`

	// Parser is the registered parser name used for every generated monitor.
	Parser string `yaml:"parser"`

	// Timeout overrides the table-wide timeout for the generated monitors.
	Timeout Duration `yaml:"timeout"`

	// Dimensions maps template variables to their values.
	Dimensions map[string][]string `yaml:"dimensions"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Default returns the monitor table compiled into the binary.
func Default() (*Config, error) {
	return Parse(defaultTable)
}

// DefaultSource returns the raw YAML of the compiled-in table.
func DefaultSource() []byte {
	return append([]byte(nil), defaultTable...)
}

// Parse decodes and validates a monitor table.
//
// Environment variables are expanded in URLs, links and templates.
// An empty table is valid.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the table.
func (c *Config) expandAndValidate() error {
	if c.Timeout.Duration() < 0 {
		return fmt.Errorf("timeout cannot be negative, got %s", c.Timeout.Duration())
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency cannot be negative, got %d", c.MaxConcurrency)
	}

	for i := range c.Monitors {
		m := &c.Monitors[i]
		ctx := fmt.Sprintf("monitors[%d]", i)

		if m.URL == "" {
			return fmt.Errorf("%s: url is required", ctx)
		}
		expanded, err := expandEnvVars(m.URL)
		if err != nil {
			return fmt.Errorf("%s: url: %w", ctx, err)
		}
		m.URL = expanded

		if err := validateURL(m.URL); err != nil {
			return fmt.Errorf("%s: %w", ctx, err)
		}

		web, err := expandEnvVars(m.Web)
		if err != nil {
			return fmt.Errorf("%s: web: %w", ctx, err)
		}
		m.Web = web

		if err := validateParser(m.Parser); err != nil {
			return fmt.Errorf("%s: %w", ctx, err)
		}

		if m.Timeout.Duration() < 0 {
			return fmt.Errorf("%s: timeout cannot be negative, got %s", ctx, m.Timeout.Duration())
		}
	}

	for i := range c.Grids {
		g := &c.Grids[i]
		ctx := fmt.Sprintf("grids[%d]", i)

		if g.URLTemplate == "" {
			return fmt.Errorf("%s: url_template is required", ctx)
		}
		expanded, err := expandEnvVars(g.URLTemplate)
		if err != nil {
			return fmt.Errorf("%s: url_template: %w", ctx, err)
		}
		g.URLTemplate = expanded

		// fail fast before the SDK tries to use an invalid template
		if _, err := template.New("").Parse(g.URLTemplate); err != nil {
			return fmt.Errorf("%s: invalid url_template: %w", ctx, err)
		}

		web, err := expandEnvVars(g.WebTemplate)
		if err != nil {
			return fmt.Errorf("%s: web_template: %w", ctx, err)
		}
		g.WebTemplate = web
		if _, err := template.New("").Parse(g.WebTemplate); err != nil {
			return fmt.Errorf("%s: invalid web_template: %w", ctx, err)
		}

		if err := validateParser(g.Parser); err != nil {
			return fmt.Errorf("%s: %w", ctx, err)
		}

		if len(g.Dimensions) == 0 {
			return fmt.Errorf("%s: at least one dimension is required", ctx)
		}
		for dimName, dimValues := range g.Dimensions {
			if len(dimValues) == 0 {
				return fmt.Errorf("%s: dimension %q has no values", ctx, dimName)
			}
			seen := make(map[string]struct{}, len(dimValues))
			for _, v := range dimValues {
				if _, exists := seen[v]; exists {
					return fmt.Errorf("%s: dimension %q has duplicate value %q", ctx, dimName, v)
				}
				seen[v] = struct{}{}
			}
		}

		if g.Timeout.Duration() < 0 {
			return fmt.Errorf("%s: timeout cannot be negative, got %s", ctx, g.Timeout.Duration())
		}
	}

	return nil
}

// validateURL checks that raw is an absolute http or https URL.
func validateURL(raw string) error {
	parsedURL, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", parsedURL.Scheme)
	}
	return nil
}

// validateParser checks that name refers to a registered parser.
func validateParser(name string) error {
	if name == "" {
		return errors.New("parser is required")
	}
	if _, ok := buildbar.LookupParser(name); !ok {
		return fmt.Errorf("unknown parser %q (registered: %v)", name, buildbar.Parsers())
	}
	return nil
}
