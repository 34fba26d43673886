package buildbar

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"text/template"
)

// NewMonitorGrid creates one monitor per combination of dimension values,
// using the same parser for all of them.
//
// The URL and web templates use Go's text/template syntax with dimension
// keys as variables. Dimension values are path-escaped before
// interpolation. Missing template keys cause an error.
//
// Monitors are returned in a deterministic order: dimension keys sorted
// alphabetically, values in the order given, rightmost key varying fastest.
//
// Example:
//
//	monitors, err := buildbar.NewMonitorGrid(buildbar.Quay,
//	    buildbar.WithURLTemplate("https://quay.io/api/v1/repository/acme/{{.repo}}/build/"),
//	    buildbar.WithWebTemplate("https://quay.io/repository/acme/{{.repo}}?tab=builds"),
//	    buildbar.WithDimensions(map[string][]string{
//	        "repo": {"widget", "gadget"},
//	    }),
//	)
func NewMonitorGrid(parser Parser, opts ...GridOption) ([]Monitor, error) {
	if parser == nil {
		return nil, errors.New("grid parser cannot be nil")
	}

	cfg := &gridConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.urlTemplate == "" {
		return nil, errors.New("URL template required")
	}
	if len(cfg.dimensions) == 0 {
		return nil, errors.New("at least one dimension required")
	}

	urlTmpl, err := template.New("url").Option("missingkey=error").Parse(cfg.urlTemplate)
	if err != nil {
		return nil, fmt.Errorf("invalid URL template: %w", err)
	}

	var webTmpl *template.Template
	if cfg.webTemplate != "" {
		webTmpl, err = template.New("web").Option("missingkey=error").Parse(cfg.webTemplate)
		if err != nil {
			return nil, fmt.Errorf("invalid web template: %w", err)
		}
	}

	combinations := cartesianProduct(cfg.dimensions)
	monitors := make([]Monitor, 0, len(combinations))
	for _, combo := range combinations {
		encoded := pathEscapeMap(combo)

		urlStr, err := executeTemplate(urlTmpl, encoded)
		if err != nil {
			return nil, fmt.Errorf("URL template execution failed: %w", err)
		}

		var monOpts []MonitorOption
		if webTmpl != nil {
			webURL, err := executeTemplate(webTmpl, encoded)
			if err != nil {
				return nil, fmt.Errorf("web template execution failed: %w", err)
			}
			monOpts = append(monOpts, WithWebURL(webURL))
		}
		if cfg.timeout > 0 {
			monOpts = append(monOpts, WithTimeout(cfg.timeout))
		}

		m, err := NewMonitor(urlStr, parser, monOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create monitor %v: %w", combo, err)
		}
		monitors = append(monitors, m)
	}

	return monitors, nil
}

// cartesianProduct generates all combinations of dimension values.
// Keys are sorted alphabetically for deterministic output.
// Values maintain their original slice order.
//
// Example:
//
//	Input:  {"x": ["a","b"], "y": ["1","2"]}
//	Output: [{"x":"a","y":"1"}, {"x":"a","y":"2"}, {"x":"b","y":"1"}, {"x":"b","y":"2"}]
func cartesianProduct(dims map[string][]string) []map[string]string {
	if len(dims) == 0 {
		return nil
	}

	keys := make([]string, 0, len(dims))
	for k := range dims {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if len(dims[k]) == 0 {
			return nil
		}
	}

	total := 1
	for _, k := range keys {
		total *= len(dims[k])
	}
	result := make([]map[string]string, 0, total)

	indices := make([]int, len(keys))
	for {
		combo := make(map[string]string, len(keys))
		for i, k := range keys {
			combo[k] = dims[k][indices[i]]
		}
		result = append(result, combo)

		// increment indices (rightmost first)
		for i := len(keys) - 1; i >= 0; i-- {
			indices[i]++
			if indices[i] < len(dims[keys[i]]) {
				break
			}
			indices[i] = 0
			if i == 0 {
				return result
			}
		}
	}
}

// pathEscapeMap returns a new map with all values escaped for use in a URL path.
func pathEscapeMap(m map[string]string) map[string]string {
	result := make(map[string]string, len(m))
	for k, v := range m {
		result[k] = url.PathEscape(v)
	}
	return result
}

// executeTemplate renders the template with the given data.
func executeTemplate(tmpl *template.Template, data map[string]string) (string, error) {
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
