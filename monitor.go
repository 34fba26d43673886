package buildbar

import (
	"errors"
	"net/url"
	"time"
)

// Monitor describes one registry endpoint to poll.
//
// Monitor is immutable after creation via [NewMonitor]. It pairs the API
// URL with the [Parser] that understands that API's response shape, and a
// human-facing link that is carried through to the rendered output.
type Monitor struct {
	url     string
	parser  Parser
	webURL  string
	timeout time.Duration
}

// URL returns the registry API URL that is fetched.
func (m Monitor) URL() string {
	return m.url
}

// Parser returns the parser used for this monitor's responses.
func (m Monitor) Parser() Parser {
	return m.parser
}

// WebURL returns the link shown next to this monitor's status.
// Returns empty string if none was set via [WithWebURL].
func (m Monitor) WebURL() string {
	return m.webURL
}

// Timeout returns the request timeout for this monitor.
// Zero means the fetch is bounded only by the caller's context.
func (m Monitor) Timeout() time.Duration {
	return m.timeout
}

// NewMonitor creates a [Monitor] for the given registry API URL.
//
// The rawURL parameter must be an absolute http:// or https:// URL. Any
// credentials the registry needs must be embedded in the URL itself.
//
// Example:
//
//	m, err := buildbar.NewMonitor(
//	    "https://quay.io/api/v1/repository/acme/widget/build/",
//	    buildbar.Quay,
//	    buildbar.WithWebURL("https://quay.io/repository/acme/widget?tab=builds"),
//	)
func NewMonitor(rawURL string, parser Parser, opts ...MonitorOption) (Monitor, error) {
	if rawURL == "" {
		return Monitor{}, errors.New("monitor URL cannot be empty")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return Monitor{}, errors.New("invalid URL: " + err.Error())
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return Monitor{}, errors.New("URL must have an http:// or https:// scheme")
	}

	if parser == nil {
		return Monitor{}, errors.New("monitor parser cannot be nil")
	}

	cfg := &monitorConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Monitor{}, err
		}
	}

	return Monitor{
		url:     rawURL,
		parser:  parser,
		webURL:  cfg.webURL,
		timeout: cfg.timeout,
	}, nil
}
