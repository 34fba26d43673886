package buildbar

import (
	"errors"
	"fmt"
)

// ErrResponseTooLarge is wrapped by a [TransportError] when a source returns
// a body larger than the fetcher is willing to buffer.
var ErrResponseTooLarge = errors.New("response body too large")

// TransportError reports a failed fetch of a monitored source.
//
// A TransportError covers both network faults (DNS, refused or reset
// connections, timeouts) and HTTP responses whose status code falls outside
// 200-299. StatusCode is zero when no response was received.
type TransportError struct {
	// URL is the source that was being fetched.
	URL string

	// StatusCode is the HTTP status code, or zero for network faults.
	StatusCode int

	// Err is the underlying cause, if any.
	Err error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("failed to load page %s: %v", e.URL, e.Err)
	}
	msg := fmt.Sprintf("failed to load page %s, status code: %d", e.URL, e.StatusCode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError reports a response body that could not be turned into a
// [BuildStatus] by the monitor's [Parser].
type ParseError struct {
	// Parser is the name of the parser that rejected the body.
	Parser string

	// URL is the source the body was fetched from.
	URL string

	// Reason is a short description of what was wrong with the body.
	Reason string

	// Err is the underlying decoding error, if any.
	Err error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s: cannot parse response from %s: %s", e.Parser, e.URL, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
