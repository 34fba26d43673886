package buildbar

import (
	"strings"
	"time"
)

const (
	// TimestampLayout is the layout used for build start times.
	TimestampLayout = "2006-01-02 15:04"

	// InvalidTimestamp is rendered in place of a start time the registry
	// did not report or that could not be parsed.
	InvalidTimestamp = "Invalid Date"

	titleSeparator = "---"
)

// renderConfig holds mutable state during rendering.
type renderConfig struct {
	location *time.Location
}

// RenderOption configures [Render] and [BuildBar.Run].
type RenderOption func(*renderConfig)

// WithLocation sets the time zone start times are shown in.
// Defaults to [time.Local]. A nil location is ignored.
func WithLocation(loc *time.Location) RenderOption {
	return func(cfg *renderConfig) {
		if loc != nil {
			cfg.location = loc
		}
	}
}

// Render formats results as status-bar plugin text.
//
// The output starts with a title line holding one icon per result, then a
// "---" line, then two lines per result:
//
//	<icon> <name> - <YYYY-MM-DD HH:MM> | href=<web URL> color=<red|green|white>
//	<status> | alternate=true
//
// The second line holds the status exactly as the registry reported it.
// Render never fails; a missing start time renders as [InvalidTimestamp].
func Render(results []BuildStatus, opts ...RenderOption) string {
	cfg := &renderConfig{location: time.Local}
	for _, opt := range opts {
		opt(cfg)
	}

	var title, body strings.Builder
	for _, r := range results {
		icon, color := Appearance(r.Status)
		title.WriteString(string(icon))

		body.WriteString(string(icon))
		body.WriteString(" ")
		body.WriteString(r.Name)
		body.WriteString(" - ")
		body.WriteString(FormatTimestamp(r.Started, cfg.location))
		body.WriteString(" | href=")
		body.WriteString(r.Monitor.WebURL())
		body.WriteString(" color=")
		body.WriteString(string(color))
		body.WriteString("\n")

		body.WriteString(r.Status.String())
		body.WriteString(" | alternate=true\n")
	}

	return title.String() + "\n" + titleSeparator + "\n" + body.String()
}

// RenderError formats a failed collection. The error text is written as-is
// with no plugin markup.
func RenderError(err error) string {
	if err == nil {
		return ""
	}
	return err.Error() + "\n"
}

// FormatTimestamp formats t with [TimestampLayout] in loc, or returns
// [InvalidTimestamp] for the zero time.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return InvalidTimestamp
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(TimestampLayout)
}
