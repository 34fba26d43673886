package buildbar

import (
	"strconv"
	"time"
)

// CanonicalStatus is one of the six build states buildbar understands natively.
//
// Registries report their own vocabularies; parsers map what they can onto
// these values and keep anything else as a raw [Status] variant.
type CanonicalStatus string

const (
	// StatusComplete indicates the most recent build finished successfully.
	StatusComplete CanonicalStatus = "complete"

	// StatusError indicates the most recent build failed.
	StatusError CanonicalStatus = "error"

	// StatusWaiting indicates the build is queued and waiting for a worker.
	StatusWaiting CanonicalStatus = "waiting"

	// StatusBuildScheduled indicates the registry has scheduled the build.
	StatusBuildScheduled CanonicalStatus = "build-scheduled"

	// StatusBuilding indicates the build is in progress.
	StatusBuilding CanonicalStatus = "building"

	// StatusUnknown is used for anything the registry reported that does
	// not map onto another canonical value.
	StatusUnknown CanonicalStatus = "unknown"
)

// String returns the string representation of the status.
func (c CanonicalStatus) String() string {
	return string(c)
}

// valid reports whether c is one of the six canonical values.
func (c CanonicalStatus) valid() bool {
	switch c {
	case StatusComplete, StatusError, StatusWaiting, StatusBuildScheduled, StatusBuilding, StatusUnknown:
		return true
	default:
		return false
	}
}

type statusKind uint8

const (
	kindCanonical statusKind = iota
	kindRawString
	kindRawCode
)

// Status is the state of a build as reported by a registry.
//
// A Status holds exactly one of three variants: a [CanonicalStatus], a raw
// string the registry used that is not canonical, or a raw integer code that
// the parser had no mapping for. The raw variants keep the registry's value
// for display while [Status.Canonical] reports them as [StatusUnknown].
//
// The zero value is the canonical [StatusUnknown].
type Status struct {
	kind      statusKind
	canonical CanonicalStatus
	raw       string
	code      int
}

// Known returns the canonical variant of c. Values outside the canonical
// set are kept as a raw string.
func Known(c CanonicalStatus) Status {
	if !c.valid() {
		return Status{kind: kindRawString, raw: string(c)}
	}
	return Status{kind: kindCanonical, canonical: c}
}

// StatusFromString returns the canonical variant if s names a canonical
// status exactly, and the raw string variant otherwise.
func StatusFromString(s string) Status {
	if c := CanonicalStatus(s); c.valid() {
		return Status{kind: kindCanonical, canonical: c}
	}
	return Status{kind: kindRawString, raw: s}
}

// StatusFromCode returns the raw integer variant for a code the parser
// could not map.
func StatusFromCode(code int) Status {
	return Status{kind: kindRawCode, code: code}
}

// Canonical returns the canonical value of the status, or [StatusUnknown]
// for the raw variants.
func (s Status) Canonical() CanonicalStatus {
	if s.kind != kindCanonical || s.canonical == "" {
		return StatusUnknown
	}
	return s.canonical
}

// IsRaw reports whether the status holds a value the registry reported
// but buildbar does not recognise.
func (s Status) IsRaw() bool {
	return s.kind != kindCanonical
}

// String returns the display text of the status. Raw variants return the
// registry's value unchanged.
func (s Status) String() string {
	switch s.kind {
	case kindRawString:
		return s.raw
	case kindRawCode:
		return strconv.Itoa(s.code)
	default:
		return s.Canonical().String()
	}
}

// Icon is the glyph shown for a status in the menu bar.
type Icon string

// Color is the display colour of a status line.
type Color string

const (
	ColorGreen Color = "green"
	ColorRed   Color = "red"
	ColorWhite Color = "white"
)

var icons = map[CanonicalStatus]Icon{
	StatusComplete:       ":white_check_mark:",
	StatusError:          ":warning:",
	StatusWaiting:        ":hand:",
	StatusBuildScheduled: ":hourglass_flowing_sand:",
	StatusBuilding:       ":construction_worker:",
	StatusUnknown:        ":trollface:",
}

// Appearance maps a status to its icon and colour.
//
// Appearance is total: every status, including raw values a registry passed
// through, yields an icon and a colour. Only [StatusComplete] is green and
// only [StatusError] is red; everything else is white. Raw variants use the
// [StatusUnknown] icon.
func Appearance(s Status) (Icon, Color) {
	c := s.Canonical()
	icon, ok := icons[c]
	if !ok {
		icon = icons[StatusUnknown]
	}

	switch c {
	case StatusComplete:
		return icon, ColorGreen
	case StatusError:
		return icon, ColorRed
	default:
		return icon, ColorWhite
	}
}

// BuildStatus is the normalized result of fetching and parsing one monitor.
type BuildStatus struct {
	// Name identifies the repository, as extracted from the registry response.
	Name string

	// Status is the state of the most recent build.
	Status Status

	// Started is when the build started. The zero value means the registry
	// did not report a parseable timestamp.
	Started time.Time

	// Monitor is the monitor this status was produced for.
	Monitor Monitor
}

// HasStarted reports whether Started holds a valid timestamp.
func (b BuildStatus) HasStarted() bool {
	return !b.Started.IsZero()
}
