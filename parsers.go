package buildbar

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Parser turns the raw body of one registry API response into a
// [BuildStatus].
//
// Each Parser understands exactly one upstream response shape. Supporting a
// new registry means writing one more Parser and registering it with
// [RegisterParser]; nothing else changes.
//
// Parse must not return a partially populated status: a body that is not
// valid JSON or lacks the fields needed for a name or status yields a
// [*ParseError]. An unparseable timestamp is not an error; it leaves
// Started as the zero time.
//
// # Panic Safety
//
// Parse is called within a panic recovery boundary. A panicking parser
// fails the collection with a [*ParseError] carrying a correlation ID that
// is also logged with the stack trace.
type Parser interface {
	// Name is the registry key for this parser, e.g. "dockerhub".
	Name() string

	// Parse extracts the most recent build from body.
	Parse(body []byte, m Monitor) (BuildStatus, error)
}

var (
	// DockerHub parses the Docker Hub build history API.
	DockerHub Parser = dockerHubParser{}

	// Quay parses the Quay.io repository build API.
	Quay Parser = quayParser{}
)

var (
	registryMu sync.RWMutex
	registry   = map[string]Parser{
		DockerHub.Name(): DockerHub,
		Quay.Name():      Quay,
	}
)

// RegisterParser makes p available under p.Name() to [LookupParser].
//
// Returns an error if the name is empty or already registered.
func RegisterParser(p Parser) error {
	if p == nil {
		return fmt.Errorf("parser cannot be nil")
	}
	name := p.Name()
	if name == "" {
		return fmt.Errorf("parser name cannot be empty")
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		return fmt.Errorf("parser %q already registered", name)
	}
	registry[name] = p
	return nil
}

// LookupParser returns the parser registered under name.
func LookupParser(name string) (Parser, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registry[name]
	return p, ok
}

// Parsers returns the names of all registered parsers, sorted.
func Parsers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

const (
	dockerHubRepositoriesPrefix = "https://hub.docker.com/v2/repositories/"
	dockerHubHistorySuffix      = "/buildhistory"
)

// dockerHubParser handles responses shaped like
//
//	{"next": "https://hub.docker.com/v2/repositories/org/image/buildhistory/?page=2",
//	 "results": [{"status": 10, "created_date": "2018-04-01T10:00:00Z"}, ...]}
//
// Results are ordered oldest to newest, so the last entry is the latest build.
type dockerHubParser struct{}

type dockerHubHistory struct {
	Next    *string            `json:"next"`
	Results []dockerHubAttempt `json:"results"`
}

type dockerHubAttempt struct {
	Status      *int    `json:"status"`
	CreatedDate *string `json:"created_date"`
}

func (dockerHubParser) Name() string {
	return "dockerhub"
}

func (p dockerHubParser) Parse(body []byte, m Monitor) (BuildStatus, error) {
	var history dockerHubHistory
	if err := json.Unmarshal(body, &history); err != nil {
		return BuildStatus{}, p.fail(m, "malformed JSON", err)
	}
	if len(history.Results) == 0 {
		return BuildStatus{}, p.fail(m, "no builds in results", nil)
	}
	if history.Next == nil || *history.Next == "" {
		return BuildStatus{}, p.fail(m, "missing next link", nil)
	}

	latest := history.Results[len(history.Results)-1]
	if latest.Status == nil {
		return BuildStatus{}, p.fail(m, "latest build has no status", nil)
	}

	return BuildStatus{
		Name:    dockerHubRepository(*history.Next),
		Status:  dockerHubStatus(*latest.Status),
		Started: parseTimestamp(latest.CreatedDate),
		Monitor: m,
	}, nil
}

func (p dockerHubParser) fail(m Monitor, reason string, err error) error {
	return &ParseError{Parser: p.Name(), URL: m.URL(), Reason: reason, Err: err}
}

// dockerHubRepository strips the API prefix and everything from the
// build history segment onward, leaving "org/image".
func dockerHubRepository(next string) string {
	name := strings.TrimPrefix(next, dockerHubRepositoriesPrefix)
	if idx := strings.Index(name, dockerHubHistorySuffix); idx != -1 {
		name = name[:idx]
	}
	return name
}

// dockerHubStatus maps Docker Hub's numeric build states.
// Codes without a mapping are kept as raw values.
func dockerHubStatus(code int) Status {
	switch code {
	case 10:
		return Known(StatusComplete)
	case -1:
		return Known(StatusError)
	case 0:
		return Known(StatusWaiting)
	case 2, 3:
		return Known(StatusBuilding)
	default:
		return StatusFromCode(code)
	}
}

// quayParser handles responses shaped like
//
//	{"builds": [{"phase": "complete", "started": "Thu, 28 Feb 2019 10:23:45 -0000",
//	             "repository": {"namespace": "acme", "name": "widget"}}, ...]}
//
// Builds are ordered newest first. The phase is used verbatim.
type quayParser struct{}

type quayBuildList struct {
	Builds []quayBuild `json:"builds"`
}

type quayBuild struct {
	Phase      *string         `json:"phase"`
	Started    *string         `json:"started"`
	Repository *quayRepository `json:"repository"`
}

type quayRepository struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

func (quayParser) Name() string {
	return "quay"
}

func (p quayParser) Parse(body []byte, m Monitor) (BuildStatus, error) {
	var list quayBuildList
	if err := json.Unmarshal(body, &list); err != nil {
		return BuildStatus{}, p.fail(m, "malformed JSON", err)
	}
	if len(list.Builds) == 0 {
		return BuildStatus{}, p.fail(m, "no builds in builds", nil)
	}

	latest := list.Builds[0]
	if latest.Repository == nil {
		return BuildStatus{}, p.fail(m, "latest build has no repository", nil)
	}
	if latest.Phase == nil {
		return BuildStatus{}, p.fail(m, "latest build has no phase", nil)
	}

	return BuildStatus{
		Name:    latest.Repository.Namespace + "/" + latest.Repository.Name,
		Status:  StatusFromString(*latest.Phase),
		Started: parseTimestamp(latest.Started),
		Monitor: m,
	}, nil
}

func (p quayParser) fail(m Monitor, reason string, err error) error {
	return &ParseError{Parser: p.Name(), URL: m.URL(), Reason: reason, Err: err}
}

// zone-aware layouts are parsed as given; the rest are read in local time.
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		time.RFC1123Z,
		time.RFC1123,
		"Mon, 2 Jan 2006 15:04:05 -0700",
	}
	localLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05",
	}
)

// parseTimestamp reads the timestamp formats the supported registries use.
// A nil, empty or unrecognised value returns the zero time.
func parseTimestamp(s *string) time.Time {
	if s == nil {
		return time.Time{}
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return time.Time{}
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t
		}
	}
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t
	}
	return time.Time{}
}
