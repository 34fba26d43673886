package buildbar

import (
	"strings"
	"testing"
	"time"
)

func TestNewMonitorGrid(t *testing.T) {
	monitors, err := NewMonitorGrid(Quay,
		WithURLTemplate("https://quay.io/api/v1/repository/{{.org}}/{{.repo}}/build/"),
		WithWebTemplate("https://quay.io/repository/{{.org}}/{{.repo}}?tab=builds"),
		WithDimensions(map[string][]string{
			"org":  {"acme", "globex"},
			"repo": {"widget", "gadget"},
		}),
		WithGridTimeout(3*time.Second),
	)
	if err != nil {
		t.Fatalf("NewMonitorGrid() error = %v", err)
	}

	want := []string{
		"https://quay.io/api/v1/repository/acme/widget/build/",
		"https://quay.io/api/v1/repository/acme/gadget/build/",
		"https://quay.io/api/v1/repository/globex/widget/build/",
		"https://quay.io/api/v1/repository/globex/gadget/build/",
	}
	if len(monitors) != len(want) {
		t.Fatalf("got %d monitors, want %d", len(monitors), len(want))
	}
	for i, m := range monitors {
		if m.URL() != want[i] {
			t.Errorf("monitors[%d].URL() = %q, want %q", i, m.URL(), want[i])
		}
		if m.Parser() != Quay {
			t.Errorf("monitors[%d].Parser() = %v", i, m.Parser())
		}
		if m.Timeout() != 3*time.Second {
			t.Errorf("monitors[%d].Timeout() = %v", i, m.Timeout())
		}
	}
	if got := monitors[3].WebURL(); got != "https://quay.io/repository/globex/gadget?tab=builds" {
		t.Errorf("monitors[3].WebURL() = %q", got)
	}
}

func TestNewMonitorGrid_EscapesValues(t *testing.T) {
	monitors, err := NewMonitorGrid(DockerHub,
		WithURLTemplate("https://hub.docker.com/v2/repositories/{{.repo}}/buildhistory/"),
		WithDimensions(map[string][]string{"repo": {"org/with space"}}),
	)
	if err != nil {
		t.Fatalf("NewMonitorGrid() error = %v", err)
	}
	if got := monitors[0].URL(); got != "https://hub.docker.com/v2/repositories/org%2Fwith%20space/buildhistory/" {
		t.Errorf("URL() = %q", got)
	}
	if got := monitors[0].WebURL(); got != "" {
		t.Errorf("WebURL() = %q, want empty without a web template", got)
	}
}

func TestNewMonitorGrid_Errors(t *testing.T) {
	dims := WithDimensions(map[string][]string{"repo": {"a"}})

	tests := []struct {
		name    string
		parser  Parser
		opts    []GridOption
		wantErr string
	}{
		{"nil parser", nil, []GridOption{WithURLTemplate("https://x/{{.repo}}"), dims}, "parser"},
		{"no template", Quay, []GridOption{dims}, "URL template required"},
		{"empty template option", Quay, []GridOption{WithURLTemplate("")}, "URL template required"},
		{"no dimensions", Quay, []GridOption{WithURLTemplate("https://x/")}, "dimension"},
		{"empty dimensions", Quay, []GridOption{WithURLTemplate("https://x/"), WithDimensions(nil)}, "dimension"},
		{"dimension without values", Quay, []GridOption{WithDimensions(map[string][]string{"repo": {}})}, "no values"},
		{"empty value", Quay, []GridOption{WithDimensions(map[string][]string{"repo": {""}})}, "empty value"},
		{"duplicate value", Quay, []GridOption{WithDimensions(map[string][]string{"repo": {"a", "a"}})}, "duplicate"},
		{"bad template", Quay, []GridOption{WithURLTemplate("https://x/{{.repo"), dims}, "invalid URL template"},
		{"bad web template", Quay, []GridOption{WithURLTemplate("https://x/{{.repo}}"), WithWebTemplate("{{"), dims}, "invalid web template"},
		{"missing key", Quay, []GridOption{WithURLTemplate("https://x/{{.org}}"), dims}, "template execution failed"},
		{"bad scheme", Quay, []GridOption{WithURLTemplate("ftp://x/{{.repo}}"), dims}, "scheme"},
		{"negative timeout", Quay, []GridOption{WithGridTimeout(-time.Second)}, "negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMonitorGrid(tt.parser, tt.opts...)
			if err == nil {
				t.Fatal("NewMonitorGrid() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestCartesianProduct_Empty(t *testing.T) {
	if got := cartesianProduct(nil); got != nil {
		t.Errorf("cartesianProduct(nil) = %v, want nil", got)
	}
	if got := cartesianProduct(map[string][]string{"a": {}}); got != nil {
		t.Errorf("cartesianProduct(empty values) = %v, want nil", got)
	}
}
