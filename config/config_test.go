package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefault_CompiledInTableIsValid(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if _, err := BuildMonitors(cfg); err != nil {
		t.Fatalf("BuildMonitors(Default()) error = %v", err)
	}
	if len(DefaultSource()) == 0 {
		t.Error("DefaultSource() is empty")
	}
}

func TestParse_Empty(t *testing.T) {
	for _, doc := range []string{"", "monitors: []", "# only a comment\n"} {
		cfg, err := Parse([]byte(doc))
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", doc, err)
		}
		if len(cfg.Monitors) != 0 || len(cfg.Grids) != 0 {
			t.Errorf("Parse(%q) = %+v, want empty table", doc, cfg)
		}
		if cfg.Timeout.Duration() != 0 {
			t.Errorf("Timeout = %v, want 0 (no timeout)", cfg.Timeout.Duration())
		}
	}
}

func TestParse_FullTable(t *testing.T) {
	yaml := `
timeout: 30s
max_concurrency: 4

monitors:
  - url: https://hub.docker.com/v2/repositories/myorg/myimage/buildhistory/
    web: https://hub.docker.com/r/myorg/myimage/builds/
    parser: dockerhub
    timeout: 5s
  - url: https://quay.io/api/v1/repository/acme/widget/build/
    parser: quay

grids:
  - url_template: "https://quay.io/api/v1/repository/{{.org}}/{{.repo}}/build/"
    web_template: "https://quay.io/repository/{{.org}}/{{.repo}}"
    parser: quay
    timeout: 10s
    dimensions:
      org: [acme]
      repo: [widget, gadget]
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Timeout.Duration() != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout.Duration())
	}
	if cfg.MaxConcurrency != 4 {
		t.Errorf("MaxConcurrency = %d, want 4", cfg.MaxConcurrency)
	}
	if len(cfg.Monitors) != 2 {
		t.Fatalf("len(Monitors) = %d, want 2", len(cfg.Monitors))
	}

	m := cfg.Monitors[0]
	if m.Parser != "dockerhub" {
		t.Errorf("Parser = %q", m.Parser)
	}
	if m.Web != "https://hub.docker.com/r/myorg/myimage/builds/" {
		t.Errorf("Web = %q", m.Web)
	}
	if m.Timeout.Duration() != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", m.Timeout.Duration())
	}

	if len(cfg.Grids) != 1 {
		t.Fatalf("len(Grids) = %d, want 1", len(cfg.Grids))
	}
	if got := cfg.Grids[0].Dimensions["repo"]; len(got) != 2 || got[0] != "widget" {
		t.Errorf("Dimensions[repo] = %v", got)
	}
}

func TestParse_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_QUAY_TOKEN", "secret123")
	t.Setenv("TEST_ORG", "acme")

	yaml := `
monitors:
  - url: https://quay.io/api/v1/repository/${TEST_ORG}/widget/build/?token=${TEST_QUAY_TOKEN}
    web: https://quay.io/repository/${TEST_ORG}/widget
    parser: quay
  - url: https://${TEST_UNSET_HOST:-hub.docker.com}/v2/repositories/a/b/buildhistory/
    parser: dockerhub
grids:
  - url_template: "https://quay.io/api/v1/repository/${TEST_ORG}/{{.repo}}/build/"
    web_template: "https://quay.io/repository/${TEST_ORG}/{{.repo}}"
    parser: quay
    dimensions:
      repo: [a]
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if want := "https://quay.io/api/v1/repository/acme/widget/build/?token=secret123"; cfg.Monitors[0].URL != want {
		t.Errorf("URL = %q, want %q", cfg.Monitors[0].URL, want)
	}
	if want := "https://quay.io/repository/acme/widget"; cfg.Monitors[0].Web != want {
		t.Errorf("Web = %q, want %q", cfg.Monitors[0].Web, want)
	}
	if want := "https://hub.docker.com/v2/repositories/a/b/buildhistory/"; cfg.Monitors[1].URL != want {
		t.Errorf("URL = %q, want %q", cfg.Monitors[1].URL, want)
	}
	if want := "https://quay.io/api/v1/repository/acme/{{.repo}}/build/"; cfg.Grids[0].URLTemplate != want {
		t.Errorf("URLTemplate = %q, want %q", cfg.Grids[0].URLTemplate, want)
	}
	if want := "https://quay.io/repository/acme/{{.repo}}"; cfg.Grids[0].WebTemplate != want {
		t.Errorf("WebTemplate = %q, want %q", cfg.Grids[0].WebTemplate, want)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_SET", "value")
	t.Setenv("TEST_EMPTY", "")

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"no vars", "https://example.com", "https://example.com", false},
		{"set var", "${TEST_SET}", "value", false},
		{"set var with default", "${TEST_SET:-other}", "value", false},
		{"unset with default", "${TEST_NOT_SET_XYZ:-fallback}", "fallback", false},
		{"unset with empty default", "a${TEST_NOT_SET_XYZ:-}b", "ab", false},
		{"empty but set", "[${TEST_EMPTY:-x}]", "[]", false},
		{"multiple", "${TEST_SET}/${TEST_SET}", "value/value", false},
		{"unset without default", "${TEST_NOT_SET_XYZ}", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandEnvVars(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expandEnvVars() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("expandEnvVars() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "invalid yaml",
			yaml:    "monitors: [",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "invalid duration",
			yaml:    "timeout: soon",
			wantErr: "invalid duration",
		},
		{
			name:    "negative timeout",
			yaml:    "timeout: -1s",
			wantErr: "timeout cannot be negative",
		},
		{
			name:    "negative concurrency",
			yaml:    "max_concurrency: -1",
			wantErr: "max_concurrency cannot be negative",
		},
		{
			name: "missing url",
			yaml: `
monitors:
  - parser: quay
`,
			wantErr: "monitors[0]: url is required",
		},
		{
			name: "bad scheme",
			yaml: `
monitors:
  - url: ftp://quay.io/x
    parser: quay
`,
			wantErr: "url scheme must be http or https",
		},
		{
			name: "missing parser",
			yaml: `
monitors:
  - url: https://quay.io/x
`,
			wantErr: "parser is required",
		},
		{
			name: "unknown parser",
			yaml: `
monitors:
  - url: https://quay.io/x
    parser: gitlab
`,
			wantErr: `unknown parser "gitlab"`,
		},
		{
			name: "unset env var",
			yaml: `
monitors:
  - url: https://quay.io/x?token=${TEST_DEFINITELY_UNSET_TOKEN}
    parser: quay
`,
			wantErr: `environment variable "TEST_DEFINITELY_UNSET_TOKEN" is not set`,
		},
		{
			name: "negative monitor timeout",
			yaml: `
monitors:
  - url: https://quay.io/x
    parser: quay
    timeout: -5s
`,
			wantErr: "monitors[0]: timeout cannot be negative",
		},
		{
			name: "grid missing template",
			yaml: `
grids:
  - parser: quay
    dimensions:
      repo: [a]
`,
			wantErr: "grids[0]: url_template is required",
		},
		{
			name: "grid invalid template",
			yaml: `
grids:
  - url_template: "https://x/{{.repo"
    parser: quay
    dimensions:
      repo: [a]
`,
			wantErr: "invalid url_template",
		},
		{
			name: "grid invalid web template",
			yaml: `
grids:
  - url_template: "https://x/{{.repo}}"
    web_template: "{{"
    parser: quay
    dimensions:
      repo: [a]
`,
			wantErr: "invalid web_template",
		},
		{
			name: "grid without dimensions",
			yaml: `
grids:
  - url_template: "https://x/{{.repo}}"
    parser: quay
`,
			wantErr: "at least one dimension is required",
		},
		{
			name: "grid empty dimension",
			yaml: `
grids:
  - url_template: "https://x/{{.repo}}"
    parser: quay
    dimensions:
      repo: []
`,
			wantErr: `dimension "repo" has no values`,
		},
		{
			name: "grid duplicate value",
			yaml: `
grids:
  - url_template: "https://x/{{.repo}}"
    parser: quay
    dimensions:
      repo: [a, a]
`,
			wantErr: `duplicate value "a"`,
		},
		{
			name: "grid unknown parser",
			yaml: `
grids:
  - url_template: "https://x/{{.repo}}"
    parser: nope
    dimensions:
      repo: [a]
`,
			wantErr: `grids[0]: unknown parser "nope"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
