package plugin

import (
	"errors"
	"testing"

	"github.com/kitbuilder587/gcsearch-plugin/internal/domain"
)

func TestLoadManifest(t *testing.T) {
	m, err := LoadManifest()
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}

	if m.Identity.Name != "google_custom_search" {
		t.Errorf("Identity.Name = %q", m.Identity.Name)
	}
	if m.Identity.Label.Get("en_US") != domain.SearchProviderName {
		t.Errorf("label = %q, want %q", m.Identity.Label.Get("en_US"), domain.SearchProviderName)
	}
}

func TestManifest_ToolParameters(t *testing.T) {
	m, err := LoadManifest()
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}

	tool, err := m.Tool(ToolName)
	if err != nil {
		t.Fatalf("Tool() error = %v", err)
	}

	q, ok := tool.Parameter(ParamQuery)
	if !ok || !q.Required || q.Type != "string" {
		t.Errorf("query parameter = %+v", q)
	}

	n, ok := tool.Parameter(ParamNumResults)
	if !ok || n.Required {
		t.Errorf("num_results parameter = %+v", n)
	}
	if got := defaultNumResults(tool); got != 10 {
		t.Errorf("defaultNumResults() = %d, want 10", got)
	}
}

func TestManifest_UnknownTool(t *testing.T) {
	m, err := LoadManifest()
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}

	_, err = m.Tool("bing")
	if !errors.Is(err, ErrToolNotFound) {
		t.Errorf("Tool() error = %v, want ErrToolNotFound", err)
	}
}

func TestParseManifest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"broken yaml", "identity: [\n"},
		{"no identity name", "identity:\n  author: x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseManifest([]byte(tt.data)); err == nil {
				t.Error("ParseManifest() expected error")
			}
		})
	}
}

func TestI18nText_Get(t *testing.T) {
	text := I18nText{"en_US": "Search", "ja_JP": "検索"}

	if got := text.Get("ja_JP"); got != "検索" {
		t.Errorf("Get(ja_JP) = %q", got)
	}
	if got := text.Get("ru_RU"); got != "Search" {
		t.Errorf("Get(ru_RU) = %q, want en_US fallback", got)
	}
}
