package telegram

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kitbuilder587/gcsearch-plugin/internal/domain"
)

func TestFormatSearchResults(t *testing.T) {
	env := domain.NewEnvelope("東京 <天気>", []domain.SearchResultItem{
		{Title: "Tokyo Weather", Snippet: "Sunny & warm", URL: "https://example.com/tokyo?a=1&b=2"},
		{Title: "", Snippet: "", URL: "https://example.com/no-title"},
	})

	result := FormatSearchResults(env)

	if !strings.Contains(result, "<b>Google Custom Search</b>") {
		t.Error("FormatSearchResults() should contain provider name")
	}
	if !strings.Contains(result, "東京 &lt;天気&gt;") {
		t.Error("FormatSearchResults() should escape query")
	}
	if !strings.Contains(result, `<a href="https://example.com/tokyo?a=1&amp;b=2">Tokyo Weather</a>`) {
		t.Errorf("FormatSearchResults() link not rendered: %s", result)
	}
	if !strings.Contains(result, "Sunny &amp; warm") {
		t.Error("FormatSearchResults() should escape snippet")
	}
	if !strings.Contains(result, ">https://example.com/no-title</a>") {
		t.Error("FormatSearchResults() should fall back to url for empty title")
	}
	if !strings.Contains(result, "Всего: 2") {
		t.Error("FormatSearchResults() should contain total count")
	}
	if strings.Index(result, "Tokyo Weather") > strings.Index(result, "no-title") {
		t.Error("FormatSearchResults() should keep result order")
	}
}

func TestFormatSearchResults_Empty(t *testing.T) {
	result := FormatSearchResults(domain.NewEnvelope("nothing", nil))

	if !strings.Contains(result, "Ничего не найдено") {
		t.Errorf("FormatSearchResults() = %q, want not found text", result)
	}
}

func TestFormatCredentialsSaved(t *testing.T) {
	result := FormatCredentialsSaved(domain.Credentials{APIKey: "AIzaSecret1234", EngineID: "cx-1"})

	if strings.Contains(result, "AIzaSecret") {
		t.Error("FormatCredentialsSaved() must not show the full key")
	}
	if !strings.Contains(result, "1234") {
		t.Error("FormatCredentialsSaved() should show key suffix")
	}
	if !strings.Contains(result, "cx-1") {
		t.Error("FormatCredentialsSaved() should show engine id")
	}
}

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		maxLen    int
		wantParts int
	}{
		{"short", "hello", 100, 1},
		{"exact", strings.Repeat("a", 100), 100, 1},
		{"split on spaces", strings.Repeat("word ", 50), 100, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts := SplitMessage(tt.text, tt.maxLen)
			if len(parts) != tt.wantParts {
				t.Errorf("SplitMessage() parts = %d, want %d", len(parts), tt.wantParts)
			}
			if strings.Join(parts, "") != tt.text {
				t.Error("SplitMessage() lost text")
			}
			for i, p := range parts {
				if len(p) > tt.maxLen {
					t.Errorf("part %d len = %d, exceeds %d", i, len(p), tt.maxLen)
				}
			}
		})
	}
}

func TestSplitMessage_KeepsRunesWhole(t *testing.T) {
	text := strings.Repeat("検索", 100) // 600 байт без пробелов

	parts := SplitMessage(text, 100)

	if strings.Join(parts, "") != text {
		t.Fatal("SplitMessage() lost text")
	}
	for i, p := range parts {
		if !utf8.ValidString(p) {
			t.Errorf("part %d is not valid UTF-8", i)
		}
		if len(p) > 100 {
			t.Errorf("part %d len = %d, exceeds 100", i, len(p))
		}
	}
}

func TestSplitMessage_DoesNotBreakTags(t *testing.T) {
	link := `<a href="https://example.com/very/long/path">title</a>`
	text := strings.Repeat("x", 80) + " " + link + " tail"

	parts := SplitMessage(text, 100)

	for _, p := range parts {
		if strings.Count(p, "<a ") != strings.Count(p, "</a>") {
			t.Errorf("SplitMessage() broke a tag: %q", p)
		}
	}
}

func TestTruncateURL(t *testing.T) {
	if got := truncateURL("https://a.b", 50); got != "https://a.b" {
		t.Errorf("truncateURL() = %q", got)
	}
	long := "https://example.com/" + strings.Repeat("p", 100)
	if got := truncateURL(long, 50); len(got) != 50 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncateURL() = %q", got)
	}
}
