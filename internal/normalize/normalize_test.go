package normalize_test

import (
	"strings"
	"testing"

	"github.com/nikbrunner/bmc/internal/model"
	"github.com/nikbrunner/bmc/internal/normalize"
)

func TestNormalizeLine(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   model.Entry
		wantOK bool
	}{
		{
			name:   "arrow prefix and trailing description",
			input:  "→ example.com (My Site)",
			want:   model.Entry{Title: "example.com", URL: "https://example.com"},
			wantOK: true,
		},
		{
			name:   "whitespace only",
			input:  "  ",
			wantOK: false,
		},
		{
			name:   "full URL keeps path and strips www from title",
			input:  "https://www.example.com/path",
			want:   model.Entry{Title: "example.com", URL: "https://www.example.com/path"},
			wantOK: true,
		},
		{
			name:   "plain prose",
			input:  "not a url at all",
			wantOK: false,
		},
		{
			name:   "numbered list item",
			input:  "1. google.com",
			want:   model.Entry{Title: "google.com", URL: "https://google.com"},
			wantOK: true,
		},
		{
			name:   "parenthesized ordinal",
			input:  "12) news.ycombinator.com/news",
			want:   model.Entry{Title: "news.ycombinator.com", URL: "https://news.ycombinator.com/news"},
			wantOK: true,
		},
		{
			name:   "bullet glyph",
			input:  "• go.dev/doc",
			want:   model.Entry{Title: "go.dev", URL: "https://go.dev/doc"},
			wantOK: true,
		},
		{
			name:   "dash without space",
			input:  "-github.com",
			want:   model.Entry{Title: "github.com", URL: "https://github.com"},
			wantOK: true,
		},
		{
			name:   "label before parenthesized URL",
			input:  "Example Site (example.com)",
			want:   model.Entry{Title: "example.com", URL: "https://example.com"},
			wantOK: true,
		},
		{
			name:   "label wrapped URL followed by prose",
			input:  "Go site (go.dev) great",
			want:   model.Entry{Title: "go.dev", URL: "https://go.dev"},
			wantOK: true,
		},
		{
			name:   "label wrapped full URL followed by prose",
			input:  "Docs (https://go.dev/doc) - official",
			want:   model.Entry{Title: "go.dev", URL: "https://go.dev/doc"},
			wantOK: true,
		},
		{
			name:   "mixed bullet glyphs",
			input:  "→ • example.com",
			want:   model.Entry{Title: "example.com", URL: "https://example.com"},
			wantOK: true,
		},
		{
			name:   "repeated spaced dashes",
			input:  "- - example.com",
			want:   model.Entry{Title: "example.com", URL: "https://example.com"},
			wantOK: true,
		},
		{
			name:   "www stripped from bare domain title",
			input:  "www.go.dev/doc",
			want:   model.Entry{Title: "go.dev", URL: "https://www.go.dev/doc"},
			wantOK: true,
		},
		{
			name:   "http scheme kept",
			input:  "http://localhost.dev:8080/x",
			want:   model.Entry{Title: "localhost.dev", URL: "http://localhost.dev:8080/x"},
			wantOK: true,
		},
		{
			name:   "trailing paren of URL is stripped",
			input:  "https://en.wikipedia.org/wiki/Go_(programming_language)",
			want:   model.Entry{Title: "en.wikipedia.org", URL: "https://en.wikipedia.org/wiki/Go_(programming_language"},
			wantOK: true,
		},
		{
			name:   "ordinal without space is not a marker",
			input:  "1.example.com",
			want:   model.Entry{Title: "1.example.com", URL: "https://1.example.com"},
			wantOK: true,
		},
		{
			name:   "no dot",
			input:  "bad-line-no-dot",
			wantOK: false,
		},
		{
			name:   "unsupported scheme",
			input:  "ftp://example.com",
			wantOK: false,
		},
		{
			name:   "unparseable URL falls back to raw title",
			input:  "https://exa%mple.com",
			want:   model.Entry{Title: "https://exa%mple.com", URL: "https://exa%mple.com"},
			wantOK: true,
		},
		{
			name:   "scheme without host uses raw title",
			input:  "https://",
			want:   model.Entry{Title: "https://", URL: "https://"},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalize.NormalizeLine(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("NormalizeLine(%q) ok = %v, want %v (got %+v)", tt.input, ok, tt.wantOK, got)
			}
			if got != tt.want {
				t.Errorf("NormalizeLine(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeLine_Idempotent(t *testing.T) {
	inputs := []string{
		"→ example.com (My Site)",
		"1. google.com",
		"https://www.example.com/path?q=1",
		"https://en.wikipedia.org/wiki/Go_(programming_language)",
		"Example Site (example.com)",
		"* docs.python.org/3/",
		"Go site (go.dev) great",
		"Docs (https://go.dev/doc) - official",
		"- - example.com",
	}

	for _, input := range inputs {
		first, ok := normalize.NormalizeLine(input)
		if !ok {
			t.Fatalf("NormalizeLine(%q) unexpectedly dropped", input)
		}
		second, ok := normalize.NormalizeLine(first.URL)
		if !ok {
			t.Fatalf("normalized URL %q was dropped on second pass", first.URL)
		}
		if second.URL != first.URL {
			t.Errorf("not idempotent: %q -> %q -> %q", input, first.URL, second.URL)
		}
	}
}

func TestNormalizeBlock_EndToEndInput(t *testing.T) {
	text := "1. google.com\n→ github.com (dev)\n\nbad-line-no-dot"

	entries := normalize.NormalizeBlock(text)

	want := []model.Entry{
		{Title: "google.com", URL: "https://google.com"},
		{Title: "github.com", URL: "https://github.com"},
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d: %+v", len(want), len(entries), entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestNormalizeBlock_KeepsDuplicatesAndOrder(t *testing.T) {
	text := "b.com\na.com\r\nb.com"

	entries := normalize.NormalizeBlock(text)

	want := []string{"https://b.com", "https://a.com", "https://b.com"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, url := range want {
		if entries[i].URL != url {
			t.Errorf("entry %d = %q, want %q", i, entries[i].URL, url)
		}
	}
}

func TestNormalizeBlock_NeverLongerThanInput(t *testing.T) {
	inputs := []string{
		"",
		"\n\n\n",
		"only prose here\nand more prose",
		"a.com\nb.com\nc.com",
		"→ x.io (x)\n- y.io\n* z.io\n• w.io\n3) v.io",
	}

	for _, input := range inputs {
		lines := len(strings.Split(input, "\n"))
		entries := normalize.NormalizeBlock(input)
		if len(entries) > lines {
			t.Errorf("NormalizeBlock(%q) produced %d entries from %d lines", input, len(entries), lines)
		}
	}
}

func TestNormalizeBlock_AllInvalid(t *testing.T) {
	entries := normalize.NormalizeBlock("nothing\nuseful here")
	if entries == nil {
		t.Fatal("expected an empty, non-nil slice")
	}
	if len(entries) != 0 {
		t.Errorf("expected 0 entries, got %d", len(entries))
	}
}
