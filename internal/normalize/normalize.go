// Package normalize turns freeform pasted text into bookmarkable entries.
package normalize

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/nikbrunner/bmc/internal/model"
)

var (
	// listMarker matches a leading run of bullet glyphs, spaced or not, or
	// one numeric ordinal.
	listMarker = regexp.MustCompile(`^(?:(?:[→\-*•]\s*)+|\d+[.)]\s+)`)

	// labelPrefix matches a human label introducing a parenthesized URL.
	labelPrefix = regexp.MustCompile(`^[A-Za-z\s]+\(`)

	// bareDomain matches a scheme-less host such as "example.com/path".
	bareDomain = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-.]*\.[a-zA-Z]{2,}`)
)

// NormalizeLine converts one line of text into an entry.
// It returns false when the line does not contain a usable http(s) URL.
func NormalizeLine(line string) (model.Entry, bool) {
	s := strings.TrimSpace(line)
	if s == "" {
		return model.Entry{}, false
	}

	s = listMarker.ReplaceAllString(s, "")
	s = labelPrefix.ReplaceAllString(s, "")

	// A URL never contains raw whitespace; trailing descriptions are dropped.
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		s = s[:i]
	}
	// Applied even when no label was stripped, so a URL ending in ")" loses it.
	s = strings.TrimSuffix(s, ")")

	if !hasHTTPScheme(s) && bareDomain.MatchString(s) {
		s = "https://" + s
	}
	if !hasHTTPScheme(s) {
		return model.Entry{}, false
	}

	return model.Entry{Title: titleFor(s), URL: s}, true
}

// NormalizeBlock normalizes every line of text, keeping input order and
// dropping lines that yield no entry. Duplicates are kept.
func NormalizeBlock(text string) []model.Entry {
	lines := strings.Split(text, "\n")
	entries := make([]model.Entry, 0, len(lines))
	for _, line := range lines {
		if entry, ok := NormalizeLine(line); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// titleFor derives a display title from a URL: the hostname without a
// leading "www.", or the raw string when it cannot be parsed.
func titleFor(s string) string {
	parsed, err := url.Parse(s)
	if err != nil {
		return s
	}
	host := strings.TrimPrefix(parsed.Hostname(), "www.")
	if host == "" {
		return s
	}
	return host
}

func hasHTTPScheme(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
