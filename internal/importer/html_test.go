package importer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/nikbrunner/bmc/internal/exporter"
	"github.com/nikbrunner/bmc/internal/importer"
	"github.com/nikbrunner/bmc/internal/model"
)

func TestParseHTML_SingleBookmark(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><A HREF="https://example.com" ADD_DATE="1234567890">Example Site</A>
</DL><p>`

	root, err := importer.ParseHTML(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(root.Children) != 1 {
		t.Fatalf("expected 1 item, got %d", len(root.Children))
	}

	b := root.Children[0]
	if b.Title != "Example Site" {
		t.Errorf("expected title 'Example Site', got %q", b.Title)
	}
	if b.URL != "https://example.com" {
		t.Errorf("expected URL 'https://example.com', got %q", b.URL)
	}
	if !b.DateAdded.Equal(time.Unix(1234567890, 0)) {
		t.Errorf("expected ADD_DATE to be parsed, got %v", b.DateAdded)
	}
	if b.ID == "" {
		t.Error("expected non-empty ID")
	}
}

func TestParseHTML_NestedFolders(t *testing.T) {
	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><H3 ADD_DATE="1234567890">Development</H3>
    <DL><p>
        <DT><H3 ADD_DATE="1234567890">React</H3>
        <DL><p>
            <DT><A HREF="https://react.dev" ADD_DATE="1234567890">React Docs</A>
        </DL><p>
        <DT><A HREF="https://github.com" ADD_DATE="1234567890">GitHub</A>
    </DL><p>
    <DT><A HREF="https://google.com" ADD_DATE="1234567890">Google</A>
</DL><p>`

	root, err := importer.ParseHTML(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(root.Children) != 2 {
		t.Fatalf("expected 2 top-level items, got %d", len(root.Children))
	}

	dev := root.Children[0]
	if !dev.IsFolder() || dev.Title != "Development" {
		t.Fatalf("expected Development folder first, got %+v", dev)
	}
	if root.Children[1].Title != "Google" {
		t.Errorf("expected Google at root, got %q", root.Children[1].Title)
	}

	if len(dev.Children) != 2 {
		t.Fatalf("expected 2 items in Development, got %d", len(dev.Children))
	}
	react := dev.Children[0]
	if !react.IsFolder() || react.Title != "React" {
		t.Fatalf("expected React folder, got %+v", react)
	}
	if len(react.Children) != 1 || react.Children[0].URL != "https://react.dev" {
		t.Errorf("expected React Docs inside React, got %+v", react.Children)
	}
	if dev.Children[1].Title != "GitHub" {
		t.Errorf("expected GitHub inside Development, got %q", dev.Children[1].Title)
	}
}

func TestParseHTML_SkipsInvalidLinks(t *testing.T) {
	html := `<DL><p>
    <DT><A>No href</A>
    <DT><A HREF="about:blank">Blank</A>
    <DT><A HREF="https://go.dev"></A>
</DL><p>`

	root, err := importer.ParseHTML(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := root.Bookmarks()
	if len(entries) != 1 {
		t.Fatalf("expected 1 bookmark, got %d", len(entries))
	}
	if entries[0].Title != "https://go.dev" {
		t.Errorf("expected URL as fallback title, got %q", entries[0].Title)
	}
}

func TestParseHTML_EmptyFolder(t *testing.T) {
	html := `<DL><p>
    <DT><H3>Empty</H3>
    <DL><p>
    </DL><p>
</DL><p>`

	root, err := importer.ParseHTML(strings.NewReader(html))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(root.Children) != 1 || !root.Children[0].IsFolder() {
		t.Fatalf("expected one empty folder, got %+v", root.Children)
	}
	if len(root.Children[0].Children) != 0 {
		t.Errorf("expected no children, got %d", len(root.Children[0].Children))
	}
}

func TestParseHTML_RoundTripsExport(t *testing.T) {
	entries := []model.Entry{
		{Title: "github.com", URL: "https://github.com"},
		{Title: "A & B", URL: "https://example.com/?a=1&b=2"},
	}

	root, err := importer.ParseHTML(strings.NewReader(exporter.ExportEntries("Test", entries)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(root.Children) != 1 || root.Children[0].Title != "Test" {
		t.Fatalf("expected Test folder, got %+v", root.Children)
	}
	got := root.Bookmarks()
	if len(got) != len(entries) {
		t.Fatalf("expected %d bookmarks, got %d", len(entries), len(got))
	}
	for i := range entries {
		if got[i] != entries[i] {
			t.Errorf("entry %d: got %+v, want %+v", i, got[i], entries[i])
		}
	}
}
