package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/bmc/internal/model"
)

const header = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<!-- This is an automatically generated file.
     It will be read and overwritten.
     DO NOT EDIT! -->
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
`

const footer = "</DL><p>\n"

// DefaultExportPath returns the default export file path for the given
// extension. Format: ~/Downloads/bookmarks-export-YYYY-MM-DD.<ext>
func DefaultExportPath(ext string, now time.Time) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bookmarks-export-%s.%s", now.Format("2006-01-02"), ext)
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML exports a bookmark tree to Netscape bookmark HTML format.
// The children of tree become the top level of the document.
func ExportHTML(tree *model.Node) string {
	var b strings.Builder
	b.WriteString(header)
	if tree != nil {
		writeNodes(&b, tree.Children, 1)
	}
	b.WriteString(footer)
	return b.String()
}

// ExportEntries exports entries as a single folder document, the format the
// companion server hands out for manual browser import.
func ExportEntries(folderName string, entries []model.Entry) string {
	folder := model.NewFolderNode("", folderName)
	for _, e := range entries {
		folder.Children = append(folder.Children, &model.Node{Title: e.Title, URL: e.URL})
	}
	return ExportHTML(&model.Node{Children: []*model.Node{folder}})
}

func writeNodes(b *strings.Builder, nodes []*model.Node, indent int) {
	prefix := strings.Repeat("    ", indent)

	for _, n := range nodes {
		if n.IsBookmark() {
			title := n.Title
			if title == "" {
				title = n.URL
			}
			fmt.Fprintf(b, "%s<DT><A HREF=\"%s\"%s>%s</A>\n",
				prefix,
				html.EscapeString(n.URL),
				addDate(n.DateAdded),
				html.EscapeString(title),
			)
			continue
		}
		if !n.IsFolder() {
			continue
		}

		fmt.Fprintf(b, "%s<DT><H3%s>%s</H3>\n", prefix, addDate(n.DateAdded), html.EscapeString(n.Title))
		fmt.Fprintf(b, "%s<DL><p>\n", prefix)
		writeNodes(b, n.Children, indent+1)
		fmt.Fprintf(b, "%s</DL><p>\n", prefix)
	}
}

func addDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf(" ADD_DATE=\"%d\"", t.Unix())
}
