package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/nikbrunner/bmc/internal/bookmarker"
)

var errNoInput = errors.New("no URLs given: pass them as arguments, --file, --clipboard or on stdin")

// source says where pasted text comes from.
type source struct {
	Args      []string
	File      string
	Clipboard bool
	Stdin     io.Reader
	// Interactive is true when stdin is a terminal and must not be read.
	Interactive bool
}

func sourceFrom(c *cli.Context) source {
	return source{
		Args:        c.Args().Slice(),
		File:        c.String("file"),
		Clipboard:   c.Bool("clipboard"),
		Stdin:       os.Stdin,
		Interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
}

// readText returns the pasted text. Arguments win over --file, --file over
// the clipboard, and stdin is read last.
func readText(src source) (string, error) {
	var text string
	switch {
	case len(src.Args) > 0:
		text = strings.Join(src.Args, "\n")
	case src.File != "":
		data, err := os.ReadFile(src.File)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", src.File, err)
		}
		text = string(data)
	case src.Clipboard:
		s, err := clipboard.ReadAll()
		if err != nil {
			return "", fmt.Errorf("read clipboard: %w", err)
		}
		text = s
	case src.Stdin != nil && !src.Interactive:
		data, err := io.ReadAll(src.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}

	if strings.TrimSpace(text) == "" {
		return "", errNoInput
	}
	return text, nil
}

// parsePages reads one page per line: "title<TAB>url" or a bare url.
func parsePages(text string) []bookmarker.Page {
	var pages []bookmarker.Page
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		title, url, ok := strings.Cut(line, "\t")
		if !ok {
			url, title = title, ""
		}
		pages = append(pages, bookmarker.Page{
			Title: strings.TrimSpace(title),
			URL:   strings.TrimSpace(url),
		})
	}
	return pages
}
