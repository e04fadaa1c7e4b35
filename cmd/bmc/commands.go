package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/nikbrunner/bmc/internal/bookmarker"
	"github.com/nikbrunner/bmc/internal/companion"
	"github.com/nikbrunner/bmc/internal/exporter"
	"github.com/nikbrunner/bmc/internal/host"
	"github.com/nikbrunner/bmc/internal/importer"
	"github.com/nikbrunner/bmc/internal/linkcheck"
	"github.com/nikbrunner/bmc/internal/logger"
	"github.com/nikbrunner/bmc/internal/model"
	"github.com/nikbrunner/bmc/internal/normalize"
	"github.com/nikbrunner/bmc/internal/picker"
	"github.com/nikbrunner/bmc/internal/search"
)

func addAction(c *cli.Context) (err error) {
	text, err := readText(sourceFrom(c))
	if err != nil {
		return err
	}
	entries := normalize.NormalizeBlock(text)
	if len(entries) == 0 {
		return errors.New("no valid URLs found")
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.finish(&err)

	if c.Bool("check") {
		entries = checkEntries(c.Context, e, entries)
		if len(entries) == 0 {
			return errors.New("every URL is dead")
		}
	}

	folder, err := chooseFolder(c, e)
	if err != nil || folder == "" {
		return err
	}

	result := e.svc.BookmarkEntries(c.Context, entries, folder)
	printResult(e, result)
	if !result.Success {
		return errors.New(result.Error)
	}
	e.rememberFolder(result.FolderName)
	e.record(c, result.Count, result.FolderName)
	return nil
}

// chooseFolder returns the target folder name. An empty name with a nil
// error means the picker was cancelled.
func chooseFolder(c *cli.Context, e *env) (string, error) {
	if name := strings.TrimSpace(c.String("folder")); name != "" {
		return name, nil
	}
	if !c.Bool("pick") {
		return e.cfg.LastFolderName, nil
	}

	list := e.svc.ListFolders(c.Context)
	choice, err := picker.Run(list.Folders)
	if err != nil {
		return "", fmt.Errorf("folder picker: %w", err)
	}
	if choice == nil {
		fmt.Println("Cancelled.")
		return "", nil
	}
	return choice.Title, nil
}

func checkEntries(ctx context.Context, e *env, entries []model.Entry) []model.Entry {
	results := linkcheck.CheckEntries(ctx, entries, linkcheck.Options{
		ExcludeDomains: e.cfg.CheckExcludeDomains,
		OnProgress: func(done, total int) {
			fmt.Fprintf(os.Stderr, "\rChecking %d/%d", done, total)
		},
	})
	fmt.Fprintln(os.Stderr)

	alive := make([]model.Entry, 0, len(entries))
	for _, r := range results {
		switch r.Status {
		case linkcheck.Dead:
			fmt.Printf("  skip %s (%s)\n", r.Entry.URL, r.Error)
			continue
		case linkcheck.Unreachable:
			e.log.Warn("link unreachable, keeping it",
				logger.String("url", r.Entry.URL),
				logger.String("reason", r.Error))
		}
		alive = append(alive, r.Entry)
	}
	return alive
}

func pageAction(c *cli.Context) (err error) {
	if c.NArg() != 1 {
		return errors.New("usage: bmc page <url>")
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.finish(&err)

	page := bookmarker.Page{Title: c.String("title"), URL: c.Args().First()}
	result := e.svc.BookmarkPage(c.Context, page, c.String("folder"))
	printResult(e, result)
	if !result.Success {
		return errors.New(result.Error)
	}
	e.record(c, result.Count, result.FolderName)
	return nil
}

func tabsAction(c *cli.Context) (err error) {
	src := sourceFrom(c)
	src.Args = nil
	text, err := readText(src)
	if err != nil {
		return err
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.finish(&err)

	result := e.svc.BookmarkAllTabs(c.Context, parsePages(text))
	printResult(e, result)
	if !result.Success {
		return errors.New(result.Error)
	}
	e.record(c, result.Count, result.FolderName)
	return nil
}

func foldersAction(c *cli.Context) (err error) {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.finish(&err)

	result := e.svc.ListFolders(c.Context)
	if result.Source != bookmarker.SourceLive {
		fmt.Printf("(%s folders)\n", result.Source)
	}
	for _, m := range search.FilterFolders(result.Folders, strings.Join(c.Args().Slice(), " ")) {
		f := m.Folder
		if f.IsSuggestion {
			fmt.Printf("  %s (new)\n", f.Title)
			continue
		}
		fmt.Printf("  %s (%d)\n", f.Title, f.BookmarkCount)
	}
	return nil
}

func importAction(c *cli.Context) (err error) {
	if c.NArg() != 1 {
		return errors.New("usage: bmc import <file>")
	}
	path := c.Args().First()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	var tree *model.Node
	if strings.EqualFold(filepath.Ext(path), ".json") {
		tree, err = importer.ParseJSON(f)
	} else {
		tree, err = importer.ParseHTML(f)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.finish(&err)

	result := e.svc.ImportTree(c.Context, tree, c.String("folder"))
	printResult(e, result)
	if !result.Success {
		return errors.New(result.Error)
	}
	e.record(c, result.Count, result.FolderName)
	return nil
}

func exportAction(c *cli.Context) error {
	return writeTree(c, "html", func(tree *model.Node) ([]byte, error) {
		return []byte(exporter.ExportHTML(tree)), nil
	})
}

func backupAction(c *cli.Context) error {
	return writeTree(c, "json", func(tree *model.Node) ([]byte, error) {
		return exporter.ExportJSON(tree, time.Now())
	})
}

func writeTree(c *cli.Context, ext string, render func(*model.Node) ([]byte, error)) (err error) {
	outputPath := c.Args().First()
	if outputPath == "" {
		p, err := exporter.DefaultExportPath(ext, time.Now())
		if err != nil {
			return fmt.Errorf("default export path: %w", err)
		}
		outputPath = p
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.finish(&err)

	tree, err := e.api.Tree(c.Context)
	if errors.Is(err, host.ErrTreeUnavailable) {
		return fmt.Errorf("%s bookmarks cannot be read", e.api.Platform().DisplayName())
	}
	if err != nil {
		return err
	}

	data, err := render(tree)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	var bookmarks, folders int
	tree.Walk(func(n *model.Node, depth int) bool {
		switch {
		case depth == 0:
		case n.IsFolder():
			folders++
		default:
			bookmarks++
		}
		return true
	})
	fmt.Printf("Exported %d bookmarks, %d folders to %s\n", bookmarks, folders, outputPath)
	return nil
}

func statsAction(c *cli.Context) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.Stats(c.Context, companion.AnalyticsLimit)
	if err != nil {
		return err
	}
	fmt.Printf("Conversions: %d\nURLs:        %d\n", stats.TotalConversions, stats.TotalURLs)
	for _, a := range stats.RecentActivity {
		fmt.Printf("  %s  %-14s %3d  %s\n",
			a.CreatedAt.Local().Format("2006-01-02 15:04"), a.Source, a.URLCount, a.FolderName)
	}
	return nil
}

func serveAction(c *cli.Context) error {
	cfg := companion.LoadConfig()
	log, err := logger.New(cfg.LogLevel, cfg.PrettyLog)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := os.MkdirAll(cfg.DownloadDir, 0o755); err != nil {
		return fmt.Errorf("download dir: %w", err)
	}

	srv := companion.New(cfg, companion.Deps{
		Logger:   log,
		Activity: db,
		Version:  version,
	})

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

func pullAction(c *cli.Context) (err error) {
	text, err := readText(sourceFrom(c))
	if err != nil {
		return err
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.finish(&err)

	serverURL := c.String("server")
	if serverURL == "" {
		serverURL = e.cfg.ServerURL
	}
	folder := strings.TrimSpace(c.String("folder"))
	if folder == "" {
		folder = e.cfg.LastFolderName
	}

	resp, err := companion.NewClient(serverURL, companion.DefaultClientTimeout).AddToBrowser(c.Context, text, folder)
	if err != nil {
		return err
	}
	if resp.Count == 0 {
		return errors.New("no valid URLs found")
	}

	result := e.svc.BookmarkEntries(c.Context, resp.Bookmarks, resp.FolderName)
	printResult(e, result)
	if !result.Success {
		return errors.New(result.Error)
	}
	e.rememberFolder(result.FolderName)
	return nil
}

func printResult(e *env, r bookmarker.Result) {
	if !r.Success {
		return
	}
	where := r.FolderName
	if where == "" {
		where = "the bookmarks bar"
	}
	verb := "Added"
	if r.FolderCreated {
		verb = "Created folder and added"
	}
	fmt.Printf("%s %d bookmark(s) to %s\n", verb, r.Count, where)
	for _, ie := range r.Errors {
		fmt.Printf("  failed %s: %s\n", ie.URL, ie.Error)
	}
	if s, ok := e.api.(*host.Safari); ok && r.Count > 0 {
		fmt.Printf("Safari import file: %s (File > Import From > Bookmarks HTML File)\n", s.OutPath())
	}
}
