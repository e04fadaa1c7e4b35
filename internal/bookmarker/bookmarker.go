// Package bookmarker files entries into browser bookmark folders.
//
// A Service is bound to one host.BookmarkAPI and never branches on the
// browser family: root lookup goes through folders.SpecFor and everything
// else through the interface.
package bookmarker

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/nikbrunner/bmc/internal/folders"
	"github.com/nikbrunner/bmc/internal/host"
	"github.com/nikbrunner/bmc/internal/logger"
	"github.com/nikbrunner/bmc/internal/model"
	"github.com/nikbrunner/bmc/internal/normalize"
)

const (
	// DefaultFolderTimeout bounds the tree read of ListFolders.
	DefaultFolderTimeout = 3 * time.Second

	// ImportFolderName receives bookmarks that sit outside any folder.
	ImportFolderName = "Imported Bookmarks"

	tabsDateLayout = "1/2/2006"
)

// blockedSchemes are browser-internal pages that cannot be bookmarked.
var blockedSchemes = []string{"chrome:", "edge:", "about:", "moz-extension:", "chrome-extension:"}

// FolderCache keeps the last folder list per platform.
type FolderCache interface {
	LoadFolders(ctx context.Context, p model.Platform) ([]model.FolderDescriptor, error)
	SaveFolders(ctx context.Context, p model.Platform, folders []model.FolderDescriptor) error
}

// Params configures a Service. API is required.
type Params struct {
	API           host.BookmarkAPI
	Cache         FolderCache
	Logger        logger.Logger
	FolderTimeout time.Duration
	Now           func() time.Time
}

// Page is an open browser page.
type Page struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Service runs bookmark operations against one host.
type Service struct {
	api           host.BookmarkAPI
	cache         FolderCache
	log           logger.Logger
	folderTimeout time.Duration
	now           func() time.Time
	spec          folders.RootSpec
}

// New creates a Service, filling unset params with defaults.
func New(p Params) *Service {
	s := &Service{
		api:           p.API,
		cache:         p.Cache,
		log:           p.Logger,
		folderTimeout: p.FolderTimeout,
		now:           p.Now,
		spec:          folders.SpecFor(p.API.Platform()),
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.folderTimeout <= 0 {
		s.folderTimeout = DefaultFolderTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Platform returns the browser family of the bound host.
func (s *Service) Platform() model.Platform {
	return s.api.Platform()
}

// ProcessAndBookmark normalizes text and files the entries into folderName.
func (s *Service) ProcessAndBookmark(ctx context.Context, text, folderName string) Result {
	entries := normalize.NormalizeBlock(text)
	if len(entries) == 0 {
		return failure(CodeNoValidURLs, "No valid URLs found")
	}
	return s.BookmarkEntries(ctx, entries, folderName)
}

// BookmarkEntries files already normalized entries into folderName, each at
// index 0, so the last entry ends up on top.
func (s *Service) BookmarkEntries(ctx context.Context, entries []model.Entry, folderName string) Result {
	if len(entries) == 0 {
		return failure(CodeNoValidURLs, "No valid URLs found")
	}
	if strings.TrimSpace(folderName) == "" {
		folderName = folders.DefaultFolderName
	}

	res, err := s.resolveFolder(ctx, folderName)
	if err != nil {
		return failed(err)
	}

	result := Result{
		Success:       true,
		FolderName:    folderName,
		FolderID:      res.ID,
		FolderCreated: res.Created,
	}
	for _, e := range entries {
		s.createItem(ctx, &result, res.ID, e.Title, e.URL)
	}

	s.log.Info("bookmarked entries",
		logger.String("folder", folderName),
		logger.Int("count", result.Count),
		logger.Int("failed", len(result.Errors)),
	)
	return result
}

// BookmarkPage bookmarks one page. An empty folderName puts it directly
// under the platform root.
func (s *Service) BookmarkPage(ctx context.Context, page Page, folderName string) Result {
	if !Bookmarkable(page.URL) {
		return failure(CodeInvalidPage, "Cannot bookmark this page")
	}

	parentID, err := s.rootID(ctx)
	if err != nil {
		return failed(err)
	}

	result := Result{Success: true, FolderName: folderName}
	if folderName != "" {
		res, err := s.resolveFolder(ctx, folderName)
		if err != nil {
			return failed(err)
		}
		parentID = res.ID
		result.FolderCreated = res.Created
	}
	result.FolderID = parentID

	title := page.Title
	if title == "" {
		title = hostname(page.URL)
	}

	if _, err := s.api.Create(ctx, model.CreateParams{ParentID: parentID, Title: title, URL: page.URL}); err != nil {
		return failed(err)
	}
	result.Count = 1
	return result
}

// BookmarkAllTabs files every bookmarkable page into a folder named after
// today's date.
func (s *Service) BookmarkAllTabs(ctx context.Context, pages []Page) Result {
	var valid []Page
	for _, p := range pages {
		if Bookmarkable(p.URL) {
			valid = append(valid, p)
		}
	}
	if len(valid) == 0 {
		return failure(CodeInvalidPage, "No valid tabs to bookmark")
	}

	folderName := "All Tabs - " + s.now().Format(tabsDateLayout)
	res, err := s.resolveFolder(ctx, folderName)
	if err != nil {
		return failed(err)
	}

	result := Result{
		Success:       true,
		FolderName:    folderName,
		FolderID:      res.ID,
		FolderCreated: res.Created,
	}
	for _, p := range valid {
		title := p.Title
		if title == "" {
			title = hostname(p.URL)
		}
		s.createItem(ctx, &result, res.ID, title, p.URL)
	}
	return result
}

// ImportTree recreates the folders and bookmarks of tree under the platform
// root, keeping their order. Bookmarks outside any folder go to folderName.
func (s *Service) ImportTree(ctx context.Context, tree *model.Node, folderName string) Result {
	if tree == nil || len(tree.Bookmarks()) == 0 {
		return failure(CodeNoValidURLs, "No bookmarks to import")
	}
	if strings.TrimSpace(folderName) == "" {
		folderName = ImportFolderName
	}

	rootID, err := s.rootID(ctx)
	if err != nil {
		return failed(err)
	}

	result := Result{Success: true, FolderName: folderName}

	loose := tree.DirectBookmarks()
	if len(loose) > 0 {
		res, err := s.resolveFolder(ctx, folderName)
		if err != nil {
			return failed(err)
		}
		result.FolderID = res.ID
		result.FolderCreated = res.Created
		for i := len(loose) - 1; i >= 0; i-- {
			s.createItem(ctx, &result, res.ID, loose[i].Title, loose[i].URL)
		}
	}

	if err := s.importFolders(ctx, &result, rootID, tree.Folders()); err != nil {
		return failed(err)
	}

	s.log.Info("imported bookmarks",
		logger.Int("count", result.Count),
		logger.Int("failed", len(result.Errors)),
	)
	return result
}

// importFolders resolves each folder under parentID and fills it. Nodes are
// created in reverse so that index 0 inserts keep the source order.
func (s *Service) importFolders(ctx context.Context, result *Result, parentID string, nodes []*model.Node) error {
	if len(nodes) == 0 {
		return nil
	}
	children, err := s.api.Children(ctx, parentID)
	if err != nil && !errors.Is(err, host.ErrTreeUnavailable) {
		return err
	}

	for i := len(nodes) - 1; i >= 0; i-- {
		node := nodes[i]
		res, err := folders.ResolveOrCreateFolder(ctx, s.api, parentID, node.Title, children)
		if err != nil {
			if errors.Is(err, host.ErrUnavailable) {
				return err
			}
			result.Errors = append(result.Errors, ItemError{Title: node.Title, Error: err.Error()})
			continue
		}

		bookmarks := node.DirectBookmarks()
		for j := len(bookmarks) - 1; j >= 0; j-- {
			s.createItem(ctx, result, res.ID, bookmarks[j].Title, bookmarks[j].URL)
		}
		if err := s.importFolders(ctx, result, res.ID, node.Folders()); err != nil {
			return err
		}
	}
	return nil
}

// ListFolders describes the top-level folders. The tree read is bounded by
// the folder timeout; on timeout or error the cached list is used, and
// without one the default suggestions.
func (s *Service) ListFolders(ctx context.Context) Result {
	p := s.api.Platform()

	tree, err := s.treeWithTimeout(ctx)
	switch {
	case err == nil:
		list := folders.ListTopLevelFolders(tree, p)
		if s.cache != nil {
			if err := s.cache.SaveFolders(ctx, p, list); err != nil {
				s.log.Warn("save folder cache", logger.Error(err))
			}
		}
		return Result{Success: true, Folders: list, Source: SourceLive}
	case errors.Is(err, host.ErrTreeUnavailable):
		return Result{Success: true, Folders: folders.Suggestions(), Source: SourceDefault}
	}

	s.log.Warn("folder list unavailable, falling back", logger.Error(err))
	if s.cache != nil {
		cached, cerr := s.cache.LoadFolders(ctx, p)
		if cerr != nil {
			s.log.Warn("load folder cache", logger.Error(cerr))
		} else if len(cached) > 0 {
			return Result{Success: true, Folders: cached, Source: SourceCache}
		}
	}
	return Result{Success: true, Folders: folders.Suggestions(), Source: SourceDefault}
}

type treeResult struct {
	tree *model.Node
	err  error
}

func (s *Service) treeWithTimeout(ctx context.Context) (*model.Node, error) {
	ctx, cancel := context.WithTimeout(ctx, s.folderTimeout)
	defer cancel()

	done := make(chan treeResult, 1)
	go func() {
		tree, err := s.api.Tree(ctx)
		done <- treeResult{tree, err}
	}()

	select {
	case r := <-done:
		return r.tree, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// rootID locates the platform root. Platforms without tree access use the
// well-known default.
func (s *Service) rootID(ctx context.Context) (string, error) {
	tree, err := s.api.Tree(ctx)
	if errors.Is(err, host.ErrTreeUnavailable) {
		return s.spec.DefaultID, nil
	}
	if err != nil {
		return "", err
	}
	return folders.RootID(tree, s.spec), nil
}

func (s *Service) resolveFolder(ctx context.Context, name string) (folders.Resolution, error) {
	rootID, err := s.rootID(ctx)
	if err != nil {
		return folders.Resolution{}, err
	}
	children, err := s.api.Children(ctx, rootID)
	if err != nil && !errors.Is(err, host.ErrTreeUnavailable) {
		return folders.Resolution{}, err
	}

	res, err := folders.ResolveOrCreateFolder(ctx, s.api, rootID, name, children)
	if err != nil {
		return folders.Resolution{}, err
	}
	if res.Created {
		s.log.Debug("created folder", logger.String("folder", name), logger.String("id", res.ID))
	}
	return res, nil
}

func (s *Service) createItem(ctx context.Context, result *Result, parentID, title, rawURL string) {
	_, err := s.api.Create(ctx, model.CreateParams{ParentID: parentID, Title: title, URL: rawURL})
	if err != nil {
		s.log.Warn("create bookmark", logger.String("url", rawURL), logger.Error(err))
		result.Errors = append(result.Errors, ItemError{Title: title, URL: rawURL, Error: err.Error()})
		return
	}
	result.Count++
}

// Bookmarkable reports whether a page URL may be bookmarked.
func Bookmarkable(rawURL string) bool {
	if strings.TrimSpace(rawURL) == "" {
		return false
	}
	lower := strings.ToLower(rawURL)
	for _, scheme := range blockedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return false
		}
	}
	return true
}

func hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return u.Hostname()
}
