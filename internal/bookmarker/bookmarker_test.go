package bookmarker_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/bmc/internal/bookmarker"
	"github.com/nikbrunner/bmc/internal/host"
	"github.com/nikbrunner/bmc/internal/model"
)

// flakyHost wraps a Memory store and injects failures.
type flakyHost struct {
	*host.Memory
	failURL   string
	treeErr   error
	treeDelay time.Duration
	createErr error
}

func (f *flakyHost) Tree(ctx context.Context) (*model.Node, error) {
	if f.treeDelay > 0 {
		select {
		case <-time.After(f.treeDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.treeErr != nil {
		return nil, f.treeErr
	}
	return f.Memory.Tree(ctx)
}

func (f *flakyHost) Create(ctx context.Context, params model.CreateParams) (*model.Node, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.failURL != "" && params.URL == f.failURL {
		return nil, errors.New("rejected")
	}
	return f.Memory.Create(ctx, params)
}

type memoryCache struct {
	folders map[model.Platform][]model.FolderDescriptor
}

func (c *memoryCache) LoadFolders(_ context.Context, p model.Platform) ([]model.FolderDescriptor, error) {
	return c.folders[p], nil
}

func (c *memoryCache) SaveFolders(_ context.Context, p model.Platform, folders []model.FolderDescriptor) error {
	if c.folders == nil {
		c.folders = map[model.Platform][]model.FolderDescriptor{}
	}
	c.folders[p] = folders
	return nil
}

func newService(api host.BookmarkAPI) *bookmarker.Service {
	return bookmarker.New(bookmarker.Params{API: api})
}

func toolbar(t *testing.T, api host.BookmarkAPI) []*model.Node {
	t.Helper()
	children, err := api.Children(context.Background(), "1")
	assert.NilError(t, err)
	return children
}

func TestProcessAndBookmark_EndToEnd(t *testing.T) {
	mem := host.NewMemory(model.Chromium, nil)
	svc := newService(mem)

	result := svc.ProcessAndBookmark(context.Background(),
		"1. google.com\n→ github.com (dev)\n\nbad-line-no-dot", "Test")

	assert.Assert(t, result.Success)
	assert.Equal(t, result.Count, 2)
	assert.Equal(t, result.FolderName, "Test")
	assert.Assert(t, result.FolderCreated)

	bar := toolbar(t, mem)
	assert.Equal(t, len(bar), 1)
	assert.Equal(t, bar[0].Title, "Test")

	items := bar[0].Children
	assert.Equal(t, len(items), 2)
	assert.Equal(t, items[0].URL, "https://github.com")
	assert.Equal(t, items[0].Title, "github.com")
	assert.Equal(t, items[1].URL, "https://google.com")
}

func TestProcessAndBookmark_NoValidURLs(t *testing.T) {
	mem := host.NewMemory(model.Chromium, nil)

	result := newService(mem).ProcessAndBookmark(context.Background(), "nothing here\n\n", "Test")

	assert.Assert(t, !result.Success)
	assert.Equal(t, result.Error, "No valid URLs found")
	assert.Equal(t, result.Code, bookmarker.CodeNoValidURLs)
	assert.Equal(t, len(toolbar(t, mem)), 0)
}

func TestProcessAndBookmark_DefaultFolder(t *testing.T) {
	mem := host.NewMemory(model.Chromium, nil)

	result := newService(mem).ProcessAndBookmark(context.Background(), "go.dev", "  ")

	assert.Assert(t, result.Success)
	assert.Equal(t, result.FolderName, "My Bookmarks")
	assert.Equal(t, toolbar(t, mem)[0].Title, "My Bookmarks")
}

func TestProcessAndBookmark_ReusesExistingFolder(t *testing.T) {
	ctx := context.Background()
	mem := host.NewMemory(model.Chromium, nil)
	svc := newService(mem)

	first := svc.ProcessAndBookmark(ctx, "go.dev", "Work")
	second := svc.ProcessAndBookmark(ctx, "pkg.go.dev", "Work")

	assert.Assert(t, first.FolderCreated)
	assert.Assert(t, !second.FolderCreated)
	assert.Equal(t, first.FolderID, second.FolderID)

	bar := toolbar(t, mem)
	assert.Equal(t, len(bar), 1)
	assert.Equal(t, len(bar[0].Children), 2)
}

func TestProcessAndBookmark_FolderMatchIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	mem := host.NewMemory(model.Chromium, nil)
	svc := newService(mem)

	svc.ProcessAndBookmark(ctx, "go.dev", "work")
	result := svc.ProcessAndBookmark(ctx, "go.dev", "Work")

	assert.Assert(t, result.FolderCreated)
	assert.Equal(t, len(toolbar(t, mem)), 2)
}

func TestProcessAndBookmark_PartialFailure(t *testing.T) {
	mem := host.NewMemory(model.Chromium, nil)
	api := &flakyHost{Memory: mem, failURL: "https://b.example.com"}

	result := newService(api).ProcessAndBookmark(context.Background(),
		"a.example.com\nb.example.com\nc.example.com", "Mixed")

	assert.Assert(t, result.Success)
	assert.Equal(t, result.Count, 2)
	assert.Equal(t, len(result.Errors), 1)
	assert.Equal(t, result.Errors[0].URL, "https://b.example.com")
	assert.Equal(t, result.Errors[0].Error, "rejected")
}

func TestProcessAndBookmark_HostUnavailable(t *testing.T) {
	mem := host.NewMemory(model.Chromium, nil)
	api := &flakyHost{Memory: mem, treeErr: host.ErrUnavailable}

	result := newService(api).ProcessAndBookmark(context.Background(), "go.dev", "Work")

	assert.Assert(t, !result.Success)
	assert.Equal(t, result.Code, bookmarker.CodeHostUnavailable)
	assert.Assert(t, result.Error != "")
}

func TestProcessAndBookmark_FolderCreateFails(t *testing.T) {
	mem := host.NewMemory(model.Chromium, nil)
	api := &flakyHost{Memory: mem, createErr: errors.New("quota exceeded")}

	result := newService(api).ProcessAndBookmark(context.Background(), "go.dev", "Work")

	assert.Assert(t, !result.Success)
	assert.Equal(t, result.Code, bookmarker.CodeFailed)
	assert.Assert(t, cmp.Contains(result.Error, "quota exceeded"))
}

func TestProcessAndBookmark_Firefox(t *testing.T) {
	mem := host.NewMemory(model.Firefox, nil)

	result := newService(mem).ProcessAndBookmark(context.Background(), "go.dev", "Work")
	assert.Assert(t, result.Success)

	children, err := mem.Children(context.Background(), "toolbar_____")
	assert.NilError(t, err)
	assert.Equal(t, len(children), 1)
	assert.Equal(t, children[0].Title, "Work")
}

func TestProcessAndBookmark_SafariSession(t *testing.T) {
	ctx := context.Background()
	safari := host.NewSafari(filepath.Join(t.TempDir(), "import.html"))
	svc := newService(safari)

	first := svc.ProcessAndBookmark(ctx, "go.dev", "Work")
	second := svc.ProcessAndBookmark(ctx, "pkg.go.dev", "Work")

	assert.Assert(t, first.Success)
	assert.Assert(t, second.Success)
	assert.Assert(t, !second.FolderCreated)

	children, err := safari.Children(ctx, "BookmarksBar")
	assert.NilError(t, err)
	assert.Equal(t, len(children), 1)
	assert.Equal(t, len(children[0].Children), 2)
}

func TestBookmarkPage(t *testing.T) {
	tests := []struct {
		name      string
		page      bookmarker.Page
		folder    string
		wantOK    bool
		wantTitle string
	}{
		{"titled page", bookmarker.Page{Title: "Go", URL: "https://go.dev"}, "", true, "Go"},
		{"title falls back to host", bookmarker.Page{URL: "https://www.go.dev/doc"}, "Reading", true, "www.go.dev"},
		{"chrome page", bookmarker.Page{URL: "chrome://settings"}, "", false, ""},
		{"extension page", bookmarker.Page{URL: "chrome-extension://abc/popup.html"}, "", false, ""},
		{"firefox extension", bookmarker.Page{URL: "moz-extension://abc/page.html"}, "", false, ""},
		{"edge page", bookmarker.Page{URL: "edge://flags"}, "", false, ""},
		{"about page", bookmarker.Page{URL: "about:blank"}, "", false, ""},
		{"empty url", bookmarker.Page{Title: "Nothing"}, "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := host.NewMemory(model.Chromium, nil)
			result := newService(mem).BookmarkPage(context.Background(), tt.page, tt.folder)

			if !tt.wantOK {
				assert.Assert(t, !result.Success)
				assert.Equal(t, result.Error, "Cannot bookmark this page")
				assert.Equal(t, result.Code, bookmarker.CodeInvalidPage)
				return
			}

			assert.Assert(t, result.Success)
			assert.Equal(t, result.Count, 1)

			bar := toolbar(t, mem)
			node := bar[0]
			if tt.folder != "" {
				assert.Equal(t, node.Title, tt.folder)
				node = node.Children[0]
			}
			assert.Equal(t, node.Title, tt.wantTitle)
			assert.Equal(t, node.URL, tt.page.URL)
		})
	}
}

func TestBookmarkAllTabs(t *testing.T) {
	mem := host.NewMemory(model.Chromium, nil)
	svc := bookmarker.New(bookmarker.Params{
		API: mem,
		Now: func() time.Time { return time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC) },
	})

	result := svc.BookmarkAllTabs(context.Background(), []bookmarker.Page{
		{Title: "Go", URL: "https://go.dev"},
		{Title: "Settings", URL: "chrome://settings"},
		{URL: "https://pkg.go.dev/net/http"},
	})

	assert.Assert(t, result.Success)
	assert.Equal(t, result.FolderName, "All Tabs - 3/7/2026")
	assert.Equal(t, result.Count, 2)

	items := toolbar(t, mem)[0].Children
	assert.Equal(t, items[0].Title, "pkg.go.dev")
	assert.Equal(t, items[1].Title, "Go")
}

func TestBookmarkAllTabs_NoValidTabs(t *testing.T) {
	mem := host.NewMemory(model.Chromium, nil)

	result := newService(mem).BookmarkAllTabs(context.Background(), []bookmarker.Page{{URL: "about:newtab"}})

	assert.Assert(t, !result.Success)
	assert.Equal(t, result.Error, "No valid tabs to bookmark")
}

func TestImportTree(t *testing.T) {
	ctx := context.Background()
	mem := host.NewMemory(model.Chromium, nil)
	svc := newService(mem)

	dev := model.NewFolderNode("a", "Dev")
	dev.Children = append(dev.Children,
		&model.Node{ID: "b", Title: "Go", URL: "https://go.dev"},
		&model.Node{ID: "c", Title: "Rust", URL: "https://rust-lang.org"},
	)
	tools := model.NewFolderNode("d", "Tools")
	tools.Children = append(tools.Children, &model.Node{ID: "e", Title: "Git", URL: "https://git-scm.com"})
	dev.Children = append(dev.Children, tools)

	tree := model.NewFolderNode("root", "")
	tree.Children = append(tree.Children,
		dev,
		&model.Node{ID: "f", Title: "Loose", URL: "https://example.com"},
	)

	result := svc.ImportTree(ctx, tree, "")
	assert.Assert(t, result.Success)
	assert.Equal(t, result.Count, 4)
	assert.Equal(t, result.FolderName, "Imported Bookmarks")

	bar := toolbar(t, mem)
	assert.Equal(t, len(bar), 2)
	assert.Equal(t, bar[0].Title, "Dev")
	assert.Equal(t, bar[1].Title, "Imported Bookmarks")

	devNode := bar[0]
	assert.Equal(t, devNode.Children[0].Title, "Tools")
	assert.Equal(t, devNode.Children[1].Title, "Go")
	assert.Equal(t, devNode.Children[2].Title, "Rust")
	assert.Equal(t, devNode.Children[0].Children[0].URL, "https://git-scm.com")
}

func TestImportTree_MergesExistingFolders(t *testing.T) {
	ctx := context.Background()
	mem := host.NewMemory(model.Chromium, nil)
	svc := newService(mem)
	svc.ProcessAndBookmark(ctx, "go.dev", "Dev")

	dev := model.NewFolderNode("a", "Dev")
	dev.Children = append(dev.Children, &model.Node{ID: "b", Title: "Rust", URL: "https://rust-lang.org"})
	tree := model.NewFolderNode("root", "")
	tree.Children = append(tree.Children, dev)

	result := svc.ImportTree(ctx, tree, "")
	assert.Assert(t, result.Success)
	assert.Assert(t, !result.FolderCreated)

	bar := toolbar(t, mem)
	assert.Equal(t, len(bar), 1)
	assert.Equal(t, len(bar[0].Children), 2)
}

func TestImportTree_Empty(t *testing.T) {
	mem := host.NewMemory(model.Chromium, nil)

	result := newService(mem).ImportTree(context.Background(), model.NewFolderNode("root", ""), "")

	assert.Assert(t, !result.Success)
	assert.Equal(t, result.Code, bookmarker.CodeNoValidURLs)
}

func TestListFolders_Live(t *testing.T) {
	ctx := context.Background()
	mem := host.NewMemory(model.Chromium, nil)
	cache := &memoryCache{}
	svc := bookmarker.New(bookmarker.Params{API: mem, Cache: cache})
	svc.ProcessAndBookmark(ctx, "go.dev", "Work")

	result := svc.ListFolders(ctx)

	assert.Assert(t, result.Success)
	assert.Equal(t, result.Source, bookmarker.SourceLive)
	assert.Equal(t, len(result.Folders), 5)
	assert.Equal(t, result.Folders[0].Title, "Work")
	assert.Equal(t, result.Folders[0].BookmarkCount, 1)
	assert.DeepEqual(t, cache.folders[model.Chromium], result.Folders)
}

func TestListFolders_TimeoutUsesCache(t *testing.T) {
	mem := host.NewMemory(model.Chromium, nil)
	cached := []model.FolderDescriptor{{ID: "7", Title: "Cached"}}
	cache := &memoryCache{folders: map[model.Platform][]model.FolderDescriptor{model.Chromium: cached}}
	svc := bookmarker.New(bookmarker.Params{
		API:           &flakyHost{Memory: mem, treeDelay: time.Second},
		Cache:         cache,
		FolderTimeout: 20 * time.Millisecond,
	})

	result := svc.ListFolders(context.Background())

	assert.Assert(t, result.Success)
	assert.Equal(t, result.Source, bookmarker.SourceCache)
	assert.DeepEqual(t, result.Folders, cached)
}

func TestListFolders_ErrorWithoutCache(t *testing.T) {
	mem := host.NewMemory(model.Chromium, nil)
	svc := newService(&flakyHost{Memory: mem, treeErr: host.ErrUnavailable})

	result := svc.ListFolders(context.Background())

	assert.Assert(t, result.Success)
	assert.Equal(t, result.Source, bookmarker.SourceDefault)
	assert.Equal(t, len(result.Folders), 4)
	assert.Assert(t, result.Folders[0].IsSuggestion)
}

func TestListFolders_Safari(t *testing.T) {
	svc := newService(host.NewSafari(filepath.Join(t.TempDir(), "import.html")))

	result := svc.ListFolders(context.Background())

	assert.Assert(t, result.Success)
	assert.Equal(t, result.Source, bookmarker.SourceDefault)
	assert.Equal(t, len(result.Folders), 4)
}

func TestBookmarkable(t *testing.T) {
	assert.Assert(t, bookmarker.Bookmarkable("https://go.dev"))
	assert.Assert(t, bookmarker.Bookmarkable("file:///tmp/notes.html"))
	assert.Assert(t, !bookmarker.Bookmarkable("  "))
	assert.Assert(t, !bookmarker.Bookmarkable("CHROME://version"))
}
