package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/nikbrunner/bmc/internal/model"
)

// chromiumRoots are the containers of a fresh profile, keyed in the file as
// bookmark_bar, other and synced.
var chromiumRoots = []struct {
	id, title string
}{
	{"1", "Bookmarks bar"},
	{"2", "Other bookmarks"},
	{"3", "Mobile bookmarks"},
}

// chromiumRootID is the synthetic parent of the three root containers.
const chromiumRootID = "0"

// Chromium reads and writes the Bookmarks JSON file of a Chromium-family
// profile (Chrome, Chromium, Brave, Edge, Vivaldi).
//
// Writes go through sjson so fields this package does not know about are
// kept as they are. The browser rewrites the file on exit, so changes made
// while it runs are lost; Create refuses to write when the profile is locked.
type Chromium struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewChromium opens the Bookmarks file at path.
func NewChromium(path string) (*Chromium, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &Chromium{path: path, now: time.Now}, nil
}

// Path returns the Bookmarks file path.
func (c *Chromium) Path() string { return c.path }

func (c *Chromium) Platform() model.Platform { return model.Chromium }

func (c *Chromium) Tree(_ context.Context) (*model.Node, error) {
	data, err := c.load()
	if err != nil {
		return nil, err
	}

	root := model.NewFolderNode(chromiumRootID, "")
	gjson.GetBytes(data, "roots").ForEach(func(_, v gjson.Result) bool {
		if v.IsObject() && v.Get("type").String() == "folder" {
			root.Children = append(root.Children, chromiumNode(v))
		}
		return true
	})
	return root, nil
}

func (c *Chromium) Children(ctx context.Context, parentID string) ([]*model.Node, error) {
	tree, err := c.Tree(ctx)
	if err != nil {
		return nil, err
	}
	parent := tree.Find(parentID)
	if parent == nil || !parent.IsFolder() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, parentID)
	}
	return parent.Children, nil
}

func (c *Chromium) Create(_ context.Context, params model.CreateParams) (*model.Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if userDataLocked(filepath.Dir(filepath.Dir(c.path))) {
		return nil, fmt.Errorf("%w: browser is running, close it first", ErrUnavailable)
	}

	data, err := c.load()
	if err != nil {
		return nil, err
	}

	parentPath, ok := chromiumFolderPath(data, params.ParentID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, params.ParentID)
	}

	now := c.now()
	node := &model.Node{
		ID:        strconv.FormatInt(chromiumMaxID(data)+1, 10),
		Title:     params.Title,
		URL:       params.URL,
		DateAdded: now,
	}
	if params.IsFolder() {
		node.Children = []*model.Node{}
	}

	raw, err := chromiumRaw(node, now)
	if err != nil {
		return nil, err
	}

	items := gjson.GetBytes(data, parentPath+".children").Array()
	index := params.Index
	if index < 0 || index > len(items) {
		index = len(items)
	}
	parts := make([][]byte, 0, len(items)+1)
	for _, item := range items[:index] {
		parts = append(parts, []byte(item.Raw))
	}
	parts = append(parts, raw)
	for _, item := range items[index:] {
		parts = append(parts, []byte(item.Raw))
	}
	children := append([]byte{'['}, bytes.Join(parts, []byte{','})...)
	children = append(children, ']')

	if data, err = sjson.SetRawBytes(data, parentPath+".children", children); err != nil {
		return nil, err
	}
	if data, err = sjson.SetBytes(data, parentPath+".date_modified", webkitString(now)); err != nil {
		return nil, err
	}
	// The checksum covers the old contents; Chromium accepts a file without one.
	if data, err = sjson.DeleteBytes(data, "checksum"); err != nil {
		return nil, err
	}

	data = pretty.PrettyOptions(data, &pretty.Options{Width: 80, Indent: "   "})
	if err := writeFileAtomic(c.path, data); err != nil {
		return nil, err
	}
	return node, nil
}

func (c *Chromium) Close() error { return nil }

func (c *Chromium) load() ([]byte, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s disappeared", ErrUnavailable, c.path)
	}
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) || !gjson.GetBytes(data, "roots").IsObject() {
		return nil, fmt.Errorf("%w: %s is not a Bookmarks file", ErrUnavailable, c.path)
	}
	return data, nil
}

func chromiumNode(v gjson.Result) *model.Node {
	n := &model.Node{
		ID:        v.Get("id").String(),
		Title:     v.Get("name").String(),
		URL:       v.Get("url").String(),
		DateAdded: model.FromWebKit(v.Get("date_added").Int()),
	}
	if v.Get("type").String() == "folder" {
		n.Children = []*model.Node{}
		v.Get("children").ForEach(func(_, child gjson.Result) bool {
			n.Children = append(n.Children, chromiumNode(child))
			return true
		})
	}
	return n
}

type jsonField struct {
	path  string
	value any
}

// chromiumRaw renders a node the way Chromium serializes it, keys sorted.
func chromiumRaw(n *model.Node, now time.Time) ([]byte, error) {
	folder := n.IsFolder()

	var fields []jsonField
	if folder {
		fields = append(fields, jsonField{"children", []any{}})
	}
	fields = append(fields,
		jsonField{"date_added", webkitString(now)},
		jsonField{"date_last_used", "0"},
	)
	if folder {
		fields = append(fields, jsonField{"date_modified", "0"})
	}
	fields = append(fields,
		jsonField{"guid", uuid.NewString()},
		jsonField{"id", n.ID},
		jsonField{"name", n.Title},
	)
	if folder {
		fields = append(fields, jsonField{"type", "folder"})
	} else {
		fields = append(fields, jsonField{"type", "url"}, jsonField{"url", n.URL})
	}

	raw := []byte("{}")
	var err error
	for _, f := range fields {
		if raw, err = sjson.SetBytes(raw, f.path, f.value); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

// chromiumFolderPath returns the gjson path of the folder with the given id.
func chromiumFolderPath(data []byte, id string) (string, bool) {
	var found string
	var walk func(v gjson.Result, path string) bool
	walk = func(v gjson.Result, path string) bool {
		if v.Get("type").String() != "folder" {
			return false
		}
		if v.Get("id").String() == id {
			found = path
			return true
		}
		for i, child := range v.Get("children").Array() {
			if walk(child, path+".children."+strconv.Itoa(i)) {
				return true
			}
		}
		return false
	}

	gjson.GetBytes(data, "roots").ForEach(func(key, v gjson.Result) bool {
		return !walk(v, "roots."+key.String())
	})
	return found, found != ""
}

func chromiumMaxID(data []byte) int64 {
	var highest int64
	var walk func(v gjson.Result)
	walk = func(v gjson.Result) {
		if id := v.Get("id").Int(); id > highest {
			highest = id
		}
		v.Get("children").ForEach(func(_, child gjson.Result) bool {
			walk(child)
			return true
		})
	}
	gjson.GetBytes(data, "roots").ForEach(func(_, v gjson.Result) bool {
		if v.IsObject() {
			walk(v)
		}
		return true
	})
	return highest
}

func webkitString(t time.Time) string {
	return strconv.FormatInt(model.ToWebKit(t), 10)
}

// userDataLocked reports whether a Chromium user data directory is held by
// a running browser.
func userDataLocked(dir string) bool {
	for _, name := range []string{"SingletonLock", "lockfile"} {
		if _, err := os.Lstat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
