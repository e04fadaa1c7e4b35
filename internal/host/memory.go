package host

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/nikbrunner/bmc/internal/model"
)

// Memory is an in-memory bookmark store. It backs dry runs and tests.
type Memory struct {
	mu       sync.Mutex
	platform model.Platform
	tree     *model.Node
	nextID   int
	now      func() time.Time
}

// NewMemory returns a store seeded with tree, or with the empty default
// layout of the platform when tree is nil. The tree is copied.
func NewMemory(p model.Platform, tree *model.Node) *Memory {
	if tree == nil {
		tree = EmptyTree(p)
	} else {
		tree = tree.Clone()
	}

	m := &Memory{platform: p, tree: tree, nextID: 100, now: time.Now}
	tree.Walk(func(n *model.Node, _ int) bool {
		if id, err := strconv.Atoi(n.ID); err == nil && id >= m.nextID {
			m.nextID = id + 1
		}
		return true
	})
	return m
}

// EmptyTree returns the root layout a fresh browser profile starts with.
func EmptyTree(p model.Platform) *model.Node {
	switch p {
	case model.Firefox:
		root := model.NewFolderNode(firefoxRootGUID, "")
		for _, guid := range firefoxContainerGUIDs {
			root.Children = append(root.Children, model.NewFolderNode(guid, firefoxRootTitles[guid]))
		}
		return root
	case model.Safari:
		root := model.NewFolderNode("", "")
		root.Children = append(root.Children, model.NewFolderNode("BookmarksBar", "Favorites"))
		return root
	default:
		root := model.NewFolderNode("0", "")
		for _, r := range chromiumRoots {
			root.Children = append(root.Children, model.NewFolderNode(r.id, r.title))
		}
		return root
	}
}

func (m *Memory) Platform() model.Platform { return m.platform }

func (m *Memory) Tree(_ context.Context) (*model.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tree.Clone(), nil
}

func (m *Memory) Children(_ context.Context, parentID string) ([]*model.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	parent := m.tree.Find(parentID)
	if parent == nil || !parent.IsFolder() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, parentID)
	}
	return parent.Clone().Children, nil
}

func (m *Memory) Create(_ context.Context, params model.CreateParams) (*model.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	parent := m.tree.Find(params.ParentID)
	if parent == nil || !parent.IsFolder() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, params.ParentID)
	}

	node := &model.Node{
		ID:        strconv.Itoa(m.nextID),
		Title:     params.Title,
		URL:       params.URL,
		DateAdded: m.now(),
	}
	if params.IsFolder() {
		node.Children = []*model.Node{}
	}
	m.nextID++

	parent.InsertChild(node, params.Index)
	return node.Clone(), nil
}

func (m *Memory) Close() error { return nil }
