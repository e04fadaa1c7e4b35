package model

import "time"

// Node is one entry of a browser bookmark tree.
// A folder has a non-nil Children slice and no URL; a bookmark has a URL.
type Node struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url,omitempty"`
	DateAdded time.Time `json:"dateAdded,omitzero"`
	Children  []*Node   `json:"children,omitempty"`
}

// NewFolderNode creates a folder node with an empty child list.
func NewFolderNode(id, title string) *Node {
	return &Node{ID: id, Title: title, Children: []*Node{}}
}

// IsFolder returns true if the node is a folder.
func (n *Node) IsFolder() bool {
	return n.URL == "" && n.Children != nil
}

// IsBookmark returns true if the node is a leaf bookmark.
func (n *Node) IsBookmark() bool {
	return n.URL != ""
}

// Folders returns the direct folder children.
func (n *Node) Folders() []*Node {
	var result []*Node
	for _, c := range n.Children {
		if c.IsFolder() {
			result = append(result, c)
		}
	}
	return result
}

// DirectBookmarks returns the direct leaf bookmark children.
func (n *Node) DirectBookmarks() []*Node {
	var result []*Node
	for _, c := range n.Children {
		if c.IsBookmark() {
			result = append(result, c)
		}
	}
	return result
}

// Find returns the node with the given ID in this subtree, or nil.
func (n *Node) Find(id string) *Node {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits every node depth-first, parents before children.
// Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	var walk func(*Node, int)
	walk = func(node *Node, depth int) {
		if !fn(node, depth) {
			return
		}
		for _, c := range node.Children {
			walk(c, depth+1)
		}
	}
	if n != nil {
		walk(n, 0)
	}
}

// Bookmarks flattens every leaf bookmark of the subtree into entries,
// in tree order.
func (n *Node) Bookmarks() []Entry {
	var entries []Entry
	n.Walk(func(node *Node, _ int) bool {
		if node.IsBookmark() {
			entries = append(entries, Entry{Title: node.Title, URL: node.URL})
		}
		return true
	})
	return entries
}

// Clone returns a deep copy of the subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return &c
}

// InsertChild inserts child at index, clamped to the valid range.
func (n *Node) InsertChild(child *Node, index int) {
	if n.Children == nil {
		n.Children = []*Node{}
	}
	if index < 0 || index > len(n.Children) {
		index = len(n.Children)
	}
	n.Children = append(n.Children, nil)
	copy(n.Children[index+1:], n.Children[index:])
	n.Children[index] = child
}
