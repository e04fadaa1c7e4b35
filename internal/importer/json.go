package importer

import (
	"errors"
	"io"
	"time"

	"github.com/tidwall/gjson"

	"github.com/nikbrunner/bmc/internal/model"
)

// ErrUnknownFormat is returned when a JSON document is none of the
// supported bookmark shapes.
var ErrUnknownFormat = errors.New("unrecognized bookmark JSON")

// ParseJSON parses a JSON bookmark document into a tree. Accepted shapes:
//   - a backup file {"timestamp", "version", "bookmarks": [...]}
//   - a Chromium profile Bookmarks file {"roots": {...}}
//   - a plain array of nodes or {"title"|"name", "url"} objects
//
// Browser containers such as the bookmarks bar are unwrapped so the root's
// children are the importable items.
func ParseJSON(r io.Reader) (*model.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, ErrUnknownFormat
	}
	doc := gjson.ParseBytes(data)

	root := model.NewFolderNode("", "")
	switch {
	case doc.Get("roots").IsObject():
		doc.Get("roots").ForEach(func(_, container gjson.Result) bool {
			if container.IsObject() {
				root.Children = append(root.Children, convertAll(container.Get("children"))...)
			}
			return true
		})

	case doc.Get("bookmarks").IsArray():
		root.Children = unwrapBrowserTree(convertAll(doc.Get("bookmarks")))

	case doc.IsArray():
		root.Children = unwrapBrowserTree(convertAll(doc))

	default:
		return nil, ErrUnknownFormat
	}
	return root, nil
}

// unwrapBrowserTree replaces a single untitled root (a full browser tree) by
// the contents of its containers.
func unwrapBrowserTree(nodes []*model.Node) []*model.Node {
	if len(nodes) != 1 || nodes[0].Title != "" || !nodes[0].IsFolder() {
		return nodes
	}
	out := []*model.Node{}
	for _, container := range nodes[0].Children {
		if container.IsFolder() {
			out = append(out, container.Children...)
		} else {
			out = append(out, container)
		}
	}
	return out
}

func convertAll(arr gjson.Result) []*model.Node {
	out := []*model.Node{}
	arr.ForEach(func(_, v gjson.Result) bool {
		if n := convert(v); n != nil {
			out = append(out, n)
		}
		return true
	})
	return out
}

func convert(v gjson.Result) *model.Node {
	if !v.IsObject() {
		return nil
	}

	url := v.Get("url").String()
	title := v.Get("title").String()
	if title == "" {
		title = v.Get("name").String()
	}

	n := &model.Node{
		ID:        v.Get("id").String(),
		Title:     title,
		URL:       url,
		DateAdded: parseDate(v),
	}
	if url != "" {
		if n.Title == "" {
			n.Title = url
		}
		return n
	}

	children := v.Get("children")
	if !children.Exists() && v.Get("type").String() == "url" {
		return nil
	}
	n.Children = convertAll(children)
	return n
}

// parseDate understands Chromium "date_added" strings (microseconds since
// 1601), WebExtension "dateAdded" milliseconds and RFC 3339 strings.
func parseDate(v gjson.Result) time.Time {
	if d := v.Get("date_added"); d.Exists() {
		return model.FromWebKit(d.Int())
	}
	d := v.Get("dateAdded")
	switch d.Type {
	case gjson.Number:
		return time.UnixMilli(d.Int())
	case gjson.String:
		t, err := time.Parse(time.RFC3339Nano, d.String())
		if err == nil {
			return t
		}
	}
	return time.Time{}
}
