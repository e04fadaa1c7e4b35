package importer

import (
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/nikbrunner/bmc/internal/model"
)

// ParseHTML parses Netscape bookmark HTML into a tree. The returned root is
// an untitled folder whose children are the document's top-level items.
func ParseHTML(r io.Reader) (*model.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	root := model.NewFolderNode("", "")

	// The top of the stack is the folder items are added to.
	stack := []*model.Node{root}
	var pending *model.Node // folder waiting for its DL

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				name := getTextContent(n)
				if name == "" {
					return
				}
				folder := model.NewFolderNode(model.GenerateID(), name)
				folder.DateAdded = parseAddDate(n)
				stack[len(stack)-1].Children = append(stack[len(stack)-1].Children, folder)
				pending = folder
				return

			case "a":
				href := getAttr(n, "href")
				if href == "" || href == "about:blank" {
					return
				}
				title := getTextContent(n)
				if title == "" {
					title = href
				}
				stack[len(stack)-1].Children = append(stack[len(stack)-1].Children, &model.Node{
					ID:        model.GenerateID(),
					Title:     title,
					URL:       href,
					DateAdded: parseAddDate(n),
				})
				return

			case "dl":
				pushed := false
				if pending != nil {
					stack = append(stack, pending)
					pending = nil
					pushed = true
				}

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				if pushed {
					stack = stack[:len(stack)-1]
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return root, nil
}

func parseAddDate(n *html.Node) time.Time {
	addDate := getAttr(n, "add_date")
	if addDate == "" {
		return time.Time{}
	}
	ts, err := strconv.ParseInt(addDate, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}

// getTextContent returns the trimmed text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}
