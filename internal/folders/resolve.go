package folders

import (
	"context"
	"fmt"

	"github.com/nikbrunner/bmc/internal/model"
)

// Creator creates nodes in a bookmark store.
type Creator interface {
	Create(ctx context.Context, params model.CreateParams) (*model.Node, error)
}

// Resolution is the outcome of ResolveOrCreateFolder.
type Resolution struct {
	ID      string
	Created bool
}

// FindFolder returns the id of the first folder in children titled name.
// The match is exact and case-sensitive.
func FindFolder(children []*model.Node, name string) (string, bool) {
	for _, c := range children {
		if c.URL == "" && c.Title == name {
			return c.ID, true
		}
	}
	return "", false
}

// ResolveOrCreateFolder returns the folder titled name among children, or
// creates it at index 0 under rootID.
func ResolveOrCreateFolder(ctx context.Context, creator Creator, rootID, name string, children []*model.Node) (Resolution, error) {
	if id, ok := FindFolder(children, name); ok {
		return Resolution{ID: id}, nil
	}

	node, err := creator.Create(ctx, model.CreateParams{
		ParentID: rootID,
		Title:    name,
		Index:    0,
	})
	if err != nil {
		return Resolution{}, fmt.Errorf("create folder %q: %w", name, err)
	}
	return Resolution{ID: node.ID, Created: true}, nil
}
