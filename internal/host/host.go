// Package host provides access to a browser's native bookmark store.
//
// Every backend implements BookmarkAPI. One is selected at startup, by
// Detect or explicitly, and handed to the bookmarker service, which never
// branches on the browser family itself.
package host

import (
	"context"
	"errors"

	"github.com/nikbrunner/bmc/internal/model"
)

var (
	// ErrTreeUnavailable is returned by Tree and Children on platforms
	// without programmatic read access.
	ErrTreeUnavailable = errors.New("bookmark tree is not readable on this platform")

	// ErrUnavailable means the store cannot be reached right now: the
	// profile is missing, locked by a running browser, or was replaced
	// underneath us.
	ErrUnavailable = errors.New("bookmark store unavailable")

	// ErrNotFound is returned when a parent id does not name a folder.
	ErrNotFound = errors.New("bookmark folder not found")
)

// BookmarkAPI is the capability set the bookmarker needs from a browser.
type BookmarkAPI interface {
	// Platform reports the browser family.
	Platform() model.Platform

	// Tree returns a snapshot of the whole bookmark tree.
	Tree(ctx context.Context) (*model.Node, error)

	// Children returns the direct children of a folder.
	Children(ctx context.Context, parentID string) ([]*model.Node, error)

	// Create inserts a folder or bookmark at params.Index of its parent.
	Create(ctx context.Context, params model.CreateParams) (*model.Node, error)

	// Close flushes pending work and releases the store.
	Close() error
}
