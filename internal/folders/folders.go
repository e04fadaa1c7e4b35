// Package folders maps folder names onto a browser bookmark tree.
package folders

import (
	"sort"
	"strconv"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nikbrunner/bmc/internal/model"
)

// DefaultFolderName is used when the caller names no folder.
const DefaultFolderName = "My Bookmarks"

// RootSpec describes where a platform keeps its bookmark toolbar.
type RootSpec struct {
	// ID is the well-known identifier of the root container.
	ID string
	// Title is matched when no node carries ID.
	Title string
	// DefaultID is returned when the root cannot be located.
	DefaultID string
	// TreeAccess is false when the platform cannot read its tree.
	TreeAccess bool
}

var rootSpecs = map[model.Platform]RootSpec{
	model.Chromium: {ID: "1", DefaultID: "1", TreeAccess: true},
	model.Firefox:  {ID: "toolbar_____", Title: "Bookmarks Toolbar", DefaultID: "toolbar_____", TreeAccess: true},
	model.Safari:   {DefaultID: "BookmarksBar"},
}

// SpecFor returns the root spec of a platform. Unknown platforms get the
// Chromium layout.
func SpecFor(p model.Platform) RootSpec {
	if spec, ok := rootSpecs[p]; ok {
		return spec
	}
	return rootSpecs[model.Chromium]
}

var suggestionNames = []string{"My Bookmarks", "Work", "Personal", "Learning"}

// Suggestions returns the fixed quick-start folder descriptors.
func Suggestions() []model.FolderDescriptor {
	out := make([]model.FolderDescriptor, len(suggestionNames))
	for i, name := range suggestionNames {
		out[i] = model.FolderDescriptor{
			ID:           suggestionID(i),
			Title:        name,
			IsSuggestion: true,
		}
	}
	return out
}

func suggestionID(i int) string {
	return "suggestion-" + strconv.Itoa(i+1)
}

// LocateRoot finds the root container in tree. The id is tried first on the
// tree itself and its direct children, then the title. Returns nil when
// neither matches.
func LocateRoot(tree *model.Node, spec RootSpec) *model.Node {
	if tree == nil || !spec.TreeAccess {
		return nil
	}
	candidates := append([]*model.Node{tree}, tree.Children...)
	if spec.ID != "" {
		for _, n := range candidates {
			if n.ID == spec.ID && n.IsFolder() {
				return n
			}
		}
	}
	if spec.Title != "" {
		for _, n := range candidates {
			if n.Title == spec.Title && n.IsFolder() {
				return n
			}
		}
	}
	return nil
}

// RootID returns the id new folders should be created under.
func RootID(tree *model.Node, spec RootSpec) string {
	if root := LocateRoot(tree, spec); root != nil {
		return root.ID
	}
	return spec.DefaultID
}

// ListTopLevelFolders describes the folders directly under the platform's
// root, sorted by title, followed by the suggestion set.
func ListTopLevelFolders(tree *model.Node, p model.Platform) []model.FolderDescriptor {
	root := LocateRoot(tree, SpecFor(p))
	if root == nil {
		return Suggestions()
	}

	var result []model.FolderDescriptor
	for _, folder := range root.Folders() {
		result = append(result, model.FolderDescriptor{
			ID:            folder.ID,
			Title:         folder.Title,
			BookmarkCount: len(folder.DirectBookmarks()),
		})
	}

	c := collate.New(language.English)
	sort.SliceStable(result, func(i, j int) bool {
		return c.CompareString(result[i].Title, result[j].Title) < 0
	})

	return append(result, Suggestions()...)
}
