// Package search filters folder descriptors by fuzzy title match.
package search

import (
	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/bmc/internal/model"
)

// Match is one folder that matched a query.
type Match struct {
	Folder         model.FolderDescriptor
	MatchedIndexes []int
	Score          int
}

type folderTitles []model.FolderDescriptor

func (ft folderTitles) String(i int) string { return ft[i].Title }
func (ft folderTitles) Len() int            { return len(ft) }

// FilterFolders returns the folders whose title fuzzy-matches query, best
// match first. An empty query returns every folder in its original order.
func FilterFolders(folders []model.FolderDescriptor, query string) []Match {
	if query == "" {
		matches := make([]Match, len(folders))
		for i, f := range folders {
			matches[i] = Match{Folder: f}
		}
		return matches
	}

	found := fuzzy.FindFrom(query, folderTitles(folders))

	matches := make([]Match, len(found))
	for i, m := range found {
		matches[i] = Match{
			Folder:         folders[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return matches
}

// Exact returns the folder titled exactly name. Suggestions count only when
// no real folder carries the title.
func Exact(folders []model.FolderDescriptor, name string) (model.FolderDescriptor, bool) {
	var suggestion *model.FolderDescriptor
	for i, f := range folders {
		if f.Title != name {
			continue
		}
		if !f.IsSuggestion {
			return f, true
		}
		if suggestion == nil {
			suggestion = &folders[i]
		}
	}
	if suggestion != nil {
		return *suggestion, true
	}
	return model.FolderDescriptor{}, false
}
