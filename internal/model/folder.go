package model

// FolderDescriptor is the presentation view of a top-level folder.
// Suggestions are placeholder names that do not exist in the bookmark store
// until something is created inside them.
type FolderDescriptor struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	BookmarkCount int    `json:"bookmarkCount"`
	IsSuggestion  bool   `json:"isSuggestion"`
}
