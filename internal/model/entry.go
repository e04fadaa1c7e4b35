package model

// Entry is a normalized (title, url) pair ready to be bookmarked.
type Entry struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// CreateParams describes a single create call against a bookmark store.
// An empty URL creates a folder.
type CreateParams struct {
	ParentID string
	Title    string
	URL      string
	Index    int
}

// IsFolder reports whether the params describe a folder.
func (p CreateParams) IsFolder() bool {
	return p.URL == ""
}
