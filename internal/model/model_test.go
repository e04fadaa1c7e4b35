package model_test

import (
	"testing"

	"github.com/nikbrunner/bmc/internal/model"
)

func testTree() *model.Node {
	return &model.Node{
		ID: "0",
		Children: []*model.Node{
			{
				ID:    "1",
				Title: "Bookmarks bar",
				Children: []*model.Node{
					{ID: "10", Title: "Development", Children: []*model.Node{
						{ID: "11", Title: "Go", URL: "https://go.dev"},
						{ID: "12", Title: "Nested", Children: []*model.Node{
							{ID: "13", Title: "React", URL: "https://react.dev"},
						}},
					}},
					{ID: "20", Title: "GitHub", URL: "https://github.com"},
				},
			},
			model.NewFolderNode("2", "Other bookmarks"),
		},
	}
}

func TestNode_Kinds(t *testing.T) {
	tests := []struct {
		name       string
		node       *model.Node
		isFolder   bool
		isBookmark bool
	}{
		{"empty folder", model.NewFolderNode("f", "Empty"), true, false},
		{"bookmark", &model.Node{ID: "b", URL: "https://example.com"}, false, true},
		{"folder without children slice", &model.Node{ID: "x"}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.IsFolder(); got != tt.isFolder {
				t.Errorf("IsFolder() = %v, want %v", got, tt.isFolder)
			}
			if got := tt.node.IsBookmark(); got != tt.isBookmark {
				t.Errorf("IsBookmark() = %v, want %v", got, tt.isBookmark)
			}
		})
	}
}

func TestNode_Find(t *testing.T) {
	tree := testTree()

	if got := tree.Find("13"); got == nil || got.Title != "React" {
		t.Errorf("expected to find React, got %v", got)
	}
	if got := tree.Find("nonexistent"); got != nil {
		t.Errorf("expected nil for nonexistent id, got %v", got)
	}

	var nilNode *model.Node
	if nilNode.Find("1") != nil {
		t.Error("expected nil from nil receiver")
	}
}

func TestNode_FoldersAndDirectBookmarks(t *testing.T) {
	bar := testTree().Find("1")

	folders := bar.Folders()
	if len(folders) != 1 || folders[0].Title != "Development" {
		t.Errorf("expected only Development folder, got %v", folders)
	}

	bookmarks := bar.DirectBookmarks()
	if len(bookmarks) != 1 || bookmarks[0].Title != "GitHub" {
		t.Errorf("expected only GitHub bookmark, got %v", bookmarks)
	}
}

func TestNode_BookmarksFlattensInTreeOrder(t *testing.T) {
	entries := testTree().Bookmarks()

	want := []string{"https://go.dev", "https://react.dev", "https://github.com"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, url := range want {
		if entries[i].URL != url {
			t.Errorf("entry %d: got %q, want %q", i, entries[i].URL, url)
		}
	}
}

func TestNode_InsertChild(t *testing.T) {
	folder := model.NewFolderNode("f", "Folder")
	folder.InsertChild(&model.Node{ID: "a"}, 0)
	folder.InsertChild(&model.Node{ID: "b"}, 0)
	folder.InsertChild(&model.Node{ID: "c"}, 99)

	want := []string{"b", "a", "c"}
	for i, id := range want {
		if folder.Children[i].ID != id {
			t.Errorf("position %d: got %q, want %q", i, folder.Children[i].ID, id)
		}
	}
}

func TestNode_CloneIsDeep(t *testing.T) {
	tree := testTree()
	clone := tree.Clone()

	clone.Find("10").Title = "Changed"
	if tree.Find("10").Title != "Development" {
		t.Error("modifying the clone changed the original")
	}
}

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		input   string
		want    model.Platform
		wantErr bool
	}{
		{"chrome", model.Chromium, false},
		{"Brave", model.Chromium, false},
		{"firefox", model.Firefox, false},
		{" safari ", model.Safari, false},
		{"netscape", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := model.ParsePlatform(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePlatform(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePlatform(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
