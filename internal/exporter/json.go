package exporter

import (
	"encoding/json"
	"time"

	"github.com/nikbrunner/bmc/internal/model"
)

// BackupVersion is written into every JSON backup.
const BackupVersion = "1.0"

// Backup is the JSON backup document.
type Backup struct {
	Timestamp time.Time     `json:"timestamp"`
	Version   string        `json:"version"`
	Bookmarks []*model.Node `json:"bookmarks"`
}

// ExportJSON renders tree as an indented JSON backup taken at now.
func ExportJSON(tree *model.Node, now time.Time) ([]byte, error) {
	backup := Backup{
		Timestamp: now.UTC(),
		Version:   BackupVersion,
		Bookmarks: []*model.Node{},
	}
	if tree != nil {
		backup.Bookmarks = append(backup.Bookmarks, tree)
	}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
