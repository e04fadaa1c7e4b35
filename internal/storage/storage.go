// Package storage persists settings, the folder cache and usage statistics.
package storage

import (
	"os"
	"path/filepath"
	"time"
)

// Activity is one recorded conversion.
type Activity struct {
	CreatedAt  time.Time `json:"timestamp"`
	URLCount   int       `json:"url_count"`
	FolderName string    `json:"folder_name"`
	Source     string    `json:"source"`
}

// Stats summarizes recorded activity.
type Stats struct {
	TotalConversions int        `json:"total_conversions"`
	TotalURLs        int        `json:"total_urls"`
	RecentActivity   []Activity `json:"recent_activity"`
}

// DefaultDir returns the application directory: ~/.config/bmc
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bmc"), nil
}

// DefaultSQLitePath returns the default database path: ~/.config/bmc/bmc.db
func DefaultSQLitePath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "bmc.db"), nil
}
