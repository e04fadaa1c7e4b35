package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

func TestLoadConfig_MissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bmc", "config.yaml")

	config, err := LoadConfig(path)
	assert.NilError(t, err)
	assert.DeepEqual(t, *config, DefaultConfig())

	_, err = os.Stat(path)
	assert.NilError(t, err)
}

func TestConfig_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	config := DefaultConfig()
	config.LastFolderName = "Reading"
	config.Browser = "firefox"
	config.Profile = "/tmp/places.sqlite"
	config.FolderTimeout = 5 * time.Second
	assert.NilError(t, SaveConfig(path, &config))

	loaded, err := LoadConfig(path)
	assert.NilError(t, err)
	assert.DeepEqual(t, *loaded, config)
}

func TestLoadConfig_FillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NilError(t, os.WriteFile(path, []byte("lastFolderName: Work\nfolderTimeout: 5s\n"), 0644))

	config, err := LoadConfig(path)
	assert.NilError(t, err)
	assert.Equal(t, config.LastFolderName, "Work")
	assert.Equal(t, config.FolderTimeout, 5*time.Second)
	assert.Equal(t, config.ServerURL, "http://localhost:5000")
	assert.Equal(t, config.LogLevel, "info")
	assert.DeepEqual(t, config.CheckExcludeDomains, []string{"github.com", "gitlab.com"})
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown browser", "browser: netscape\n"},
		{"unknown log level", "logLevel: verbose\n"},
		{"bad server url", "serverURL: not a url\n"},
		{"tiny timeout", "folderTimeout: 1ms\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			assert.NilError(t, os.WriteFile(path, []byte(tt.yaml), 0644))

			_, err := LoadConfig(path)
			assert.Assert(t, err != nil)
		})
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NilError(t, os.WriteFile(path, []byte("lastFolderName: [unclosed\n"), 0644))

	_, err := LoadConfig(path)
	assert.Assert(t, err != nil)
}
