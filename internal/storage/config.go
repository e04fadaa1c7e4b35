package storage

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"

	"github.com/nikbrunner/bmc/internal/model"
)

// Config holds application configuration.
type Config struct {
	LastFolderName      string        `yaml:"lastFolderName"`
	Browser             string        `yaml:"browser,omitempty"`
	Profile             string        `yaml:"profile,omitempty"`
	ServerURL           string        `yaml:"serverURL"`
	LogLevel            string        `yaml:"logLevel"`
	CheckExcludeDomains []string      `yaml:"checkExcludeDomains"`
	FolderTimeout       time.Duration `yaml:"folderTimeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		LastFolderName:      "My Bookmarks",
		ServerURL:           "http://localhost:5000",
		LogLevel:            "info",
		CheckExcludeDomains: []string{"github.com", "gitlab.com"},
		FolderTimeout:       3 * time.Second,
	}
}

// Validate checks field values.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.LastFolderName, validation.Required, validation.Length(1, 200)),
		validation.Field(&c.Browser, validation.By(func(v any) error {
			if s, _ := v.(string); s != "" {
				_, err := model.ParsePlatform(s)
				return err
			}
			return nil
		})),
		validation.Field(&c.ServerURL, validation.Required, is.RequestURL),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.FolderTimeout, validation.Min(100*time.Millisecond)),
	)
}

// LoadConfig reads config from the YAML file.
// Creates the file with defaults if it doesn't exist.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig()
			// Non-fatal: defaults are usable even if they cannot be written.
			_ = SaveConfig(path, &config)
			return &config, nil
		}
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	// Apply defaults for missing fields
	defaults := DefaultConfig()
	if config.LastFolderName == "" {
		config.LastFolderName = defaults.LastFolderName
	}
	if config.ServerURL == "" {
		config.ServerURL = defaults.ServerURL
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.CheckExcludeDomains == nil {
		config.CheckExcludeDomains = defaults.CheckExcludeDomains
	}
	if config.FolderTimeout == 0 {
		config.FolderTimeout = defaults.FolderTimeout
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// SaveConfig writes config to the YAML file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DefaultConfigFilePath returns the default config path: ~/.config/bmc/config.yaml
func DefaultConfigFilePath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}
