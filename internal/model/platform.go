package model

import (
	"fmt"
	"strings"
)

// Platform identifies the browser family owning a bookmark store.
type Platform string

const (
	Chromium Platform = "chromium"
	Firefox  Platform = "firefox"
	Safari   Platform = "safari"
)

// Platforms lists every supported platform.
var Platforms = []Platform{Chromium, Firefox, Safari}

// ParsePlatform maps a user supplied browser name to a Platform.
// Chromium derivatives (chrome, brave, edge) map to Chromium.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chromium", "chrome", "google-chrome", "brave", "edge", "msedge", "vivaldi":
		return Chromium, nil
	case "firefox", "ff", "librewolf":
		return Firefox, nil
	case "safari":
		return Safari, nil
	}
	return "", fmt.Errorf("unknown browser %q", s)
}

// DisplayName returns a human readable browser family name.
func (p Platform) DisplayName() string {
	switch p {
	case Chromium:
		return "Chromium"
	case Firefox:
		return "Firefox"
	case Safari:
		return "Safari"
	}
	return string(p)
}
