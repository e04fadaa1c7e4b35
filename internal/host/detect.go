package host

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/nikbrunner/bmc/internal/model"
)

// ErrNoProfile is returned by Detect when no browser profile was found.
var ErrNoProfile = errors.New("no browser profile found")

// Options selects a host at startup.
type Options struct {
	// Platform forces a browser family. Empty means probe.
	Platform model.Platform
	// Profile is a Bookmarks file, places.sqlite file, or profile directory.
	Profile string
	// SafariExport is where the Safari host writes its import file.
	SafariExport string
	// DryRun returns an in-memory copy of the detected store.
	DryRun bool

	// Home and GOOS override the environment; used by tests.
	Home string
	GOOS string
}

// Detect selects and opens the bookmark store described by opts.
func Detect(opts Options) (BookmarkAPI, error) {
	if opts.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		opts.Home = home
	}
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}

	if opts.Platform == model.Safari {
		out := opts.SafariExport
		if out == "" {
			out = filepath.Join(opts.Home, "Downloads", "bmc-safari-import.html")
		}
		if opts.DryRun {
			return NewMemory(model.Safari, nil), nil
		}
		return NewSafari(out), nil
	}

	platform, path, err := locate(opts)
	if err != nil {
		return nil, err
	}

	var api BookmarkAPI
	switch platform {
	case model.Firefox:
		api, err = NewFirefox(path)
	default:
		api, err = NewChromium(path)
	}
	if err != nil {
		return nil, err
	}
	if !opts.DryRun {
		return api, nil
	}
	return snapshot(api)
}

// snapshot copies a store into memory and closes it.
func snapshot(api BookmarkAPI) (BookmarkAPI, error) {
	defer api.Close()
	tree, err := api.Tree(context.Background())
	if err != nil {
		return nil, err
	}
	return NewMemory(api.Platform(), tree), nil
}

func locate(opts Options) (model.Platform, string, error) {
	if opts.Profile != "" {
		return resolveProfile(opts.Platform, opts.Profile)
	}

	platforms := []model.Platform{model.Chromium, model.Firefox}
	if opts.Platform != "" {
		platforms = []model.Platform{opts.Platform}
	}
	for _, p := range platforms {
		for _, candidate := range candidates(p, opts.Home, opts.GOOS) {
			if fileExists(candidate) {
				return p, candidate, nil
			}
		}
	}
	return "", "", ErrNoProfile
}

// resolveProfile accepts a store file or a profile directory containing one.
func resolveProfile(p model.Platform, profile string) (model.Platform, string, error) {
	info, err := os.Stat(profile)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrNoProfile, err)
	}

	if !info.IsDir() {
		if p == "" {
			p = model.Chromium
			if strings.HasSuffix(profile, ".sqlite") {
				p = model.Firefox
			}
		}
		return p, profile, nil
	}

	if (p == "" || p == model.Firefox) && fileExists(filepath.Join(profile, "places.sqlite")) {
		return model.Firefox, filepath.Join(profile, "places.sqlite"), nil
	}
	if (p == "" || p == model.Chromium) && fileExists(filepath.Join(profile, "Bookmarks")) {
		return model.Chromium, filepath.Join(profile, "Bookmarks"), nil
	}
	return "", "", fmt.Errorf("%w in %s", ErrNoProfile, profile)
}

// candidates lists default store locations for a platform, most common first.
func candidates(p model.Platform, home, goos string) []string {
	switch p {
	case model.Firefox:
		var dirs []string
		switch goos {
		case "darwin":
			dirs = []string{filepath.Join(home, "Library", "Application Support", "Firefox", "Profiles")}
		case "windows":
			dirs = []string{filepath.Join(appData(home), "Mozilla", "Firefox", "Profiles")}
		default:
			dirs = []string{
				filepath.Join(home, ".mozilla", "firefox"),
				filepath.Join(home, "snap", "firefox", "common", ".mozilla", "firefox"),
				filepath.Join(home, ".librewolf"),
			}
		}
		var out []string
		for _, dir := range dirs {
			out = append(out, firefoxProfiles(dir)...)
		}
		return out

	default:
		var userData []string
		switch goos {
		case "darwin":
			base := filepath.Join(home, "Library", "Application Support")
			userData = []string{
				filepath.Join(base, "Google", "Chrome"),
				filepath.Join(base, "Chromium"),
				filepath.Join(base, "BraveSoftware", "Brave-Browser"),
				filepath.Join(base, "Microsoft Edge"),
				filepath.Join(base, "Vivaldi"),
			}
		case "windows":
			base := localAppData(home)
			userData = []string{
				filepath.Join(base, "Google", "Chrome", "User Data"),
				filepath.Join(base, "Chromium", "User Data"),
				filepath.Join(base, "BraveSoftware", "Brave-Browser", "User Data"),
				filepath.Join(base, "Microsoft", "Edge", "User Data"),
				filepath.Join(base, "Vivaldi", "User Data"),
			}
		default:
			base := filepath.Join(home, ".config")
			userData = []string{
				filepath.Join(base, "google-chrome"),
				filepath.Join(base, "chromium"),
				filepath.Join(base, "BraveSoftware", "Brave-Browser"),
				filepath.Join(base, "microsoft-edge"),
				filepath.Join(base, "vivaldi"),
			}
		}
		out := make([]string, len(userData))
		for i, dir := range userData {
			out[i] = filepath.Join(dir, "Default", "Bookmarks")
		}
		return out
	}
}

// firefoxProfiles returns places.sqlite files under dir, release profiles
// first.
func firefoxProfiles(dir string) []string {
	matches, _ := filepath.Glob(filepath.Join(dir, "*", "places.sqlite"))
	sort.SliceStable(matches, func(i, j int) bool {
		return rankProfile(matches[i]) < rankProfile(matches[j])
	})
	return matches
}

func rankProfile(path string) int {
	name := filepath.Base(filepath.Dir(path))
	switch {
	case strings.HasSuffix(name, ".default-release"):
		return 0
	case strings.HasSuffix(name, ".default"):
		return 1
	}
	return 2
}

func appData(home string) string {
	if v := os.Getenv("APPDATA"); v != "" {
		return v
	}
	return filepath.Join(home, "AppData", "Roaming")
}

func localAppData(home string) string {
	if v := os.Getenv("LOCALAPPDATA"); v != "" {
		return v
	}
	return filepath.Join(home, "AppData", "Local")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
