package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "bmc",
		Usage:   "file pasted URLs into browser bookmark folders",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "browser",
				Aliases: []string{"b"},
				Usage:   "browser family: chromium (chrome, brave, edge), firefox or safari",
				EnvVars: []string{"BMC_BROWSER"},
			},
			&cli.StringFlag{
				Name:    "profile",
				Usage:   "Bookmarks file, places.sqlite or profile directory",
				EnvVars: []string{"BMC_PROFILE"},
			},
			&cli.StringFlag{
				Name:    "safari-export",
				Usage:   "where the Safari import file is written",
				EnvVars: []string{"BMC_SAFARI_EXPORT"},
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "config file (default ~/.config/bmc/config.yaml)",
				EnvVars: []string{"BMC_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				EnvVars: []string{"BMC_LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "work on an in-memory copy; nothing is written to the browser",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "normalize URLs and bookmark them into a folder",
				ArgsUsage: "[url...]",
				Flags: []cli.Flag{
					folderFlag(),
					&cli.StringFlag{Name: "file", Usage: "read URLs from a file"},
					&cli.BoolFlag{Name: "clipboard", Aliases: []string{"c"}, Usage: "read URLs from the clipboard"},
					&cli.BoolFlag{Name: "check", Usage: "skip URLs that are dead"},
					&cli.BoolFlag{Name: "pick", Aliases: []string{"p"}, Usage: "choose the folder interactively"},
				},
				Action: addAction,
			},
			{
				Name:      "page",
				Usage:     "bookmark a single page",
				ArgsUsage: "<url>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "bookmark title (default: host name)"},
					&cli.StringFlag{Name: "folder", Aliases: []string{"f"}, Usage: "folder name (default: directly on the toolbar)"},
				},
				Action: pageAction,
			},
			{
				Name:  "tabs",
				Usage: "bookmark a list of pages into a dated folder",
				Description: "Reads one page per line from --file or stdin. A line is either a URL\n" +
					"or a title and a URL separated by a tab.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Usage: "read pages from a file"},
				},
				Action: tabsAction,
			},
			{
				Name:      "folders",
				Usage:     "list top-level folders",
				ArgsUsage: "[query]",
				Action:    foldersAction,
			},
			{
				Name:      "import",
				Usage:     "import a Netscape HTML or JSON bookmark file",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "folder", Aliases: []string{"f"}, Usage: "folder for bookmarks outside any folder", Value: "Imported Bookmarks"},
				},
				Action: importAction,
			},
			{
				Name:      "export",
				Usage:     "export the bookmark tree as Netscape HTML",
				ArgsUsage: "[path]",
				Action:    exportAction,
			},
			{
				Name:      "backup",
				Usage:     "write a JSON backup of the bookmark tree",
				ArgsUsage: "[path]",
				Action:    backupAction,
			},
			{
				Name:   "stats",
				Usage:  "show conversion statistics",
				Action: statsAction,
			},
			{
				Name:   "serve",
				Usage:  "run the companion web app",
				Action: serveAction,
			},
			{
				Name:      "pull",
				Usage:     "normalize URLs through the companion server and bookmark them",
				ArgsUsage: "[url...]",
				Flags: []cli.Flag{
					folderFlag(),
					&cli.StringFlag{Name: "server", Usage: "companion server URL (default from config)"},
					&cli.StringFlag{Name: "file", Usage: "read URLs from a file"},
					&cli.BoolFlag{Name: "clipboard", Aliases: []string{"c"}, Usage: "read URLs from the clipboard"},
				},
				Action: pullAction,
			},
		},
	}
}

func folderFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "folder",
		Aliases: []string{"f"},
		Usage:   "folder name (default: the last one used)",
	}
}
