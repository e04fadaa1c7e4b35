package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/nikbrunner/bmc/internal/bookmarker"
	"github.com/nikbrunner/bmc/internal/host"
	"github.com/nikbrunner/bmc/internal/logger"
	"github.com/nikbrunner/bmc/internal/model"
	"github.com/nikbrunner/bmc/internal/storage"
)

// env is what every browser-facing command needs.
type env struct {
	cfg        *storage.Config
	configPath string
	log        logger.Logger
	db         *storage.SQLiteStorage
	api        host.BookmarkAPI
	svc        *bookmarker.Service
}

// loadConfig reads the config file named by --config or the default one.
func loadConfig(c *cli.Context) (*storage.Config, string, error) {
	path := c.String("config")
	if path == "" {
		p, err := storage.DefaultConfigFilePath()
		if err != nil {
			return nil, "", fmt.Errorf("config path: %w", err)
		}
		path = p
	}
	cfg, err := storage.LoadConfig(path)
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	return cfg, path, nil
}

// openDB opens the statistics and folder cache database.
func openDB() (*storage.SQLiteStorage, error) {
	path, err := storage.DefaultSQLitePath()
	if err != nil {
		return nil, err
	}
	db, err := storage.NewSQLiteStorage(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func newLogger(c *cli.Context, cfg *storage.Config) (logger.Logger, error) {
	level := c.String("log-level")
	if level == "" {
		level = cfg.LogLevel
	}
	return logger.New(level, true)
}

// setup opens config, database and the bookmark store. Callers must Close.
func setup(c *cli.Context) (*env, error) {
	cfg, path, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	log, err := newLogger(c, cfg)
	if err != nil {
		return nil, err
	}

	browser := c.String("browser")
	if browser == "" {
		browser = cfg.Browser
	}
	var platform model.Platform
	if browser != "" {
		if platform, err = model.ParsePlatform(browser); err != nil {
			return nil, err
		}
	}
	profile := c.String("profile")
	if profile == "" {
		profile = cfg.Profile
	}

	db, err := openDB()
	if err != nil {
		return nil, err
	}

	api, err := host.Detect(host.Options{
		Platform:     platform,
		Profile:      profile,
		SafariExport: c.String("safari-export"),
		DryRun:       c.Bool("dry-run"),
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Debug("bookmark store opened",
		logger.String("platform", string(api.Platform())),
		logger.Bool("dry_run", c.Bool("dry-run")))

	return &env{
		cfg:        cfg,
		configPath: path,
		log:        log,
		db:         db,
		api:        api,
		svc: bookmarker.New(bookmarker.Params{
			API:           api,
			Cache:         db,
			Logger:        log,
			FolderTimeout: cfg.FolderTimeout,
			Now:           time.Now,
		}),
	}, nil
}

// Close flushes the bookmark store. Safari writes its import file here.
func (e *env) Close() error {
	err := e.api.Close()
	e.db.Close()
	_ = e.log.Sync()
	return err
}

// finish closes e and adds the close error to *errp.
func (e *env) finish(errp *error) {
	*errp = errors.Join(*errp, e.Close())
}

// rememberFolder saves name as the default folder for the next run.
func (e *env) rememberFolder(name string) {
	if name == "" || name == e.cfg.LastFolderName {
		return
	}
	e.cfg.LastFolderName = name
	if err := storage.SaveConfig(e.configPath, e.cfg); err != nil {
		e.log.Warn("save config", logger.Error(err))
	}
}

// record adds a CLI run to the statistics.
func (e *env) record(c *cli.Context, count int, folder string) {
	err := e.db.RecordActivity(c.Context, storage.Activity{
		CreatedAt:  time.Now(),
		URLCount:   count,
		FolderName: folder,
		Source:     "cli",
	})
	if err != nil {
		e.log.Warn("record activity", logger.Error(err))
	}
}
