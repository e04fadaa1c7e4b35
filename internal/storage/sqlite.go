package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/bmc/internal/model"
)

const currentSchemaVersion = 2

// SQLiteStorage keeps the last known folder list per browser and a log of
// conversions in a SQLite database.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage creates a new SQLiteStorage with the given database path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLiteStorage{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the applied schema version.
func (s *SQLiteStorage) SchemaVersion() (int, error) {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	return version, err
}

func (s *SQLiteStorage) migrate() error {
	version, err := s.SchemaVersion()
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	if version < currentSchemaVersion {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the folder cache.
func (s *SQLiteStorage) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS folder_cache (
			platform TEXT NOT NULL,
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			title TEXT NOT NULL,
			bookmark_count INTEGER NOT NULL DEFAULT 0,
			is_suggestion INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (platform, position)
		);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// migrateV2 adds the activity log.
func (s *SQLiteStorage) migrateV2() error {
	migration := `
		CREATE TABLE IF NOT EXISTS activity (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TEXT NOT NULL,
			url_count INTEGER NOT NULL,
			folder_name TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_activity_created_at ON activity(created_at);

		UPDATE schema_version SET version = 2;
	`
	_, err := s.db.Exec(migration)
	return err
}

// SaveFolders replaces the cached folder list of a platform.
// Uses a transaction for atomicity - all or nothing.
func (s *SQLiteStorage) SaveFolders(ctx context.Context, p model.Platform, folders []model.FolderDescriptor) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM folder_cache WHERE platform = ?", string(p)); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO folder_cache (platform, position, id, title, bookmark_count, is_suggestion)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, f := range folders {
		suggestion := 0
		if f.IsSuggestion {
			suggestion = 1
		}
		if _, err := stmt.ExecContext(ctx, string(p), i, f.ID, f.Title, f.BookmarkCount, suggestion); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadFolders returns the cached folder list of a platform in saved order.
// An empty cache yields an empty slice.
func (s *SQLiteStorage) LoadFolders(ctx context.Context, p model.Platform) ([]model.FolderDescriptor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, bookmark_count, is_suggestion
		FROM folder_cache
		WHERE platform = ?
		ORDER BY position
	`, string(p))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	folders := []model.FolderDescriptor{}
	for rows.Next() {
		var f model.FolderDescriptor
		var suggestion int
		if err := rows.Scan(&f.ID, &f.Title, &f.BookmarkCount, &suggestion); err != nil {
			return nil, err
		}
		f.IsSuggestion = suggestion == 1
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

// RecordActivity appends a conversion to the activity log.
func (s *SQLiteStorage) RecordActivity(ctx context.Context, a Activity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity (created_at, url_count, folder_name, source)
		VALUES (?, ?, ?, ?)
	`, a.CreatedAt.UTC().Format(time.RFC3339Nano), a.URLCount, a.FolderName, a.Source)
	return err
}

// Stats returns totals and the last limit activities, oldest first.
func (s *SQLiteStorage) Stats(ctx context.Context, limit int) (Stats, error) {
	stats := Stats{RecentActivity: []Activity{}}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(url_count), 0) FROM activity",
	).Scan(&stats.TotalConversions, &stats.TotalURLs)
	if err != nil {
		return Stats{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT created_at, url_count, folder_name, source FROM (
			SELECT id, created_at, url_count, folder_name, source
			FROM activity
			ORDER BY id DESC
			LIMIT ?
		) ORDER BY id
	`, limit)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var a Activity
		var createdAt string
		if err := rows.Scan(&createdAt, &a.URLCount, &a.FolderName, &a.Source); err != nil {
			return Stats{}, err
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		stats.RecentActivity = append(stats.RecentActivity, a)
	}
	return stats, rows.Err()
}
