package host

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/nikbrunner/bmc/internal/model"
)

const (
	firefoxRootGUID = "root________"
	firefoxTagsGUID = "tags________"

	typeBookmark = 1
	typeFolder   = 2
)

var firefoxContainerGUIDs = []string{"menu________", "toolbar_____", "unfiled_____", "mobile______"}

// firefoxRootTitles are the names the browser shows for its built-in
// containers. The stored titles are internal ("toolbar") or empty.
var firefoxRootTitles = map[string]string{
	"menu________": "Bookmarks Menu",
	"toolbar_____": "Bookmarks Toolbar",
	"unfiled_____": "Other Bookmarks",
	"mobile______": "Mobile Bookmarks",
}

// Firefox reads and writes the places.sqlite database of a Firefox profile.
// Node ids are Places GUIDs, which are stable across the session.
type Firefox struct {
	mu  sync.Mutex
	db  *sql.DB
	now func() time.Time
}

// NewFirefox opens places.sqlite at path. The database must already exist.
func NewFirefox(path string) (*Firefox, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(2000)")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM moz_bookmarks WHERE guid = ?", firefoxRootGUID).Scan(&n); err != nil {
		db.Close()
		return nil, placesError(err)
	}
	if n == 0 {
		db.Close()
		return nil, fmt.Errorf("%w: %s has no bookmarks root", ErrUnavailable, path)
	}

	return &Firefox{db: db, now: time.Now}, nil
}

func (f *Firefox) Platform() model.Platform { return model.Firefox }

func (f *Firefox) Tree(ctx context.Context) (*model.Node, error) {
	rows, err := f.db.QueryContext(ctx, `
		SELECT b.id, b.parent, b.type, b.guid, COALESCE(b.title, ''), COALESCE(p.url, ''), b.dateAdded
		FROM moz_bookmarks b
		LEFT JOIN moz_places p ON p.id = b.fk
		WHERE b.type IN (1, 2)
		ORDER BY b.parent, b.position
	`)
	if err != nil {
		return nil, placesError(err)
	}
	defer rows.Close()

	type row struct {
		id, parent int64
		node       *model.Node
	}
	var all []row
	byID := make(map[int64]*model.Node)

	for rows.Next() {
		var r row
		var typ int
		var added int64
		n := &model.Node{}
		if err := rows.Scan(&r.id, &r.parent, &typ, &n.ID, &n.Title, &n.URL, &added); err != nil {
			return nil, err
		}
		if added > 0 {
			n.DateAdded = time.UnixMicro(added)
		}
		if typ == typeFolder {
			n.Children = []*model.Node{}
			n.URL = ""
			if title, ok := firefoxRootTitles[n.ID]; ok {
				n.Title = title
			}
		}
		r.node = n
		all = append(all, r)
		byID[r.id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, placesError(err)
	}

	var root *model.Node
	for _, r := range all {
		if r.node.ID == firefoxRootGUID {
			root = r.node
			continue
		}
		parent, ok := byID[r.parent]
		if !ok || !parent.IsFolder() || parent.ID == firefoxTagsGUID {
			continue
		}
		parent.Children = append(parent.Children, r.node)
	}
	if root == nil {
		return nil, fmt.Errorf("%w: bookmarks root missing", ErrUnavailable)
	}

	// Tags are stored as folders but are not part of the visible tree.
	kept := root.Children[:0]
	for _, c := range root.Children {
		if c.ID != firefoxTagsGUID {
			kept = append(kept, c)
		}
	}
	root.Children = kept
	return root, nil
}

func (f *Firefox) Children(ctx context.Context, parentID string) ([]*model.Node, error) {
	tree, err := f.Tree(ctx)
	if err != nil {
		return nil, err
	}
	parent := tree.Find(parentID)
	if parent == nil || !parent.IsFolder() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, parentID)
	}
	return parent.Children, nil
}

func (f *Firefox) Create(ctx context.Context, params model.CreateParams) (*model.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, placesError(err)
	}
	defer tx.Rollback()

	var parentID int64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM moz_bookmarks WHERE guid = ? AND type = ?", params.ParentID, typeFolder,
	).Scan(&parentID)
	if errors.Is(err, sql.ErrNoRows) || params.ParentID == firefoxRootGUID {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, params.ParentID)
	}
	if err != nil {
		return nil, placesError(err)
	}

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM moz_bookmarks WHERE parent = ?", parentID).Scan(&count); err != nil {
		return nil, placesError(err)
	}
	index := params.Index
	if index < 0 || index > count {
		index = count
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE moz_bookmarks SET position = position + 1 WHERE parent = ? AND position >= ?", parentID, index,
	); err != nil {
		return nil, placesError(err)
	}

	now := f.now()
	prTime := now.UnixMicro()

	typ := typeFolder
	var fk sql.NullInt64
	if !params.IsFolder() {
		typ = typeBookmark
		placeID, err := ensurePlace(ctx, tx, params.URL, params.Title)
		if err != nil {
			return nil, err
		}
		fk = sql.NullInt64{Int64: placeID, Valid: true}
	}

	guid := placesGUID()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO moz_bookmarks (type, fk, parent, position, title, dateAdded, lastModified, guid, syncStatus, syncChangeCounter)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, 1)
	`, typ, fk, parentID, index, params.Title, prTime, prTime, guid); err != nil {
		return nil, placesError(err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE moz_bookmarks SET lastModified = ?, syncChangeCounter = syncChangeCounter + 1 WHERE id = ?", prTime, parentID,
	); err != nil {
		return nil, placesError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, placesError(err)
	}

	node := &model.Node{ID: guid, Title: params.Title, URL: params.URL, DateAdded: time.UnixMicro(prTime)}
	if params.IsFolder() {
		node.Children = []*model.Node{}
	}
	return node, nil
}

// ensurePlace returns the moz_places id for rawURL, inserting it when new,
// and counts the new bookmark as a reference to it.
func ensurePlace(ctx context.Context, tx *sql.Tx, rawURL, title string) (int64, error) {
	hash := placesURLHash(rawURL)

	var id int64
	err := tx.QueryRowContext(ctx,
		"SELECT id FROM moz_places WHERE url_hash = ? AND url = ?", hash, rawURL,
	).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx, `
			INSERT INTO moz_places (url, title, rev_host, hidden, frecency, guid, url_hash, foreign_count)
			VALUES (?, ?, ?, 0, -1, ?, ?, 0)
		`, rawURL, title, placesRevHost(rawURL), placesGUID(), hash)
		if err != nil {
			return 0, placesError(err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, err
		}
	case err != nil:
		return 0, placesError(err)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE moz_places SET foreign_count = foreign_count + 1 WHERE id = ?", id); err != nil {
		return 0, placesError(err)
	}
	return id, nil
}

func (f *Firefox) Close() error {
	return f.db.Close()
}

// placesError maps lock contention to ErrUnavailable.
func placesError(err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xFF {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%w: places database is locked, close the browser first", ErrUnavailable)
		}
	}
	return err
}
