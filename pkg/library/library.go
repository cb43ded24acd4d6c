// Package library keeps a small SQLite database of recently opened song files
// together with a cache of their parsed content.
package library

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/leadsheet/pkg/sheet"
)

const schema = `
CREATE TABLE IF NOT EXISTS recent_files (
	path      TEXT PRIMARY KEY,
	opened_at INTEGER NOT NULL,
	opens     INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS parse_cache (
	path     TEXT PRIMARY KEY,
	size     INTEGER NOT NULL,
	mod_time INTEGER NOT NULL,
	content  TEXT NOT NULL
);
`

// Entry is one recently opened file.
type Entry struct {
	Path     string
	OpenedAt time.Time
	Opens    int
}

// Library is a handle on the library database. Safe for concurrent use.
type Library struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the library database at path.
func Open(path string) (*Library, error) {
	if path == "" {
		return nil, errors.New("library path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open library: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init library schema: %w", err)
	}

	return &Library{db: db, path: path}, nil
}

// Close closes the database connection.
func (l *Library) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Path returns the database file path.
func (l *Library) Path() string {
	return l.path
}

// RecordOpen notes that path was opened at the given time.
func (l *Library) RecordOpen(path string, at time.Time) error {
	_, err := l.db.Exec(`
		INSERT INTO recent_files (path, opened_at, opens) VALUES (?, ?, 1)
		ON CONFLICT(path) DO UPDATE SET opened_at = excluded.opened_at, opens = opens + 1`,
		path, at.UnixNano())
	if err != nil {
		return fmt.Errorf("record open %s: %w", path, err)
	}
	return nil
}

// Recent returns up to limit recently opened files, newest first.
func (l *Library) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.Query(`SELECT path, opened_at, opens FROM recent_files ORDER BY opened_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent files: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var openedAt int64
		if err := rows.Scan(&e.Path, &openedAt, &e.Opens); err != nil {
			return nil, fmt.Errorf("scan recent file: %w", err)
		}
		e.OpenedAt = time.Unix(0, openedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Cached returns the cached parse of path if the cache entry matches the
// file's size and modification time. Cached content goes through
// sheet.Decode, so a corrupt row is reported as an error rather than used.
func (l *Library) Cached(path string, size int64, modTime time.Time) (sheet.Content, bool, error) {
	var data string
	err := l.db.QueryRow(`SELECT content FROM parse_cache WHERE path = ? AND size = ? AND mod_time = ?`,
		path, size, modTime.UnixNano()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return sheet.Content{}, false, nil
	}
	if err != nil {
		return sheet.Content{}, false, fmt.Errorf("query parse cache: %w", err)
	}

	c, err := sheet.Decode([]byte(data))
	if err != nil {
		return sheet.Content{}, false, fmt.Errorf("cached content for %s: %w", path, err)
	}
	return c, true, nil
}

// Store caches the parsed content of path.
func (l *Library) Store(path string, size int64, modTime time.Time, c sheet.Content) error {
	data, err := sheet.Encode(c)
	if err != nil {
		return err
	}
	_, err = l.db.Exec(`
		INSERT INTO parse_cache (path, size, mod_time, content) VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET size = excluded.size, mod_time = excluded.mod_time, content = excluded.content`,
		path, size, modTime.UnixNano(), string(data))
	if err != nil {
		return fmt.Errorf("store parse cache %s: %w", path, err)
	}
	return nil
}

// Forget removes path from both recents and the parse cache.
func (l *Library) Forget(path string) error {
	if _, err := l.db.Exec(`DELETE FROM recent_files WHERE path = ?`, path); err != nil {
		return fmt.Errorf("forget %s: %w", path, err)
	}
	if _, err := l.db.Exec(`DELETE FROM parse_cache WHERE path = ?`, path); err != nil {
		return fmt.Errorf("forget %s: %w", path, err)
	}
	return nil
}
