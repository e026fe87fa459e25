// Package sqlite provides a cache.Store backed by an embedded SQLite
// database, for installations whose cache outgrows whole-file rewrites.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/tutorgen-ai/tutorgen/internal/cache"
)

const createTable = `
CREATE TABLE IF NOT EXISTS cache_entries (
	fingerprint TEXT NOT NULL PRIMARY KEY,
	response TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Store is a fingerprint-keyed response cache in a SQLite database. It
// satisfies the same contract as the file backend: a disabled store never
// opens the database, and write failures surface as *cache.PersistError.
type Store struct {
	db      *sql.DB
	path    string
	enabled bool
}

// New opens (or creates) the cache database at path.
func New(enabled bool, path string) (*Store, error) {
	if !enabled {
		return &Store{enabled: false}, nil
	}
	if path == "" {
		path = "llm_cache.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating cache db: %w", err)
	}
	return &Store{db: db, path: path, enabled: true}, nil
}

// Get retrieves a cached response by fingerprint. Returns ("", false) on miss.
func (s *Store) Get(fingerprint string) (string, bool) {
	if !s.enabled {
		return "", false
	}
	var response string
	err := s.db.QueryRow(
		`SELECT response FROM cache_entries WHERE fingerprint = ?`, fingerprint,
	).Scan(&response)
	if err != nil {
		return "", false
	}
	return response, true
}

// Put stores or overwrites a response. Last write wins per fingerprint.
func (s *Store) Put(fingerprint, response string) error {
	if !s.enabled {
		return nil
	}
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO cache_entries (fingerprint, response) VALUES (?, ?)`,
		fingerprint, response,
	)
	if err != nil {
		return &cache.PersistError{Path: s.path, Err: err}
	}
	return nil
}

// Enabled returns whether caching is enabled.
func (s *Store) Enabled() bool { return s.enabled }

// Stats returns entry counts and the database file size.
func (s *Store) Stats() (cache.Stats, error) {
	stats := cache.Stats{Backend: "sqlite", Path: s.path}
	if !s.enabled {
		return stats, nil
	}
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM cache_entries`).Scan(&count); err != nil {
		return stats, fmt.Errorf("counting cache entries: %w", err)
	}
	stats.Entries = count
	if info, err := os.Stat(s.path); err == nil {
		stats.TotalBytes = info.Size()
	}
	return stats, nil
}

// Clear removes all cache entries.
func (s *Store) Clear() error {
	if !s.enabled {
		return nil
	}
	if _, err := s.db.Exec(`DELETE FROM cache_entries`); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if !s.enabled {
		return nil
	}
	return s.db.Close()
}
