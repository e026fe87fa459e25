package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultFile is the backing file used when none is configured.
const DefaultFile = "llm_cache.json"

// Store is the response cache contract. A fingerprint identifies one logical
// request; implementations map it to at most one stored response.
type Store interface {
	// Get returns the stored response for a fingerprint, or false on miss.
	Get(fingerprint string) (string, bool)
	// Put stores or overwrites the response for a fingerprint and persists
	// the store. Write failures are reported as *PersistError.
	Put(fingerprint, response string) error
	// Enabled reports whether caching is active. When false, Get always
	// misses and Put is a successful no-op.
	Enabled() bool
	// Stats returns entry counts and backing-store size.
	Stats() (Stats, error)
	// Clear removes all entries.
	Clear() error
	// Close releases any resources held by the store.
	Close() error
}

// Stats describes the state of a cache store.
type Stats struct {
	Backend    string `json:"backend"`
	Path       string `json:"path"`
	Entries    int    `json:"entries"`
	TotalBytes int64  `json:"totalBytes"`
}

// PersistError reports a failure to write the backing store. Callers should
// treat it as a warning and continue without caching.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persisting cache to %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// IsPersistError checks if an error is a cache persistence failure.
func IsPersistError(err error) bool {
	_, ok := err.(*PersistError)
	return ok
}

// FileStore is a Store backed by a single JSON object file mapping
// fingerprints to responses. The whole file is loaded at construction and
// rewritten on every Put. One mutex guards the read-modify-write-persist
// cycle; the deployment guarantees a single process owns the file.
type FileStore struct {
	mu      sync.Mutex
	path    string
	entries map[string]string
	enabled bool
}

// NewFileStore creates a FileStore over the given path. If the file is
// missing, empty, or unparseable the store starts empty; cache loss only
// degrades performance, never correctness. A disabled store never touches
// the filesystem.
func NewFileStore(enabled bool, path string) *FileStore {
	s := &FileStore{
		path:    path,
		entries: make(map[string]string),
		enabled: enabled,
	}
	if !enabled {
		return s
	}
	if s.path == "" {
		s.path = DefaultFile
	}
	data, err := os.ReadFile(s.path)
	if err != nil || len(data) == 0 {
		return s
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		s.entries = make(map[string]string)
	}
	return s
}

// Get retrieves a cached response by fingerprint. Returns ("", false) on miss.
func (s *FileStore) Get(fingerprint string) (string, bool) {
	if !s.enabled {
		return "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	resp, ok := s.entries[fingerprint]
	return resp, ok
}

// Put stores a response and rewrites the backing file. Later writes for the
// same fingerprint overwrite earlier ones.
func (s *FileStore) Put(fingerprint, response string) error {
	if !s.enabled {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, existed := s.entries[fingerprint]
	s.entries[fingerprint] = response
	if err := s.persistLocked(); err != nil {
		// Keep memory and disk convergent: roll back the in-memory write.
		if existed {
			s.entries[fingerprint] = prev
		} else {
			delete(s.entries, fingerprint)
		}
		return &PersistError{Path: s.path, Err: err}
	}
	return nil
}

// Enabled returns whether caching is enabled.
func (s *FileStore) Enabled() bool { return s.enabled }

// Stats returns information about the store.
func (s *FileStore) Stats() (Stats, error) {
	stats := Stats{Backend: "file", Path: s.path}
	if !s.enabled {
		return stats, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stats.Entries = len(s.entries)
	if info, err := os.Stat(s.path); err == nil {
		stats.TotalBytes = info.Size()
	}
	return stats, nil
}

// Clear removes all entries and rewrites the backing file.
func (s *FileStore) Clear() error {
	if !s.enabled {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]string)
	if err := s.persistLocked(); err != nil {
		return &PersistError{Path: s.path, Err: err}
	}
	return nil
}

// Close is a no-op for the file backend; every Put already leaves the file
// in its final state.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) persistLocked() error {
	data, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating cache directory: %w", err)
		}
	}
	return os.WriteFile(s.path, data, 0o644)
}

// HashKey creates a SHA-256 hash of the given key material.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h)
}

// BuildFingerprint creates a cache fingerprint from the request inputs that
// affect a model's output.
func BuildFingerprint(provider, model, prompt string) string {
	return HashKey(fmt.Sprintf("%s:%s:%s", provider, model, prompt))
}
