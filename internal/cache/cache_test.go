package cache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func storePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "llm_cache.json")
}

func TestFileStore_PutGet(t *testing.T) {
	s := NewFileStore(true, storePath(t))

	fp := "hash-abc123"
	resp := `{"text": "Hello"}`

	// Miss before put
	if _, ok := s.Get(fp); ok {
		t.Error("Expected miss before put")
	}

	if err := s.Put(fp, resp); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	got, ok := s.Get(fp)
	if !ok {
		t.Fatal("Expected hit after put")
	}
	if got != resp {
		t.Errorf("Got = %q, want %q", got, resp)
	}

	if _, ok := s.Get("hash-missing"); ok {
		t.Error("Expected miss for unknown fingerprint")
	}
}

func TestFileStore_Overwrite(t *testing.T) {
	s := NewFileStore(true, storePath(t))

	if err := s.Put("fp", "first"); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if err := s.Put("fp", "second"); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	got, ok := s.Get("fp")
	if !ok || got != "second" {
		t.Errorf("Got = (%q, %v), want (%q, true)", got, ok, "second")
	}
}

func TestFileStore_PutIdempotent(t *testing.T) {
	path := storePath(t)
	s := NewFileStore(true, path)

	if err := s.Put("fp", "value"); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if err := s.Put("fp", "value"); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("Repeated Put changed the backing file:\n%s\nvs\n%s", first, second)
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if stats.Entries != 1 {
		t.Errorf("Entries = %d, want 1", stats.Entries)
	}
}

func TestFileStore_PersistenceRoundTrip(t *testing.T) {
	path := storePath(t)

	s := NewFileStore(true, path)
	if err := s.Put("fp-1", "one"); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if err := s.Put("fp-2", "two"); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	// Simulated restart: a fresh store over the same file.
	reloaded := NewFileStore(true, path)
	for fp, want := range map[string]string{"fp-1": "one", "fp-2": "two"} {
		got, ok := reloaded.Get(fp)
		if !ok || got != want {
			t.Errorf("Get(%q) = (%q, %v), want (%q, true)", fp, got, ok, want)
		}
	}
}

func TestFileStore_Disabled(t *testing.T) {
	s := NewFileStore(false, storePath(t))

	if s.Enabled() {
		t.Error("Enabled() = true, want false")
	}
	if err := s.Put("fp", "value"); err != nil {
		t.Errorf("Put on disabled store returned error: %v", err)
	}
	if _, ok := s.Get("fp"); ok {
		t.Error("Get on disabled store returned a hit")
	}
	if err := s.Clear(); err != nil {
		t.Errorf("Clear on disabled store returned error: %v", err)
	}
}

func TestFileStore_MissingFile(t *testing.T) {
	s := NewFileStore(true, filepath.Join(t.TempDir(), "absent.json"))
	if _, ok := s.Get("anything"); ok {
		t.Error("Expected empty store over a missing file")
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := storePath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	s := NewFileStore(true, path)
	if _, ok := s.Get("anything"); ok {
		t.Error("Expected empty store over a corrupt file")
	}

	// The store must remain writable afterwards.
	if err := s.Put("fp", "value"); err != nil {
		t.Fatalf("Put after corrupt load: %v", err)
	}
	reloaded := NewFileStore(true, path)
	if got, ok := reloaded.Get("fp"); !ok || got != "value" {
		t.Errorf("Get after recovery = (%q, %v), want (%q, true)", got, ok, "value")
	}
}

func TestFileStore_PutPersistError(t *testing.T) {
	dir := t.TempDir()
	// A path whose parent is a regular file cannot be written.
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	s := NewFileStore(true, filepath.Join(blocker, "cache.json"))

	err := s.Put("fp", "value")
	if err == nil {
		t.Fatal("Expected Put to fail")
	}
	if !IsPersistError(err) {
		t.Errorf("Expected *PersistError, got %T: %v", err, err)
	}
	// In-memory state rolled back, so memory and disk stay convergent.
	if _, ok := s.Get("fp"); ok {
		t.Error("Failed Put left entry in memory")
	}
}

func TestFileStore_Clear(t *testing.T) {
	path := storePath(t)
	s := NewFileStore(true, path)
	if err := s.Put("fp", "value"); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if _, ok := s.Get("fp"); ok {
		t.Error("Get after Clear returned a hit")
	}
	reloaded := NewFileStore(true, path)
	if _, ok := reloaded.Get("fp"); ok {
		t.Error("Clear did not persist")
	}
}

func TestFileStore_ConcurrentPut(t *testing.T) {
	path := storePath(t)
	s := NewFileStore(true, path)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			fp := BuildFingerprint("gemini", "gemini-2.5-pro", string(rune('a'+n)))
			if err := s.Put(fp, "response"); err != nil {
				t.Errorf("Put error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	reloaded := NewFileStore(true, path)
	stats, err := reloaded.Stats()
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if stats.Entries != 8 {
		t.Errorf("Entries = %d, want 8", stats.Entries)
	}
}

func TestHashKey_Deterministic(t *testing.T) {
	a := HashKey("material")
	b := HashKey("material")
	if a != b {
		t.Errorf("HashKey not deterministic: %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("HashKey length = %d, want 64 hex chars", len(a))
	}
	if HashKey("other") == a {
		t.Error("Distinct inputs produced the same hash")
	}
}

func TestBuildFingerprint_InputSensitivity(t *testing.T) {
	base := BuildFingerprint("gemini", "gemini-2.5-pro", "prompt")
	tests := []struct {
		name     string
		provider string
		model    string
		prompt   string
	}{
		{"provider changes key", "openai", "gemini-2.5-pro", "prompt"},
		{"model changes key", "gemini", "gemini-2.5-flash", "prompt"},
		{"prompt changes key", "gemini", "gemini-2.5-pro", "other prompt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if BuildFingerprint(tt.provider, tt.model, tt.prompt) == base {
				t.Error("Expected a different fingerprint")
			}
		})
	}
}
