package llmlog

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLogger_WritesDatedFile(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)
	l.now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	}

	l.Prompt("explain this codebase")
	l.Response("it is a cache")
	l.CachedResponse("it is a cache")
	l.Warningf("failed to save cache: %v", os.ErrPermission)

	want := dir + "/llm_calls_20260314.log"
	if l.Path() != want {
		t.Errorf("Path() = %q, want %q", l.Path(), want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("Got %d lines, want 4:\n%s", len(lines), data)
	}
	checks := []string{
		"INFO - PROMPT: explain this codebase",
		"INFO - RESPONSE: it is a cache",
		"INFO - RESPONSE (cached): it is a cache",
		"WARNING - failed to save cache",
	}
	for i, c := range checks {
		if !strings.Contains(lines[i], c) {
			t.Errorf("Line %d = %q, want it to contain %q", i, lines[i], c)
		}
		if !strings.HasPrefix(lines[i], "2026-03-14 09:26:53 - ") {
			t.Errorf("Line %d missing timestamp prefix: %q", i, lines[i])
		}
	}
}

func TestLogger_DisabledWhenNoDir(t *testing.T) {
	l := New("")
	// Must not panic or create anything.
	l.Prompt("prompt")
	l.Errorf("error %d", 1)
	if l.Path() != "" {
		t.Errorf("Path() = %q, want empty for disabled logger", l.Path())
	}
}

func TestLogger_AppendsAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	l := New(dir)
	l.Prompt("one")
	l.Prompt("two")

	data, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if got := strings.Count(string(data), "PROMPT:"); got != 2 {
		t.Errorf("Got %d prompt records, want 2", got)
	}
}
