package crawler

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOptions_Selected(t *testing.T) {
	opts := Options{
		Include: []string{"*.go", "*.md", "Makefile"},
		Exclude: []string{"*test*", "vendor/*", ".git/*"},
	}

	tests := []struct {
		path string
		want bool
	}{
		{"main.go", true},
		{"internal/cache/cache.go", true},
		{"README.md", true},
		{"Makefile", true},
		{"main_test.go", false},
		{"tests/fixtures.go", false},
		{"vendor/lib/lib.go", false},
		{"internal/vendor/dep.go", false},
		{".git/config", false},
		{"image.png", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := opts.Selected(tt.path); got != tt.want {
				t.Errorf("Selected(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestOptions_Selected_EmptyIncludeSelectsAll(t *testing.T) {
	opts := Options{Exclude: []string{"*.log"}}
	if !opts.Selected("anything.xyz") {
		t.Error("Empty include set should select everything not excluded")
	}
	if opts.Selected("debug.log") {
		t.Error("Exclusions must still apply")
	}
}

func TestCrawlDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "package main\n\nfunc main() {}\n")
	writeFile(t, dir, "README.md", "# demo\n")
	writeFile(t, dir, "main_test.go", "package main\n")
	writeFile(t, dir, "sub/util.go", "package sub\n")
	writeFile(t, dir, "logo.png", "\x89PNG\x00\x00binary")
	writeFile(t, dir, "big.go", string(make([]byte, 300)))

	result, err := CrawlDir(dir, Options{
		Include:     []string{"*.go", "*.md", "*.png"},
		Exclude:     []string{"*test*"},
		MaxFileSize: 200,
	})
	if err != nil {
		t.Fatalf("CrawlDir error: %v", err)
	}

	wantPaths := []string{"README.md", "main.go", "sub/util.go"}
	if len(result.Files) != len(wantPaths) {
		t.Fatalf("Got %d files %v, want %d", len(result.Files), paths(result), len(wantPaths))
	}
	for i, want := range wantPaths {
		if result.Files[i].Path != want {
			t.Errorf("Files[%d].Path = %q, want %q (sorted)", i, result.Files[i].Path, want)
		}
	}
	if result.ProjectName != filepath.Base(dir) {
		t.Errorf("ProjectName = %q, want %q", result.ProjectName, filepath.Base(dir))
	}
	// main_test.go by pattern, logo.png by content, big.go by size
	if result.Skipped != 3 {
		t.Errorf("Skipped = %d, want 3", result.Skipped)
	}
}

func TestCrawlDir_NoMatches(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data.bin", "x")

	if _, err := CrawlDir(dir, Options{Include: []string{"*.go"}}); err == nil {
		t.Error("Expected error when nothing is selected")
	}
}

func TestCrawlDir_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	writeFile(t, dir, "file.txt", "x")

	if _, err := CrawlDir(file, Options{}); err == nil {
		t.Error("Expected error for non-directory path")
	}
}

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll error: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
}

func paths(r Result) []string {
	var out []string
	for _, f := range r.Files {
		out = append(out, f.Path)
	}
	return out
}
