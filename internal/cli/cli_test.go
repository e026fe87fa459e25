package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tutorgen-ai/tutorgen/internal/cache"
	"github.com/tutorgen-ai/tutorgen/internal/cache/sqlite"
	"github.com/tutorgen-ai/tutorgen/internal/config"
	"github.com/tutorgen-ai/tutorgen/internal/tutorial"
)

// resetFlags resets all package-level flag variables to their zero values.
func resetFlags() {
	flagRepo = ""
	flagDir = ""
	flagName = ""
	flagOutput = ""
	flagInclude = ""
	flagExclude = ""
	flagMaxSize = 0
	flagProvider = ""
	flagModel = ""
	flagToken = ""
	flagNoCache = false
	flagHTML = false
	flagPDF = false
	exitCode = ExitSuccess
}

// --- buildOverrides tests ---

func TestBuildOverrides_NoFlags(t *testing.T) {
	resetFlags()
	m := buildOverrides()
	if len(m) != 0 {
		t.Errorf("buildOverrides() with no flags = %v, want empty map", m)
	}
}

func TestBuildOverrides_AllFlags(t *testing.T) {
	resetFlags()
	flagProvider = "openai"
	flagModel = "gpt-4o"
	flagOutput = "out"
	flagInclude = "*.go,*.md"
	flagExclude = "vendor/*"
	flagMaxSize = 50000
	flagNoCache = true

	m := buildOverrides()

	expected := map[string]string{
		"provider":     "openai",
		"model":        "gpt-4o",
		"outputDir":    "out",
		"include":      "*.go,*.md",
		"exclude":      "vendor/*",
		"maxFileSize":  "50000",
		"cacheEnabled": "false",
	}

	if len(m) != len(expected) {
		t.Fatalf("buildOverrides() returned %d entries, want %d", len(m), len(expected))
	}
	for k, v := range expected {
		if m[k] != v {
			t.Errorf("buildOverrides()[%q] = %q, want %q", k, m[k], v)
		}
	}
}

func TestBuildOverrides_PartialFlags(t *testing.T) {
	resetFlags()
	flagModel = "gemini-2.5-flash"

	m := buildOverrides()
	if len(m) != 1 || m["model"] != "gemini-2.5-flash" {
		t.Errorf("buildOverrides() = %v, want only model", m)
	}
}

// --- openStore tests ---

func storeConfig(t *testing.T, backend string) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Cache.Backend = backend
	cfg.Cache.File = filepath.Join(t.TempDir(), "llm_cache.json")
	return cfg
}

func TestOpenStore_FileBackend(t *testing.T) {
	resetFlags()
	cfg := storeConfig(t, "file")

	store := openStore(cfg)
	defer store.Close()

	if !store.Enabled() {
		t.Error("store disabled with a writable path and default config")
	}
	if _, ok := store.(*cache.FileStore); !ok {
		t.Errorf("openStore returned %T, want *cache.FileStore", store)
	}
}

func TestOpenStore_SqliteBackend(t *testing.T) {
	resetFlags()
	cfg := storeConfig(t, "sqlite")

	store := openStore(cfg)
	defer store.Close()

	if _, ok := store.(*sqlite.Store); !ok {
		t.Errorf("openStore returned %T, want *sqlite.Store", store)
	}
}

func TestOpenStore_DisabledByConfig(t *testing.T) {
	resetFlags()
	cfg := storeConfig(t, "file")
	disabled := false
	cfg.Cache.Enabled = &disabled

	store := openStore(cfg)
	defer store.Close()

	if store.Enabled() {
		t.Error("store enabled despite cache.enabled=false")
	}
}

func TestOpenStore_UnusablePathDisables(t *testing.T) {
	resetFlags()
	cfg := storeConfig(t, "file")
	// Point the cache file beneath a regular file so the parent
	// directory cannot be created.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.Cache.File = filepath.Join(blocker, "llm_cache.json")

	store := openStore(cfg)
	defer store.Close()

	if store.Enabled() {
		t.Error("store enabled despite unusable cache path")
	}
}

func TestNewStore_ForcedEnable(t *testing.T) {
	resetFlags()
	cfg := storeConfig(t, "file")
	disabled := false
	cfg.Cache.Enabled = &disabled

	store := newStore(cfg, true)
	defer store.Close()

	if !store.Enabled() {
		t.Error("newStore(cfg, true) returned a disabled store")
	}
}

func TestGithubToken_FlagBeatsEnv(t *testing.T) {
	resetFlags()
	t.Setenv("GITHUB_TOKEN", "from-env")

	if got := githubToken(); got != "from-env" {
		t.Errorf("githubToken() = %q, want env value without the flag", got)
	}

	flagToken = "from-flag"
	if got := githubToken(); got != "from-flag" {
		t.Errorf("githubToken() = %q, want flag to win over env", got)
	}
}

// --- export wiring ---

func TestExportTutorial_PDFUsesDirectPandocPath(t *testing.T) {
	resetFlags()
	flagPDF = true

	// Fake pandoc records its arguments and creates the -o target; a
	// present xelatex selects the direct pdf engine.
	bin := t.TempDir()
	pandoc := `#!/bin/sh
out=
prev=
for a in "$@"; do
	[ "$prev" = "-o" ] && out=$a
	prev=$a
done
printf '%s\n' "$@" >> "$PANDOC_ARGS"
[ -n "$out" ] && : > "$out"
exit 0
`
	if err := os.WriteFile(filepath.Join(bin, "pandoc"), []byte(pandoc), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bin, "xelatex"), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	argsFile := filepath.Join(t.TempDir(), "args")
	t.Setenv("PATH", bin)
	t.Setenv("PANDOC_ARGS", argsFile)

	dir := t.TempDir()
	tut := &tutorial.Tutorial{
		ProjectName: "demo",
		Summary:     "A demo.",
		Chapters:    []tutorial.Chapter{{Number: 1, Title: "One", Content: "Body."}},
	}
	exportTutorial(context.Background(), tut, dir)

	if exitCode != ExitSuccess {
		t.Fatalf("exit code = %d, want %d", exitCode, ExitSuccess)
	}
	if _, err := os.Stat(filepath.Join(dir, "demo_tutorial.pdf")); err != nil {
		t.Errorf("pdf not written: %v", err)
	}
	args, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("pandoc was never invoked: %v", err)
	}
	if !strings.Contains(string(args), "--pdf-engine=xelatex") {
		t.Errorf("--pdf did not take the direct pandoc path:\n%s", args)
	}
}

func TestExportTutorial_MissingToolsDegrade(t *testing.T) {
	resetFlags()
	flagPDF = true
	t.Setenv("PATH", t.TempDir())

	dir := t.TempDir()
	tut := &tutorial.Tutorial{ProjectName: "demo", Summary: "A demo."}
	exportTutorial(context.Background(), tut, dir)

	if exitCode != ExitSuccess {
		t.Errorf("missing converters must warn, not fail: exit code = %d", exitCode)
	}
}

// --- generate source validation ---

func TestRunGenerate_RequiresExactlyOneSource(t *testing.T) {
	resetFlags()
	runGenerate()
	if exitCode != ExitUsageError {
		t.Errorf("exit code with no source = %d, want %d", exitCode, ExitUsageError)
	}

	resetFlags()
	flagRepo = "owner/repo"
	flagDir = "."
	runGenerate()
	if exitCode != ExitUsageError {
		t.Errorf("exit code with both sources = %d, want %d", exitCode, ExitUsageError)
	}
}
