package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tutorgen-ai/tutorgen/internal/cache"
	"github.com/tutorgen-ai/tutorgen/internal/cache/sqlite"
	"github.com/tutorgen-ai/tutorgen/internal/config"
	"github.com/tutorgen-ai/tutorgen/internal/crawler"
	"github.com/tutorgen-ai/tutorgen/internal/export"
	"github.com/tutorgen-ai/tutorgen/internal/llm"
	"github.com/tutorgen-ai/tutorgen/internal/llmlog"
	"github.com/tutorgen-ai/tutorgen/internal/output"
	"github.com/tutorgen-ai/tutorgen/internal/tutorial"
)

// Shared generate flags
var (
	flagRepo     string
	flagDir      string
	flagName     string
	flagOutput   string
	flagInclude  string
	flagExclude  string
	flagMaxSize  int
	flagProvider string
	flagModel    string
	flagToken    string
	flagNoCache  bool
	flagHTML     bool
	flagPDF      bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a tutorial for a codebase",
	Long:  "Crawls a GitHub repository or local directory, identifies its core abstractions, and writes a chapter-per-abstraction markdown tutorial.",
	Run: func(cmd *cobra.Command, args []string) {
		runGenerate()
	},
}

func init() {
	generateCmd.Flags().StringVar(&flagRepo, "repo", "", "GitHub repository (owner/repo, owner/repo@ref, or URL)")
	generateCmd.Flags().StringVar(&flagDir, "dir", "", "Local directory to crawl")
	generateCmd.Flags().StringVarP(&flagName, "name", "n", "", "Project name (default: derived from the source)")
	generateCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Base output directory")
	generateCmd.Flags().StringVarP(&flagInclude, "include", "i", "", "Include file patterns (comma-separated)")
	generateCmd.Flags().StringVarP(&flagExclude, "exclude", "e", "", "Exclude file patterns (comma-separated)")
	generateCmd.Flags().IntVarP(&flagMaxSize, "max-size", "s", 0, "Maximum file size in bytes")
	generateCmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (gemini, anthropic, openai, ollama)")
	generateCmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	generateCmd.Flags().StringVarP(&flagToken, "token", "t", "", "GitHub token (default: GITHUB_TOKEN environment variable)")
	generateCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Disable the LLM response cache for this run")
	generateCmd.Flags().BoolVar(&flagHTML, "html", false, "Also export the tutorial as a standalone HTML file")
	generateCmd.Flags().BoolVar(&flagPDF, "pdf", false, "Also export the tutorial as a PDF")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagOutput != "" {
		m["outputDir"] = flagOutput
	}
	if flagInclude != "" {
		m["include"] = flagInclude
	}
	if flagExclude != "" {
		m["exclude"] = flagExclude
	}
	if flagMaxSize > 0 {
		m["maxFileSize"] = fmt.Sprintf("%d", flagMaxSize)
	}
	if flagNoCache {
		m["cacheEnabled"] = "false"
	}
	return m
}

func runGenerate() {
	if (flagRepo == "") == (flagDir == "") {
		fmt.Fprintln(os.Stderr, "Error: exactly one of --repo or --dir is required")
		exitCode = ExitUsageError
		return
	}

	cfg, err := config.Load(buildOverrides())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	ctx := context.Background()

	store := openStore(cfg)
	defer store.Close()

	logger := llmlog.New(cfg.LogDir)

	caller, err := llm.New(cfg.Provider, cfg.Model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if llm.IsAuthError(err) {
			exitCode = ExitAuthError
		} else {
			exitCode = ExitRuntimeError
		}
		return
	}
	cached := llm.NewCachedCaller(caller, store, logger)

	result, err := crawl(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}
	project := result.ProjectName
	if flagName != "" {
		project = flagName
	}
	fmt.Fprintf(os.Stderr, "Crawled %d files from %s (%d skipped)\n", len(result.Files), project, result.Skipped)

	engine := &tutorial.Engine{
		Caller:    cached,
		MaxTokens: cfg.MaxTokens,
		Progress: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		},
	}
	tut, err := engine.Run(ctx, project, result.Files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if llm.IsAuthError(err) {
			exitCode = ExitAuthError
		} else {
			exitCode = ExitRuntimeError
		}
		return
	}

	dir, err := output.WriteTutorial(tut, cfg.OutputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}
	fmt.Fprintf(os.Stdout, "Tutorial written to %s\n", dir)

	if flagHTML || flagPDF {
		exportTutorial(ctx, tut, dir)
	}
}

// openStore builds the cache store the config asks for, degrading to a
// disabled store when the backing path is unusable.
func openStore(cfg config.Config) cache.Store {
	enabled := cfg.CacheEnabled()
	if enabled {
		if err := config.ValidateCachePath(cfg.Cache.File); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cache disabled: %v\n", err)
			enabled = false
		}
	}
	return newStore(cfg, enabled)
}

func newStore(cfg config.Config, enabled bool) cache.Store {
	if cfg.Cache.Backend == "sqlite" {
		store, err := sqlite.New(enabled, cfg.Cache.File)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cache disabled: %v\n", err)
			return cache.NewFileStore(false, cfg.Cache.File)
		}
		return store
	}
	return cache.NewFileStore(enabled, cfg.Cache.File)
}

func crawl(ctx context.Context, cfg config.Config) (crawler.Result, error) {
	opts := crawler.Options{
		Include:     cfg.Include,
		Exclude:     cfg.Exclude,
		MaxFileSize: cfg.MaxFileSize,
	}

	if flagDir != "" {
		return crawler.CrawlDir(flagDir, opts)
	}

	repo, err := crawler.ParseRepo(flagRepo)
	if err != nil {
		return crawler.Result{}, err
	}
	client := crawler.NewGitHubClient(githubToken())
	if !client.HasToken() {
		fmt.Fprintln(os.Stderr, "Warning: GITHUB_TOKEN not set, using unauthenticated requests (low rate limit)")
	}
	return client.FetchRepo(ctx, repo, opts)
}

// githubToken resolves the GitHub credential: the --token flag wins over
// the GITHUB_TOKEN environment variable.
func githubToken() string {
	if flagToken != "" {
		return flagToken
	}
	return os.Getenv("GITHUB_TOKEN")
}

func exportTutorial(ctx context.Context, tut *tutorial.Tutorial, dir string) {
	combined := output.Combine(tut)

	if flagHTML {
		html, err := export.MarkdownToHTML(ctx, combined)
		if err != nil {
			warnExport(err)
		} else {
			path := filepath.Join(dir, tut.ProjectName+"_tutorial.html")
			if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing HTML: %v\n", err)
				exitCode = ExitRuntimeError
				return
			}
			fmt.Fprintf(os.Stdout, "HTML written to %s\n", path)
		}
	}
	if flagPDF {
		path := filepath.Join(dir, tut.ProjectName+"_tutorial.pdf")
		if err := export.MarkdownToPDF(ctx, combined, path); err != nil {
			warnExport(err)
			return
		}
		fmt.Fprintf(os.Stdout, "PDF written to %s\n", path)
	}
}

// warnExport downgrades missing-converter errors to warnings so a run
// without pandoc or wkhtmltopdf still produces markdown output.
func warnExport(err error) {
	var notFound *export.ErrToolNotFound
	if errors.As(err, &notFound) {
		fmt.Fprintf(os.Stderr, "Warning: skipping export: %v\n", notFound)
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	exitCode = ExitRuntimeError
}
