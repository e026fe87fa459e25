package tutorial

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tutorgen-ai/tutorgen/internal/crawler"
	"github.com/tutorgen-ai/tutorgen/internal/llm"
)

const defaultChapterWorkers = 3

// Engine runs the generation pipeline: identify abstractions, analyze their
// relationships, order the chapters, then write each chapter.
type Engine struct {
	Caller    llm.Caller
	MaxTokens int
	// ChapterWorkers bounds concurrent chapter generation. Chapter prompts
	// depend only on the plan, so they can run in parallel.
	ChapterWorkers int
	// Progress, when set, receives one human-readable line per stage.
	Progress func(format string, args ...any)
}

// Run generates a tutorial for the crawled files.
func (e *Engine) Run(ctx context.Context, project string, files []crawler.File) (*Tutorial, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to analyze")
	}
	listing := buildFileListing(files)

	e.progress("Identifying abstractions...")
	abstractions, err := generateParsed(ctx, e, identifyAbstractionsPrompt(project, listing, len(files)),
		func(reply string) ([]Abstraction, error) {
			return parseAbstractions(reply, len(files))
		})
	if err != nil {
		return nil, fmt.Errorf("identifying abstractions: %w", err)
	}
	e.progress("Found %d abstractions", len(abstractions))

	e.progress("Analyzing relationships...")
	analysis, err := generateParsed(ctx, e, analyzeRelationshipsPrompt(project, abstractions, listing),
		func(reply string) (Analysis, error) {
			return parseAnalysis(reply, len(abstractions))
		})
	if err != nil {
		return nil, fmt.Errorf("analyzing relationships: %w", err)
	}

	e.progress("Ordering chapters...")
	order, err := generateParsed(ctx, e, orderChaptersPrompt(project, abstractions, analysis),
		func(reply string) ([]int, error) {
			return parseOrder(reply, len(abstractions))
		})
	if err != nil {
		return nil, fmt.Errorf("ordering chapters: %w", err)
	}

	plan := chapterPlan(abstractions, order)
	chapters := make([]Chapter, len(order))

	g, gctx := errgroup.WithContext(ctx)
	workers := e.ChapterWorkers
	if workers <= 0 {
		workers = defaultChapterWorkers
	}
	g.SetLimit(workers)

	for i, absIdx := range order {
		i, absIdx := i, absIdx
		g.Go(func() error {
			num := i + 1
			a := abstractions[absIdx]
			e.progress("Writing chapter %d: %s", num, a.Name)
			prompt := writeChapterPrompt(project, a, num, plan, chapterFiles(files, a))
			resp, err := e.generate(gctx, prompt)
			if err != nil {
				return fmt.Errorf("writing chapter %d (%s): %w", num, a.Name, err)
			}
			chapters[i] = Chapter{
				Number:           num,
				AbstractionIndex: absIdx,
				Title:            a.Name,
				Content:          strings.TrimSpace(resp) + "\n",
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Tutorial{
		ProjectName:   project,
		Summary:       strings.TrimSpace(analysis.Summary),
		Abstractions:  abstractions,
		Relationships: analysis.Relationships,
		Order:         order,
		Chapters:      chapters,
	}, nil
}

func (e *Engine) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := e.Caller.Generate(ctx, llm.Request{
		Prompt:    prompt,
		MaxTokens: e.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// generateParsed calls the model and parses the reply, with one repair pass
// re-prompting on malformed output.
func generateParsed[T any](ctx context.Context, e *Engine, prompt string, parse func(string) (T, error)) (T, error) {
	var zero T

	reply, err := e.generate(ctx, prompt)
	if err != nil {
		return zero, err
	}
	v, perr := parse(reply)
	if perr == nil {
		return v, nil
	}

	reply2, err := e.generate(ctx, repairPrompt(perr, reply))
	if err != nil {
		return zero, fmt.Errorf("repair pass failed: %w (original error: %w)", err, perr)
	}
	v, err = parse(reply2)
	if err != nil {
		return zero, fmt.Errorf("response validation failed after repair: %w", err)
	}
	return v, nil
}

// chapterPlan renders the ordered chapter list used as shared context for
// every chapter prompt.
func chapterPlan(abstractions []Abstraction, order []int) string {
	var b strings.Builder
	for i, absIdx := range order {
		fmt.Fprintf(&b, "%d. %s\n", i+1, abstractions[absIdx].Name)
	}
	return b.String()
}

// chapterFiles selects the files an abstraction references. An abstraction
// with no file references gets the whole crawl as context.
func chapterFiles(files []crawler.File, a Abstraction) []crawler.File {
	if len(a.Files) == 0 {
		return files
	}
	subset := make([]crawler.File, 0, len(a.Files))
	for _, idx := range a.Files {
		subset = append(subset, files[idx])
	}
	return subset
}

func (e *Engine) progress(format string, args ...any) {
	if e.Progress != nil {
		e.Progress(format, args...)
	}
}
