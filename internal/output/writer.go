package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/tutorgen-ai/tutorgen/internal/tutorial"
)

// Slug converts an abstraction or chapter title into a filename-safe
// fragment: lowercased, with runs of non-alphanumerics collapsed to a
// single underscore.
func Slug(name string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}

// ChapterFilename returns the on-disk name for a chapter, e.g.
// "01_response_cache.md".
func ChapterFilename(number int, title string) string {
	return fmt.Sprintf("%02d_%s.md", number, Slug(title))
}

// BuildIndex renders the tutorial landing page: the project summary, a
// mermaid diagram of how the abstractions relate, and links to every
// chapter in reading order.
func BuildIndex(t *tutorial.Tutorial) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Tutorial: %s\n\n", t.ProjectName)
	fmt.Fprintf(&b, "%s\n\n", strings.TrimSpace(t.Summary))

	if len(t.Relationships) > 0 {
		b.WriteString("```mermaid\nflowchart TD\n")
		for i, a := range t.Abstractions {
			fmt.Fprintf(&b, "    A%d[\"%s\"]\n", i, mermaidLabel(a.Name))
		}
		for _, rel := range t.Relationships {
			fmt.Fprintf(&b, "    A%d -- \"%s\" --> A%d\n", rel.From, mermaidLabel(rel.Label), rel.To)
		}
		b.WriteString("```\n\n")
	}

	b.WriteString("## Chapters\n\n")
	for _, ch := range t.Chapters {
		fmt.Fprintf(&b, "%d. [%s](%s)\n", ch.Number, ch.Title, ChapterFilename(ch.Number, ch.Title))
	}
	b.WriteString("\n")

	return b.String()
}

func mermaidLabel(s string) string {
	s = strings.ReplaceAll(s, `"`, "'")
	return strings.ReplaceAll(s, "\n", " ")
}

// WriteTutorial writes index.md and one numbered markdown file per
// chapter under baseDir/<project name>. It returns the directory the
// files were written to.
func WriteTutorial(t *tutorial.Tutorial, baseDir string) (string, error) {
	dir := filepath.Join(baseDir, t.ProjectName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	if err := writeFile(filepath.Join(dir, "index.md"), BuildIndex(t)); err != nil {
		return "", err
	}
	for _, ch := range t.Chapters {
		path := filepath.Join(dir, ChapterFilename(ch.Number, ch.Title))
		if err := writeFile(path, chapterDocument(ch)); err != nil {
			return "", err
		}
	}
	return dir, nil
}

func chapterDocument(ch tutorial.Chapter) string {
	content := strings.TrimSpace(ch.Content)
	heading := fmt.Sprintf("# Chapter %d: %s", ch.Number, ch.Title)
	if !strings.HasPrefix(content, "# ") {
		content = heading + "\n\n" + content
	}
	return content + "\n"
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Combine merges the index and all chapters into one markdown
// document, separated by horizontal rules, suitable for single-file
// export.
func Combine(t *tutorial.Tutorial) string {
	parts := make([]string, 0, len(t.Chapters)+1)
	parts = append(parts, strings.TrimSpace(BuildIndex(t)))
	for _, ch := range t.Chapters {
		parts = append(parts, strings.TrimSpace(chapterDocument(ch)))
	}
	return strings.Join(parts, "\n\n---\n\n") + "\n"
}
