package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrToolNotFound indicates a required external converter is not on
// PATH. Callers can detect it with errors.As and skip export instead
// of failing the whole run.
type ErrToolNotFound struct {
	Tool string
}

func (e *ErrToolNotFound) Error() string {
	return fmt.Sprintf("%s not found on PATH", e.Tool)
}

// mermaidHeader is injected into the HTML <head> so relationship
// diagrams render client-side.
const mermaidHeader = `<script src="https://cdn.jsdelivr.net/npm/mermaid/dist/mermaid.min.js"></script>
<script>
	document.addEventListener('DOMContentLoaded', function() {
		mermaid.initialize({
			startOnLoad: true,
			theme: 'default',
			securityLevel: 'loose',
			flowchart: { useMaxWidth: false, htmlLabels: true }
		});
	});
</script>
<style>
	body { max-width: 900px; margin: 0 auto; padding: 2em; }
	.mermaid { text-align: center; margin: 20px 0; }
</style>
`

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// HaveTool reports whether the named converter binary is installed.
func HaveTool(tool string) bool {
	_, err := lookPath(tool)
	return err == nil
}

func pandocHTMLArgs(inPath, outPath string) []string {
	return []string{
		inPath,
		"-o", outPath,
		"--standalone",
		"--highlight-style=tango",
		"--toc",
		"--toc-depth=3",
		"--number-sections",
		"-f", "markdown+yaml_metadata_block+raw_html+fenced_divs",
		"--embed-resources",
		"--mathjax",
		"--css", "https://cdn.jsdelivr.net/npm/github-markdown-css/github-markdown.min.css",
		"--include-in-header", "-",
	}
}

func pandocPDFArgs(inPath, outPath string) []string {
	return []string{
		inPath,
		"-o", outPath,
		"--pdf-engine=xelatex",
		"-V", "geometry:margin=1in",
		"--highlight-style=tango",
		"--standalone",
		"--toc",
		"--toc-depth=3",
		"--number-sections",
		"-V", "colorlinks=true",
		"-V", "linkcolor=blue",
		"-V", "urlcolor=blue",
		"-V", "toccolor=blue",
		"-f", "markdown+yaml_metadata_block+raw_html+fenced_divs",
		"--embed-resources",
	}
}

func wkhtmltopdfArgs(inPath, outPath string) []string {
	return []string{
		"--enable-local-file-access",
		"--javascript-delay", "1000",
		"--no-stop-slow-scripts",
		"--margin-top", "20",
		"--margin-right", "20",
		"--margin-bottom", "20",
		"--margin-left", "20",
		"--page-size", "A4",
		"--encoding", "UTF-8",
		"--footer-center", "[page]/[topage]",
		inPath,
		outPath,
	}
}

// MarkdownToHTML renders a combined markdown document to a standalone
// HTML page via pandoc, with the mermaid runtime embedded in the
// header.
func MarkdownToHTML(ctx context.Context, markdown string) (string, error) {
	if !HaveTool("pandoc") {
		return "", &ErrToolNotFound{Tool: "pandoc"}
	}

	tmpDir, err := os.MkdirTemp("", "tutorgen-export-")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	mdPath := filepath.Join(tmpDir, "tutorial.md")
	htmlPath := filepath.Join(tmpDir, "tutorial.html")
	if err := os.WriteFile(mdPath, []byte(markdown), 0o644); err != nil {
		return "", fmt.Errorf("write temp markdown: %w", err)
	}

	cmd := exec.CommandContext(ctx, "pandoc", pandocHTMLArgs(mdPath, htmlPath)...)
	cmd.Stdin = strings.NewReader(mermaidHeader)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pandoc: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	html, err := os.ReadFile(htmlPath)
	if err != nil {
		return "", fmt.Errorf("read pandoc output: %w", err)
	}
	return string(html), nil
}

// HTMLToPDF renders an HTML page to a PDF at outputPath using
// wkhtmltopdf. The javascript delay gives mermaid time to draw before
// the page is captured.
func HTMLToPDF(ctx context.Context, html, outputPath string) error {
	if !HaveTool("wkhtmltopdf") {
		return &ErrToolNotFound{Tool: "wkhtmltopdf"}
	}

	tmp, err := os.CreateTemp("", "tutorgen-export-*.html")
	if err != nil {
		return fmt.Errorf("create temp html: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.WriteString(html); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp html: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write temp html: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create pdf dir: %w", err)
	}

	cmd := exec.CommandContext(ctx, "wkhtmltopdf", wkhtmltopdfArgs(tmpPath, outputPath)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("wkhtmltopdf: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// MarkdownToPDF converts a combined markdown document to PDF. When a
// LaTeX toolchain is installed it renders directly through pandoc with
// the xelatex engine; otherwise it chains the HTML conversion into
// wkhtmltopdf.
func MarkdownToPDF(ctx context.Context, markdown, outputPath string) error {
	if HaveTool("pandoc") && HaveTool("xelatex") {
		if err := markdownToPDFDirect(ctx, markdown, outputPath); err == nil {
			return nil
		}
		// xelatex runs can fail on exotic markdown; fall through to
		// the wkhtmltopdf path.
	}
	html, err := MarkdownToHTML(ctx, markdown)
	if err != nil {
		return err
	}
	return HTMLToPDF(ctx, html, outputPath)
}

func markdownToPDFDirect(ctx context.Context, markdown, outputPath string) error {
	tmp, err := os.CreateTemp("", "tutorgen-export-*.md")
	if err != nil {
		return fmt.Errorf("create temp markdown: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if _, err := tmp.WriteString(markdown); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp markdown: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write temp markdown: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create pdf dir: %w", err)
	}

	cmd := exec.CommandContext(ctx, "pandoc", pandocPDFArgs(tmpPath, outputPath)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("pandoc pdf: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
