package tutorial

import (
	"fmt"
	"strings"

	"github.com/tutorgen-ai/tutorgen/internal/crawler"
)

// buildFileListing renders crawled files into an indexed listing the prompts
// reference files by.
func buildFileListing(files []crawler.File) string {
	var b strings.Builder
	for i, f := range files {
		fmt.Fprintf(&b, "--- File %d: %s ---\n", i, f.Path)
		b.WriteString(f.Content)
		if !strings.HasSuffix(f.Content, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func identifyAbstractionsPrompt(project, listing string, fileCount int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are analyzing the codebase of a project called %q to write a beginner-friendly tutorial.\n\n", project)
	b.WriteString("Identify the 5-10 core abstractions a newcomer must understand: the key concepts, components, or mechanisms the codebase is built around.\n\n")
	fmt.Fprintf(&b, "For each abstraction give a short name, a one-paragraph beginner-friendly description with a simple analogy, and the indices of the files (0 to %d) most relevant to it.\n\n", fileCount-1)
	b.WriteString(`Respond with ONLY a YAML list. No markdown fences, no commentary. Each item must have this exact structure:

- name: Short Name
  description: |
    What this abstraction does and why it exists, explained simply.
  file_indices: [0, 3]

`)
	b.WriteString("Codebase files:\n\n")
	b.WriteString(listing)

	return b.String()
}

func analyzeRelationshipsPrompt(project string, abstractions []Abstraction, listing string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are analyzing the project %q for a tutorial.\n\n", project)
	b.WriteString("These abstractions were identified:\n\n")
	for i, a := range abstractions {
		fmt.Fprintf(&b, "%d. %s: %s\n", i, a.Name, firstLine(a.Description))
	}
	b.WriteString(`
Write a short, welcoming project summary (a few sentences, beginner level), and list how the abstractions interact: which uses, creates, or configures which. Reference abstractions by index. Every abstraction should appear in at least one relationship, and labels must be a few words ("calls", "persists to", "configures").

Respond with ONLY YAML in this exact structure:

summary: |
  What the project does, in plain language.
relationships:
  - from_abstraction: 0
    to_abstraction: 1
    label: "calls"

`)
	b.WriteString("Codebase files for reference:\n\n")
	b.WriteString(listing)

	return b.String()
}

func orderChaptersPrompt(project string, abstractions []Abstraction, analysis Analysis) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are planning a tutorial for the project %q.\n\n", project)
	fmt.Fprintf(&b, "Project summary: %s\n\n", strings.TrimSpace(analysis.Summary))
	b.WriteString("Abstractions:\n\n")
	for i, a := range abstractions {
		fmt.Fprintf(&b, "%d. %s\n", i, a.Name)
	}
	b.WriteString("\nRelationships:\n\n")
	for _, r := range analysis.Relationships {
		fmt.Fprintf(&b, "- %d %s %d\n", r.From, r.Label, r.To)
	}
	fmt.Fprintf(&b, `
Decide the best order to teach these abstractions, starting from user-facing or foundational concepts and building toward internals. Use every index from 0 to %d exactly once.

Respond with ONLY a YAML list of indices, for example:

- 2
- 0
- 1
`, len(abstractions)-1)

	return b.String()
}

func writeChapterPrompt(project string, a Abstraction, chapterNum int, plan string, files []crawler.File) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write chapter %d of a beginner-friendly tutorial for the project %q.\n\n", chapterNum, project)
	fmt.Fprintf(&b, "This chapter covers the abstraction %q:\n%s\n\n", a.Name, strings.TrimSpace(a.Description))
	fmt.Fprintf(&b, "Full tutorial plan, so you can reference other chapters by their number:\n%s\n", plan)
	b.WriteString(`
Requirements:
- Markdown only, starting with a level-1 heading containing the chapter number and abstraction name (e.g. "# Chapter 2: Response Cache").
- Explain the motivation first, then walk through how it works using short code snippets (under 10 lines each) from the files below.
- Use simple language and at least one analogy; a mermaid diagram is welcome where it helps.
- End with a one-paragraph summary and a transition to the next chapter.
- Do not wrap the whole chapter in a code fence.

Relevant files:

`)
	b.WriteString(buildFileListing(files))

	return b.String()
}

// repairPrompt asks the model to fix a reply that failed to parse, in the
// same turn style the original request used.
func repairPrompt(parseErr error, reply string) string {
	return fmt.Sprintf(
		"Your previous response was not valid YAML for the requested structure. The error was: %s\n\nPlease fix it and respond with ONLY the corrected YAML.\n\nYour previous response was:\n%s",
		parseErr.Error(), reply,
	)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
