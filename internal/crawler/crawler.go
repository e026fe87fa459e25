package crawler

import (
	"unicode/utf8"
)

// File is one source file selected for tutorial generation.
type File struct {
	Path    string
	Content string
}

// Result is the outcome of crawling a repository or directory.
type Result struct {
	ProjectName string
	Files       []File
	// Skipped counts files rejected by pattern, size, or content checks.
	Skipped int
}

// Options controls which files a crawl selects.
type Options struct {
	Include     []string
	Exclude     []string
	MaxFileSize int
}

// usableContent reports whether data looks like text worth sending to a
// model. Binary blobs slip through extension filters (e.g. a Makefile-named
// directory artifact) and would poison prompts.
func usableContent(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if !utf8.Valid(data) {
		return false
	}
	for _, b := range data {
		if b == 0 {
			return false
		}
	}
	return true
}
