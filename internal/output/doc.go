// Package output renders a generated tutorial to markdown files on
// disk: an index page with a mermaid abstraction diagram plus one
// numbered file per chapter, and a combined single-document form used
// for HTML and PDF export.
package output
