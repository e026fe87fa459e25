// Package tutorial turns a crawled codebase into an ordered set of markdown
// chapters via a four-stage LLM pipeline: identify the core abstractions,
// analyze how they relate, decide a teaching order, and write one chapter
// per abstraction. Structured stages expect YAML replies and get one repair
// re-prompt when a reply fails to parse.
package tutorial
