// Tutorgen turns a codebase into a beginner-friendly tutorial using
// LLM providers.
//
// It crawls a GitHub repository or local directory, asks an LLM to
// identify the core abstractions and how they relate, and writes one
// markdown chapter per abstraction plus an index with a relationship
// diagram. LLM responses are cached on disk so repeat runs are cheap.
//
// Usage:
//
//	tutorgen generate --repo owner/repo   # tutorial for a GitHub repo
//	tutorgen generate --dir ./myproject   # tutorial for a local directory
//	tutorgen cache show                   # cache statistics
//	tutorgen cache clear                  # drop all cached responses
//	tutorgen config show                  # effective configuration
//
// See https://github.com/tutorgen-ai/tutorgen for full documentation.
package main
