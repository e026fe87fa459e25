// Package crawler collects the source files a tutorial is generated from,
// either from a GitHub repository over the REST API or from a local
// directory walk. Files pass through include/exclude glob patterns and a
// size cutoff before being accepted, and binary content is dropped.
package crawler
