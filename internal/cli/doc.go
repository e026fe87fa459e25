// Package cli implements the tutorgen command line interface using
// cobra. Exit codes are deterministic: 0 success, 2 usage error, 3
// authentication error, 4 runtime error.
package cli
