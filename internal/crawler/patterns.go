package crawler

import (
	"path/filepath"
	"strings"
)

// Selected applies the include/exclude pattern sets to a slash-separated
// relative path. Exclusions win; an empty include set selects everything.
func (o Options) Selected(path string) bool {
	for _, pattern := range o.Exclude {
		if matchPattern(pattern, path) {
			return false
		}
	}
	if len(o.Include) == 0 {
		return true
	}
	for _, pattern := range o.Include {
		if matchPattern(pattern, path) {
			return true
		}
	}
	return false
}

// matchPattern matches a glob against the full path, the basename, and, for
// directory patterns like "tests/*", anything under a matching directory at
// any depth.
func matchPattern(pattern, path string) bool {
	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}
	if matched, err := filepath.Match(pattern, filepath.Base(path)); err == nil && matched {
		return true
	}
	// Substring patterns like "*test*" should see the whole path, not just
	// the basename; filepath.Match stops * at separators.
	if strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*") && !strings.ContainsAny(pattern, "/") {
		inner := strings.Trim(pattern, "*")
		if inner != "" && !strings.ContainsAny(inner, "*?[") && strings.Contains(path, inner) {
			return true
		}
	}
	if strings.HasSuffix(pattern, "/*") {
		dir := strings.TrimSuffix(pattern, "/*")
		if path == dir || strings.HasPrefix(path, dir+"/") {
			return true
		}
		for _, seg := range strings.Split(filepath.ToSlash(filepath.Dir(path)), "/") {
			if seg == dir {
				return true
			}
		}
	}
	return false
}
