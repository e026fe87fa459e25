package crawler

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// CrawlDir walks a local directory and returns the files selected by opts.
// The project name is derived from the directory's base name.
func CrawlDir(root string, opts Options) (Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return Result{}, fmt.Errorf("reading directory: %w", err)
	}
	if !info.IsDir() {
		return Result{}, fmt.Errorf("%s is not a directory", root)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return Result{}, fmt.Errorf("resolving directory: %w", err)
	}

	result := Result{ProjectName: filepath.Base(abs)}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !opts.Selected(rel) {
			result.Skipped++
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		if opts.MaxFileSize > 0 && fi.Size() > int64(opts.MaxFileSize) {
			result.Skipped++
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", rel, err)
		}
		if !usableContent(data) {
			result.Skipped++
			return nil
		}
		result.Files = append(result.Files, File{Path: rel, Content: string(data)})
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].Path < result.Files[j].Path
	})
	if len(result.Files) == 0 {
		return Result{}, fmt.Errorf("no files selected in %s (check include/exclude patterns)", root)
	}
	return result, nil
}
