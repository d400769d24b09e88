// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// SkippedDirs are never descended into while searching for story files.
var SkippedDirs = []string{".git", "node_modules", "vendor"}

// FindFilesBySuffix recursively searches rootPath for files whose name ends
// with suffix. rootPath may itself be a single file. The result is sorted.
func FindFilesBySuffix(rootPath string, suffix string) ([]string, error) {
	if suffix == "" {
		panic("suffix must not be empty")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != rootPath && isSkipped(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), suffix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// IsSkippedPath reports whether any element of path is a skipped directory.
func IsSkippedPath(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if isSkipped(part) {
			return true
		}
	}
	return false
}

func isSkipped(name string) bool {
	for _, skipped := range SkippedDirs {
		if name == skipped {
			return true
		}
	}
	return false
}
