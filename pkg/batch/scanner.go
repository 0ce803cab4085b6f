// Package batch decodes directories of manifest files and writes one
// document per manifest into a mirrored output tree.
package batch

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Scan walks inputDir and returns the slash-separated relative paths of
// regular files whose names end in one of extensions, sorted.
// Matching is case-insensitive. No extensions matches every file.
func Scan(inputDir string, extensions []string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || !hasExtension(d.Name(), extensions) {
			return nil
		}

		rel, err := filepath.Rel(inputDir, path)
		if err != nil {
			return fmt.Errorf("get relative path: %w", err)
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", inputDir, err)
	}

	sort.Strings(paths)
	return paths, nil
}

func hasExtension(name string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	name = strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(name, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// trimExtension removes the first matching extension from rel.
func trimExtension(rel string, extensions []string) string {
	lower := strings.ToLower(rel)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return rel[:len(rel)-len(ext)]
		}
	}
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}
