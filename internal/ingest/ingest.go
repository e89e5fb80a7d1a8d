// Package ingest discovers extractable documents on the local filesystem,
// either by one-shot directory scans or by watching directories for new
// files.
package ingest

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/seremi5/expense-management/constants"
)

// ScanStats summarizes a directory scan.
type ScanStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
}

// AllowedExt checks if a file extension is in the allowed set.
func AllowedExt(ext string) bool {
	_, ok := constants.AllowedExtensions[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// ScanDirectory walks root and returns the paths of all extractable files,
// skipping hidden files and directories.
func ScanDirectory(root string) ([]string, ScanStats, error) {
	var (
		paths []string
		stats ScanStats
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != root && IsHidden(path) {
				return fs.SkipDir
			}
			return nil
		}
		stats.Scanned++
		if IsHidden(path) || !AllowedExt(filepath.Ext(path)) {
			stats.Skipped++
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	return paths, stats, nil
}
