// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package watch

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/devac-dev/codegraph/internal/analyzer"
)

func shouldExcludePath(path string, excludeGlobs []string) bool {
	normalized := filepath.ToSlash(path)
	for _, pattern := range excludeGlobs {
		if analyzer.MatchesGlob(normalized, pattern) {
			return true
		}
	}
	return false
}

// scan walks root once, returning every eligible file's stamp, applying
// the same exclude-glob/size eligibility the teacher's FilterDelta checks
// (pkg/ingestion/delta.go), adapted here to a live directory walk rather
// than a git-diff file list.
func scan(root string, excludeGlobs []string, maxFileSize int64) (map[string]fileStamp, error) {
	out := make(map[string]fileStamp)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if relPath != "." && shouldExcludePath(relPath, excludeGlobs) {
				return filepath.SkipDir
			}
			return nil
		}
		if shouldExcludePath(relPath, excludeGlobs) {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		if maxFileSize > 0 && info.Size() > maxFileSize {
			return nil
		}
		out[relPath] = fileStamp{size: info.Size(), modTime: info.ModTime().UnixNano()}
		return nil
	})
	return out, err
}

// diff compares two snapshots, returning change events sorted by path for
// deterministic processing order.
func diff(prev, current map[string]fileStamp) []ChangeEvent {
	var events []ChangeEvent
	for path, stamp := range current {
		old, existed := prev[path]
		if !existed {
			events = append(events, ChangeEvent{Path: path, Change: ChangeAdded})
			continue
		}
		if old != stamp {
			events = append(events, ChangeEvent{Path: path, Change: ChangeModified})
		}
	}
	for path := range prev {
		if _, ok := current[path]; !ok {
			events = append(events, ChangeEvent{Path: path, Change: ChangeRemoved})
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })
	return events
}
