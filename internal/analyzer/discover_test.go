// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesGlob(t *testing.T) {
	cases := []struct {
		path, pattern string
		want          bool
	}{
		{"vendor/foo.go", "vendor/**", true},
		{"a/vendor/foo.go", "vendor/**", true},
		{"main.go", "*.go", true},
		{"a/b/main.go", "*.go", true},
		{"node_modules/x/y.js", "**/node_modules/**", true},
		{"src/file.ts", "*.go", false},
		{"a/test_file.go", "[at]*.go", true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, matchesGlob(c.path, c.pattern), "path=%s pattern=%s", c.path, c.pattern)
	}
}

func TestDiscover_ExcludesAndSizeLimit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "vendor"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vendor", "dep.go"), []byte("package vendor"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.go"), make([]byte, 1000), 0o644))

	files, skipped, err := discover(dir, []string{"vendor/**"}, 100)
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.Contains(t, paths, "main.go")
	assert.NotContains(t, paths, "vendor/dep.go")
	assert.NotContains(t, paths, "big.go")
	assert.Greater(t, skipped["excluded_dir"]+skipped["too_large"], 0)
}

func TestDiscover_SortedDeterministic(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "z.go"), []byte("package main"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package main"), 0o644))

	files, _, err := discover(dir, nil, 0)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.go", files[0].Path)
	assert.Equal(t, "z.go", files[1].Path)
}
