// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAll_AnalyzesEveryConfig(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dirA, "a.go"), []byte("package main\n\nfunc A() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dirB, "b.go"), []byte("package main\n\nfunc B() {}\n"), 0o644))

	stores := map[string]*fakeStore{dirA: newFakeStore(), dirB: newFakeStore()}
	newStore := func(cfg Config) Store { return stores[cfg.PackageRoot] }

	configs := []Config{
		{Repo: "example/repo", Package: "a", PackageRoot: dirA, Branch: "main"},
		{Repo: "example/repo", Package: "b", PackageRoot: dirB, Branch: "main"},
	}

	reports, err := RunAll(context.Background(), configs, newTestRouter(), newStore, nil)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, 1, reports[0].FilesAnalyzed)
	assert.Equal(t, 1, reports[1].FilesAnalyzed)

	assert.EqualValues(t, 1, stores[dirA].gens["main"].Meta.Generation)
	assert.EqualValues(t, 1, stores[dirB].gens["main"].Meta.Generation)
}

func TestRunAll_StopsOnFirstError(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dirA, "a.go"), []byte("package main\n\nfunc A() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dirB, "b.go"), []byte("package main\n\nfunc B() {}\n"), 0o644))

	configs := []Config{
		{Repo: "example/repo", Package: "a", PackageRoot: dirA, Branch: "main"},
		{Repo: "example/repo", Package: "b", PackageRoot: dirB, Branch: "main"},
	}
	newStore := func(cfg Config) Store {
		if cfg.PackageRoot == dirA {
			return &failingReadStore{fakeStore: newFakeStore()}
		}
		return newFakeStore()
	}

	reports, err := RunAll(context.Background(), configs, newTestRouter(), newStore, nil)
	require.Error(t, err)
	assert.Empty(t, reports)
}

func TestRunAll_RespectsContextCancellation(t *testing.T) {
	dirA := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dirA, "a.go"), []byte("package main\n\nfunc A() {}\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	configs := []Config{
		{Repo: "example/repo", Package: "a", PackageRoot: dirA, Branch: "main"},
	}
	newStore := func(cfg Config) Store { return newFakeStore() }

	reports, err := RunAll(ctx, configs, newTestRouter(), newStore, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reports)
}
