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

	"github.com/devac-dev/codegraph/internal/parser"
	"github.com/devac-dev/codegraph/internal/router"
	"github.com/devac-dev/codegraph/internal/seedstore"
)

// fakeStore is an in-memory Store substitute so analyzer tests never touch
// the filesystem-backed parquet writer in internal/seedstore.
type fakeStore struct {
	gens map[string]seedstore.Generation
}

func newFakeStore() *fakeStore {
	return &fakeStore{gens: make(map[string]seedstore.Generation)}
}

func (s *fakeStore) Read(branch string) (seedstore.Generation, error) {
	return s.gens[branch], nil
}

func (s *fakeStore) Write(branch string, gen seedstore.Generation) error {
	s.gens[branch] = gen
	return nil
}

func newTestRouter() *router.Router {
	rtr := router.New()
	rtr.RegisterParser(parser.NewGoParser())
	return rtr
}

func TestAnalyzer_Run_FirstGeneration(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte(`package main

func helper() {}

func main() {
	helper()
}
`), 0o644))

	cfg := Config{
		Repo:        "example/repo",
		Package:     "cmd/main",
		PackageRoot: dir,
		Branch:      "main",
	}
	store := newFakeStore()
	a := New(cfg, newTestRouter(), store, nil)

	report, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.FilesAnalyzed)
	assert.GreaterOrEqual(t, report.NodesCreated, 2)
	assert.GreaterOrEqual(t, report.EdgesCreated, 1)

	gen := store.gens["main"]
	assert.EqualValues(t, 1, gen.Meta.Generation)
	for _, n := range gen.Nodes {
		assert.False(t, n.IsDeleted)
	}
}

func TestAnalyzer_Run_TombstonesRemovedFile(t *testing.T) {
	dir := t.TempDir()
	fileA := filepath.Join(dir, "a.go")
	fileB := filepath.Join(dir, "b.go")
	require.NoError(t, os.WriteFile(fileA, []byte("package main\n\nfunc A() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(fileB, []byte("package main\n\nfunc B() {}\n"), 0o644))

	cfg := Config{Repo: "example/repo", Package: "pkg", PackageRoot: dir, Branch: "main"}
	store := newFakeStore()
	a := New(cfg, newTestRouter(), store, nil)

	_, err := a.Run(context.Background())
	require.NoError(t, err)
	firstGen := store.gens["main"]
	require.NotEmpty(t, firstGen.Nodes)

	require.NoError(t, os.Remove(fileB))

	_, err = a.Run(context.Background())
	require.NoError(t, err)
	secondGen := store.gens["main"]
	assert.EqualValues(t, 2, secondGen.Meta.Generation)

	var sawTombstone, sawLive bool
	for _, n := range secondGen.Nodes {
		if n.SourceFile == "b.go" {
			assert.True(t, n.IsDeleted)
			sawTombstone = true
		}
		if n.SourceFile == "a.go" {
			assert.False(t, n.IsDeleted)
			sawLive = true
		}
	}
	assert.True(t, sawTombstone, "expected a tombstoned node for the removed file")
	assert.True(t, sawLive, "expected a live node for the surviving file")
}

func TestAnalyzer_Run_IfChangedSkipsWhenFingerprintMatches(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))

	cfg := Config{Repo: "example/repo", Package: "pkg", PackageRoot: dir, Branch: "main"}
	store := newFakeStore()
	a := New(cfg, newTestRouter(), store, nil)

	first, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, first.SkippedUnchanged)
	firstFingerprint := store.gens["main"].Meta.SourceFingerprint
	require.NotEmpty(t, firstFingerprint)

	cfg.IfChanged = true
	a = New(cfg, newTestRouter(), store, nil)
	second, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, second.SkippedUnchanged)
	assert.EqualValues(t, 1, store.gens["main"].Meta.Generation, "no new generation should be written on a skip")
	assert.Equal(t, firstFingerprint, store.gens["main"].Meta.SourceFingerprint)
}

func TestAnalyzer_Run_ForceOverridesIfChanged(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))

	cfg := Config{Repo: "example/repo", Package: "pkg", PackageRoot: dir, Branch: "main", IfChanged: true}
	store := newFakeStore()
	a := New(cfg, newTestRouter(), store, nil)
	_, err := a.Run(context.Background())
	require.NoError(t, err)

	cfg.Force = true
	a = New(cfg, newTestRouter(), store, nil)
	second, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, second.SkippedUnchanged)
	assert.EqualValues(t, 2, store.gens["main"].Meta.Generation, "--force must re-analyze even when the fingerprint is unchanged")
}

// failingReadStore errors on Read to exercise Run's "never write until
// every earlier phase has succeeded" property.
type failingReadStore struct {
	*fakeStore
}

func (s *failingReadStore) Read(branch string) (seedstore.Generation, error) {
	return seedstore.Generation{}, assert.AnError
}

func TestAnalyzer_Run_PreservesPriorGenerationOnReadFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))

	cfg := Config{Repo: "example/repo", Package: "pkg", PackageRoot: dir, Branch: "main"}
	inner := newFakeStore()
	seed := seedstore.Generation{Meta: seedstore.Meta{Generation: 5}}
	inner.gens["main"] = seed
	store := &failingReadStore{fakeStore: inner}

	a := New(cfg, newTestRouter(), store, nil)
	_, err := a.Run(context.Background())
	require.Error(t, err)

	assert.EqualValues(t, 5, inner.gens["main"].Meta.Generation, "prior generation must be untouched on a pre-emit failure")
}
