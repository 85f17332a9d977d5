// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package watch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devac-dev/codegraph/internal/seedstore"
)

func TestDetectCrossRepoNeeds_EmitsOnSiblingMatch(t *testing.T) {
	workspace := t.TempDir()
	pkgRoot := filepath.Join(workspace, "repo-a", "pkg")
	siblingRoot := filepath.Join(workspace, "repo-b")
	require.NoError(t, os.MkdirAll(pkgRoot, 0o755))
	require.NoError(t, os.MkdirAll(siblingRoot, 0o755))

	store := seedstore.New(seedstore.Config{PackageRoot: pkgRoot})
	gen := seedstore.Generation{
		ExternalRefs: []seedstore.ExternalRef{
			{SourceFile: "x.go", Name: "Widget", ModuleSpecifier: "repo-b/pkg/widget", Resolution: seedstore.ResolutionUnresolved, Branch: "main"},
		},
		Meta: seedstore.Meta{Generation: 1, Branch: "main"},
	}
	require.NoError(t, store.Write("main", gen))

	l := newLoop(pkgRoot, Config{}, nil, nil)
	l.detectCrossRepoNeeds("main")

	select {
	case ev := <-l.CrossRepoEvents():
		assert.Equal(t, "repo-b/pkg/widget", ev.ModuleSpecifier)
		assert.Equal(t, siblingRoot, ev.SiblingRepoPath)
	default:
		t.Fatal("expected a CrossRepoNeedEvent to be emitted")
	}
}

func TestDetectCrossRepoNeeds_NoSiblingNoEvent(t *testing.T) {
	workspace := t.TempDir()
	pkgRoot := filepath.Join(workspace, "repo-a", "pkg")
	require.NoError(t, os.MkdirAll(pkgRoot, 0o755))

	store := seedstore.New(seedstore.Config{PackageRoot: pkgRoot})
	gen := seedstore.Generation{
		ExternalRefs: []seedstore.ExternalRef{
			{SourceFile: "x.go", Name: "fmt", ModuleSpecifier: "fmt", Resolution: seedstore.ResolutionUnresolved, Branch: "main"},
		},
		Meta: seedstore.Meta{Generation: 1, Branch: "main"},
	}
	require.NoError(t, store.Write("main", gen))

	l := newLoop(pkgRoot, Config{}, nil, nil)
	l.detectCrossRepoNeeds("main")

	select {
	case ev := <-l.CrossRepoEvents():
		t.Fatalf("unexpected event: %+v", ev)
	default:
	}
}
