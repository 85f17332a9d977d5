// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package query

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devac-dev/codegraph/internal/contract"
	"github.com/devac-dev/codegraph/internal/seedstore"
)

func seedFixture(t *testing.T, root, branch string) {
	t.Helper()
	store := seedstore.New(seedstore.Config{PackageRoot: root})
	gen := seedstore.Generation{
		Nodes: []seedstore.Node{
			{EntityID: "e1", Name: "Handler", QualifiedName: "Handler", Kind: "function", SourceFile: "a.go", Line: 1, Branch: branch},
			{EntityID: "e2", Name: "helper", QualifiedName: "helper", Kind: "function", SourceFile: "a.go", Line: 5, Branch: branch},
		},
		Edges: []seedstore.Edge{
			{SourceEntityID: "e1", TargetEntityID: "e2", EdgeType: seedstore.EdgeCalls, SourceFilePath: "a.go", Branch: branch},
		},
		Meta: seedstore.Meta{Generation: 1, Branch: branch, PackagePath: "pkg"},
	}
	require.NoError(t, store.Write(branch, gen))
}

func TestEngine_Query_BuildsViewsAndExecutes(t *testing.T) {
	dir := t.TempDir()
	seedFixture(t, dir, "main")

	e := NewEngine(EngineConfig{})
	result, err := e.Query(context.Background(), []PackageRef{{Package: "pkg", PackageRoot: dir}}, "main",
		"SELECT name FROM nodes WHERE kind = 'function' ORDER BY name")
	require.NoError(t, err)
	assert.Equal(t, ReadinessReady, result.Readiness)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "Handler", result.Rows[0][0])
}

func TestEngine_Query_NoPackages(t *testing.T) {
	e := NewEngine(EngineConfig{})
	result, err := e.Query(context.Background(), nil, "main", "SELECT 1")
	require.NoError(t, err)
	assert.Equal(t, ReadinessFirst, result.Readiness)
	assert.Contains(t, result.Warnings, "no packages provided")
}

func TestEngine_Query_FirstRunMissingArtifact(t *testing.T) {
	dir := t.TempDir()
	e := NewEngine(EngineConfig{})
	result, err := e.Query(context.Background(), []PackageRef{{Package: "pkg", PackageRoot: dir}}, "main",
		"SELECT * FROM nodes")
	require.NoError(t, err)
	assert.Equal(t, ReadinessFirst, result.Readiness)
	assert.Equal(t, 0, result.RowCount)
}

func TestEngine_Query_CallGraphBundle(t *testing.T) {
	dir := t.TempDir()
	seedFixture(t, dir, "main")

	sql, err := CallGraphArgs{RootEntityID: "e1", MaxDepth: 2}.Build()
	require.NoError(t, err)

	e := NewEngine(EngineConfig{})
	result, err := e.Query(context.Background(), []PackageRef{{Package: "pkg", PackageRoot: dir}}, "main", sql)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.RowCount, 2)
}

func TestSymbolSearchArgs_Build_RequiresPattern(t *testing.T) {
	_, err := SymbolSearchArgs{}.Build()
	assert.Error(t, err)
}

func TestEngine_Query_RejectsOversizedSQL(t *testing.T) {
	t.Setenv("DEVAC_QUERY_SOFT_LIMIT_BYTES", "16")

	e := NewEngine(EngineConfig{})
	oversized := "SELECT 1 " + strings.Repeat("-- padding ", 8)
	_, err := e.Query(context.Background(), nil, "main", oversized)
	require.Error(t, err)
	assert.Contains(t, err.Error(), contract.ValidateQuerySQL(oversized).Message)
}

func TestEscapeLiteral_DoublesQuotes(t *testing.T) {
	assert.Equal(t, "O''Brien", escapeLiteral("O'Brien"))
}
