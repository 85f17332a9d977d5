// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package resolver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devac-dev/codegraph/internal/identity"
	"github.com/devac-dev/codegraph/internal/seedstore"
)

func TestIndex_LookupExportedOnly(t *testing.T) {
	ix := NewIndex()
	id := identity.New("r", "pkg/a", identity.KindFunction, "a.go#Foo")
	ix.AddNode("pkg/a", seedstore.Node{EntityID: id.String(), Name: "Foo", Visibility: "public"})
	ix.AddNode("pkg/a", seedstore.Node{EntityID: identity.New("r", "pkg/a", identity.KindFunction, "a.go#bar").String(), Name: "bar", Visibility: "private"})

	got, ok := ix.Lookup("pkg/a", "Foo")
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = ix.Lookup("pkg/a", "bar")
	assert.False(t, ok, "private symbols must not be exported")
}

func TestIndex_MethodBareNameIndexed(t *testing.T) {
	ix := NewIndex()
	id := identity.New("r", "pkg/a", identity.KindMethod, "a.go#Server.Start")
	ix.AddNode("pkg/a", seedstore.Node{EntityID: id.String(), Name: "Server.Start", Visibility: "public"})

	got, ok := ix.Lookup("pkg/a", "Start")
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestIndex_FindPackageByModuleSuffixMatch(t *testing.T) {
	ix := NewIndex()
	ix.AddNode("internal/handlers", seedstore.Node{EntityID: identity.New("r", "internal/handlers", identity.KindFunction, "h.go#Handle").String(), Name: "Handle", Visibility: "public"})

	pkgPath, ambiguous, ok := ix.FindPackageByModule("github.com/org/project/internal/handlers")
	require.True(t, ok)
	assert.False(t, ambiguous)
	assert.Equal(t, "internal/handlers", pkgPath)
}

func TestResolver_ResolvesQualifiedCall(t *testing.T) {
	ix := NewIndex()
	targetID := identity.New("r", "pkg/b", identity.KindFunction, "b.go#Foo")
	ix.AddNode("pkg/b", seedstore.Node{EntityID: targetID.String(), Name: "Foo", Visibility: "public"})

	callerID := identity.New("r", "pkg/a", identity.KindFunction, "a.go#main")
	edges := []seedstore.Edge{
		{
			SourceEntityID: callerID.String(),
			TargetEntityID: identity.Unresolved,
			EdgeType:       seedstore.EdgeCalls,
			SourceFilePath: "a.go",
			PropertiesJSON: fmt.Sprintf(`{"qualifier":%q,"unresolved_name":%q}`, "b", "Foo"),
		},
	}
	refs := []seedstore.ExternalRef{
		{SourceFile: "a.go", Name: "pkg/b", ModuleSpecifier: "pkg/b", ImportStyle: "named", Resolution: seedstore.ResolutionUnresolved},
	}

	res := New(DefaultConfig())
	resolvedEdges, _ := res.Resolve(edges, refs, ix)

	require.Len(t, resolvedEdges, 1)
	assert.Equal(t, targetID.String(), resolvedEdges[0].TargetEntityID)
}

func TestResolver_SamePackageCrossFileResolution(t *testing.T) {
	ix := NewIndex()
	targetID := identity.New("r", "pkg/a", identity.KindFunction, "other.go#Helper")
	ix.AddNode("pkg/a", seedstore.Node{EntityID: targetID.String(), Name: "Helper", Visibility: "public"})

	callerID := identity.New("r", "pkg/a", identity.KindFunction, "main.go#main")
	edges := []seedstore.Edge{
		{
			SourceEntityID: callerID.String(),
			TargetEntityID: identity.Unresolved,
			EdgeType:       seedstore.EdgeCalls,
			SourceFilePath: "main.go",
			PropertiesJSON: fmt.Sprintf(`{"unresolved_name":%q}`, "Helper"),
		},
	}

	res := New(DefaultConfig())
	resolvedEdges, _ := res.Resolve(edges, nil, ix)

	require.Len(t, resolvedEdges, 1)
	assert.Equal(t, targetID.String(), resolvedEdges[0].TargetEntityID)
}

func TestResolver_UnresolvableEdgeLeftUnchanged(t *testing.T) {
	ix := NewIndex()
	edges := []seedstore.Edge{
		{
			SourceEntityID: identity.New("r", "pkg/a", identity.KindFunction, "a.go#main").String(),
			TargetEntityID: identity.Unresolved,
			PropertiesJSON: fmt.Sprintf(`{"unresolved_name":%q}`, "NoSuchFunc"),
		},
	}

	res := New(DefaultConfig())
	resolvedEdges, _ := res.Resolve(edges, nil, ix)
	require.Len(t, resolvedEdges, 1)
	assert.Equal(t, identity.Unresolved, resolvedEdges[0].TargetEntityID)
}

func TestResolver_RefResolutionNeverDeletesRow(t *testing.T) {
	ix := NewIndex()
	res := New(DefaultConfig())

	refs := []seedstore.ExternalRef{
		{SourceFile: "a.ts", Name: "doesNotExist", ModuleSpecifier: "some-module", Resolution: seedstore.ResolutionUnresolved},
	}
	_, resolvedRefs := res.Resolve(nil, refs, ix)

	require.Len(t, resolvedRefs, 1)
	assert.Equal(t, seedstore.ResolutionUnresolved, resolvedRefs[0].Resolution)
}

func TestResolver_ParallelDispatchMatchesSequential(t *testing.T) {
	ix := NewIndex()
	targetID := identity.New("r", "pkg/b", identity.KindFunction, "b.go#Foo")
	ix.AddNode("pkg/b", seedstore.Node{EntityID: targetID.String(), Name: "Foo", Visibility: "public"})

	var edges []seedstore.Edge
	refs := []seedstore.ExternalRef{
		{SourceFile: "a.go", Name: "pkg/b", ModuleSpecifier: "pkg/b", Resolution: seedstore.ResolutionUnresolved},
	}
	for i := 0; i < 1500; i++ {
		edges = append(edges, seedstore.Edge{
			SourceEntityID: identity.New("r", "pkg/a", identity.KindFunction, "a.go#main").String(),
			TargetEntityID: identity.Unresolved,
			SourceFilePath: "a.go",
			PropertiesJSON: fmt.Sprintf(`{"qualifier":%q,"unresolved_name":%q}`, "b", "Foo"),
		})
	}

	cfg := DefaultConfig()
	cfg.ParallelThreshold = 1000
	res := New(cfg)
	resolved, _ := res.Resolve(edges, refs, ix)

	require.Len(t, resolved, 1500)
	for _, e := range resolved {
		assert.Equal(t, targetID.String(), e.TargetEntityID)
	}
}
