// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoParser_FunctionsAndCalls(t *testing.T) {
	src := []byte(`package main

func helper() int {
	return 1
}

func main() {
	helper()
}
`)
	p := NewGoParser()
	res, err := p.Parse("main.go", src, PackageContext{Repo: "r", Package: "p", Branch: "main"})
	require.NoError(t, err)

	var names []string
	for _, n := range res.Nodes {
		names = append(names, n.Name)
	}
	assert.Contains(t, names, "helper")
	assert.Contains(t, names, "main")

	require.NotEmpty(t, res.Edges)
	found := false
	for _, e := range res.Edges {
		if e.EdgeType == "CALLS" && e.SourceFilePath == "main.go" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestGoParser_MethodsOnStructs(t *testing.T) {
	src := []byte(`package main

type Server struct {
	Port int
}

func (s *Server) Start() error {
	return nil
}
`)
	p := NewGoParser()
	res, err := p.Parse("server.go", src, PackageContext{Repo: "r", Package: "p", Branch: "main"})
	require.NoError(t, err)

	var qualified []string
	for _, n := range res.Nodes {
		qualified = append(qualified, n.QualifiedName)
	}
	assert.Contains(t, qualified, "Server.Start")
}

func TestGoParser_AnonymousFunctionNaming(t *testing.T) {
	src := []byte(`package main

func main() {
	f := func() {
		println("hi")
	}
	f()
}
`)
	p := NewGoParser()
	res, err := p.Parse("anon.go", src, PackageContext{Repo: "r", Package: "p", Branch: "main"})
	require.NoError(t, err)

	found := false
	for _, n := range res.Nodes {
		if n.Name == "$anon_1" {
			found = true
		}
	}
	assert.True(t, found, "anonymous function should be named $anon_1")
}

func TestGoParser_Imports(t *testing.T) {
	src := []byte(`package main

import (
	"fmt"
	_ "net/http/pprof"
)

func main() {
	fmt.Println("hi")
}
`)
	p := NewGoParser()
	res, err := p.Parse("imports.go", src, PackageContext{Repo: "r", Package: "p", Branch: "main"})
	require.NoError(t, err)

	var specifiers []string
	styleByModule := map[string]string{}
	for _, ref := range res.ExternalRefs {
		if ref.Name == ref.ModuleSpecifier {
			specifiers = append(specifiers, ref.ModuleSpecifier)
			styleByModule[ref.ModuleSpecifier] = ref.ImportStyle
		}
	}
	assert.Contains(t, specifiers, "fmt")
	assert.Contains(t, specifiers, "net/http/pprof")
	assert.Equal(t, "side-effect", styleByModule["net/http/pprof"])
}

func TestGoParser_DeterministicAcrossRuns(t *testing.T) {
	src := []byte(`package main

func a() { b() }
func b() {}
`)
	p := NewGoParser()
	ctx := PackageContext{Repo: "r", Package: "p", Branch: "main"}

	r1, err := p.Parse("det.go", src, ctx)
	require.NoError(t, err)
	r2, err := p.Parse("det.go", src, ctx)
	require.NoError(t, err)

	require.Len(t, r1.Nodes, len(r2.Nodes))
	for i := range r1.Nodes {
		assert.Equal(t, r1.Nodes[i].EntityID, r2.Nodes[i].EntityID)
	}
}
