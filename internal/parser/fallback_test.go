// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackParser_GoDeclarationsAndCalls(t *testing.T) {
	src := []byte(`func helper() int {
	return 1
}

func main() {
	helper()
}
`)
	p := NewFallbackParser("go", []string{".go"}, "func")
	res, err := p.Parse("main.go", src, PackageContext{Repo: "r", Package: "p", Branch: "main"})
	require.NoError(t, err)

	var names []string
	for _, n := range res.Nodes {
		names = append(names, n.Name)
	}
	assert.Contains(t, names, "helper")
	assert.Contains(t, names, "main")
	assert.NotEmpty(t, res.Edges)
}

func TestFallbackParser_GoMethodReceiver(t *testing.T) {
	src := []byte(`func (s *Server) Start() error {
	return nil
}
`)
	p := NewFallbackParser("go", []string{".go"}, "func")
	res, err := p.Parse("server.go", src, PackageContext{Repo: "r", Package: "p", Branch: "main"})
	require.NoError(t, err)

	require.Len(t, res.Nodes, 1)
	assert.Equal(t, "Start", res.Nodes[0].Name)
}

func TestFallbackParser_PythonDeclarations(t *testing.T) {
	src := []byte(`def helper():
    return 1

def main():
    helper()
`)
	p := NewFallbackParser("python", []string{".py"}, "def")
	res, err := p.Parse("main.py", src, PackageContext{Repo: "r", Package: "p", Branch: "main"})
	require.NoError(t, err)

	var names []string
	for _, n := range res.Nodes {
		names = append(names, n.Name)
	}
	assert.Contains(t, names, "helper")
	assert.Contains(t, names, "main")
}

func TestFallbackParser_IgnoresKeywordCalls(t *testing.T) {
	src := []byte(`func main() {
	if true {
		return
	}
	for i := 0; i < 10; i++ {
	}
}
`)
	p := NewFallbackParser("go", []string{".go"}, "func")
	res, err := p.Parse("main.go", src, PackageContext{Repo: "r", Package: "p", Branch: "main"})
	require.NoError(t, err)
	assert.Empty(t, res.Edges)
}
