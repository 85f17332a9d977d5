// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPythonParser_FunctionsAndCalls(t *testing.T) {
	src := []byte(`
def helper():
    return 1

def main():
    helper()
`)
	p := NewPythonParser()
	res, err := p.Parse("main.py", src, PackageContext{Repo: "r", Package: "p", Branch: "main"})
	require.NoError(t, err)

	var names []string
	for _, n := range res.Nodes {
		names = append(names, n.Name)
	}
	assert.Contains(t, names, "helper")
	assert.Contains(t, names, "main")
}

func TestPythonParser_ClassMethods(t *testing.T) {
	src := []byte(`
class Server:
    def start(self):
        pass
`)
	p := NewPythonParser()
	res, err := p.Parse("server.py", src, PackageContext{Repo: "r", Package: "p", Branch: "main"})
	require.NoError(t, err)

	var qualified []string
	for _, n := range res.Nodes {
		qualified = append(qualified, n.QualifiedName)
	}
	assert.Contains(t, qualified, "Server.start")
}

func TestPythonParser_ImportFrom(t *testing.T) {
	src := []byte(`
from os import path
import sys

path.join("a", "b")
`)
	p := NewPythonParser()
	res, err := p.Parse("imports.py", src, PackageContext{Repo: "r", Package: "p", Branch: "main"})
	require.NoError(t, err)

	found := false
	for _, ref := range res.ExternalRefs {
		if ref.Name == "path" && ref.ModuleSpecifier == "os" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestPythonParser_LambdaNaming(t *testing.T) {
	src := []byte(`
handler = lambda: do_work()
`)
	p := NewPythonParser()
	res, err := p.Parse("lambda.py", src, PackageContext{Repo: "r", Package: "p", Branch: "main"})
	require.NoError(t, err)

	found := false
	for _, n := range res.Nodes {
		if n.Name == "$anon_1" {
			found = true
		}
	}
	assert.True(t, found)
}
