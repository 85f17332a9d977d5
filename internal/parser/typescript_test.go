// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeScriptParser_FunctionsAndCalls(t *testing.T) {
	src := []byte(`
function helper(): number {
	return 1;
}

function main(): void {
	helper();
}
`)
	p := NewTypeScriptParser()
	res, err := p.Parse("main.ts", src, PackageContext{Repo: "r", Package: "p", Branch: "main"})
	require.NoError(t, err)

	var names []string
	for _, n := range res.Nodes {
		names = append(names, n.Name)
	}
	assert.Contains(t, names, "helper")
	assert.Contains(t, names, "main")
}

func TestTypeScriptParser_ClassMethods(t *testing.T) {
	src := []byte(`
class Server {
	start(): void {
		console.log("starting");
	}
}
`)
	p := NewTypeScriptParser()
	res, err := p.Parse("server.ts", src, PackageContext{Repo: "r", Package: "p", Branch: "main"})
	require.NoError(t, err)

	var qualified []string
	for _, n := range res.Nodes {
		qualified = append(qualified, n.QualifiedName)
	}
	assert.Contains(t, qualified, "Server.start")
}

func TestTypeScriptParser_NamedImports(t *testing.T) {
	src := []byte(`
import { readFile } from "fs";
import defaultExport from "./module";

readFile("x");
`)
	p := NewTypeScriptParser()
	res, err := p.Parse("imports.ts", src, PackageContext{Repo: "r", Package: "p", Branch: "main"})
	require.NoError(t, err)

	found := false
	for _, ref := range res.ExternalRefs {
		if ref.Name == "readFile" && ref.ModuleSpecifier == "fs" && ref.ImportStyle == "named" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestTSXParser_HandlesTSXExtension(t *testing.T) {
	p := NewTSXParser()
	assert.Equal(t, "tsx", p.Language())
	assert.Contains(t, p.Extensions(), ".tsx")
}

func TestTypeScriptParser_AnonymousArrow(t *testing.T) {
	src := []byte(`
const handler = () => {
	doWork();
};
`)
	p := NewTypeScriptParser()
	res, err := p.Parse("arrow.ts", src, PackageContext{Repo: "r", Package: "p", Branch: "main"})
	require.NoError(t, err)

	found := false
	for _, n := range res.Nodes {
		if n.Name == "$anon_1" {
			found = true
		}
	}
	assert.True(t, found)
}
