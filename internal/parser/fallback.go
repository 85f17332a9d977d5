// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package parser

import (
	"fmt"
	"strings"

	"github.com/devac-dev/codegraph/internal/identity"
	"github.com/devac-dev/codegraph/internal/seedstore"
)

// FallbackParser is a regex-free, hand-rolled tokenizer used when
// tree-sitter grammar initialization fails or the platform lacks cgo
// support for it (§4.4 "a fallback exists for when structural parsing
// cannot run"). It is line-oriented and deliberately conservative: it
// finds declaration keywords and bare identifier-call patterns, adapted
// from the teacher's simplified Parser in pkg/ingestion/parser_go.go
// (findGoCalls/isGoIdentStart/isGoIdentChar/isGoKeyword), generalized
// across languages instead of hardcoded to Go.
type FallbackParser struct {
	language    string
	extensions  []string
	declKeyword string // e.g. "func", "function", "def"
}

// NewFallbackParser builds a tokenizer fallback for a single declaration
// keyword. Callers register one instance per language via the router.
func NewFallbackParser(language string, extensions []string, declKeyword string) *FallbackParser {
	return &FallbackParser{language: language, extensions: extensions, declKeyword: declKeyword}
}

func (p *FallbackParser) Language() string     { return p.language }
func (p *FallbackParser) Extensions() []string { return p.extensions }
func (p *FallbackParser) Version() string      { return "fallback-tokenizer-v1" }

// Parse scans source line by line for `<declKeyword> <ident>(` sequences
// and for bare `<ident>(` call sites elsewhere in the body. It never
// resolves call targets; every edge it emits targets identity.Unresolved,
// deferring everything to C5.
func (p *FallbackParser) Parse(filePath string, source []byte, pkgCtx PackageContext) (Result, error) {
	result := Result{}
	lines := strings.Split(string(source), "\n")

	var currentFunc string
	var currentFuncID identity.EntityID
	haveCurrentFunc := false

	for lineNo, line := range lines {
		trimmed := strings.TrimSpace(line)

		if name, ok := matchDeclaration(trimmed, p.declKeyword); ok {
			canonicalPath := filePath + "#" + name
			id := identity.New(pkgCtx.Repo, pkgCtx.Package, identity.KindFunction, canonicalPath)
			visibility := "public"
			if len(name) > 0 && strings.ToLower(name[:1]) == name[:1] && p.language == "go" {
				visibility = "private"
			}
			result.Nodes = append(result.Nodes, seedstore.Node{
				EntityID:      id.String(),
				Name:          name,
				QualifiedName: name,
				Kind:          string(identity.KindFunction),
				Visibility:    visibility,
				SourceFile:    filePath,
				Line:          int32(lineNo + 1),
				Repo:          pkgCtx.Repo,
				Package:       pkgCtx.Package,
				Branch:        pkgCtx.Branch,
			})
			currentFunc, currentFuncID, haveCurrentFunc = name, id, true
			continue
		}

		if !haveCurrentFunc {
			continue
		}

		for _, calleeName := range findCallIdentifiers(line, p.declKeyword) {
			if calleeName == currentFunc {
				continue
			}
			result.Edges = append(result.Edges, seedstore.Edge{
				SourceEntityID: currentFuncID.String(),
				TargetEntityID: identity.Unresolved,
				EdgeType:       seedstore.EdgeCalls,
				SourceFilePath: filePath,
				SourceLine:     int32(lineNo + 1),
				PropertiesJSON: fmt.Sprintf(`{"unresolved_name":%q}`, calleeName),
				Branch:         pkgCtx.Branch,
			})
		}
	}

	return result, nil
}

// matchDeclaration reports whether line opens a declaration of the form
// "<keyword> name(" or "<keyword> name " (Python's trailing colon form),
// returning the declared name.
func matchDeclaration(line, keyword string) (string, bool) {
	if !strings.HasPrefix(line, keyword+" ") {
		return "", false
	}
	rest := strings.TrimSpace(line[len(keyword):])
	// Go methods: "func (r *T) Name(...)" — skip the receiver clause.
	if strings.HasPrefix(rest, "(") {
		if idx := strings.Index(rest, ")"); idx != -1 {
			rest = strings.TrimSpace(rest[idx+1:])
		}
	}
	i := 0
	for i < len(rest) && isIdentChar(rune(rest[i]), i == 0) {
		i++
	}
	if i == 0 {
		return "", false
	}
	return rest[:i], true
}

// findCallIdentifiers scans a line for "ident(" occurrences that are not
// themselves the declaration keyword and not a known keyword for any of
// the fallback-supported languages.
func findCallIdentifiers(line, declKeyword string) []string {
	var out []string
	i := 0
	for i < len(line) {
		if !isIdentChar(rune(line[i]), true) {
			i++
			continue
		}
		start := i
		for i < len(line) && isIdentChar(rune(line[i]), false) {
			i++
		}
		ident := line[start:i]
		// Skip whitespace between identifier and a possible '('.
		j := i
		for j < len(line) && line[j] == ' ' {
			j++
		}
		if j < len(line) && line[j] == '(' && !isKnownKeyword(ident) && ident != declKeyword {
			out = append(out, ident)
		}
	}
	return out
}

func isIdentChar(r rune, start bool) bool {
	if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
		return true
	}
	if !start && r >= '0' && r <= '9' {
		return true
	}
	return false
}

var fallbackKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "return": true,
	"func": true, "function": true, "def": true, "class": true, "else": true,
	"elif": true, "except": true, "catch": true, "try": true, "with": true,
	"import": true, "from": true, "package": true, "const": true, "var": true,
	"let": true, "type": true, "interface": true, "struct": true, "range": true,
	"select": true, "go": true, "defer": true,
}

func isKnownKeyword(ident string) bool {
	return fallbackKeywords[ident]
}
