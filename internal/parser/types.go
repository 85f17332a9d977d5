// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package parser implements the Structural Parsers (C4): one parser per
// language id, each taking (file_path, source_bytes, package_ctx) and
// emitting {nodes, edges, external_refs, raw_effects, parse_errors}.
//
// Parsers must be deterministic and reentrant (§4.4): identical inputs
// yield byte-identical outputs, and a parser instance may be invoked
// concurrently as long as each call operates on a different file.
package parser

import "github.com/devac-dev/codegraph/internal/seedstore"

// PackageContext carries the addressing info a parser needs to build
// fully qualified entity ids without depending on C1 directly.
type PackageContext struct {
	Repo    string
	Package string
	Branch  string
}

// RawEffect is an opaque tagged record a parser emits for C6 to consume.
// Parsers and the rule engine agree on a shared operation-name vocabulary
// but parsers never assign domain/significance themselves (§4.4, §4.6).
type RawEffect struct {
	SourceEntityID string
	Operation      string // e.g. "http.get", "sql.query", "queue.publish"
	Module         string // import/module the call came through
	Provider       string // best-effort provider hint, e.g. "postgres"
	SourceFile     string
	Line           int
}

// ParseError is returned, never thrown or panicked, and never produces a
// partial write downstream (§4.4).
type ParseError struct {
	File    string
	Line    int
	Message string
}

func (e ParseError) Error() string {
	return e.File + ": " + e.Message
}

// Result is the full structural-parse output for one file.
type Result struct {
	Nodes        []seedstore.Node
	Edges        []seedstore.Edge
	ExternalRefs []seedstore.ExternalRef
	RawEffects   []RawEffect
	ParseErrors  []ParseError
}

// StructuralParser is the C4 contract. Extensions/Language satisfy C3's
// router.Parser capability set; Parse does the actual work.
type StructuralParser interface {
	Language() string
	Extensions() []string
	Parse(filePath string, source []byte, ctx PackageContext) (Result, error)
}

// Version identifies a parser's implementation for SeedMeta.ParserVersions.
type Version interface {
	Version() string
}
