// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package query implements the Federated Query surface (C8): it builds
// nodes/edges/external_refs/effects views over a chosen package set by
// bulk-loading each package's seed generation into an embedded SQLite
// connection, then runs the caller's SQL against that connection.
// Grounded on other_examples' SimplyLiz-CodeMCP federation/index.go for
// the modernc.org/sqlite connection pattern, and on the teacher's
// pkg/tools/search.go/types.go for the query-bundle shape.
package query

// PackageRef identifies one package's seed directory to fold into a query.
type PackageRef struct {
	Repo        string
	Package     string
	PackageRoot string
}

// Readiness states explain an empty result set (§4.8).
const (
	ReadinessReady   = "ready"
	ReadinessFirst   = "first-run" // no package in scope has ever been analyzed
	ReadinessPartial = "partial"   // some but not all packages in scope have a generation
	ReadinessBroken  = "broken"    // a seed directory exists but failed to read
	ReadinessLocked  = "locked"    // a package's seed directory is mid-write
)

// Result is the outcome of one federated query.
type Result struct {
	Columns      []string
	Rows         [][]any
	RowCount     int
	ElapsedMs    int64
	ViewsCreated []string
	Warnings     []string
	Readiness    string
}
