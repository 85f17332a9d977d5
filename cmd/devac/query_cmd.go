// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/devac-dev/codegraph/internal/errors"
	"github.com/devac-dev/codegraph/internal/metrics"
	"github.com/devac-dev/codegraph/internal/query"
)

// runQuery executes the 'query' CLI command (C8): materializes one or
// more packages' seed generations into an in-process SQLite connection
// and runs the caller's SQL (or a predefined bundle) against it. Grounded
// on the teacher's runQuery in cmd/cie/query.go (--json, --timeout,
// --limit flags; error paths emit JSON when --json is set).
func runQuery(args []string) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	repo := fs.String("repo", "", "Repository identifier")
	pkgRoot := fs.String("package-root", ".", "Package directory to query (repeatable via comma)")
	branch := fs.String("branch", "main", "Branch to query")
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	timeout := fs.Duration("timeout", 30*time.Second, "Query timeout")
	bundle := fs.String("bundle", "", "Predefined bundle: symbols, deps, dependents, callgraph, imports, files, schema")
	pattern := fs.String("pattern", "", "Bundle argument: symbol/file name pattern")
	limit := fs.Int("limit", 0, "Bundle argument: row limit (0 = bundle default)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: devac query [options] [sql]

Executes a federated SQL query (C8) over one or more packages' seed
generations, or a predefined bundle via --bundle.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  devac query --package-root . "SELECT name FROM nodes LIMIT 10"
  devac query --bundle symbols --pattern Widget
  devac query --bundle callgraph --pattern main
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	sql := ""
	if fs.NArg() > 0 {
		sql = fs.Arg(0)
	}

	if *bundle != "" {
		built, err := buildBundle(*bundle, *pattern, *limit)
		if err != nil {
			failQuery(err, *jsonOutput)
		}
		sql = built
	}
	if sql == "" {
		failQuery(fmt.Errorf("either a SQL string or --bundle is required"), *jsonOutput)
	}

	var packages []query.PackageRef
	for _, root := range strings.Split(*pkgRoot, ",") {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		packages = append(packages, query.PackageRef{Repo: *repo, Package: root, PackageRoot: root})
	}

	engine := query.NewEngine(query.EngineConfig{})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	result, err := engine.Query(ctx, packages, *branch, sql)
	metrics.ObserveQueryDuration(time.Since(start).Seconds())
	metrics.RecordQueryExecution(err)
	if err != nil {
		failQuery(err, *jsonOutput)
	}

	if *jsonOutput {
		_ = jsonPrint(result)
		return
	}
	fmt.Println(query.FormatText(result, sql))
}

func buildBundle(name, pattern string, limit int) (string, error) {
	switch name {
	case "symbols":
		return (query.SymbolSearchArgs{Pattern: pattern, Limit: limit}).Build()
	case "deps":
		return (query.DepsArgs{EntityID: pattern, Limit: limit}).Build()
	case "dependents":
		return (query.DependentsArgs{EntityID: pattern, Limit: limit}).Build()
	case "callgraph":
		return (query.CallGraphArgs{RootEntityID: pattern, Limit: limit}).Build()
	case "imports":
		return (query.ImportGraphArgs{SourceFile: pattern, Limit: limit}).Build()
	case "files":
		return (query.FileSymbolsArgs{SourceFile: pattern, Limit: limit}).Build()
	case "schema":
		return (query.SchemaArgs{}).Build()
	default:
		return "", fmt.Errorf("query: unknown bundle %q", name)
	}
}

func failQuery(err error, jsonOutput bool) {
	errors.FatalError(errors.NewTaxonomyInputError(
		"Query failed",
		err.Error(),
		"check the SQL syntax or bundle arguments",
	), jsonOutput)
}
