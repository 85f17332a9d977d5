// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/devac-dev/codegraph/internal/errors"
	"github.com/devac-dev/codegraph/internal/hub"
)

// runDiagnostics dispatches the 'diagnostics' CLI subcommands against the
// central hub's unified_diagnostics table (C10), mirroring the teacher's
// runQuery/printQueryResult tabwriter-based text rendering.
func runDiagnostics(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: devac diagnostics <list|clear> [options]")
		os.Exit(1)
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		runDiagnosticsList(rest)
	case "clear":
		runDiagnosticsClear(rest)
	default:
		fmt.Fprintf(os.Stderr, "Unknown diagnostics subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func runDiagnosticsList(args []string) {
	fs := flag.NewFlagSet("diagnostics list", flag.ExitOnError)
	hubPath := fs.String("hub", defaultHubPath(), "Path to the hub database")
	repo := fs.String("repo", "", "Filter by repository id")
	source := fs.String("source", "", "Filter by diagnostic source")
	severities := fs.String("severity", "", "Comma-separated severity filter")
	resolved := fs.Bool("resolved", false, "Only show resolved diagnostics")
	unresolved := fs.Bool("unresolved", false, "Only show unresolved diagnostics")
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	limit := fs.Int("limit", 100, "Maximum rows to return")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	h, err := hub.Open(*hubPath)
	if err != nil {
		errors.FatalError(errors.NewTransientIOError("Cannot open hub database", err.Error(), "check the --hub path", err), *jsonOutput)
	}
	defer h.Close()

	filter := hub.DiagnosticFilter{RepoID: *repo, Source: *source, Limit: *limit}
	if *severities != "" {
		filter.Severities = strings.Split(*severities, ",")
	}
	if *resolved && !*unresolved {
		t := true
		filter.Resolved = &t
	} else if *unresolved && !*resolved {
		f := false
		filter.Resolved = &f
	}

	diags, err := h.GetDiagnostics(filter)
	if err != nil {
		errors.FatalError(errors.NewTransientIOError("Cannot list diagnostics", err.Error(), "check the hub database", err), *jsonOutput)
	}

	if *jsonOutput {
		_ = jsonPrint(diags)
		return
	}
	printDiagnostics(diags)
}

func runDiagnosticsClear(args []string) {
	fs := flag.NewFlagSet("diagnostics clear", flag.ExitOnError)
	hubPath := fs.String("hub", defaultHubPath(), "Path to the hub database")
	repo := fs.String("repo", "", "Repository id to clear (required)")
	source := fs.String("source", "", "Only clear diagnostics from this source")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *repo == "" {
		fmt.Fprintln(os.Stderr, "Error: --repo is required")
		os.Exit(1)
	}

	h, err := hub.Open(*hubPath)
	if err != nil {
		errors.FatalError(errors.NewTransientIOError("Cannot open hub database", err.Error(), "check the --hub path", err), false)
	}
	defer h.Close()

	if err := h.ClearDiagnostics(*repo, *source); err != nil {
		errors.FatalError(errors.NewTransientIOError("Cannot clear diagnostics", err.Error(), "check the hub database", err), false)
	}
	fmt.Printf("Cleared diagnostics for repo %s\n", *repo)
}

func printDiagnostics(diags []hub.Diagnostic) {
	if len(diags) == 0 {
		fmt.Println("No diagnostics")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEVERITY\tSOURCE\tREPO\tFILE\tTITLE")
	for _, d := range diags {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.Severity, d.Source, d.RepoID, d.FilePath, d.Title)
	}
	w.Flush()
	fmt.Printf("\n(%d diagnostics)\n", len(diags))
}
