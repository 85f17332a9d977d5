// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/devac-dev/codegraph/internal/errors"
	"github.com/devac-dev/codegraph/internal/hub"
)

func defaultHubPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".devac", "hub", "central.db")
	}
	return filepath.Join(homeDir, ".devac", "hub", "central.db")
}

// runHub dispatches the 'hub' CLI subcommands (C10): register, unregister,
// list.
func runHub(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: devac hub <register|unregister|list> [options]")
		os.Exit(1)
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "register":
		runHubRegister(rest)
	case "unregister":
		runHubUnregister(rest)
	case "list":
		runHubList(rest)
	default:
		fmt.Fprintf(os.Stderr, "Unknown hub subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func runHubRegister(args []string) {
	fs := flag.NewFlagSet("hub register", flag.ExitOnError)
	hubPath := fs.String("hub", defaultHubPath(), "Path to the hub database")
	id := fs.String("id", "", "Repository id (required)")
	path := fs.String("path", ".", "Repository local path")
	metadata := fs.String("metadata", "", "Free-form metadata string")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *id == "" {
		fmt.Fprintln(os.Stderr, "Error: --id is required")
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(*hubPath), 0o755); err != nil {
		errors.FatalError(errors.NewTransientIOError("Cannot create hub directory", err.Error(), "check filesystem permissions", err), false)
	}

	h, err := hub.Open(*hubPath)
	if err != nil {
		errors.FatalError(errors.NewTransientIOError("Cannot open hub database", err.Error(), "check the --hub path", err), false)
	}
	defer h.Close()

	absPath, err := filepath.Abs(*path)
	if err != nil {
		absPath = *path
	}
	if err := h.RegisterRepo(*id, absPath, *metadata); err != nil {
		errors.FatalError(errors.NewTransientIOError("Cannot register repository", err.Error(), "check the hub database", err), false)
	}
	fmt.Printf("Registered %s -> %s\n", *id, absPath)
}

func runHubUnregister(args []string) {
	fs := flag.NewFlagSet("hub unregister", flag.ExitOnError)
	hubPath := fs.String("hub", defaultHubPath(), "Path to the hub database")
	id := fs.String("id", "", "Repository id (required)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *id == "" {
		fmt.Fprintln(os.Stderr, "Error: --id is required")
		os.Exit(1)
	}

	h, err := hub.Open(*hubPath)
	if err != nil {
		errors.FatalError(errors.NewTransientIOError("Cannot open hub database", err.Error(), "check the --hub path", err), false)
	}
	defer h.Close()

	if err := h.UnregisterRepo(*id); err != nil {
		errors.FatalError(errors.NewTransientIOError("Cannot unregister repository", err.Error(), "check the hub database", err), false)
	}
	fmt.Printf("Unregistered %s\n", *id)
}

func runHubList(args []string) {
	fs := flag.NewFlagSet("hub list", flag.ExitOnError)
	hubPath := fs.String("hub", defaultHubPath(), "Path to the hub database")
	jsonOutput := fs.Bool("json", false, "Output as JSON")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	h, err := hub.Open(*hubPath)
	if err != nil {
		errors.FatalError(errors.NewTransientIOError("Cannot open hub database", err.Error(), "check the --hub path", err), *jsonOutput)
	}
	defer h.Close()

	repos, err := h.ListRepos()
	if err != nil {
		errors.FatalError(errors.NewTransientIOError("Cannot list repositories", err.Error(), "check the hub database", err), *jsonOutput)
	}

	if *jsonOutput {
		_ = jsonPrint(repos)
		return
	}
	if len(repos) == 0 {
		fmt.Println("No repositories registered")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPATH\tREGISTERED")
	for _, r := range repos {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.ID, r.LocalPath, r.RegisteredAt)
	}
	w.Flush()
}
