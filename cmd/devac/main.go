// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main implements the devac CLI: analyze, watch, query, and
// diagnostics/hub management over the code-graph indexing engine.
//
// Usage:
//
//	devac analyze [options]            Run one analysis pass over a package
//	devac watch [options]               Watch a package and re-analyze on change
//	devac query [options] <sql>         Run a federated SQL query
//	devac diagnostics <subcommand>       Inspect unified diagnostics
//	devac hub <subcommand>               Manage the central hub registry
//	devac clean [options]                Remove seed artifacts
package main

import (
	"flag"
	"fmt"
	"os"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `devac - code-graph indexing engine CLI

Usage:
  devac <command> [options]

Commands:
  analyze       Run one analysis pass over a package directory
  watch         Watch a package directory and re-analyze on change
  query         Run a federated SQL query over one or more packages
  diagnostics   List or clear unified diagnostics in the hub
  hub           Register, list, or unregister repositories in the hub
  clean         Remove a package's seed artifacts

Global Options:
  --version     Show version and exit

Examples:
  devac analyze --package . --repo myrepo
  devac watch --package .
  devac query --package-root . "SELECT * FROM nodes LIMIT 10"
  devac hub register --id myrepo --path .
  devac diagnostics list --repo myrepo

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("devac version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "analyze":
		runAnalyze(cmdArgs)
	case "watch":
		runWatch(cmdArgs)
	case "query":
		runQuery(cmdArgs)
	case "diagnostics":
		runDiagnostics(cmdArgs)
	case "hub":
		runHub(cmdArgs)
	case "clean":
		runClean(cmdArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
