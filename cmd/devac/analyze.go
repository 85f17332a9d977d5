// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/devac-dev/codegraph/internal/analyzer"
	"github.com/devac-dev/codegraph/internal/errors"
	"github.com/devac-dev/codegraph/internal/metrics"
	"github.com/devac-dev/codegraph/internal/parser"
	"github.com/devac-dev/codegraph/internal/router"
	"github.com/devac-dev/codegraph/internal/seedstore"
)

// newRouter registers every structural parser (C4) the module ships.
func newRouter() *router.Router {
	r := router.New()
	r.RegisterParser(parser.NewGoParser())
	r.RegisterParser(parser.NewTypeScriptParser())
	r.RegisterParser(parser.NewTSXParser())
	r.RegisterParser(parser.NewPythonParser())
	return r
}

func runAnalyze(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	repo := fs.String("repo", "", "Repository identifier recorded in seed metadata")
	pkg := fs.String("package", "", "Package identity-scope path (default: the package root path)")
	pkgRoot := fs.String("package-root", ".", "Filesystem directory to analyze (comma-separated for --all)")
	branch := fs.String("branch", "main", "Branch to write the generation to")
	ifChanged := fs.Bool("if-changed", false, "Skip re-analysis when the source fingerprint matches the prior generation")
	force := fs.Bool("force", false, "Re-analyze even when --if-changed would otherwise skip")
	all := fs.Bool("all", false, "Analyze every comma-separated --package-root entry, with progress reporting")
	debug := fs.Bool("debug", false, "Enable debug logging")
	jsonOutput := fs.Bool("json", false, "Output the report as JSON")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: devac analyze [options]

Runs one analysis pass (C7) over a package directory: discover, fingerprint,
parse, resolve, rule-apply, delta-diff, emit. Writes a new seed generation
on success; the prior generation remains visible if any phase fails.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr, logger)
	}

	var roots []string
	for _, root := range strings.Split(*pkgRoot, ",") {
		root = strings.TrimSpace(root)
		if root != "" {
			roots = append(roots, root)
		}
	}
	if len(roots) == 0 {
		roots = []string{"."}
	}
	if len(roots) > 1 && !*all {
		errors.FatalError(errors.NewTaxonomyInputError(
			"Multiple package roots given without --all",
			fmt.Sprintf("%d package roots were passed via --package-root", len(roots)),
			"pass --all to analyze every listed root, or give a single --package-root",
		), *jsonOutput)
	}

	configFor := func(root string) analyzer.Config {
		p := *pkg
		if p == "" {
			p = root
		}
		return analyzer.Config{
			Repo:        *repo,
			Package:     p,
			PackageRoot: root,
			Branch:      *branch,
			IfChanged:   *ifChanged,
			Force:       *force,
		}
	}
	newStore := func(cfg analyzer.Config) analyzer.Store {
		return seedstore.New(seedstore.Config{PackageRoot: cfg.PackageRoot})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if *all {
		configs := make([]analyzer.Config, len(roots))
		for i, root := range roots {
			configs[i] = configFor(root)
		}
		reports, err := analyzer.RunAll(ctx, configs, newRouter(), newStore, logger)
		for _, r := range reports {
			metrics.ObserveAnalysisDuration(float64(r.TimeMs) / 1000.0)
		}
		if err != nil {
			errors.FatalError(errors.NewInvariantError(
				"Analysis failed",
				err.Error(),
				"check the package roots and run with --debug for detail",
				err,
			), *jsonOutput)
		}
		if *jsonOutput {
			_ = jsonPrint(reports)
			return
		}
		for i, r := range reports {
			fmt.Printf("--- %s ---\n", roots[i])
			printAnalyzeReport(r)
		}
		return
	}

	cfg := configFor(roots[0])
	store := newStore(cfg)
	a := analyzer.New(cfg, newRouter(), store, logger)

	report, err := a.Run(ctx)
	metrics.ObserveAnalysisDuration(float64(report.TimeMs) / 1000.0)
	if err != nil {
		errors.FatalError(errors.NewInvariantError(
			"Analysis failed",
			err.Error(),
			"check the package root and run with --debug for detail",
			err,
		), *jsonOutput)
	}

	if *jsonOutput {
		_ = jsonPrint(report)
		return
	}
	printAnalyzeReport(report)
}

func printAnalyzeReport(r analyzer.Report) {
	if r.SkippedUnchanged {
		fmt.Println("=== Analysis Skipped (unchanged) ===")
		fmt.Printf("Duration: %dms\n", r.TimeMs)
		return
	}
	fmt.Println("=== Analysis Complete ===")
	fmt.Printf("Files Analyzed: %d\n", r.FilesAnalyzed)
	fmt.Printf("Nodes Created:  %d\n", r.NodesCreated)
	fmt.Printf("Edges Created:  %d\n", r.EdgesCreated)
	fmt.Printf("Refs Created:   %d\n", r.RefsCreated)
	fmt.Printf("Skipped:        %d\n", r.Skipped)
	fmt.Printf("Duration:       %dms\n", r.TimeMs)
}

func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	logger.Info("metrics.http.start", "addr", addr, "path", "/metrics")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Warn("metrics.http.error", "err", err)
	}
}
