// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/devac-dev/codegraph/internal/analyzer"
	"github.com/devac-dev/codegraph/internal/errors"
	"github.com/devac-dev/codegraph/internal/seedstore"
	"github.com/devac-dev/codegraph/internal/ui"
	"github.com/devac-dev/codegraph/internal/watch"
)

// runWatch executes the 'watch' CLI command, mirroring the teacher's
// pflag-based start.go/stop.go long-lived-service subcommands rather than
// the stdlib-flag one-shot subcommands.
func runWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	repo := fs.String("repo", "", "Repository identifier recorded in seed metadata")
	pkg := fs.String("package", "", "Package identity-scope path (default: the package root path)")
	pkgRoot := fs.String("package-root", ".", "Filesystem directory to watch")
	branch := fs.String("branch", "main", "Branch to write generations to")
	debounce := fs.Duration("debounce", 100*time.Millisecond, "Quiescence window before re-analyzing")
	pollInterval := fs.Duration("poll-interval", 500*time.Millisecond, "Filesystem poll interval")
	debug := fs.Bool("debug", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: devac watch [options]

Watches a package directory and re-runs the analyzer (C7) after a
quiescence window once filesystem changes settle down.

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

	if *pkg == "" {
		*pkg = *pkgRoot
	}

	analyzerCfg := analyzer.Config{
		Repo:        *repo,
		Package:     *pkg,
		PackageRoot: *pkgRoot,
		Branch:      *branch,
	}
	store := seedstore.New(seedstore.Config{PackageRoot: *pkgRoot})

	loop := watch.New(*pkgRoot, watch.Config{
		Debounce:     *debounce,
		PollInterval: *pollInterval,
	}, analyzerCfg, newRouter(), store, logger)

	loop.Observe(func(ev watch.ChangeEvent) {
		logger.Debug("watch.change", "path", ev.Path, "type", ev.Change)
	})

	go func() {
		for ev := range loop.CrossRepoEvents() {
			ui.Warningf("cross-repo dependency needed: %s (sibling at %s)", ev.ModuleSpecifier, ev.SiblingRepoPath)
		}
	}()

	ui.Header(fmt.Sprintf("Watching %s", *pkgRoot))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		ui.Info("stopping watch loop...")
		loop.Stop(true)
		cancel()
	}()

	if err := loop.Run(ctx, *branch); err != nil {
		errors.FatalError(errors.NewInternalError(
			"Watch loop failed",
			err.Error(),
			"run with --debug for detail",
			err,
		), false)
	}
}
