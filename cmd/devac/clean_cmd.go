// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/devac-dev/codegraph/internal/errors"
	"github.com/devac-dev/codegraph/internal/seedstore"
)

// runClean executes the 'clean' CLI command: removes a package's entire
// seed subtree, per seedstore.Store.Clean's §4.2 safety checks.
func runClean(args []string) {
	fs := flag.NewFlagSet("clean", flag.ExitOnError)
	pkgRoot := fs.String("package-root", ".", "Package directory whose seed artifacts to remove")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: devac clean [options]

Removes a package's seed subtree (%s/.seed) along with any orphan
.tmp/.lock/.staging-* files. Never touches source code.

Options:
`, *pkgRoot)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	store := seedstore.New(seedstore.Config{PackageRoot: *pkgRoot})
	if err := store.Clean(); err != nil {
		errors.FatalError(errors.NewTransientIOError("Cannot clean seed artifacts", err.Error(), "check filesystem permissions", err), false)
	}
	fmt.Printf("Cleaned seed artifacts under %s\n", store.SeedRoot())
}
