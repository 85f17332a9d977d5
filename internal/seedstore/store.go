// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package seedstore

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config configures where a package's seed lives. Grounded on the
// teacher's EmbeddedConfig-with-defaults shape (pkg/storage/embedded.go).
type Config struct {
	// PackageRoot is the package directory the seed belongs to.
	PackageRoot string
	// SeedDirName overrides the ".seed" convention; empty uses the
	// default, overridable process-wide via DEVAC_SEED_ROOT.
	SeedDirName string
}

const defaultSeedDirName = ".seed"

// WithDefaults fills unset fields, honoring DEVAC_SEED_ROOT.
func (c Config) WithDefaults() Config {
	if c.SeedDirName == "" {
		if env := os.Getenv("DEVAC_SEED_ROOT"); env != "" {
			c.SeedDirName = env
		} else {
			c.SeedDirName = defaultSeedDirName
		}
	}
	return c
}

// Store is a handle onto one package's seed directory, scoped to a single
// branch at a time via BranchDir.
type Store struct {
	cfg Config
}

// New creates a Store for the given config.
func New(cfg Config) *Store {
	return &Store{cfg: cfg.WithDefaults()}
}

// SeedRoot returns "<package>/.seed".
func (s *Store) SeedRoot() string {
	return filepath.Join(s.cfg.PackageRoot, s.cfg.SeedDirName)
}

// BranchDir returns "<package>/.seed/<branch>".
func (s *Store) BranchDir(branch string) string {
	return filepath.Join(s.SeedRoot(), sanitizeBranch(branch))
}

func sanitizeBranch(branch string) string {
	if branch == "" {
		return "default"
	}
	return branch
}

// MetaPath returns the path to the branch's meta.json descriptor.
func (s *Store) MetaPath(branch string) string {
	return filepath.Join(s.BranchDir(branch), MetaFile)
}

// GenerationDir returns "<package>/.seed/<branch>/gen-<generation>", the
// directory holding one generation's columnar files. Generation numbers
// are never reused, so a generation's directory is never written to again
// once it has been swapped into visibility (§4.2, §8 seed-atomicity
// property): a reader that resolved meta.json to generation N always
// finds N's files untouched, even if a later writer is already staging
// N+1 concurrently.
func (s *Store) GenerationDir(branch string, generation uint64) string {
	return filepath.Join(s.BranchDir(branch), fmt.Sprintf("gen-%d", generation))
}

// TablePaths returns the four columnar file paths for one generation of
// branch, in the order {nodes, edges, external_refs, effects}. Paths are
// returned even when the files do not yet exist; callers check existence
// with os.Stat.
func (s *Store) TablePaths(branch string, generation uint64) [4]string {
	dir := s.GenerationDir(branch, generation)
	return [4]string{
		filepath.Join(dir, NodesFile),
		filepath.Join(dir, EdgesFile),
		filepath.Join(dir, ExternalRefFile),
		filepath.Join(dir, EffectsFile),
	}
}

// Exists reports whether a generation is visible for branch (meta.json
// present).
func (s *Store) Exists(branch string) bool {
	_, err := os.Stat(s.MetaPath(branch))
	return err == nil
}

// ReadMeta reads and parses the currently visible generation's descriptor.
func (s *Store) ReadMeta(branch string) (Meta, error) {
	return readMeta(s.MetaPath(branch))
}

// Clean removes the entire seed subtree and any orphan .tmp/.lock/
// .staging-* files for this package, never touching source code (§4.2).
func (s *Store) Clean() error {
	root := s.SeedRoot()
	if root == "" || root == "/" {
		return fmt.Errorf("seedstore: refusing to clean suspicious root %q", root)
	}
	if err := os.RemoveAll(root); err != nil {
		return fmt.Errorf("seedstore: clean %s: %w", root, err)
	}
	return nil
}
