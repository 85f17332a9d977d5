// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package seedstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrLocked is returned by Lock when another writer already holds the
// branch's exclusive lock (§5: "the loser waits or returns a LOCKED
// readiness state").
var ErrLocked = errors.New("seedstore: branch is locked by another writer")

// Lock is a cooperative, filesystem-mediated exclusive write lock on one
// package/branch's seed directory (§5). It is O_EXCL-based rather than
// flock-based so that it works identically across the filesystems this
// system targets, mirroring the teacher's tmp-file-then-rename atomicity
// idiom extended here to mutual exclusion instead of visibility.
type Lock struct {
	path string
	file *os.File
}

// TryLock attempts to acquire the exclusive lock for branch. It returns
// ErrLocked if the lock is already held.
func (s *Store) TryLock(branch string) (*Lock, error) {
	dir := s.BranchDir(branch)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("seedstore: mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, LockFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("seedstore: create lock %s: %w", path, err)
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	return &Lock{path: path, file: f}, nil
}

// Release releases the lock, removing its sidecar file.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if err := l.file.Close(); err != nil {
		return err
	}
	return os.Remove(l.path)
}
