// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/devac-dev/codegraph/internal/seedstore"
)

// Run starts the poll loop and blocks until Stop is called or ctx is
// canceled. On start it takes an initial snapshot and runs one analysis
// pass unless a fresh generation already matches the current source
// fingerprint (§4.9 "performs an initial full analysis unless a fresh
// generation already matches source_fingerprint").
func (l *Loop) Run(ctx context.Context, branch string) error {
	initial, err := scan(l.root, l.cfg.ExcludeGlobs, l.cfg.MaxFileSize)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.snapshot = initial
	l.stats.FilesWatched = len(initial)
	l.mu.Unlock()

	if !l.freshGenerationMatches(branch, initial) {
		l.runAnalysis(ctx, branch)
	}

	ticker := time.NewTicker(l.cfg.PollInterval)
	defer ticker.Stop()

	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time
	pendingEvents := make(map[string]ChangeEvent)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case replyCh := <-l.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			replyCh <- true
			return nil

		case <-ticker.C:
			current, err := scan(l.root, l.cfg.ExcludeGlobs, l.cfg.MaxFileSize)
			if err != nil {
				l.mu.Lock()
				l.stats.Errors++
				l.mu.Unlock()
				continue
			}
			l.mu.Lock()
			events := diff(l.snapshot, current)
			l.snapshot = current
			l.stats.FilesWatched = len(current)
			if len(events) > 0 && l.st == stateIdle {
				l.st = stateDirty
			}
			l.mu.Unlock()

			if len(events) == 0 {
				continue
			}
			for _, ev := range events {
				pendingEvents[ev.Path] = ev
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.NewTimer(l.cfg.Debounce)
			debounceCh = debounceTimer.C

		case <-debounceCh:
			debounceCh = nil
			batch := make([]ChangeEvent, 0, len(pendingEvents))
			for _, ev := range pendingEvents {
				batch = append(batch, ev)
			}
			pendingEvents = make(map[string]ChangeEvent)

			l.mu.Lock()
			l.stats.EventsProcessed += len(batch)
			observers := append([]Observer(nil), l.observers...)
			l.mu.Unlock()
			for _, ev := range batch {
				for _, obs := range observers {
					obs(ev)
				}
			}

			l.runAnalysis(ctx, branch)
		}
	}
}

// Stop cooperatively stops the loop and waits for Run to acknowledge.
// flush is not consulted: Run performs analysis synchronously on its own
// goroutine, so a pending analysis always completes before Stop's reply
// fires.
func (l *Loop) Stop(flush bool) {
	reply := make(chan bool, 1)
	select {
	case l.stopCh <- reply:
		<-reply
	case <-l.doneCh:
	}
}

func (l *Loop) runAnalysis(ctx context.Context, branch string) {
	l.mu.Lock()
	if l.st == stateAnalyzing {
		l.st = stateDirty
		l.mu.Unlock()
		return
	}
	l.st = stateAnalyzing
	l.mu.Unlock()

	_, err := l.runOnce(ctx)
	if err != nil {
		l.logger.Warn("watch.analysis.error", "err", err)
		l.mu.Lock()
		l.stats.Errors++
		l.mu.Unlock()
	} else {
		l.detectCrossRepoNeeds(branch)
	}

	l.mu.Lock()
	redo := l.st == stateDirty
	l.st = stateIdle
	l.mu.Unlock()

	if redo {
		l.runAnalysis(ctx, branch)
	}
}

// freshGenerationMatches reports whether the package already has a visible
// generation whose source_fingerprint matches the current snapshot, in
// which case the initial full analysis can be skipped.
func (l *Loop) freshGenerationMatches(branch string, snapshot map[string]fileStamp) bool {
	store := seedstore.New(seedstore.Config{PackageRoot: l.root})
	if !store.Exists(branch) {
		return false
	}
	meta, err := store.ReadMeta(branch)
	if err != nil {
		return false
	}
	hashes := make(map[string]string, len(snapshot))
	for path := range snapshot {
		data, readErr := os.ReadFile(filepath.Join(l.root, path))
		if readErr != nil {
			return false
		}
		sum := sha256.Sum256(data)
		hashes[path] = hex.EncodeToString(sum[:])
	}
	return meta.SourceFingerprint == seedstore.Fingerprint(hashes)
}

// detectCrossRepoNeeds scans the just-written generation's unresolved
// external refs for a module specifier whose leading path component names
// a sibling directory next to this package's repo root (§4.9). Since the
// package may sit below its repo root, the package root's parent is
// checked first, then each further ancestor; the nearest match is used.
func (l *Loop) detectCrossRepoNeeds(branch string) {
	store := seedstore.New(seedstore.Config{PackageRoot: l.root})
	gen, err := store.Read(branch)
	if err != nil {
		return
	}
	for _, ref := range gen.ExternalRefs {
		if ref.Resolution != seedstore.ResolutionUnresolved {
			continue
		}
		repoComponent := firstPathComponent(ref.ModuleSpecifier)
		if repoComponent == "" {
			continue
		}
		for dir := filepath.Dir(l.root); ; dir = filepath.Dir(dir) {
			siblingPath := filepath.Join(dir, repoComponent)
			if info, statErr := os.Stat(siblingPath); statErr == nil && info.IsDir() {
				event := CrossRepoNeedEvent{ModuleSpecifier: ref.ModuleSpecifier, SiblingRepoPath: siblingPath}
				select {
				case l.crossRepoCh <- event:
				default:
				}
				break
			}
			if filepath.Dir(dir) == dir {
				break
			}
		}
	}
}

func firstPathComponent(modulePath string) string {
	modulePath = strings.TrimPrefix(modulePath, "./")
	modulePath = strings.TrimPrefix(modulePath, "/")
	idx := strings.IndexByte(modulePath, '/')
	if idx <= 0 {
		return ""
	}
	return modulePath[:idx]
}
