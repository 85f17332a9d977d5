// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package watch implements the Watch Loop (C9): a debounced filesystem
// observer that re-invokes the analyzer on quiescence and exposes a
// cooperative stop. Grounded on the teacher's DeltaDetector/GitDelta in
// pkg/ingestion/delta.go for change classification and eligibility
// filtering (ChangeType, FilterDelta's exclude-glob/size checks),
// generalized from a one-shot git-diff comparison into a live poll loop;
// the debounce timer and idle/dirty/analyzing state machine are new, built
// in the teacher's goroutine-plus-channel idiom (pkg/ingestion/resolver.go's
// worker pool is the nearest teacher analogue of that idiom).
package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/devac-dev/codegraph/internal/analyzer"
	"github.com/devac-dev/codegraph/internal/router"
)

// ChangeType classifies one filesystem event, mirroring the teacher's
// FileChangeType vocabulary (Added/Modified/Deleted/Renamed) narrowed to
// what a polling observer can actually distinguish without a git diff.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeRemoved  ChangeType = "removed"
)

// ChangeEvent is one observed filesystem change.
type ChangeEvent struct {
	Path   string
	Change ChangeType
}

// CrossRepoNeedEvent is emitted when an unresolved external reference's
// module specifier matches a sibling repository directory name (§4.9);
// purely informational, no work is auto-dispatched.
type CrossRepoNeedEvent struct {
	ModuleSpecifier string
	SiblingRepoPath string
}

// state is the per-package state machine: idle -> dirty -> analyzing ->
// idle, with analyzing -> dirty readmitting events that arrive mid-run.
type state int

const (
	stateIdle state = iota
	stateDirty
	stateAnalyzing
)

// Stats are the counters exposed by Status (§4.9).
type Stats struct {
	FilesWatched    int
	EventsProcessed int
	Errors          int
}

// Config configures one Loop instance.
type Config struct {
	ExcludeGlobs []string
	MaxFileSize  int64
	PollInterval time.Duration // default 500ms
	Debounce     time.Duration // default 100ms, per §4.9
}

// Observer receives change notifications as they are processed.
type Observer func(ChangeEvent)

// Loop is the C9 watch loop for one package directory.
type Loop struct {
	root   string
	cfg    Config
	runOnce func(context.Context) (analyzer.Report, error)
	logger *slog.Logger

	mu        sync.Mutex
	st        state
	snapshot  map[string]fileStamp
	stats     Stats
	observers []Observer

	crossRepoCh chan CrossRepoNeedEvent

	stopCh chan chan bool
	doneCh chan struct{}
}

type fileStamp struct {
	size    int64
	modTime int64
}

// New constructs a Loop that runs a real analyzer.Analyzer over
// analyzerCfg on every quiescent pass.
func New(root string, cfg Config, analyzerCfg analyzer.Config, rtr *router.Router, store analyzer.Store, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	a := analyzer.New(analyzerCfg, rtr, store, logger)
	return newLoop(root, cfg, a.Run, logger)
}

func newLoop(root string, cfg Config, runOnce func(context.Context) (analyzer.Report, error), logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 100 * time.Millisecond
	}
	return &Loop{
		root:        root,
		cfg:         cfg,
		runOnce:     runOnce,
		logger:      logger,
		snapshot:    make(map[string]fileStamp),
		crossRepoCh: make(chan CrossRepoNeedEvent, 16),
		stopCh:      make(chan chan bool),
		doneCh:      make(chan struct{}),
	}
}

// Observe registers an observer called for every processed change event.
func (l *Loop) Observe(obs Observer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, obs)
}

// CrossRepoEvents returns the channel CrossRepoNeedEvents are published on.
func (l *Loop) CrossRepoEvents() <-chan CrossRepoNeedEvent {
	return l.crossRepoCh
}

// Status returns a snapshot of the loop's counters.
func (l *Loop) Status() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}
