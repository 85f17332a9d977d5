// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package analyzer implements the Analyzer (C7): the seven-phase
// orchestration that turns a package directory into a seed generation —
// discover, fingerprint, parse, resolve, rule-apply, delta-diff, emit.
// Grounded on the teacher's LocalPipeline.Run in
// pkg/ingestion/local_pipeline.go (the load→parse→resolve→write shape,
// its parseFilesParallel/parseFilesSequential worker-pool split, and its
// IngestionResult stats struct), generalized with two phases the teacher
// has no equivalent for: rule-apply (C6 has no teacher analogue) and
// delta-diff (the teacher always fully re-ingests; this system persists
// tombstones across generations instead, per the resolved tombstone
// open question in SPEC_FULL.md §9).
package analyzer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/devac-dev/codegraph/internal/resolver"
	"github.com/devac-dev/codegraph/internal/router"
	"github.com/devac-dev/codegraph/internal/rules"
	"github.com/devac-dev/codegraph/internal/seedstore"
)

// Config configures one analysis run over a single package directory.
type Config struct {
	Repo             string
	Package          string // the package's identity-scope path, e.g. "internal/handlers"
	PackageRoot      string // filesystem directory to walk
	Branch           string
	ExcludeGlobs     []string
	MaxFileSizeBytes int64
	ParseWorkers     int
	// IfChanged requests phase 2's fingerprint short-circuit (§4.7 step 2,
	// §8 "Fingerprint soundness"): if the freshly computed fingerprint
	// matches the prior generation's, Run skips parsing/resolving/
	// rule-applying/emitting entirely and returns Report.SkippedUnchanged.
	IfChanged bool
	// Force suppresses the IfChanged short-circuit even when fingerprints
	// match, forcing a full re-analysis and a new generation regardless.
	Force bool
}

// Report summarizes one Run, matching the teacher's IngestionResult in
// shape (narrowed to this system's own counters).
type Report struct {
	FilesAnalyzed int
	NodesCreated  int
	EdgesCreated  int
	RefsCreated   int
	Skipped       int
	TimeMs        int64
	// SkippedUnchanged is true when --if-changed short-circuited the run
	// because the source fingerprint matched the prior generation's; no
	// new generation was written.
	SkippedUnchanged bool
}

// Store is the subset of *seedstore.Store the analyzer needs, kept as an
// interface so tests can substitute an in-memory fake.
type Store interface {
	Read(branch string) (seedstore.Generation, error)
	Write(branch string, gen seedstore.Generation) error
}

// Analyzer runs the seven-phase pipeline for one package.
type Analyzer struct {
	cfg          Config
	router       *router.Router
	store        Store
	resolverCfg  resolver.Config
	grouping     *rules.GroupingEngine
	significance *rules.SignificanceEngine
	logger       *slog.Logger
}

// New constructs an Analyzer. A nil logger falls back to slog.Default,
// matching the teacher's NewLocalPipeline nil-logger convention.
func New(cfg Config, rtr *router.Router, store Store, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ParseWorkers <= 0 {
		cfg.ParseWorkers = 4
	}
	return &Analyzer{
		cfg:          cfg,
		router:       rtr,
		store:        store,
		resolverCfg:  resolver.LoadConfig(),
		grouping:     rules.NewGroupingEngine(nil),
		significance: rules.NewSignificanceEngine(nil),
		logger:       logger,
	}
}

// Run executes all seven phases and returns the run's Report. Any
// pre-emit failure returns an error with the prior generation left
// untouched and visible to readers (§4.7, the seed-atomicity property):
// Run never calls Store.Write until every earlier phase has succeeded.
func (a *Analyzer) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	report := Report{}

	// Phase 1: discover.
	files, skipReasons, err := discover(a.cfg.PackageRoot, a.cfg.ExcludeGlobs, a.cfg.MaxFileSizeBytes)
	if err != nil {
		return report, fmt.Errorf("analyzer: discover: %w", err)
	}
	for _, n := range skipReasons {
		report.Skipped += n
	}
	a.logger.Info("analyzer.discover.complete", "package", a.cfg.Package, "files", len(files), "skipped", report.Skipped)

	// The prior generation is needed both for phase 2's fingerprint
	// comparison and phase 6's delta-diff, so it is read once, up front.
	prev, readErr := a.store.Read(a.cfg.Branch)
	if readErr != nil {
		return report, fmt.Errorf("analyzer: read prior generation: %w", readErr)
	}

	// Phase 2: fingerprint. Read every file's bytes once; parsing reuses
	// the same buffer so no file is read twice.
	contents := make(map[string][]byte, len(files))
	fileHashes := make(map[string]string, len(files))
	var parsable []DiscoveredFile
	for _, f := range files {
		data, readErr := os.ReadFile(f.FullPath)
		if readErr != nil {
			report.Skipped++
			a.logger.Warn("analyzer.fingerprint.read_error", "path", f.Path, "err", readErr)
			continue
		}
		ext := filepath.Ext(f.Path)
		if _, ok, _ := a.router.GetForExt(ext); !ok {
			report.Skipped++
			continue
		}
		contents[f.Path] = data
		fileHashes[f.Path] = hashBytes(data)
		parsable = append(parsable, f)
	}
	fingerprint := seedstore.Fingerprint(fileHashes)

	if a.cfg.IfChanged && !a.cfg.Force && prev.Meta.SourceFingerprint != "" && fingerprint == prev.Meta.SourceFingerprint {
		report.SkippedUnchanged = true
		report.TimeMs = time.Since(start).Milliseconds()
		a.logger.Info("analyzer.run.skipped_unchanged", "package", a.cfg.Package, "fingerprint", fingerprint)
		return report, nil
	}

	// Phase 3: parse.
	parsed, parseErrCount := a.parseFiles(ctx, parsable, contents)
	report.FilesAnalyzed = len(parsed)
	report.Skipped += parseErrCount

	// Phase 4: resolve.
	index := resolver.NewIndex()
	for _, pr := range parsed {
		for _, n := range pr.Nodes {
			index.AddNode(a.cfg.Package, n)
		}
	}
	res := resolver.New(a.resolverCfg)

	var allNodes []seedstore.Node
	var allEdges []seedstore.Edge
	var allRefs []seedstore.ExternalRef
	for _, pr := range parsed {
		allNodes = append(allNodes, pr.Nodes...)
		resolvedEdges, resolvedRefs := res.Resolve(pr.Edges, pr.ExternalRefs, index)
		allEdges = append(allEdges, resolvedEdges...)
		allRefs = append(allRefs, resolvedRefs...)
	}

	// Phase 5: rule-apply.
	allEffects := a.applyRules(allEdges, allRefs)

	// Phase 6: delta-diff, against the prior generation read at the top
	// of Run.
	now := time.Now().Unix()
	finalNodes := diffNodes(prev.Nodes, allNodes, now)
	finalEdges := diffEdges(prev.Edges, allEdges, now)
	finalRefs := diffRefs(prev.ExternalRefs, allRefs, now)
	finalEffects := diffEffects(prev.Effects, allEffects, now)

	report.NodesCreated = len(allNodes)
	report.EdgesCreated = len(allEdges)
	report.RefsCreated = len(allRefs)

	// Phase 7: emit.
	parserVersions := a.parserVersions()
	gen := seedstore.Generation{
		Nodes:        finalNodes,
		Edges:        finalEdges,
		ExternalRefs: finalRefs,
		Effects:      finalEffects,
		Meta: seedstore.Meta{
			Generation:        prev.Meta.Generation + 1,
			SourceFingerprint: fingerprint,
			ParserVersions:    parserVersions,
			PackagePath:       a.cfg.Package,
			RepoName:          a.cfg.Repo,
			Branch:            a.cfg.Branch,
		},
	}
	if err := a.store.Write(a.cfg.Branch, gen); err != nil {
		return report, fmt.Errorf("analyzer: emit: %w", err)
	}

	report.TimeMs = time.Since(start).Milliseconds()
	a.logger.Info("analyzer.run.complete",
		"package", a.cfg.Package,
		"files_analyzed", report.FilesAnalyzed,
		"nodes_created", report.NodesCreated,
		"edges_created", report.EdgesCreated,
		"refs_created", report.RefsCreated,
		"skipped", report.Skipped,
		"time_ms", report.TimeMs,
	)
	return report, nil
}

func (a *Analyzer) parserVersions() map[string]string {
	versions := make(map[string]string)
	for _, lang := range a.router.Languages() {
		p, ok, err := a.router.Get(lang)
		if err != nil || !ok {
			continue
		}
		if v, ok := p.(interface{ Version() string }); ok {
			versions[lang] = v.Version()
		}
	}
	return versions
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
