// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package seedstore

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// Generation is the set of rows for one atomically-visible seed version.
type Generation struct {
	Nodes        []Node
	Edges        []Edge
	ExternalRefs []ExternalRef
	Effects      []DomainEffect
	Meta         Meta
}

// parquetParallelism is the writer/reader goroutine fan-out passed to
// xitongsys/parquet-go; kept at 4, matching typical teacher worker caps
// (resolver.go caps parallel work at min(8, NumCPU)) scaled down since
// per-file parquet encoding is already cheap.
const parquetParallelism = 4

// renamer abstracts os.Rename so tests can inject a failure partway
// through a multi-file swap without touching the filesystem package.
type renamer func(oldpath, newpath string) error

// Write materializes gen under a staging directory and then atomically
// swaps it into place as the new visible generation for branch. The four
// columnar files are never written under a name a previous generation
// already used: they are staged, then the whole staging directory is
// renamed in one os.Rename into a generation-numbered directory
// (gen-<N>), which is new on disk for every call since generation numbers
// are never reused. meta.json is written and renamed last, after that
// directory swap has already completed — the single visibility point
// (§4.2, §8 seed-atomicity property). A crash between the directory
// rename and the meta.json rename leaves meta.json (and thus the prior
// generation) untouched; readers never see a mix of old and new files,
// because the old generation's directory is never touched by a later
// Write. Grounded on pkg/ingestion/checkpoint.go's tmp-file-then-
// os.Rename pattern, generalized from one file to a directory swap.
func (s *Store) Write(branch string, gen Generation) error {
	return s.write(branch, gen, os.Rename)
}

func (s *Store) write(branch string, gen Generation, rename renamer) error {
	branchDir := s.BranchDir(branch)
	if err := os.MkdirAll(branchDir, 0o755); err != nil {
		return fmt.Errorf("seedstore: mkdir %s: %w", branchDir, err)
	}

	staging := filepath.Join(branchDir, fmt.Sprintf(".staging-%d", gen.Meta.Generation))
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return fmt.Errorf("seedstore: mkdir staging %s: %w", staging, err)
	}
	defer os.RemoveAll(staging)

	if err := writeParquet(filepath.Join(staging, NodesFile), new(Node), toAny(gen.Nodes)); err != nil {
		return fmt.Errorf("seedstore: write nodes: %w", err)
	}
	if err := writeParquet(filepath.Join(staging, EdgesFile), new(Edge), toAny(gen.Edges)); err != nil {
		return fmt.Errorf("seedstore: write edges: %w", err)
	}
	if err := writeParquet(filepath.Join(staging, ExternalRefFile), new(ExternalRef), toAny(gen.ExternalRefs)); err != nil {
		return fmt.Errorf("seedstore: write external_refs: %w", err)
	}
	if err := writeParquet(filepath.Join(staging, EffectsFile), new(DomainEffect), toAny(gen.Effects)); err != nil {
		return fmt.Errorf("seedstore: write effects: %w", err)
	}

	genDir := s.GenerationDir(branch, gen.Meta.Generation)
	if err := rename(staging, genDir); err != nil {
		return fmt.Errorf("seedstore: swap generation directory: %w", err)
	}

	gen.Meta.SchemaVersion = SchemaVersion
	gen.Meta.Branch = branch
	if gen.Meta.AnalyzedAt == "" {
		gen.Meta.AnalyzedAt = time.Now().UTC().Format(time.RFC3339)
	}
	metaBytes, err := json.MarshalIndent(gen.Meta, "", "  ")
	if err != nil {
		return fmt.Errorf("seedstore: marshal meta: %w", err)
	}
	tmpMeta := filepath.Join(branchDir, MetaFile+".tmp")
	if err := os.WriteFile(tmpMeta, metaBytes, 0o644); err != nil {
		return fmt.Errorf("seedstore: write tmp meta: %w", err)
	}
	// The rename below is the generation's visibility point: any crash or
	// interruption before this line leaves the prior meta.json (and thus
	// the prior generation, in its own untouched gen-<N> directory) as
	// what readers continue to see.
	if err := os.Rename(tmpMeta, s.MetaPath(branch)); err != nil {
		return fmt.Errorf("seedstore: rename meta: %w", err)
	}

	s.pruneOldGenerations(branchDir, gen.Meta.Generation)
	return nil
}

// pruneOldGenerations best-effort removes gen-<N> directories other than
// the one just swapped in. Safe to run after the meta.json rename: no
// reader can still be resolving an older generation's directory through
// meta.json once meta.json itself has moved past it. Errors are ignored;
// a leftover directory is disk usage, not a correctness problem.
func (s *Store) pruneOldGenerations(branchDir string, current uint64) {
	entries, err := os.ReadDir(branchDir)
	if err != nil {
		return
	}
	currentName := fmt.Sprintf("gen-%d", current)
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "gen-") || e.Name() == currentName {
			continue
		}
		_ = os.RemoveAll(filepath.Join(branchDir, e.Name()))
	}
}

func writeParquet[T any](path string, protoRow *T, rows []any) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, protoRow, parquetParallelism)
	if err != nil {
		_ = fw.Close()
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

func toAny[T any](rows []T) []any {
	out := make([]any, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out
}

// Fingerprint computes SeedMeta.source_fingerprint: the agreed hash over
// every analyzed file's content hash (§3 invariant, §8 fingerprint-
// soundness property). fileHashes maps relative file path to content
// hash; the fingerprint is stable under reordering.
func Fingerprint(fileHashes map[string]string) string {
	paths := make([]string, 0, len(fileHashes))
	for p := range fileHashes {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	h := sha256.New()
	for _, p := range paths {
		h.Write([]byte(p))
		h.Write([]byte{0})
		h.Write([]byte(fileHashes[p]))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
