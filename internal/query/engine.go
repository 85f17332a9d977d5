// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package query

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/devac-dev/codegraph/internal/contract"
	"github.com/devac-dev/codegraph/internal/seedstore"
)

// EngineConfig configures the connection pool shared across queries.
// MaxOpenConns caps open connections; the query command passes a zero
// value, so NewEngine's default of 4 applies. No memory budget is applied
// to the engine: neither the connection cap nor SQLite's page cache is
// derived from config.QueryMemoryLimitMB.
type EngineConfig struct {
	MaxOpenConns int
}

// Engine executes federated SQL queries over a chosen package set. One
// Engine may serve many queries; each Query call opens its own in-memory
// connection (tables are rebuilt per query since the package set and
// branch can vary call to call), bounded by the shared MaxOpenConns pool
// policy (§5: "pooled via database/sql's own connection pool").
type Engine struct {
	cfg EngineConfig
}

// NewEngine constructs an Engine. A zero MaxOpenConns falls back to 4.
func NewEngine(cfg EngineConfig) *Engine {
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 4
	}
	return &Engine{cfg: cfg}
}

// Query runs sql against the views built over packages at branch. Packages
// whose seed directory has no visible generation are skipped (their table
// rows are simply absent); the resulting Readiness explains the emptiness
// when the row count comes back zero.
func (e *Engine) Query(ctx context.Context, packages []PackageRef, branch, querySQL string) (Result, error) {
	start := time.Now()
	result := Result{ViewsCreated: []string{"nodes", "edges", "external_refs", "effects"}}

	if v := contract.ValidateQuerySQL(querySQL); !v.OK {
		return Result{}, fmt.Errorf("query: %s", v.Message)
	}

	if len(packages) == 0 {
		result.Warnings = append(result.Warnings, "no packages provided")
		result.Readiness = ReadinessFirst
		return result, nil
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return Result{}, fmt.Errorf("query: open engine: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(e.cfg.MaxOpenConns)

	if _, err := db.ExecContext(ctx, createTableStatements); err != nil {
		return Result{}, fmt.Errorf("query: create tables: %w", err)
	}

	readiness, warnings, err := e.loadPackages(ctx, db, packages, branch)
	if err != nil {
		return Result{}, err
	}
	result.Warnings = append(result.Warnings, warnings...)

	rows, err := db.QueryContext(ctx, querySQL)
	if err != nil {
		return Result{}, fmt.Errorf("query: execute: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return Result{}, fmt.Errorf("query: columns: %w", err)
	}
	result.Columns = cols

	for rows.Next() {
		scanTargets := make([]any, len(cols))
		scanPtrs := make([]any, len(cols))
		for i := range scanTargets {
			scanPtrs[i] = &scanTargets[i]
		}
		if err := rows.Scan(scanPtrs...); err != nil {
			return Result{}, fmt.Errorf("query: scan row: %w", err)
		}
		result.Rows = append(result.Rows, scanTargets)
	}
	if err := rows.Err(); err != nil {
		return Result{}, fmt.Errorf("query: iterate rows: %w", err)
	}

	result.RowCount = len(result.Rows)
	result.ElapsedMs = time.Since(start).Milliseconds()
	if result.RowCount == 0 && readiness != ReadinessReady {
		result.Readiness = readiness
	} else {
		result.Readiness = ReadinessReady
	}
	return result, nil
}

// loadPackages bulk-loads every package's seed generation into the four
// tables, returning an overall readiness classification and any
// per-package warnings.
func (e *Engine) loadPackages(ctx context.Context, db *sql.DB, packages []PackageRef, branch string) (string, []string, error) {
	var warnings []string
	analyzed, broken, locked := 0, 0, 0

	for _, pr := range packages {
		store := seedstore.New(seedstore.Config{PackageRoot: pr.PackageRoot})

		if isLocked(store, branch) {
			locked++
			warnings = append(warnings, fmt.Sprintf("package %s is locked for branch %s", pr.Package, branch))
			continue
		}

		if !store.Exists(branch) {
			warnings = append(warnings, fmt.Sprintf("artifact missing for %s at branch %s", pr.Package, branch))
			continue
		}

		gen, err := store.Read(branch)
		if err != nil {
			broken++
			warnings = append(warnings, fmt.Sprintf("package %s failed to read: %v", pr.Package, err))
			continue
		}
		analyzed++

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return "", warnings, fmt.Errorf("query: begin load tx: %w", err)
		}
		if err := loadGeneration(tx, gen); err != nil {
			tx.Rollback()
			return "", warnings, err
		}
		if err := tx.Commit(); err != nil {
			return "", warnings, fmt.Errorf("query: commit load tx: %w", err)
		}
	}

	switch {
	case locked > 0 && analyzed == 0:
		return ReadinessLocked, warnings, nil
	case broken > 0 && analyzed == 0:
		return ReadinessBroken, warnings, nil
	case analyzed == 0:
		return ReadinessFirst, warnings, nil
	case analyzed < len(packages):
		return ReadinessPartial, warnings, nil
	default:
		return ReadinessReady, warnings, nil
	}
}

func isLocked(store *seedstore.Store, branch string) bool {
	_, err := os.Stat(filepath.Join(store.BranchDir(branch), seedstore.LockFile))
	return err == nil
}

func loadGeneration(tx *sql.Tx, gen seedstore.Generation) error {
	nodeRows := make([][]any, len(gen.Nodes))
	for i, n := range gen.Nodes {
		nodeRows[i] = []any{
			n.EntityID, n.Name, n.QualifiedName, n.Kind, n.Visibility, n.SourceFile,
			n.Line, n.Column, n.Repo, n.Package, n.Branch, boolToInt(n.IsDeleted),
			n.UpdatedAt, n.FileHash,
		}
	}
	if err := bulkInsert(tx, "nodes", nodeColumns, nodeRows); err != nil {
		return err
	}

	edgeRows := make([][]any, len(gen.Edges))
	for i, e := range gen.Edges {
		edgeRows[i] = []any{
			e.SourceEntityID, e.TargetEntityID, e.EdgeType, e.SourceFilePath,
			e.SourceFileHash, e.SourceLine, e.SourceColumn, e.PropertiesJSON,
			e.Branch, boolToInt(e.IsDeleted), e.UpdatedAt,
		}
	}
	if err := bulkInsert(tx, "edges", edgeColumns, edgeRows); err != nil {
		return err
	}

	refRows := make([][]any, len(gen.ExternalRefs))
	for i, r := range gen.ExternalRefs {
		refRows[i] = []any{
			r.SourceFile, r.Line, r.Column, r.Name, r.ImportStyle, r.ModuleSpecifier,
			r.Alias, r.Resolution, r.ResolvedEntityID, r.Branch, boolToInt(r.IsDeleted),
			r.UpdatedAt,
		}
	}
	if err := bulkInsert(tx, "external_refs", refColumns, refRows); err != nil {
		return err
	}

	effectRows := make([][]any, len(gen.Effects))
	for i, ef := range gen.Effects {
		effectRows[i] = []any{
			ef.SourceEntityID, ef.Domain, ef.Provider, ef.Operation, ef.SignificanceLevel,
			ef.GroupTag, ef.Branch, boolToInt(ef.IsDeleted), ef.UpdatedAt,
		}
	}
	return bulkInsert(tx, "effects", effectColumns, effectRows)
}
