// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package query

import (
	"fmt"
	"strings"
)

// escapeLiteral doubles embedded single quotes, the SQL-literal escaping
// rule named in §4.8 for templated bundle SQL.
func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func literal(s string) string {
	return "'" + escapeLiteral(s) + "'"
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// SymbolSearchArgs finds declared symbols by name substring and optional kind.
type SymbolSearchArgs struct {
	Pattern string
	Kind    string
	Limit   int
}

// Build renders the bundle's SQL template, grounded on the teacher's
// SearchText in pkg/tools/search.go (condition-list construction over a
// name/kind pattern), with CozoScript's regex_matches swapped for SQL LIKE
// since the embedded engine here is SQLite rather than CozoDB.
func (a SymbolSearchArgs) Build() (string, error) {
	if a.Pattern == "" {
		return "", fmt.Errorf("query: symbol search requires a non-empty pattern")
	}
	limit := clampLimit(a.Limit, 20, 500)
	conditions := []string{
		fmt.Sprintf("(name LIKE '%%' || %s || '%%' OR qualified_name LIKE '%%' || %s || '%%')",
			literal(a.Pattern), literal(a.Pattern)),
		"is_deleted = 0",
	}
	if a.Kind != "" {
		conditions = append(conditions, fmt.Sprintf("kind = %s", literal(a.Kind)))
	}
	return fmt.Sprintf(
		"SELECT entity_id, name, qualified_name, kind, source_file, line FROM nodes WHERE %s LIMIT %d",
		strings.Join(conditions, " AND "), limit,
	), nil
}

// DepsArgs finds the declarations a given entity calls (its dependencies).
type DepsArgs struct {
	EntityID string
	Limit    int
}

func (a DepsArgs) Build() (string, error) {
	if a.EntityID == "" {
		return "", fmt.Errorf("query: deps requires an entity id")
	}
	limit := clampLimit(a.Limit, 50, 1000)
	return fmt.Sprintf(`SELECT e.target_entity_id, n.name, n.qualified_name, n.source_file, e.edge_type
FROM edges e LEFT JOIN nodes n ON n.entity_id = e.target_entity_id
WHERE e.source_entity_id = %s AND e.is_deleted = 0 LIMIT %d`, literal(a.EntityID), limit), nil
}

// DependentsArgs finds declarations that call a given entity.
type DependentsArgs struct {
	EntityID string
	Limit    int
}

func (a DependentsArgs) Build() (string, error) {
	if a.EntityID == "" {
		return "", fmt.Errorf("query: dependents requires an entity id")
	}
	limit := clampLimit(a.Limit, 50, 1000)
	return fmt.Sprintf(`SELECT e.source_entity_id, n.name, n.qualified_name, n.source_file, e.edge_type
FROM edges e LEFT JOIN nodes n ON n.entity_id = e.source_entity_id
WHERE e.target_entity_id = %s AND e.is_deleted = 0 LIMIT %d`, literal(a.EntityID), limit), nil
}

// CallGraphArgs walks CALLS edges outward from a root entity, bounded by
// depth via a recursive CTE (SQLite's WITH RECURSIVE).
type CallGraphArgs struct {
	RootEntityID string
	MaxDepth     int
	Limit        int
}

func (a CallGraphArgs) Build() (string, error) {
	if a.RootEntityID == "" {
		return "", fmt.Errorf("query: call graph requires a root entity id")
	}
	depth := clampLimit(a.MaxDepth, 3, 10)
	limit := clampLimit(a.Limit, 200, 5000)
	return fmt.Sprintf(`WITH RECURSIVE walk(entity_id, depth) AS (
	SELECT %s, 0
	UNION
	SELECT e.target_entity_id, walk.depth + 1
	FROM edges e JOIN walk ON e.source_entity_id = walk.entity_id
	WHERE e.edge_type = 'CALLS' AND e.is_deleted = 0 AND walk.depth < %d
)
SELECT DISTINCT w.entity_id, w.depth, n.name, n.qualified_name, n.source_file
FROM walk w LEFT JOIN nodes n ON n.entity_id = w.entity_id
ORDER BY w.depth LIMIT %d`, literal(a.RootEntityID), depth, limit), nil
}

// ImportGraphArgs lists a file's external module references.
type ImportGraphArgs struct {
	SourceFile string
	Limit      int
}

func (a ImportGraphArgs) Build() (string, error) {
	limit := clampLimit(a.Limit, 100, 2000)
	conditions := []string{"is_deleted = 0"}
	if a.SourceFile != "" {
		conditions = append(conditions, fmt.Sprintf("source_file = %s", literal(a.SourceFile)))
	}
	return fmt.Sprintf(
		"SELECT source_file, name, module_specifier, alias, resolution FROM external_refs WHERE %s LIMIT %d",
		strings.Join(conditions, " AND "), limit,
	), nil
}

// FileSymbolsArgs lists every symbol declared in one file.
type FileSymbolsArgs struct {
	SourceFile string
	Limit      int
}

func (a FileSymbolsArgs) Build() (string, error) {
	if a.SourceFile == "" {
		return "", fmt.Errorf("query: file symbols requires a source file path")
	}
	limit := clampLimit(a.Limit, 200, 5000)
	return fmt.Sprintf(
		"SELECT entity_id, name, qualified_name, kind, visibility, line FROM nodes WHERE source_file = %s AND is_deleted = 0 ORDER BY line LIMIT %d",
		literal(a.SourceFile), limit,
	), nil
}

// SchemaArgs introspects the four view tables themselves (one row per view
// with its row count), used by CLI/RPC callers to discover what's queryable.
type SchemaArgs struct{}

func (a SchemaArgs) Build() (string, error) {
	return `SELECT 'nodes' AS view_name, COUNT(*) AS row_count FROM nodes
UNION ALL SELECT 'edges', COUNT(*) FROM edges
UNION ALL SELECT 'external_refs', COUNT(*) FROM external_refs
UNION ALL SELECT 'effects', COUNT(*) FROM effects`, nil
}

// Bundle is the common shape every predefined query exposes, letting a CLI
// subcommand and an RPC tool description share one SQL template (§4.8).
type Bundle interface {
	Build() (string, error)
}
