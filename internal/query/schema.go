// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package query

// createTableStatements mirrors seedstore's Node/Edge/ExternalRef/
// DomainEffect column sets exactly, so a row read back from parquet can be
// inserted without any name or type translation.
const createTableStatements = `
CREATE TABLE nodes (
	entity_id TEXT, name TEXT, qualified_name TEXT, kind TEXT, visibility TEXT,
	source_file TEXT, line INTEGER, column INTEGER, repo TEXT, package TEXT,
	branch TEXT, is_deleted INTEGER, updated_at INTEGER, file_hash TEXT
);
CREATE TABLE edges (
	source_entity_id TEXT, target_entity_id TEXT, edge_type TEXT,
	source_file_path TEXT, source_file_hash TEXT, source_line INTEGER,
	source_column INTEGER, properties_json TEXT, branch TEXT,
	is_deleted INTEGER, updated_at INTEGER
);
CREATE TABLE external_refs (
	source_file TEXT, line INTEGER, column INTEGER, name TEXT,
	import_style TEXT, module_specifier TEXT, alias TEXT, resolution TEXT,
	resolved_entity_id TEXT, branch TEXT, is_deleted INTEGER, updated_at INTEGER
);
CREATE TABLE effects (
	source_entity_id TEXT, domain TEXT, provider TEXT, operation TEXT,
	significance_level TEXT, group_tag TEXT, branch TEXT, is_deleted INTEGER,
	updated_at INTEGER
);
CREATE INDEX idx_nodes_entity ON nodes(entity_id);
CREATE INDEX idx_edges_source ON edges(source_entity_id);
CREATE INDEX idx_edges_target ON edges(target_entity_id);
CREATE INDEX idx_refs_module ON external_refs(module_specifier);
CREATE INDEX idx_effects_source ON effects(source_entity_id);
`

var nodeColumns = []string{
	"entity_id", "name", "qualified_name", "kind", "visibility", "source_file",
	"line", "column", "repo", "package", "branch", "is_deleted", "updated_at", "file_hash",
}

var edgeColumns = []string{
	"source_entity_id", "target_entity_id", "edge_type", "source_file_path",
	"source_file_hash", "source_line", "source_column", "properties_json",
	"branch", "is_deleted", "updated_at",
}

var refColumns = []string{
	"source_file", "line", "column", "name", "import_style", "module_specifier",
	"alias", "resolution", "resolved_entity_id", "branch", "is_deleted", "updated_at",
}

var effectColumns = []string{
	"source_entity_id", "domain", "provider", "operation", "significance_level",
	"group_tag", "branch", "is_deleted", "updated_at",
}
