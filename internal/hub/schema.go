// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package hub

const currentSchemaVersion = 1

// schema mirrors other_examples' SimplyLiz-CodeMCP federation/index.go
// indexSchema shape (schema_version row, per-table CREATE TABLE IF NOT
// EXISTS, secondary indexes) renamed to this system's two tables.
const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS repositories (
	id TEXT PRIMARY KEY,
	local_path TEXT NOT NULL,
	metadata TEXT,
	registered_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_repositories_path ON repositories(local_path);

CREATE TABLE IF NOT EXISTS unified_diagnostics (
	diagnostic_id TEXT PRIMARY KEY,
	repo_id TEXT NOT NULL,
	source TEXT NOT NULL,
	severity TEXT NOT NULL,
	category TEXT,
	file_path TEXT,
	line INTEGER,
	column INTEGER,
	title TEXT NOT NULL,
	description TEXT,
	suggestion TEXT,
	resolved INTEGER NOT NULL DEFAULT 0,
	actionable INTEGER NOT NULL DEFAULT 0,
	external_ref TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	FOREIGN KEY (repo_id) REFERENCES repositories(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_diagnostics_repo ON unified_diagnostics(repo_id);
CREATE INDEX IF NOT EXISTS idx_diagnostics_source ON unified_diagnostics(source);
CREATE INDEX IF NOT EXISTS idx_diagnostics_severity ON unified_diagnostics(severity);
`
