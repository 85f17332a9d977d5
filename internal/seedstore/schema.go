// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package seedstore implements the per-package columnar seed layout (C2):
// atomic parquet writes, branch partitioning, and the meta.json descriptor
// that is the generation's single visibility point.
package seedstore

// SchemaVersion is bumped whenever a column is added, removed, or retyped
// in Node/Edge/ExternalRef/DomainEffect.
const SchemaVersion = 1

// Node is the parquet row shape for a declared symbol (§3). Struct tags
// follow xitongsys/parquet-go's schema-by-tag convention.
type Node struct {
	EntityID      string `parquet:"name=entity_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Name          string `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8"`
	QualifiedName string `parquet:"name=qualified_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Kind          string `parquet:"name=kind, type=BYTE_ARRAY, convertedtype=UTF8"`
	Visibility    string `parquet:"name=visibility, type=BYTE_ARRAY, convertedtype=UTF8"`
	SourceFile    string `parquet:"name=source_file, type=BYTE_ARRAY, convertedtype=UTF8"`
	Line          int32  `parquet:"name=line, type=INT32"`
	Column        int32  `parquet:"name=column, type=INT32"`
	Repo          string `parquet:"name=repo, type=BYTE_ARRAY, convertedtype=UTF8"`
	Package       string `parquet:"name=package, type=BYTE_ARRAY, convertedtype=UTF8"`
	Branch        string `parquet:"name=branch, type=BYTE_ARRAY, convertedtype=UTF8"`
	IsDeleted     bool   `parquet:"name=is_deleted, type=BOOLEAN"`
	UpdatedAt     int64  `parquet:"name=updated_at, type=INT64"`
	FileHash      string `parquet:"name=file_hash, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// Edge is the parquet row shape for a directed relation between two
// entity ids (§3). PropertiesJSON carries the free-form attribute bag
// serialized as JSON text, since parquet-go's map support is awkward to
// round-trip through a flat schema.
type Edge struct {
	SourceEntityID   string `parquet:"name=source_entity_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	TargetEntityID   string `parquet:"name=target_entity_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	EdgeType         string `parquet:"name=edge_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	SourceFilePath   string `parquet:"name=source_file_path, type=BYTE_ARRAY, convertedtype=UTF8"`
	SourceFileHash   string `parquet:"name=source_file_hash, type=BYTE_ARRAY, convertedtype=UTF8"`
	SourceLine       int32  `parquet:"name=source_line, type=INT32"`
	SourceColumn     int32  `parquet:"name=source_column, type=INT32"`
	PropertiesJSON   string `parquet:"name=properties_json, type=BYTE_ARRAY, convertedtype=UTF8"`
	Branch           string `parquet:"name=branch, type=BYTE_ARRAY, convertedtype=UTF8"`
	IsDeleted        bool   `parquet:"name=is_deleted, type=BOOLEAN"`
	UpdatedAt        int64  `parquet:"name=updated_at, type=INT64"`
}

// ExternalRef is the parquet row shape for a token that could not be
// resolved locally (§3). Resolution and ResolvedEntityID answer the first
// Open Question in SPEC_FULL.md §9: rows are never deleted by C5, only
// annotated.
type ExternalRef struct {
	SourceFile       string `parquet:"name=source_file, type=BYTE_ARRAY, convertedtype=UTF8"`
	Line             int32  `parquet:"name=line, type=INT32"`
	Column           int32  `parquet:"name=column, type=INT32"`
	Name             string `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8"`
	ImportStyle      string `parquet:"name=import_style, type=BYTE_ARRAY, convertedtype=UTF8"`
	ModuleSpecifier  string `parquet:"name=module_specifier, type=BYTE_ARRAY, convertedtype=UTF8"`
	Alias            string `parquet:"name=alias, type=BYTE_ARRAY, convertedtype=UTF8"`
	Resolution       string `parquet:"name=resolution, type=BYTE_ARRAY, convertedtype=UTF8"` // unresolved|resolved|ambiguous
	ResolvedEntityID string `parquet:"name=resolved_entity_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Branch           string `parquet:"name=branch, type=BYTE_ARRAY, convertedtype=UTF8"`
	IsDeleted        bool   `parquet:"name=is_deleted, type=BOOLEAN"`
	UpdatedAt        int64  `parquet:"name=updated_at, type=INT64"`
}

// Resolution states for ExternalRef.Resolution.
const (
	ResolutionUnresolved = "unresolved"
	ResolutionResolved   = "resolved"
	ResolutionAmbiguous  = "ambiguous"
)

// DomainEffect is the parquet row shape for a rule-derived classification
// of a raw effect (§3).
type DomainEffect struct {
	SourceEntityID    string `parquet:"name=source_entity_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Domain            string `parquet:"name=domain, type=BYTE_ARRAY, convertedtype=UTF8"`
	Provider          string `parquet:"name=provider, type=BYTE_ARRAY, convertedtype=UTF8"`
	Operation         string `parquet:"name=operation, type=BYTE_ARRAY, convertedtype=UTF8"`
	SignificanceLevel string `parquet:"name=significance_level, type=BYTE_ARRAY, convertedtype=UTF8"`
	GroupTag          string `parquet:"name=group_tag, type=BYTE_ARRAY, convertedtype=UTF8"`
	Branch            string `parquet:"name=branch, type=BYTE_ARRAY, convertedtype=UTF8"`
	IsDeleted         bool   `parquet:"name=is_deleted, type=BOOLEAN"`
	UpdatedAt         int64  `parquet:"name=updated_at, type=INT64"`
}

// EdgeType enumerates the directed-relation kinds an Edge may carry.
const (
	EdgeCalls       = "CALLS"
	EdgeImports     = "IMPORTS"
	EdgeExtends     = "EXTENDS"
	EdgeImplements  = "IMPLEMENTS"
	EdgeReferences  = "REFERENCES"
	EdgeDefines     = "DEFINES"
	EdgeReturns     = "RETURNS"
	EdgeParameterOf = "PARAMETER_OF"
	EdgeFieldOf     = "FIELD_OF"
)

// Meta is the per-generation descriptor written last, atomically (§4.2,
// §6). Field names match the seed directory layout's meta.json exactly.
type Meta struct {
	SchemaVersion     int               `json:"schema_version"`
	Generation        uint64            `json:"generation"`
	SourceFingerprint string            `json:"source_fingerprint"`
	AnalyzedAt        string            `json:"analyzed_at"` // RFC3339
	ParserVersions    map[string]string `json:"parser_versions"`
	PackagePath       string            `json:"package_path"`
	RepoName          string            `json:"repo_name"`
	Branch            string            `json:"branch"`
}

// Filenames used under <package>/.seed/<branch>/: meta.json and .lock sit
// there directly, the four parquet files inside its gen-<N>/ directory.
const (
	NodesFile       = "nodes.parquet"
	EdgesFile       = "edges.parquet"
	ExternalRefFile = "external_refs.parquet"
	EffectsFile     = "effects.parquet"
	MetaFile        = "meta.json"
	LockFile        = ".lock"
)
