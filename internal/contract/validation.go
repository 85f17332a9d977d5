// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package contract validates the size of a caller-supplied federated query
// (C8) before it reaches the embedded SQLite connection, so a pathological
// query string is rejected up front instead of burning a connection and a
// table-load pass first.
package contract

import (
	"os"
	"strconv"
)

const (
	// DefaultQuerySoftLimitBytes is the baseline soft limit on querySQL's
	// length passed to query.Engine.Query.
	DefaultQuerySoftLimitBytes = 1 << 20 // 1 MiB

	// RequestIDMaxBytes is the maximum length for a federated query's
	// caller-supplied request id, used for audit log correlation.
	RequestIDMaxBytes = 128
)

// QuerySoftLimitBytes returns the effective soft limit for querySQL size.
// Controlled via env DEVAC_QUERY_SOFT_LIMIT_BYTES; falls back to
// DefaultQuerySoftLimitBytes.
func QuerySoftLimitBytes() int {
	if v := os.Getenv("DEVAC_QUERY_SOFT_LIMIT_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultQuerySoftLimitBytes
}

// ValidationResult is the outcome of a validation check.
type ValidationResult struct {
	OK      bool
	Message string
}

// ValidateQuerySQL checks querySQL against the soft size limit before the
// federated query engine builds its tables and runs it.
func ValidateQuerySQL(querySQL string) *ValidationResult {
	if len(querySQL) > QuerySoftLimitBytes() {
		return &ValidationResult{
			OK:      false,
			Message: "query exceeds soft limit",
		}
	}
	return &ValidationResult{OK: true}
}
