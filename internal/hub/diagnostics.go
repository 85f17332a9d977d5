// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package hub

import (
	"database/sql"
	"fmt"
	"strings"
)

// Diagnostic is one row of unified_diagnostics (§3 UnifiedDiagnostic, §4.10):
// a finding surfaced by any source (tsc, lint, test, coverage, ci-check,
// external-issue, review) for one repository.
type Diagnostic struct {
	DiagnosticID string
	RepoID       string
	Source       string
	Severity     string
	Category     string
	FilePath     string
	Line         *int
	Column       *int
	Title        string
	Description  string
	Suggestion   string
	Resolved     bool
	Actionable   bool
	ExternalRef  string // optional external issue/PR/workflow reference
	CreatedAt    string
	UpdatedAt    string
}

// DiagnosticFilter narrows GetDiagnostics. Zero-value fields are wildcards.
type DiagnosticFilter struct {
	RepoID     string
	Source     string
	Severities []string
	Category   string
	FilePath   string
	Resolved   *bool
	Actionable *bool
	Limit      int
}

// PushDiagnostics upserts a batch, keyed by diagnostic_id, in one transaction.
func (h *Hub) PushDiagnostics(batch []Diagnostic) error {
	if h.closed {
		return ErrClosed
	}
	if len(batch) == 0 {
		return nil
	}
	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("hub: begin push diagnostics: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO unified_diagnostics
			(diagnostic_id, repo_id, source, severity, category, file_path, line, column,
			 title, description, suggestion, resolved, actionable, external_ref, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(diagnostic_id) DO UPDATE SET
			severity = excluded.severity,
			category = excluded.category,
			file_path = excluded.file_path,
			line = excluded.line,
			column = excluded.column,
			title = excluded.title,
			description = excluded.description,
			suggestion = excluded.suggestion,
			resolved = excluded.resolved,
			actionable = excluded.actionable,
			external_ref = excluded.external_ref,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("hub: prepare push diagnostics: %w", err)
	}
	defer stmt.Close()

	now := formatTime(nowFunc())
	for _, d := range batch {
		if d.DiagnosticID == "" {
			return fmt.Errorf("hub: diagnostic missing diagnostic_id")
		}
		createdAt := d.CreatedAt
		if createdAt == "" {
			createdAt = now
		}
		updatedAt := d.UpdatedAt
		if updatedAt == "" {
			updatedAt = now
		}
		if _, err := stmt.Exec(
			d.DiagnosticID, d.RepoID, d.Source, d.Severity, d.Category, d.FilePath,
			intPtrToNull(d.Line), intPtrToNull(d.Column),
			d.Title, d.Description, d.Suggestion,
			boolToInt(d.Resolved), boolToInt(d.Actionable), d.ExternalRef, createdAt, updatedAt,
		); err != nil {
			return fmt.Errorf("hub: push diagnostic %s: %w", d.DiagnosticID, err)
		}
	}
	return tx.Commit()
}

// ClearDiagnostics deletes rows for the given repo, optionally scoped to
// one source. An empty repoID clears nothing (callers must be explicit).
func (h *Hub) ClearDiagnostics(repoID, source string) error {
	if h.closed {
		return ErrClosed
	}
	if repoID == "" {
		return fmt.Errorf("hub: clear diagnostics requires a repo id")
	}
	if source == "" {
		_, err := h.db.Exec("DELETE FROM unified_diagnostics WHERE repo_id = ?", repoID)
		if err != nil {
			return fmt.Errorf("hub: clear diagnostics for %s: %w", repoID, err)
		}
		return nil
	}
	_, err := h.db.Exec("DELETE FROM unified_diagnostics WHERE repo_id = ? AND source = ?", repoID, source)
	if err != nil {
		return fmt.Errorf("hub: clear diagnostics for %s/%s: %w", repoID, source, err)
	}
	return nil
}

// GetDiagnostics returns diagnostics matching filter, ordered by
// updated_at descending (§8 scenario 6).
func (h *Hub) GetDiagnostics(filter DiagnosticFilter) ([]Diagnostic, error) {
	if h.closed {
		return nil, ErrClosed
	}
	var where []string
	var args []any

	if filter.RepoID != "" {
		where = append(where, "repo_id = ?")
		args = append(args, filter.RepoID)
	}
	if filter.Source != "" {
		where = append(where, "source = ?")
		args = append(args, filter.Source)
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.FilePath != "" {
		where = append(where, "file_path = ?")
		args = append(args, filter.FilePath)
	}
	if filter.Resolved != nil {
		where = append(where, "resolved = ?")
		args = append(args, boolToInt(*filter.Resolved))
	}
	if filter.Actionable != nil {
		where = append(where, "actionable = ?")
		args = append(args, boolToInt(*filter.Actionable))
	}
	if len(filter.Severities) > 0 {
		placeholders := make([]string, len(filter.Severities))
		for i, sev := range filter.Severities {
			placeholders[i] = "?"
			args = append(args, sev)
		}
		where = append(where, "severity IN ("+strings.Join(placeholders, ", ")+")")
	}

	query := `SELECT diagnostic_id, repo_id, source, severity, category, file_path, line, column,
		title, description, suggestion, resolved, actionable, external_ref, created_at, updated_at
		FROM unified_diagnostics`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY updated_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := h.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("hub: get diagnostics: %w", err)
	}
	defer rows.Close()

	var out []Diagnostic
	for rows.Next() {
		var d Diagnostic
		var resolved, actionable int64
		var line, column sql.NullInt64
		var category, filePath, description, suggestion, externalRef sql.NullString
		if err := rows.Scan(&d.DiagnosticID, &d.RepoID, &d.Source, &d.Severity, &category,
			&filePath, &line, &column, &d.Title, &description, &suggestion,
			&resolved, &actionable, &externalRef, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("hub: scan diagnostic row: %w", err)
		}
		d.Category = category.String
		d.FilePath = filePath.String
		d.Description = description.String
		d.Suggestion = suggestion.String
		d.ExternalRef = externalRef.String
		d.Line = nullToIntPtr(line)
		d.Column = nullToIntPtr(column)
		d.Resolved = resolved != 0
		d.Actionable = actionable != 0
		out = append(out, d)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func intPtrToNull(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullToIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
