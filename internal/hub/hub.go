// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package hub implements the Central Hub (C10): a workspace-wide registry
// of repositories plus a unified diagnostics table, persisted in a single
// modernc.org/sqlite file. Grounded directly on other_examples'
// SimplyLiz-CodeMCP internal/federation/index.go: the WAL connection
// string, the schema_version-row migration check, UpsertRepo's
// ON CONFLICT...DO UPDATE, and the RFC3339 formatTime/parseTime helpers,
// renamed onto this system's repositories/unified_diagnostics schema.
package hub

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrClosed is returned by any Hub method called after Close.
var ErrClosed = errors.New("hub: database is closed")

// nowFunc is a test seam for registered_at/created_at timestamps.
var nowFunc = time.Now

// Hub is a handle onto one workspace's central.db.
type Hub struct {
	db     *sql.DB
	closed bool
}

// Open opens or creates the hub database at path, applying the schema if
// missing (init() in §4.10's terms — idempotent).
func Open(path string) (*Hub, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("hub: open %s: %w", path, err)
	}

	h := &Hub{db: db}
	if err := h.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

func (h *Hub) initSchema() error {
	var version int
	err := h.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		if _, execErr := h.db.Exec(schema); execErr != nil {
			return fmt.Errorf("hub: create schema: %w", execErr)
		}
		if _, execErr := h.db.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); execErr != nil {
			return fmt.Errorf("hub: set schema version: %w", execErr)
		}
	case err != nil:
		if _, execErr := h.db.Exec(schema); execErr != nil {
			return fmt.Errorf("hub: create schema: %w", execErr)
		}
		if _, execErr := h.db.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", currentSchemaVersion); execErr != nil {
			return fmt.Errorf("hub: set schema version: %w", execErr)
		}
	}
	return nil
}

// Close releases the database handle. Subsequent calls on h are errors.
func (h *Hub) Close() error {
	if h.closed {
		return ErrClosed
	}
	h.closed = true
	return h.db.Close()
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
