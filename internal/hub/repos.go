// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package hub

import (
	"database/sql"
	"fmt"
)

// Repo is one workspace-registered repository (§4.10).
type Repo struct {
	ID           string
	LocalPath    string
	Metadata     string
	RegisteredAt string
}

// RegisterRepo inserts or updates a repository row, keyed by ID, mirroring
// federation/index.go's UpsertRepo ON CONFLICT DO UPDATE idiom.
func (h *Hub) RegisterRepo(id, localPath, metadata string) error {
	if h.closed {
		return ErrClosed
	}
	if id == "" {
		return fmt.Errorf("hub: repo id is required")
	}
	_, err := h.db.Exec(`
		INSERT INTO repositories (id, local_path, metadata, registered_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			local_path = excluded.local_path,
			metadata = excluded.metadata
	`, id, localPath, metadata, formatTime(nowFunc()))
	if err != nil {
		return fmt.Errorf("hub: register repo %s: %w", id, err)
	}
	return nil
}

// UnregisterRepo removes a repository and cascades its diagnostics.
func (h *Hub) UnregisterRepo(id string) error {
	if h.closed {
		return ErrClosed
	}
	_, err := h.db.Exec("DELETE FROM repositories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("hub: unregister repo %s: %w", id, err)
	}
	return nil
}

// GetRepo returns one repository by ID.
func (h *Hub) GetRepo(id string) (Repo, error) {
	if h.closed {
		return Repo{}, ErrClosed
	}
	var r Repo
	var registeredAt string
	err := h.db.QueryRow(
		"SELECT id, local_path, metadata, registered_at FROM repositories WHERE id = ?", id,
	).Scan(&r.ID, &r.LocalPath, &r.Metadata, &registeredAt)
	if err == sql.ErrNoRows {
		return Repo{}, fmt.Errorf("hub: repo %s not found", id)
	}
	if err != nil {
		return Repo{}, fmt.Errorf("hub: get repo %s: %w", id, err)
	}
	r.RegisteredAt = registeredAt
	return r, nil
}

// ListRepos returns all registered repositories ordered by ID.
func (h *Hub) ListRepos() ([]Repo, error) {
	if h.closed {
		return nil, ErrClosed
	}
	rows, err := h.db.Query("SELECT id, local_path, metadata, registered_at FROM repositories ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("hub: list repos: %w", err)
	}
	defer rows.Close()

	var out []Repo
	for rows.Next() {
		var r Repo
		if err := rows.Scan(&r.ID, &r.LocalPath, &r.Metadata, &r.RegisteredAt); err != nil {
			return nil, fmt.Errorf("hub: scan repo row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
