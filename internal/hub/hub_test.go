// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package hub

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestHub(t *testing.T) *Hub {
	t.Helper()
	path := filepath.Join(t.TempDir(), "central.db")
	h, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func TestOpen_CreatesSchemaAndIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "central.db")

	h1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, h1.RegisterRepo("repo-a", "/repos/a", `{"lang":"go"}`))
	require.NoError(t, h1.Close())

	h2, err := Open(path)
	require.NoError(t, err)
	defer h2.Close()

	repos, err := h2.ListRepos()
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "repo-a", repos[0].ID)
}

func TestRegisterRepo_UpsertsOnConflict(t *testing.T) {
	h := openTestHub(t)

	require.NoError(t, h.RegisterRepo("repo-a", "/repos/a", "v1"))
	require.NoError(t, h.RegisterRepo("repo-a", "/repos/a-moved", "v2"))

	r, err := h.GetRepo("repo-a")
	require.NoError(t, err)
	assert.Equal(t, "/repos/a-moved", r.LocalPath)
	assert.Equal(t, "v2", r.Metadata)

	repos, err := h.ListRepos()
	require.NoError(t, err)
	assert.Len(t, repos, 1)
}

func TestGetRepo_NotFound(t *testing.T) {
	h := openTestHub(t)
	_, err := h.GetRepo("missing")
	assert.Error(t, err)
}

func TestUnregisterRepo_CascadesDiagnostics(t *testing.T) {
	h := openTestHub(t)
	require.NoError(t, h.RegisterRepo("repo-a", "/repos/a", ""))
	require.NoError(t, h.PushDiagnostics([]Diagnostic{
		{DiagnosticID: "d1", RepoID: "repo-a", Source: "rules", Severity: "warning", Title: "m1"},
	}))

	require.NoError(t, h.UnregisterRepo("repo-a"))

	diags, err := h.GetDiagnostics(DiagnosticFilter{RepoID: "repo-a"})
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestPushDiagnostics_UpsertsAndQueries(t *testing.T) {
	h := openTestHub(t)
	require.NoError(t, h.RegisterRepo("repo-a", "/repos/a", ""))

	require.NoError(t, h.PushDiagnostics([]Diagnostic{
		{DiagnosticID: "d1", RepoID: "repo-a", Source: "rules", Severity: "error", Category: "cycle", Title: "cycle found", Actionable: true},
		{DiagnosticID: "d2", RepoID: "repo-a", Source: "resolver", Severity: "warning", Category: "unresolved", Title: "missing import"},
	}))

	diags, err := h.GetDiagnostics(DiagnosticFilter{RepoID: "repo-a"})
	require.NoError(t, err)
	require.Len(t, diags, 2)

	require.NoError(t, h.PushDiagnostics([]Diagnostic{
		{DiagnosticID: "d1", RepoID: "repo-a", Source: "rules", Severity: "error", Category: "cycle", Title: "cycle found", Resolved: true, Actionable: true},
	}))

	diags, err = h.GetDiagnostics(DiagnosticFilter{RepoID: "repo-a", Resolved: boolPtr(true)})
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "d1", diags[0].DiagnosticID)
}

func TestGetDiagnostics_FiltersBySeverityList(t *testing.T) {
	h := openTestHub(t)
	require.NoError(t, h.RegisterRepo("repo-a", "/repos/a", ""))
	require.NoError(t, h.PushDiagnostics([]Diagnostic{
		{DiagnosticID: "d1", RepoID: "repo-a", Source: "rules", Severity: "error", Title: "m1"},
		{DiagnosticID: "d2", RepoID: "repo-a", Source: "rules", Severity: "warning", Title: "m2"},
		{DiagnosticID: "d3", RepoID: "repo-a", Source: "rules", Severity: "info", Title: "m3"},
	}))

	diags, err := h.GetDiagnostics(DiagnosticFilter{RepoID: "repo-a", Severities: []string{"error", "warning"}})
	require.NoError(t, err)
	assert.Len(t, diags, 2)
}

func TestGetDiagnostics_OrdersByUpdatedAtDescending(t *testing.T) {
	h := openTestHub(t)
	require.NoError(t, h.RegisterRepo("repo-a", "/repos/a", ""))
	require.NoError(t, h.PushDiagnostics([]Diagnostic{
		{DiagnosticID: "d1", RepoID: "repo-a", Source: "tsc", Severity: "error", Title: "oldest", UpdatedAt: "2026-01-01T00:00:00Z"},
		{DiagnosticID: "d2", RepoID: "repo-a", Source: "tsc", Severity: "error", Title: "newest", UpdatedAt: "2026-03-01T00:00:00Z"},
		{DiagnosticID: "d3", RepoID: "repo-a", Source: "tsc", Severity: "error", Title: "middle", UpdatedAt: "2026-02-01T00:00:00Z"},
	}))

	diags, err := h.GetDiagnostics(DiagnosticFilter{RepoID: "repo-a"})
	require.NoError(t, err)
	require.Len(t, diags, 3)
	assert.Equal(t, "d2", diags[0].DiagnosticID)
	assert.Equal(t, "d3", diags[1].DiagnosticID)
	assert.Equal(t, "d1", diags[2].DiagnosticID)
}

func TestPushDiagnostics_UpsertRefreshesUpdatedAt(t *testing.T) {
	h := openTestHub(t)
	require.NoError(t, h.RegisterRepo("repo-a", "/repos/a", ""))
	require.NoError(t, h.PushDiagnostics([]Diagnostic{
		{DiagnosticID: "d1", RepoID: "repo-a", Source: "tsc", Severity: "error", Title: "t1", UpdatedAt: "2026-01-01T00:00:00Z"},
	}))
	require.NoError(t, h.PushDiagnostics([]Diagnostic{
		{DiagnosticID: "d1", RepoID: "repo-a", Source: "tsc", Severity: "error", Title: "t1", UpdatedAt: "2026-05-01T00:00:00Z"},
	}))

	diags, err := h.GetDiagnostics(DiagnosticFilter{RepoID: "repo-a"})
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "2026-05-01T00:00:00Z", diags[0].UpdatedAt)
}

func TestClearDiagnostics_ScopedBySource(t *testing.T) {
	h := openTestHub(t)
	require.NoError(t, h.RegisterRepo("repo-a", "/repos/a", ""))
	require.NoError(t, h.PushDiagnostics([]Diagnostic{
		{DiagnosticID: "d1", RepoID: "repo-a", Source: "rules", Severity: "error", Title: "m1"},
		{DiagnosticID: "d2", RepoID: "repo-a", Source: "resolver", Severity: "warning", Title: "m2"},
	}))

	require.NoError(t, h.ClearDiagnostics("repo-a", "rules"))

	diags, err := h.GetDiagnostics(DiagnosticFilter{RepoID: "repo-a"})
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "d2", diags[0].DiagnosticID)
}

func TestClearDiagnostics_RequiresRepoID(t *testing.T) {
	h := openTestHub(t)
	err := h.ClearDiagnostics("", "")
	assert.Error(t, err)
}

func TestClose_RejectsSubsequentCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "central.db")
	h, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, h.Close())

	err = h.Close()
	assert.ErrorIs(t, err, ErrClosed)

	_, err = h.ListRepos()
	assert.ErrorIs(t, err, ErrClosed)

	err = h.RegisterRepo("x", "/x", "")
	assert.ErrorIs(t, err, ErrClosed)
}

func boolPtr(b bool) *bool { return &b }
