// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ".devac/seeds", cfg.SeedRoot)
	assert.Equal(t, 100, cfg.DebounceMs)
	assert.Equal(t, 5000, cfg.Resolvers["go"].TimeoutMs)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".devac"), 0o755))
	yamlContent := "seed_root: /tmp/custom-seeds\ndebounce_ms: 250\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".devac", "config.yaml"), []byte(yamlContent), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom-seeds", cfg.SeedRoot)
	assert.Equal(t, 250, cfg.DebounceMs)
	assert.Equal(t, 256, cfg.QueryMemoryLimitMB, "unset fields keep their default")
}

func TestLoad_EnvOverridesFileAndDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DEVAC_SEED_ROOT", "/env/seeds")
	t.Setenv("HUB_DIR", "/env/hub")
	t.Setenv("DEVAC_DEBOUNCE_MS", "999")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "/env/seeds", cfg.SeedRoot)
	assert.Equal(t, "/env/hub", cfg.HubDir)
	assert.Equal(t, 999, cfg.DebounceMs)
}

func TestLoad_MalformedYamlIsAnError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".devac"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".devac", "config.yaml"), []byte("seed_root: [unterminated"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}
