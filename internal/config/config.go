// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads the workspace config file (.devac/config.yaml) and
// applies environment overrides, grounded on the teacher's ProjectConfig
// defaults-filling shape in internal/bootstrap/bootstrap.go (zero-value
// fields get sensible defaults rather than erroring).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ResolverConfig holds per-language C5 resolver settings.
type ResolverConfig struct {
	// TimeoutMs is loaded from timeout_ms ("go" defaults to 5000, and
	// SEMANTIC_GO_TIMEOUT_MS overrides it). The C5 resolver does not read
	// it; no resolve pass is bounded by it.
	TimeoutMs int `yaml:"timeout_ms"`
}

// Config is the parsed shape of .devac/config.yaml plus env overrides.
type Config struct {
	// SeedRoot is loaded from seed_root (default ".devac/seeds"), and
	// DEVAC_SEED_ROOT overrides it. C2 does not read this field: seedstore
	// places each seed in <package>/.seed, or in the directory named by
	// DEVAC_SEED_ROOT joined to the package root.
	SeedRoot string `yaml:"seed_root"`

	// HubDir overrides where C10's central.db lives, default
	// "<workspace>/.devac/hub".
	HubDir string `yaml:"hub_dir"`

	// DebounceMs is C9's quiescence window before re-running the analyzer.
	DebounceMs int `yaml:"debounce_ms"`

	// QueryMemoryLimitMB is loaded from query_memory_limit_mb (default 256).
	// C8's query engine does not read it; its page cache is not bounded by it.
	QueryMemoryLimitMB int `yaml:"query_memory_limit_mb"`

	// Resolvers maps a language name ("go", "typescript", "python") to its
	// resolver settings.
	Resolvers map[string]ResolverConfig `yaml:"resolvers"`
}

// defaults matches what an empty or partial config.yaml resolves to.
func defaults() Config {
	return Config{
		SeedRoot:           ".devac/seeds",
		HubDir:             ".devac/hub",
		DebounceMs:         100,
		QueryMemoryLimitMB: 256,
		Resolvers: map[string]ResolverConfig{
			"go": {TimeoutMs: 5000},
		},
	}
}

// Load reads workspaceDir/.devac/config.yaml if present, fills unset
// fields with defaults, then applies environment overrides
// (SEMANTIC_GO_TIMEOUT_MS, HUB_DIR, DEVAC_SEED_ROOT, DEVAC_DEBOUNCE_MS). A missing config
// file is not an error: Load returns pure defaults plus env overrides.
func Load(workspaceDir string) (Config, error) {
	cfg := defaults()

	path := filepath.Join(workspaceDir, ".devac", "config.yaml")
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fromFile Config
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		mergeInto(&cfg, fromFile)
	case os.IsNotExist(err):
		// no config file: defaults stand
	default:
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)

	if cfg.SeedRoot == "" {
		return Config{}, fmt.Errorf("config: seed_root must not be empty")
	}
	return cfg, nil
}

// mergeInto overlays non-zero fields of override onto base.
func mergeInto(base *Config, override Config) {
	if override.SeedRoot != "" {
		base.SeedRoot = override.SeedRoot
	}
	if override.HubDir != "" {
		base.HubDir = override.HubDir
	}
	if override.DebounceMs != 0 {
		base.DebounceMs = override.DebounceMs
	}
	if override.QueryMemoryLimitMB != 0 {
		base.QueryMemoryLimitMB = override.QueryMemoryLimitMB
	}
	for lang, rc := range override.Resolvers {
		if base.Resolvers == nil {
			base.Resolvers = map[string]ResolverConfig{}
		}
		base.Resolvers[lang] = rc
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DEVAC_SEED_ROOT"); v != "" {
		cfg.SeedRoot = v
	}
	if v := os.Getenv("HUB_DIR"); v != "" {
		cfg.HubDir = v
	}
	if v := os.Getenv("DEVAC_DEBOUNCE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.DebounceMs = ms
		}
	}
	if v := os.Getenv("SEMANTIC_GO_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			if cfg.Resolvers == nil {
				cfg.Resolvers = map[string]ResolverConfig{}
			}
			rc := cfg.Resolvers["go"]
			rc.TimeoutMs = ms
			cfg.Resolvers["go"] = rc
		}
	}
}
