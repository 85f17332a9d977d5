// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package resolver

import (
	"os"
	"runtime"
	"strconv"
	"time"
)

// Config tunes the resolver's dispatch strategy. Defaults match the
// teacher's hardcoded constants (1000-item sequential/parallel threshold,
// worker cap of 8); SEMANTIC_* env vars let an operator override them
// without a config file, matching the rest of this system's env-override
// convention (§2.1).
type Config struct {
	// ParallelThreshold is the minimum edge+ref count before the resolver
	// switches from sequential to worker-pool dispatch.
	ParallelThreshold int
	// MaxWorkers caps the worker pool regardless of GOMAXPROCS.
	MaxWorkers int
	// PerItemTimeout is loaded from SEMANTIC_FILE_TIMEOUT_MS (zero by
	// default). Resolve does not apply it: every edge and ref lookup runs
	// to completion with no deadline.
	PerItemTimeout time.Duration
}

// DefaultConfig returns the teacher-grounded defaults.
func DefaultConfig() Config {
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	return Config{
		ParallelThreshold: 1000,
		MaxWorkers:        workers,
		PerItemTimeout:    0,
	}
}

// LoadConfig applies SEMANTIC_PARALLEL_THRESHOLD, SEMANTIC_MAX_WORKERS,
// and SEMANTIC_FILE_TIMEOUT_MS on top of DefaultConfig. Malformed values
// are ignored (fails soft, per §4.5) rather than erroring out.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("SEMANTIC_PARALLEL_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.ParallelThreshold = n
		}
	}
	if v := os.Getenv("SEMANTIC_MAX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxWorkers = n
		}
	}
	if v := os.Getenv("SEMANTIC_FILE_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.PerItemTimeout = time.Duration(n) * time.Millisecond
		}
	}

	return cfg
}
