// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package analyzer

import (
	"context"
	"log/slog"

	"github.com/schollz/progressbar/v3"

	"github.com/devac-dev/codegraph/internal/router"
)

// RunAll analyzes every package in configs in turn, reporting progress
// via a progress bar when more than one package is queued (the analyze
// `--all` multi-package path uses this; C9 calls Analyzer.Run directly).
// The teacher has no multi-package progress surface of its own; this is
// new code giving github.com/schollz/progressbar/v3 — a teacher indirect
// dependency with no direct importer in the teacher's own source — its
// first direct import.
func RunAll(ctx context.Context, configs []Config, rtr *router.Router, newStore func(Config) Store, logger *slog.Logger) ([]Report, error) {
	reports := make([]Report, 0, len(configs))

	var bar *progressbar.ProgressBar
	if len(configs) > 1 {
		bar = progressbar.NewOptions(len(configs),
			progressbar.OptionSetDescription("analyzing packages"),
			progressbar.OptionShowCount(),
		)
	}

	for _, cfg := range configs {
		select {
		case <-ctx.Done():
			return reports, ctx.Err()
		default:
		}

		a := New(cfg, rtr, newStore(cfg), logger)
		report, err := a.Run(ctx)
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	return reports, nil
}
