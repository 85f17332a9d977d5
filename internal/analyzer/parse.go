// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package analyzer

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/devac-dev/codegraph/internal/parser"
)

// parseFiles runs phase 3 (parse), dispatching to parseFilesSequential
// for small file sets and parseFilesParallel above a 10-file threshold,
// mirroring the teacher's parseFilesParallel/parseFilesSequential split
// in pkg/ingestion/local_pipeline.go.
func (a *Analyzer) parseFiles(ctx context.Context, files []DiscoveredFile, contents map[string][]byte) ([]parser.Result, int) {
	if len(files) == 0 {
		return nil, 0
	}
	if len(files) < 10 || a.cfg.ParseWorkers <= 1 {
		return a.parseFilesSequential(ctx, files, contents)
	}
	return a.parseFilesParallel(ctx, files, contents)
}

func (a *Analyzer) parseOne(f DiscoveredFile, contents map[string][]byte) (parser.Result, bool) {
	ext := filepath.Ext(f.Path)
	p, ok, err := a.router.GetForExt(ext)
	if err != nil || !ok {
		return parser.Result{}, false
	}
	sp, ok := p.(parser.StructuralParser)
	if !ok {
		return parser.Result{}, false
	}
	result, parseErr := sp.Parse(f.Path, contents[f.Path], parser.PackageContext{
		Repo:    a.cfg.Repo,
		Package: a.cfg.Package,
		Branch:  a.cfg.Branch,
	})
	if parseErr != nil {
		a.logger.Warn("analyzer.parse.error", "path", f.Path, "err", parseErr)
		return parser.Result{}, false
	}
	return result, true
}

func (a *Analyzer) parseFilesSequential(ctx context.Context, files []DiscoveredFile, contents map[string][]byte) ([]parser.Result, int) {
	var results []parser.Result
	errCount := 0
	for _, f := range files {
		select {
		case <-ctx.Done():
			return results, errCount
		default:
		}
		r, ok := a.parseOne(f, contents)
		if !ok {
			errCount++
			continue
		}
		errCount += len(r.ParseErrors)
		results = append(results, r)
	}
	return results, errCount
}

func (a *Analyzer) parseFilesParallel(ctx context.Context, files []DiscoveredFile, contents map[string][]byte) ([]parser.Result, int) {
	jobs := make(chan int, len(files))
	type slot struct {
		result parser.Result
		ok     bool
	}
	out := make([]slot, len(files))
	var errCount int32

	var wg sync.WaitGroup
	for w := 0; w < a.cfg.ParseWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				r, ok := a.parseOne(files[i], contents)
				if !ok {
					atomic.AddInt32(&errCount, 1)
					continue
				}
				atomic.AddInt32(&errCount, int32(len(r.ParseErrors)))
				out[i] = slot{result: r, ok: true}
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var results []parser.Result
	for _, s := range out {
		if s.ok {
			results = append(results, s.result)
		}
	}
	return results, int(errCount)
}
