// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package resolver

import (
	"encoding/json"
	"path"
	"runtime"
	"sync"

	"github.com/devac-dev/codegraph/internal/identity"
	"github.com/devac-dev/codegraph/internal/seedstore"
)

// Resolver performs C5's identity-only resolution pass over one analysis
// generation's edges and external refs.
type Resolver struct {
	cfg Config
}

// New constructs a Resolver with cfg. Use LoadConfig or DefaultConfig to
// produce cfg.
func New(cfg Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// FileImports maps a source file to its alias -> module-specifier table,
// mirroring the teacher's fileImports index.
type FileImports map[string]map[string]string

// BuildFileImports derives FileImports from the unresolved external refs
// C4 emitted. Every ExternalRef doubles as an import-table row: its Alias
// is the local binding, ModuleSpecifier the module it came from. Without
// an Alias, an import record (Name == ModuleSpecifier) binds the last
// element of the module path, as an unaliased Go import does; any other
// ref binds its Name.
func BuildFileImports(refs []seedstore.ExternalRef) FileImports {
	fi := make(FileImports)
	for _, ref := range refs {
		alias := ref.Alias
		if alias == "" {
			alias = ref.Name
			if ref.Name == ref.ModuleSpecifier {
				alias = path.Base(ref.ModuleSpecifier)
			}
		}
		if fi[ref.SourceFile] == nil {
			fi[ref.SourceFile] = make(map[string]string)
		}
		fi[ref.SourceFile][alias] = ref.ModuleSpecifier
	}
	return fi
}

type callProperties struct {
	Qualifier      string `json:"qualifier"`
	UnresolvedName string `json:"unresolved_name"`
}

// Resolve resolves every edge whose target is identity.Unresolved and
// every ref whose Resolution is ResolutionUnresolved, returning new
// slices with resolved entries updated in place. Edges that cannot be
// resolved are returned unchanged; refs that cannot be resolved keep
// Resolution == unresolved, never deleted (§9 Open Question decision).
func (r *Resolver) Resolve(edges []seedstore.Edge, refs []seedstore.ExternalRef, index *Index) ([]seedstore.Edge, []seedstore.ExternalRef) {
	fileImports := BuildFileImports(refs)

	total := len(edges) + len(refs)
	if total < r.cfg.ParallelThreshold {
		return r.resolveEdgesSequential(edges, fileImports, index), r.resolveRefsSequential(refs, index)
	}
	return r.resolveEdgesParallel(edges, fileImports, index), r.resolveRefsParallel(refs, index)
}

func (r *Resolver) resolveEdgesSequential(edges []seedstore.Edge, fileImports FileImports, index *Index) []seedstore.Edge {
	out := make([]seedstore.Edge, len(edges))
	for i, e := range edges {
		out[i] = r.resolveEdge(e, fileImports, index)
	}
	return out
}

func (r *Resolver) resolveEdgesParallel(edges []seedstore.Edge, fileImports FileImports, index *Index) []seedstore.Edge {
	out := make([]seedstore.Edge, len(edges))
	jobs := make(chan int, len(edges))
	var wg sync.WaitGroup

	workers := r.cfg.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = r.resolveEdge(edges[i], fileImports, index)
			}
		}()
	}
	for i := range edges {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return out
}

func (r *Resolver) resolveRefsSequential(refs []seedstore.ExternalRef, index *Index) []seedstore.ExternalRef {
	out := make([]seedstore.ExternalRef, len(refs))
	for i, ref := range refs {
		out[i] = r.resolveRef(ref, index)
	}
	return out
}

func (r *Resolver) resolveRefsParallel(refs []seedstore.ExternalRef, index *Index) []seedstore.ExternalRef {
	out := make([]seedstore.ExternalRef, len(refs))
	jobs := make(chan int, len(refs))
	var wg sync.WaitGroup

	workers := r.cfg.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = r.resolveRef(refs[i], index)
			}
		}()
	}
	for i := range refs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return out
}

// resolveEdge leaves e untouched unless its target is the unresolved
// sentinel and a matching export is found.
func (r *Resolver) resolveEdge(e seedstore.Edge, fileImports FileImports, index *Index) seedstore.Edge {
	if e.TargetEntityID != identity.Unresolved || e.PropertiesJSON == "" {
		return e
	}

	var props callProperties
	if err := json.Unmarshal([]byte(e.PropertiesJSON), &props); err != nil {
		return e
	}

	if props.Qualifier != "" {
		if modulePath, ok := fileImports[e.SourceFilePath][props.Qualifier]; ok {
			if pkgPath, _, ok := index.FindPackageByModule(modulePath); ok {
				if id, ok := index.Lookup(pkgPath, props.UnresolvedName); ok {
					e.TargetEntityID = id.String()
					return e
				}
			}
		}
		return e
	}

	// Bare call: try same-package cross-file resolution first (identity
	// caller tells us which package it belongs to), then any dot-import.
	if callerID, err := identity.ParseEntityID(e.SourceEntityID); err == nil {
		if id, ok := index.Lookup(callerID.Package, props.UnresolvedName); ok {
			e.TargetEntityID = id.String()
			return e
		}
	}
	for alias, modulePath := range fileImports[e.SourceFilePath] {
		if alias != "." && alias != "default" && alias != "namespace" {
			continue
		}
		if pkgPath, _, ok := index.FindPackageByModule(modulePath); ok {
			if id, ok := index.Lookup(pkgPath, props.UnresolvedName); ok {
				e.TargetEntityID = id.String()
				return e
			}
		}
	}
	return e
}

func (r *Resolver) resolveRef(ref seedstore.ExternalRef, index *Index) seedstore.ExternalRef {
	if ref.Resolution != seedstore.ResolutionUnresolved {
		return ref
	}
	// Import-record refs (Name == ModuleSpecifier) identify a module, not
	// an exported symbol; they stay unresolved by design, there is no
	// single entity id to point them at.
	if ref.Name == ref.ModuleSpecifier {
		return ref
	}

	pkgPath, ambiguous, ok := index.FindPackageByModule(ref.ModuleSpecifier)
	if !ok {
		return ref
	}
	if ambiguous {
		ref.Resolution = seedstore.ResolutionAmbiguous
		return ref
	}
	if id, ok := index.Lookup(pkgPath, ref.Name); ok {
		ref.Resolution = seedstore.ResolutionResolved
		ref.ResolvedEntityID = id.String()
	}
	return ref
}
