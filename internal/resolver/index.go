// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package resolver implements the Semantic Resolver (C5): identity-only
// cross-file resolution of the unresolved edges and external refs that
// C4 structural parsers emit. No type inference is performed; resolution
// is export-name lookup against an index built from every package's
// public declarations, grounded on the teacher's CallResolver in
// pkg/ingestion/resolver.go (BuildIndex/globalFunctions/fileImports).
package resolver

import (
	"strings"
	"sync"

	"github.com/devac-dev/codegraph/internal/identity"
	"github.com/devac-dev/codegraph/internal/seedstore"
)

// Index is the repo-wide export registry: package path -> exported name
// -> entity id. It corresponds to the teacher's globalFunctions, widened
// to all exported kinds (functions, methods, types), not just functions.
type Index struct {
	mu              sync.RWMutex
	exports         map[string]map[string]identity.EntityID
	moduleToPackage map[string]string // cache of resolved module specifier -> package path
}

// NewIndex creates an empty export index.
func NewIndex() *Index {
	return &Index{
		exports:         make(map[string]map[string]identity.EntityID),
		moduleToPackage: make(map[string]string),
	}
}

// AddNode registers n in the index if it is publicly visible. pkgPath is
// the package's path as recorded on every Node emitted for it.
func (ix *Index) AddNode(pkgPath string, n seedstore.Node) {
	if n.Visibility != "public" {
		return
	}
	id, err := identity.ParseEntityID(n.EntityID)
	if err != nil {
		return
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.exports[pkgPath] == nil {
		ix.exports[pkgPath] = make(map[string]identity.EntityID)
	}
	ix.exports[pkgPath][n.Name] = id
	if bare := bareName(n.Name); bare != n.Name {
		ix.exports[pkgPath][bare] = id
	}
	// A package always resolves its own module specifier to itself,
	// matching the teacher's direct pkgPath -> pkgPath entry.
	ix.moduleToPackage[pkgPath] = pkgPath
}

// bareName strips a "Receiver.Method" qualifier down to "Method", so a
// dot-import or same-package call naming the method alone still matches.
func bareName(name string) string {
	if idx := strings.LastIndex(name, "."); idx != -1 {
		return name[idx+1:]
	}
	return name
}

// Lookup returns the entity id exported as name from pkgPath.
func (ix *Index) Lookup(pkgPath, name string) (identity.EntityID, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	names, ok := ix.exports[pkgPath]
	if !ok {
		return identity.EntityID{}, false
	}
	id, ok := names[name]
	return id, ok
}

// FindPackageByModule resolves a module specifier (an import path) to the
// local package path that declares it, mirroring the teacher's
// findPackageByImportPath: direct match first, then suffix match against
// every known package path, caching the result either way. ambiguous is
// true when more than one package path is a valid suffix match.
func (ix *Index) FindPackageByModule(modulePath string) (pkgPath string, ambiguous bool, ok bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if cached, exists := ix.moduleToPackage[modulePath]; exists {
		return cached, false, true
	}

	var matches []string
	for candidate := range ix.exports {
		if strings.HasSuffix(modulePath, candidate) || strings.HasSuffix(candidate, modulePath) {
			matches = append(matches, candidate)
		}
	}
	switch len(matches) {
	case 0:
		return "", false, false
	case 1:
		ix.moduleToPackage[modulePath] = matches[0]
		return matches[0], false, true
	default:
		return matches[0], true, true
	}
}

// Stats reports index size for diagnostics.
func (ix *Index) Stats() (packages, exportedNames int) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	packages = len(ix.exports)
	for _, names := range ix.exports {
		exportedNames += len(names)
	}
	return
}
