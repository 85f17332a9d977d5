// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"sort"
	"strings"
	"sync"
)

// Index is the in-memory symbol index used by C4/C5 during a single
// analysis run: it satisfies the same contract the SQLite-backed C8 engine
// offers for cross-package lookups (§4.1), just scoped to one package.
type Index struct {
	mu         sync.RWMutex
	uriToID    map[string]EntityID
	idToURI    map[string]URI
	fileToIDs  map[string][]EntityID
	nameToIDs  map[string][]EntityID // exact short name -> ids, for wildcard scans
}

// NewIndex creates an empty symbol index.
func NewIndex() *Index {
	return &Index{
		uriToID:   make(map[string]EntityID),
		idToURI:   make(map[string]URI),
		fileToIDs: make(map[string][]EntityID),
		nameToIDs: make(map[string][]EntityID),
	}
}

// Put registers a symbol's id, canonical URI, declaring file, and short
// name. Re-registering the same id replaces its prior entry.
func (idx *Index) Put(id EntityID, uri URI, file, name string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	key := id.String()
	if old, ok := idx.idToURI[key]; ok {
		if oldURI := Format(old); idx.uriToID[oldURI] == id {
			delete(idx.uriToID, oldURI)
		}
		for _, m := range []map[string][]EntityID{idx.fileToIDs, idx.nameToIDs} {
			for k, ids := range m {
				kept := ids[:0]
				for _, e := range ids {
					if e != id {
						kept = append(kept, e)
					}
				}
				m[k] = kept
			}
		}
	}
	idx.uriToID[Format(uri)] = id
	idx.idToURI[key] = uri
	idx.fileToIDs[file] = append(idx.fileToIDs[file], id)
	idx.nameToIDs[name] = append(idx.nameToIDs[name], id)
}

// LookupURI returns the entity id addressed by uri.
func (idx *Index) LookupURI(uri URI) (EntityID, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	id, ok := idx.uriToID[Format(uri)]
	return id, ok
}

// LookupID returns the canonical URI for an entity id.
func (idx *Index) LookupID(id EntityID) (URI, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	uri, ok := idx.idToURI[id.String()]
	return uri, ok
}

// EntitiesInFile returns every entity id declared in file, in registration
// order.
func (idx *Index) EntitiesInFile(file string) []EntityID {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]EntityID, len(idx.fileToIDs[file]))
	copy(out, idx.fileToIDs[file])
	return out
}

// MatchName returns every entity id whose short name matches pattern.
// Patterns use "*" only (as a wildcard covering zero or more characters)
// and matching is case-sensitive.
func (idx *Index) MatchName(pattern string) []EntityID {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var out []EntityID
	if !strings.Contains(pattern, "*") {
		out = append(out, idx.nameToIDs[pattern]...)
		return out
	}

	names := make([]string, 0, len(idx.nameToIDs))
	for name := range idx.nameToIDs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if matchWildcard(name, pattern) {
			out = append(out, idx.nameToIDs[name]...)
		}
	}
	return out
}

// matchWildcard matches name against a pattern containing only "*" as a
// special character.
func matchWildcard(name, pattern string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return name == pattern
	}

	pos := 0
	if parts[0] != "" {
		if !strings.HasPrefix(name, parts[0]) {
			return false
		}
		pos = len(parts[0])
	}

	for i := 1; i < len(parts)-1; i++ {
		if parts[i] == "" {
			continue
		}
		idx := strings.Index(name[pos:], parts[i])
		if idx < 0 {
			return false
		}
		pos += idx + len(parts[i])
	}

	last := parts[len(parts)-1]
	if last == "" {
		return true
	}
	return strings.HasSuffix(name[pos:], last)
}
