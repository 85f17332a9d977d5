// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package analyzer

import "github.com/devac-dev/codegraph/internal/seedstore"

// diffNodes merges the current run's live nodes against the prior
// generation: anything present in prev but missing from current becomes
// (or stays) a tombstone. Tombstones persist across generations — a row
// deleted two generations ago and still absent is re-emitted with
// IsDeleted still true rather than being dropped, per the resolved §9
// Open Question decision that C7 never silently discards history.
func diffNodes(prev, current []seedstore.Node, now int64) []seedstore.Node {
	currentByID := make(map[string]bool, len(current))
	for _, n := range current {
		currentByID[n.EntityID] = true
	}

	out := make([]seedstore.Node, 0, len(current)+len(prev))
	for _, n := range current {
		n.IsDeleted = false
		n.UpdatedAt = now
		out = append(out, n)
	}
	for _, n := range prev {
		if currentByID[n.EntityID] {
			continue // superseded by the live row above
		}
		n.IsDeleted = true
		n.UpdatedAt = prevOrNow(n.UpdatedAt, now)
		out = append(out, n)
	}
	return out
}

func diffEdges(prev, current []seedstore.Edge, now int64) []seedstore.Edge {
	key := func(e seedstore.Edge) string { return e.SourceEntityID + "->" + e.TargetEntityID + ":" + e.EdgeType }
	currentKeys := make(map[string]bool, len(current))
	for _, e := range current {
		currentKeys[key(e)] = true
	}

	out := make([]seedstore.Edge, 0, len(current)+len(prev))
	for _, e := range current {
		e.IsDeleted = false
		e.UpdatedAt = now
		out = append(out, e)
	}
	for _, e := range prev {
		if currentKeys[key(e)] {
			continue
		}
		e.IsDeleted = true
		e.UpdatedAt = prevOrNow(e.UpdatedAt, now)
		out = append(out, e)
	}
	return out
}

// diffRefs never removes a row, matching diffNodes/diffEdges, but an
// ExternalRef's identity also carries its Resolution/ResolvedEntityID
// annotation from C5 — those are preserved verbatim from the current
// run's copy, since a ref found again this generation always reflects
// this generation's resolution attempt, not a stale one.
func diffRefs(prev, current []seedstore.ExternalRef, now int64) []seedstore.ExternalRef {
	key := func(r seedstore.ExternalRef) string { return r.SourceFile + ":" + r.Name + ":" + r.ModuleSpecifier }
	currentKeys := make(map[string]bool, len(current))
	for _, r := range current {
		currentKeys[key(r)] = true
	}

	out := make([]seedstore.ExternalRef, 0, len(current)+len(prev))
	for _, r := range current {
		r.IsDeleted = false
		r.UpdatedAt = now
		out = append(out, r)
	}
	for _, r := range prev {
		if currentKeys[key(r)] {
			continue
		}
		r.IsDeleted = true
		r.UpdatedAt = prevOrNow(r.UpdatedAt, now)
		out = append(out, r)
	}
	return out
}

func diffEffects(prev, current []seedstore.DomainEffect, now int64) []seedstore.DomainEffect {
	key := func(e seedstore.DomainEffect) string { return e.SourceEntityID + ":" + e.Operation + ":" + e.Domain }
	currentKeys := make(map[string]bool, len(current))
	for _, e := range current {
		currentKeys[key(e)] = true
	}

	out := make([]seedstore.DomainEffect, 0, len(current)+len(prev))
	for _, e := range current {
		e.IsDeleted = false
		e.UpdatedAt = now
		out = append(out, e)
	}
	for _, e := range prev {
		if currentKeys[key(e)] {
			continue
		}
		e.IsDeleted = true
		e.UpdatedAt = prevOrNow(e.UpdatedAt, now)
		out = append(out, e)
	}
	return out
}

func prevOrNow(updatedAt, now int64) int64 {
	if updatedAt == 0 {
		return now
	}
	return updatedAt
}
