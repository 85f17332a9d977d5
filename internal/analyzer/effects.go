// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package analyzer

import (
	"encoding/json"
	"regexp"
	"time"

	"github.com/devac-dev/codegraph/internal/resolver"
	"github.com/devac-dev/codegraph/internal/rules"
	"github.com/devac-dev/codegraph/internal/seedstore"
)

// moduleEffectRule maps a module-specifier pattern to the raw effect it
// implies. This is the bridge between C4's module-qualified call edges
// and C6's rule engine: before a raw effect can be classified by
// significance or grouping, it must first be recognized as an effect at
// all. The table is intentionally small and illustrative, matching the
// domain-effect examples in §3/§4.6.
var moduleEffectRules = []struct {
	pattern   *regexp.Regexp
	domain    string
	operation string
	provider  string
}{
	{regexp.MustCompile(`(?i)database/sql|gorm|pgx|\bpq\b|sqlx`), "storage", "sql.query", "postgres"},
	{regexp.MustCompile(`(?i)mongo`), "storage", "document.query", "mongodb"},
	{regexp.MustCompile(`(?i)redis`), "storage", "redis.command", "redis"},
	{regexp.MustCompile(`(?i)net/http|axios|fetch|requests\b`), "network", "http.call", ""},
	{regexp.MustCompile(`(?i)kafka|rabbitmq|amqp`), "messaging", "queue.publish", "kafka"},
	{regexp.MustCompile(`(?i)log/slog|logrus|zap|winston|logging\b`), "observability", "log.write", ""},
	{regexp.MustCompile(`(?i)prometheus|client_golang`), "observability", "metrics.record", "prometheus"},
}

func classifyModule(modulePath string) (domain, operation, provider string, ok bool) {
	for _, r := range moduleEffectRules {
		if r.pattern.MatchString(modulePath) {
			return r.domain, r.operation, r.provider, true
		}
	}
	return "", "", "", false
}

// applyRules is phase 5: recognize raw effects from qualified call edges,
// then classify each one's significance (C6 SignificanceEngine) and its
// container grouping (C6 GroupingEngine) into a DomainEffect row.
func (a *Analyzer) applyRules(edges []seedstore.Edge, refs []seedstore.ExternalRef) []seedstore.DomainEffect {
	fileImports := resolver.BuildFileImports(refs)
	now := time.Now().Unix()

	var effects []seedstore.DomainEffect
	for _, e := range edges {
		qualifier, ok := edgeQualifier(e)
		if !ok {
			continue
		}
		modulePath, ok := fileImports[e.SourceFilePath][qualifier]
		if !ok {
			continue
		}
		domain, operation, provider, ok := classifyModule(modulePath)
		if !ok {
			continue
		}

		level, _, _ := a.significance.Classify(rules.Input{Operation: operation, Module: modulePath, Provider: provider})
		if level == "" {
			level = rules.SignificanceHidden
		}
		group, _, _ := a.grouping.Classify(rules.Input{FilePath: e.SourceFilePath})

		effects = append(effects, seedstore.DomainEffect{
			SourceEntityID:    e.SourceEntityID,
			Domain:            domain,
			Provider:          provider,
			Operation:         operation,
			SignificanceLevel: level,
			GroupTag:          group,
			Branch:            a.cfg.Branch,
			UpdatedAt:         now,
		})
	}
	return effects
}

func edgeQualifier(e seedstore.Edge) (string, bool) {
	if e.PropertiesJSON == "" {
		return "", false
	}
	var props struct {
		Qualifier string `json:"qualifier"`
	}
	if err := json.Unmarshal([]byte(e.PropertiesJSON), &props); err != nil || props.Qualifier == "" {
		return "", false
	}
	return props.Qualifier, true
}
