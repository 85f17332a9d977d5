// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package rules

import "regexp"

// Container tags a DomainEffect's GroupTag may hold (§3, §4.6). These are
// the same architectural seams this repo's own packages are organized
// into; the default grouping rules below dogfood that layout as the
// illustrative rule set an operator starts from.
const (
	GroupAnalysis   = "analysis"
	GroupStorage    = "storage"
	GroupFederation = "federation"
	GroupAPI        = "api"
	GroupRules      = "rules"
	GroupViews      = "views"
)

// GroupingEngine classifies a node's source file into a container tag.
type GroupingEngine struct {
	engine *Engine
}

// NewGroupingEngine builds a GroupingEngine from rules, falling back to
// DefaultGroupingRules when rules is nil.
func NewGroupingEngine(customRules []Rule) *GroupingEngine {
	if customRules == nil {
		customRules = DefaultGroupingRules()
	}
	return &GroupingEngine{engine: NewEngine(customRules)}
}

// Classify returns the highest-priority container tag for in, or "" if
// nothing matches. DomainEffect.GroupTag (§3) is a single field, so
// callers writing it use this single-tag view.
func (g *GroupingEngine) Classify(in Input) (tag string, ruleID string, ok bool) {
	return g.engine.Evaluate(in)
}

// ClassifyAll returns every container tag in matches for in, honoring
// Continue-marked rules (§4.6: GroupingEngine matches may emit multiple
// tags). Callers that need more than DomainEffect.GroupTag's single slot
// — diagnostics, audits — use this view.
func (g *GroupingEngine) ClassifyAll(in Input) []Match {
	return g.engine.EvaluateAll(in)
}

// filePatternRule builds a Rule that matches when pattern (compiled once)
// finds FilePath, mirroring the teacher's regex_matches(file_path, ...)
// condition style.
func filePatternRule(id string, priority int, pattern, tag string) Rule {
	re := regexp.MustCompile(pattern)
	return Rule{
		ID:       id,
		Priority: priority,
		Match:    func(in Input) bool { return re.MatchString(in.FilePath) },
		Emit:     func(Input) string { return tag },
	}
}

// DefaultGroupingRules is the illustrative container-tag rule set an
// operator's project.yaml can override or extend (§4.6).
func DefaultGroupingRules() []Rule {
	return []Rule{
		filePatternRule("grouping.views", 50, `(?i)(/views/|_view\.|viewmodel)`, GroupViews),
		filePatternRule("grouping.rules", 45, `(?i)(/rules/|rule_engine|policy)`, GroupRules),
		filePatternRule("grouping.federation", 40, `(?i)(/query/|/federation/|federated)`, GroupFederation),
		filePatternRule("grouping.storage", 35, `(?i)(/seedstore/|/storage/|/hub/|_store\.)`, GroupStorage),
		filePatternRule("grouping.api", 30, `(?i)(^cmd/|/api/|/handlers?/|/controllers?/)`, GroupAPI),
		filePatternRule("grouping.analysis", 25, `(?i)(/analyzer/|/parser/|/resolver/|/watch/)`, GroupAnalysis),
	}
}
