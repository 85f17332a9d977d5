// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package rules implements the Rule Engine (C6): a priority-ordered list
// of declarative match/emit rules shared by the GroupingEngine (container
// tags) and SignificanceEngine (ranked importance levels), grounded on
// the teacher's RoleFilters/RoleFiltersWithCustom regex-based role
// classification in pkg/tools/semantic.go and pkg/tools/services.go.
package rules

import "sort"

// Input is the fact base a Rule inspects. Not every field is populated
// for every classification pass: GroupingEngine mostly reads FilePath,
// SignificanceEngine mostly reads Operation/Module/Provider.
type Input struct {
	FilePath  string
	Name      string
	CodeText  string
	Operation string // raw effect operation, e.g. "sql.query"
	Module    string // import/module the raw effect came through
	Provider  string // best-effort provider hint, e.g. "postgres"
}

// Rule is one priority-ordered match/emit pair. Match decides whether the
// rule applies to in; Emit computes the tag it assigns. The first rule
// (in descending priority order) whose Match returns true wins, unless
// that rule sets Continue, in which case evaluation keeps scanning for
// further matches (§4.6: "first-wins unless a rule declares continue").
type Rule struct {
	ID       string
	Priority int
	Match    func(Input) bool
	Emit     func(Input) string
	Continue bool
}

// Match is one winning rule from EvaluateAll: its emitted tag and id.
type Match struct {
	Tag    string
	RuleID string
}

// Engine evaluates an ordered rule list against an Input and returns the
// winning rule's emitted tag. Both GroupingEngine and SignificanceEngine
// embed one Engine; they differ only in their default rule sets and the
// vocabulary of tags those rules emit.
type Engine struct {
	rules []Rule
}

// NewEngine sorts rules by descending priority (stable, so equal-priority
// rules keep caller order) and returns a ready-to-use Engine.
func NewEngine(rules []Rule) *Engine {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority > sorted[j].Priority })
	return &Engine{rules: sorted}
}

// Evaluate returns the tag emitted by the first matching rule, and its id
// for auditability. ok is false when no rule matches. Equivalent to
// taking the first result of EvaluateAll.
func (e *Engine) Evaluate(in Input) (tag string, ruleID string, ok bool) {
	matches := e.EvaluateAll(in)
	if len(matches) == 0 {
		return "", "", false
	}
	return matches[0].Tag, matches[0].RuleID, true
}

// EvaluateAll returns every matching rule's tag, in priority order.
// Evaluation stops at the first match unless that rule sets Continue, in
// which case scanning resumes with the remaining lower-priority rules —
// so a classification may emit multiple tags.
func (e *Engine) EvaluateAll(in Input) []Match {
	var out []Match
	for _, r := range e.rules {
		if !r.Match(in) {
			continue
		}
		out = append(out, Match{Tag: r.Emit(in), RuleID: r.ID})
		if !r.Continue {
			break
		}
	}
	return out
}

// Rules returns the engine's rule list in evaluation order, for
// diagnostics and testing.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}
