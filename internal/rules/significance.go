// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package rules

import (
	"regexp"
	"strings"
)

// Significance levels a DomainEffect's SignificanceLevel may hold (§3).
// The order below is total: Rank gives every level a distinct integer so
// callers can sort or threshold on it without string comparisons.
const (
	SignificanceCritical  = "critical"
	SignificanceImportant = "important"
	SignificanceMinor     = "minor"
	SignificanceHidden    = "hidden"
)

var significanceRank = map[string]int{
	SignificanceCritical:  3,
	SignificanceImportant: 2,
	SignificanceMinor:     1,
	SignificanceHidden:    0,
}

// Rank returns level's position in the total order (higher is more
// significant), or -1 for an unrecognized level.
func Rank(level string) int {
	if r, ok := significanceRank[level]; ok {
		return r
	}
	return -1
}

// SignificanceEngine classifies a raw effect's (operation, module,
// provider) triple into one of the four significance levels.
type SignificanceEngine struct {
	engine *Engine
}

// NewSignificanceEngine builds a SignificanceEngine from rules, falling
// back to DefaultSignificanceRules when rules is nil.
func NewSignificanceEngine(customRules []Rule) *SignificanceEngine {
	if customRules == nil {
		customRules = DefaultSignificanceRules()
	}
	return &SignificanceEngine{engine: NewEngine(customRules)}
}

// Classify returns the significance level for in, or "" if nothing
// matches (callers should treat an unmatched raw effect as hidden).
func (s *SignificanceEngine) Classify(in Input) (level string, ruleID string, ok bool) {
	return s.engine.Evaluate(in)
}

func operationPatternRule(id string, priority int, pattern, level string) Rule {
	re := regexp.MustCompile(pattern)
	return Rule{
		ID:       id,
		Priority: priority,
		Match:    func(in Input) bool { return re.MatchString(in.Operation) },
		Emit:     func(Input) string { return level },
	}
}

// DefaultSignificanceRules is the illustrative operation-classification
// rule set (§4.6): data-plane effects are critical, network/API calls
// important, logging/metrics minor, everything else hidden. Grounded on
// the teacher's router/handler detection regexes in
// pkg/tools/semantic.go's RoleFilters (name-or-code-pattern matching,
// generalized here to operation-name matching).
func DefaultSignificanceRules() []Rule {
	return []Rule{
		operationPatternRule("significance.datastore", 50, `(?i)^(sql|db|redis|mongo|dynamo|s3|storage)\.`, SignificanceCritical),
		operationPatternRule("significance.messaging", 45, `(?i)^(queue|kafka|pubsub|grpc)\.`, SignificanceCritical),
		operationPatternRule("significance.network", 40, `(?i)^(http|net|rpc)\.`, SignificanceImportant),
		operationPatternRule("significance.observability", 20, `(?i)^(log|metrics|trace)\.`, SignificanceMinor),
		{
			ID:       "significance.default-hidden",
			Priority: 0,
			Match:    func(in Input) bool { return strings.TrimSpace(in.Operation) != "" },
			Emit:     func(Input) string { return SignificanceHidden },
		},
	}
}
