// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package query

import (
	"fmt"
	"strings"
)

// FormatText renders a Result as the CLI's non-JSON tabular output,
// grounded on the teacher's FormatQueryResult/anyToStr in pkg/tools/
// types.go, adapted from []any rows decoded off CozoScript JSON to the
// []any rows database/sql.Rows.Scan produces directly.
func FormatText(r Result, sql string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d results", r.RowCount)
	if r.Readiness != "" && r.Readiness != ReadinessReady {
		fmt.Fprintf(&sb, " (%s)", r.Readiness)
	}
	sb.WriteString("\n\n")

	if r.RowCount == 0 {
		sb.WriteString("No results found.\n")
	}
	for i, row := range r.Rows {
		fmt.Fprintf(&sb, "--- Result %d ---\n", i+1)
		for j, val := range row {
			if j >= len(r.Columns) {
				continue
			}
			valStr := anyToStr(val)
			if len(valStr) > 200 {
				valStr = valStr[:200] + "..."
			}
			fmt.Fprintf(&sb, "  %s: %s\n", r.Columns[j], valStr)
		}
		sb.WriteString("\n")
	}

	for _, w := range r.Warnings {
		fmt.Fprintf(&sb, "warning: %s\n", w)
	}

	sb.WriteString("---\nSQL:\n")
	sb.WriteString(sql)
	return sb.String()
}

func anyToStr(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case []byte:
		return string(val)
	case int64:
		return fmt.Sprintf("%d", val)
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", val), "0"), ".")
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", val)
	}
}
