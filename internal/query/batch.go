// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package query

import (
	"database/sql"
	"fmt"
	"strings"
)

// targetRowsPerStatement bounds how many rows one multi-row INSERT carries,
// the row-count analogue of the teacher's Batcher.targetMutations in
// pkg/ingestion/batcher.go — there it bounds Datalog mutation statements
// per script; here it bounds SQL value-tuples per INSERT so a single
// statement never approaches SQLite's bound-parameter ceiling.
const targetRowsPerStatement = 200

// bulkInsert loads rows (each a slice of driver values matching columns, in
// order) into table in batches of targetRowsPerStatement, inside tx.
func bulkInsert(tx *sql.Tx, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	rowPlaceholder := "(" + strings.Join(placeholders, ",") + ")"

	for start := 0; start < len(rows); start += targetRowsPerStatement {
		end := start + targetRowsPerStatement
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		var sb strings.Builder
		fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ","))
		args := make([]any, 0, len(batch)*len(columns))
		for i, row := range batch {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(rowPlaceholder)
			args = append(args, row...)
		}

		if _, err := tx.Exec(sb.String(), args...); err != nil {
			return fmt.Errorf("query: bulk insert %s: %w", table, err)
		}
	}
	return nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
