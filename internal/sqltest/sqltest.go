// Copyright 2024-present The Transmeta Authors. All rights reserved.
// This source code is licensed under the Apache 2.0 license found
// in the LICENSE file in the root directory of this source tree.

// Package sqltest provides helpers for writing driver tests against
// catalog queries with sqlmock.
package sqltest

import (
	"database/sql/driver"
	"regexp"
	"strings"

	"github.com/DATA-DOG/go-sqlmock"
)

// Rows builds sqlmock rows from a catalog query result rendered the
// way database shells print it. The first content line is the column
// header; cell values are text, except "nil" and "NULL" which scan as
// SQL NULL. For example:
//
//	+-------------+-------------+-------------+
//	| column_name | column_type | is_nullable |
//	+-------------+-------------+-------------+
//	| title_en    | text        | YES         |
//	| title_es    | text        | NO          |
//	+-------------+-------------+-------------+
func Rows(table string) *sqlmock.Rows {
	var rows *sqlmock.Rows
	for _, line := range strings.Split(table, "\n") {
		cells, ok := splitRow(line)
		if !ok {
			continue
		}
		if rows == nil {
			rows = sqlmock.NewRows(cells)
			continue
		}
		values := make([]driver.Value, len(cells))
		for i, c := range cells {
			switch c {
			case "", "nil", "NULL":
			default:
				values[i] = c
			}
		}
		rows.AddRow(values...)
	}
	return rows
}

// splitRow splits one rendered line into its trimmed cells. Border
// and empty lines report false.
func splitRow(line string) ([]string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "+") {
		return nil, false
	}
	cells := strings.Split(strings.Trim(line, "|"), "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells, true
}

// Escape turns a statement into an anchored sqlmock expectation. All
// regular expression metacharacters are escaped, and whitespace runs
// are collapsed to a single space the same way the sqlmock matcher
// strips the executed query, so indented multi-line constants match.
func Escape(query string) string {
	return regexp.QuoteMeta(strings.Join(strings.Fields(query), " ")) + "$"
}
