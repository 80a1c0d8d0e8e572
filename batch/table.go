// Copyright 2026 The Jusomap Authors
// SPDX-License-Identifier: Apache-2.0

// Package batch runs the address resolver over tabular CSV data and keeps
// the results in DuckDB.
package batch

// Table is an in-memory CSV table. Every cell is kept as text so that
// postal codes and lot numbers survive untouched.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, column := range t.Columns {
		if column == name {
			return i
		}
	}

	return -1
}

// cell returns the value at the given column index, tolerating ragged rows.
func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}

	return row[index]
}
