// Package table is the in-memory tabular representation shared by the File
// Reader, the Expression Engine, and the Validator. A Table's rows live only
// for the duration of one validation pass (spec.md §3 "Lifecycles").
package table

import "strings"

// Table holds ordered columns and ordered rows decoded from one input file.
// Rows are addressable by a 1-based index, matching the row numbers that
// appear in Findings (spec.md §4.3).
type Table struct {
	Columns []string
	Rows    [][]string // Rows[i][j]: row i (0-based internally), column j

	colIndex map[string]int
}

// New builds a Table from a header row and data rows, unknown/duplicate
// headers included as-is; callers decide what to do with them.
func New(columns []string, rows [][]string) *Table {
	t := &Table{Columns: columns, Rows: rows}
	t.buildIndex()
	return t
}

func (t *Table) buildIndex() {
	t.colIndex = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		key := strings.ToLower(strings.TrimSpace(c))
		if _, exists := t.colIndex[key]; !exists {
			t.colIndex[key] = i
		}
	}
}

// ColumnIndex returns the 0-based position of a column name (case-insensitive),
// or ok=false if the column does not exist.
func (t *Table) ColumnIndex(name string) (int, bool) {
	if t.colIndex == nil {
		t.buildIndex()
	}
	i, ok := t.colIndex[strings.ToLower(strings.TrimSpace(name))]
	return i, ok
}

// HasColumn reports whether the table declares the given column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.ColumnIndex(name)
	return ok
}

// Cell returns the raw string value at (1-based rowIndex, column name).
// Returns ok=false if the row or column does not exist.
func (t *Table) Cell(rowIndex int, column string) (string, bool) {
	col, ok := t.ColumnIndex(column)
	if !ok {
		return "", false
	}
	r := rowIndex - 1
	if r < 0 || r >= len(t.Rows) {
		return "", false
	}
	if col >= len(t.Rows[r]) {
		return "", true // short row: treat missing trailing cells as empty
	}
	return t.Rows[r][col], true
}

// RowCount returns the number of data rows (excludes the header).
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColumnValues returns every row's raw value for a column, in row order.
// Short rows contribute "".
func (t *Table) ColumnValues(column string) ([]string, bool) {
	col, ok := t.ColumnIndex(column)
	if !ok {
		return nil, false
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if col < len(row) {
			values[i] = row[col]
		}
	}
	return values, true
}

// DuplicateHeaders returns header names that appear more than once.
func (t *Table) DuplicateHeaders() []string {
	seen := make(map[string]int)
	var order []string
	for _, c := range t.Columns {
		key := strings.ToLower(strings.TrimSpace(c))
		if seen[key] == 0 {
			order = append(order, c)
		}
		seen[key]++
	}
	var dups []string
	for _, c := range order {
		if seen[strings.ToLower(strings.TrimSpace(c))] > 1 {
			dups = append(dups, c)
		}
	}
	return dups
}

// Set is a map from logical catalog name to its decoded Table, the output of
// the File Reader (spec.md §4.3) and the input to package-scope evaluation.
type Set map[string]*Table
