// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measfmt

import (
	"fmt"
	"math"
	"sort"
)

// A Table is an ordered, in-memory sequence of rows that share a
// common set of columns.
//
// Every Row in Rows has its Columns field set to the table's
// Columns slice and exactly len(Columns) cells. Tables are treated
// as immutable by the operations in this module: transformations
// return new Tables and never reorder or rewrite the rows of their
// input.
type Table struct {
	Columns []string
	Rows    []*Row

	colPos map[string]int
}

// NewTable returns an empty table with the given columns.
func NewTable(columns ...string) *Table {
	t := &Table{Columns: append([]string(nil), columns...)}
	t.index()
	return t
}

func (t *Table) index() {
	t.colPos = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		t.colPos[c] = i
	}
}

// Index returns the position of column col in t.
func (t *Table) Index(col string) (int, bool) {
	if t.colPos == nil {
		t.index()
	}
	i, ok := t.colPos[col]
	return i, ok
}

// Has reports whether t has all of the named columns.
func (t *Table) Has(cols ...string) bool {
	for _, col := range cols {
		if _, ok := t.Index(col); !ok {
			return false
		}
	}
	return true
}

// Require returns an error naming the first of cols missing from t.
func (t *Table) Require(cols ...string) error {
	for _, col := range cols {
		if _, ok := t.Index(col); !ok {
			return fmt.Errorf("missing column %q (have %v)", col, t.Columns)
		}
	}
	return nil
}

// Len returns the number of rows in t.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Append adds a row with the given cells to t. Missing trailing
// cells are left empty.
func (t *Table) Append(cells ...string) *Row {
	row := &Row{Columns: t.Columns, Cells: make([]string, len(t.Columns))}
	copy(row.Cells, cells)
	t.Rows = append(t.Rows, row)
	return row
}

// Add appends a copy of row to t, matching cells to columns by name.
// Columns of row that t does not have yet are added to t, and
// existing rows read them as empty.
func (t *Table) Add(row *Row) {
	for _, col := range row.Columns {
		if _, ok := t.Index(col); !ok {
			t.addColumn(col)
		}
	}
	nr := &Row{
		Columns:  t.Columns,
		Cells:    make([]string, len(t.Columns)),
		fileName: row.fileName,
		line:     row.line,
	}
	for i, col := range row.Columns {
		if i < len(row.Cells) {
			nr.Cells[t.colPos[col]] = row.Cells[i]
		}
	}
	t.Rows = append(t.Rows, nr)
}

// addColumn appends an empty column. Rows may be shared with the
// table t was selected from, so they are copied rather than grown in
// place.
func (t *Table) addColumn(col string) {
	t.Columns = append(t.Columns[:len(t.Columns):len(t.Columns)], col)
	t.colPos[col] = len(t.Columns) - 1
	for i, row := range t.Rows {
		nr := row.Clone()
		nr.Columns = t.Columns
		nr.Cells = append(nr.Cells, "")
		t.Rows[i] = nr
	}
}

// Value returns the cell of row in column col, or "" if t has no
// such column.
func (t *Table) Value(row *Row, col string) string {
	i, ok := t.Index(col)
	if !ok || i >= len(row.Cells) {
		return ""
	}
	return row.Cells[i]
}

// Float returns the numeric value of row in column col. It returns
// NaN if the column is missing or the cell does not parse.
func (t *Table) Float(row *Row, col string) float64 {
	i, ok := t.Index(col)
	if !ok || i >= len(row.Cells) {
		return math.NaN()
	}
	v, _ := ParseFloat(row.Cells[i])
	return v
}

// Column returns the cells of column col, in row order.
func (t *Table) Column(col string) []string {
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = t.Value(row, col)
	}
	return out
}

// Floats returns the numeric values of column col, in row order.
// Cells that do not parse are NaN.
func (t *Table) Floats(col string) []float64 {
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = t.Float(row, col)
	}
	return out
}

// Unique returns the distinct values of column col in order of first
// appearance.
func (t *Table) Unique(col string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, row := range t.Rows {
		v := t.Value(row, col)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Select returns a new table holding the rows of t for which keep
// returns true. The rows are shared with t.
func (t *Table) Select(keep func(row *Row) bool) *Table {
	nt := &Table{Columns: t.Columns}
	nt.index()
	for _, row := range t.Rows {
		if keep(row) {
			nt.Rows = append(nt.Rows, row)
		}
	}
	return nt
}

// Where returns the rows of t whose column col equals val.
func (t *Table) Where(col, val string) *Table {
	return t.Select(func(row *Row) bool { return t.Value(row, col) == val })
}

// DropMissing returns the rows of t where every named column holds a
// number, along with the count of dropped rows. Cells that fail to
// parse, such as a header line repeated inside the data, count as
// missing.
func (t *Table) DropMissing(cols ...string) (*Table, int) {
	dropped := 0
	nt := t.Select(func(row *Row) bool {
		for _, col := range cols {
			if math.IsNaN(t.Float(row, col)) {
				dropped++
				return false
			}
		}
		return true
	})
	return nt, dropped
}

// WithColumn returns a copy of t with an extra column name whose
// cells are vals. If t already has a column called name, that
// column is replaced instead. len(vals) must equal t.Len().
func (t *Table) WithColumn(name string, vals []string) *Table {
	if len(vals) != len(t.Rows) {
		panic(fmt.Sprintf("WithColumn %q: %d values for %d rows", name, len(vals), len(t.Rows)))
	}
	cols := t.Columns
	pos, ok := t.Index(name)
	if !ok {
		cols = append(append([]string(nil), t.Columns...), name)
		pos = len(cols) - 1
	}
	nt := &Table{Columns: cols, Rows: make([]*Row, len(t.Rows))}
	nt.index()
	for i, row := range t.Rows {
		cells := make([]string, len(cols))
		copy(cells, row.Cells)
		cells[pos] = vals[i]
		nt.Rows[i] = &Row{Columns: cols, Cells: cells, fileName: row.fileName, line: row.line}
	}
	return nt
}

// SortBy returns a copy of t with rows stably sorted by the given
// columns in order. Columns whose cells are all numbers are compared
// numerically, others lexically.
func (t *Table) SortBy(cols ...string) *Table {
	numeric := make([]bool, len(cols))
	for i, col := range cols {
		numeric[i] = true
		for _, row := range t.Rows {
			if _, ok := ParseFloat(t.Value(row, col)); !ok {
				numeric[i] = false
				break
			}
		}
	}
	nt := t.Select(func(*Row) bool { return true })
	sort.SliceStable(nt.Rows, func(i, j int) bool {
		ri, rj := nt.Rows[i], nt.Rows[j]
		for k, col := range cols {
			if numeric[k] {
				a, b := t.Float(ri, col), t.Float(rj, col)
				if a != b {
					return a < b
				}
				continue
			}
			a, b := t.Value(ri, col), t.Value(rj, col)
			if a != b {
				return a < b
			}
		}
		return false
	})
	return nt
}
