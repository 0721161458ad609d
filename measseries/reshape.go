// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measseries

import (
	"github.com/aclements/go-gg/table"
	"github.com/ompbench/ompplot/measfmt"
)

// Unpivot turns each row of t into len(cols) rows, one per named
// column. The label column holds the column's name and the value
// column its cell; the other columns are repeated. Row order is kept,
// with each input row's expansions in the order of cols.
func Unpivot(t *measfmt.Table, label, value string, cols ...string) (*measfmt.Table, error) {
	if err := t.Require(cols...); err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		var keep []string
		drop := make(map[string]bool)
		for _, c := range cols {
			drop[c] = true
		}
		for _, c := range t.Columns {
			if !drop[c] {
				keep = append(keep, c)
			}
		}
		return measfmt.NewTable(append(keep, label, value)...), nil
	}
	g := table.Unpivot(toGG(t), label, value, cols...)
	return fromGG(g.Table(table.RootGroupID)), nil
}

// Pivot is the inverse of Unpivot: rows that agree on every column
// but label and value are merged into one row with a column per
// distinct label. Cells with no matching input row are empty. If
// several rows supply the same cell, the last one wins.
func Pivot(t *measfmt.Table, label, value string) (*measfmt.Table, error) {
	if err := t.Require(label, value); err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		return measfmt.NewTable(), nil
	}
	g := table.Pivot(toGG(t), label, value)
	return fromGG(g.Table(table.RootGroupID)), nil
}

func toGG(t *measfmt.Table) *table.Table {
	b := table.NewBuilder(nil)
	for _, col := range t.Columns {
		b.Add(col, t.Column(col))
	}
	return b.Done()
}

func fromGG(gt *table.Table) *measfmt.Table {
	cols := gt.Columns()
	out := measfmt.NewTable(cols...)
	data := make([][]string, len(cols))
	for i, col := range cols {
		data[i] = gt.MustColumn(col).([]string)
	}
	cells := make([]string, len(cols))
	for r := 0; r < gt.Len(); r++ {
		for i := range cols {
			cells[i] = data[i][r]
		}
		out.Append(cells...)
	}
	return out
}
