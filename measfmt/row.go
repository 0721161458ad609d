// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package measfmt reads and writes tables of timing measurements
// stored as comma-separated values.
//
// The first record of a file names the columns, unless the caller
// supplies a header for raw benchmark output with Reader.Headerless.
// Every following record is one measurement. Cells are kept as
// strings; numeric views are computed on demand, with cells that do
// not parse as numbers reading as NaN.
//
// This package is designed to be used with the higher-level packages
// measunit, measmath, and measproc.
package measfmt

import (
	"math"
	"strconv"
	"strings"
)

// A Row is a single measurement read from a CSV file.
//
// Rows returned by Reader.Result are reused by the Reader; callers
// that retain a Row must Clone it.
type Row struct {
	// Columns names the cells of this row. It is shared with the
	// Reader or Table that produced the row and must not be
	// modified.
	Columns []string

	// Cells holds one value per column.
	Cells []string

	// fileName and line record where this Row was read from.
	fileName string
	line     int
}

// Pos returns the file name and line number of a Row that was read
// by a Reader. For Rows that were not read from a file, it returns
// "", 0.
func (r *Row) Pos() (fileName string, line int) {
	return r.fileName, r.line
}

// Clone makes a copy of r that shares no cell storage with r.
func (r *Row) Clone() *Row {
	return &Row{
		Columns:  r.Columns,
		Cells:    append([]string(nil), r.Cells...),
		fileName: r.fileName,
		line:     r.line,
	}
}

// Get returns the cell for column col and whether r has that column.
func (r *Row) Get(col string) (string, bool) {
	for i, c := range r.Columns {
		if c == col {
			if i < len(r.Cells) {
				return r.Cells[i], true
			}
			return "", true
		}
	}
	return "", false
}

// ParseFloat parses a measurement cell. Surrounding space is ignored.
// Empty cells and cells that are not numbers yield NaN and false.
func ParseFloat(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return math.NaN(), false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return math.NaN(), false
	}
	return v, true
}

// FormatFloat formats v the way Writer renders computed columns:
// the shortest representation that round-trips, with Inf and NaN
// spelled as strconv does.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
