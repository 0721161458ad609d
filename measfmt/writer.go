// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measfmt

import (
	"encoding/csv"
	"fmt"
	"io"
)

// A Writer writes measurement rows as CSV.
type Writer struct {
	w      *csv.Writer
	header []string
}

// NewWriter returns a writer that writes CSV rows to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: csv.NewWriter(w)}
}

// Write writes Record rec. If rec is a *Row whose columns differ
// from those of the previous row, Write first emits a header line.
// Syntax errors are ignored.
func (w *Writer) Write(rec Record) error {
	switch rec := rec.(type) {
	case *Row:
		if !sameColumns(w.header, rec.Columns) {
			if err := w.w.Write(rec.Columns); err != nil {
				return err
			}
			w.header = append(w.header[:0], rec.Columns...)
		}
		if err := w.w.Write(rec.Cells); err != nil {
			return err
		}
	case *SyntaxError:
		return nil
	default:
		return fmt.Errorf("unknown Record type %T", rec)
	}
	w.w.Flush()
	return w.w.Error()
}

// WriteTable writes the header of t followed by all of its rows. The
// header is written even if t has no rows.
func (w *Writer) WriteTable(t *Table) error {
	if !sameColumns(w.header, t.Columns) {
		if err := w.w.Write(t.Columns); err != nil {
			return err
		}
		w.header = append(w.header[:0], t.Columns...)
	}
	for _, row := range t.Rows {
		if err := w.w.Write(row.Cells); err != nil {
			return err
		}
	}
	w.w.Flush()
	return w.w.Error()
}

func sameColumns(a, b []string) bool {
	if a == nil || len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
