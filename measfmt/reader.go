// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measfmt

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// A Reader reads measurement rows from a CSV stream.
//
// Its API is modeled on bufio.Scanner. A Reader retains ownership of
// the Row it returns; a caller should Clone anything it needs to
// retain.
//
// To construct a new Reader, either call NewReader, or call Reset on
// a zeroed Reader.
type Reader struct {
	cr  *csv.Reader
	err error

	fileName string
	line     int

	// headerless lists candidate headers for files that start
	// directly with data, selected by record width.
	headerless [][]string

	// extra holds constant key/value columns appended to every row.
	extra []string

	header []string
	row    Row
	rec    Record
}

// A SyntaxError represents a malformed line of a measurement file.
// Syntax errors are reported as records and do not stop a Reader.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (e *SyntaxError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}

var noResult = &SyntaxError{"", 0, "Reader.Scan has not been called"}

// A Record is a single record read from a measurement file. It is
// either a *Row or a *SyntaxError.
type Record interface {
	// Pos returns the position of this record as a file name and a
	// 1-based line number within that file.
	Pos() (fileName string, line int)
}

var _ Record = (*Row)(nil)
var _ Record = (*SyntaxError)(nil)

// NewReader constructs a reader for CSV measurements in r. fileName
// is used in error messages; it is purely diagnostic.
func NewReader(r io.Reader, fileName string) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName)
	return reader
}

// Reset resets the reader to begin reading from a new input. The
// Headerless setting is kept.
//
// extra is an alternating sequence of column names and values. Reset
// appends these as constant columns to every row read from the input.
func (r *Reader) Reset(ior io.Reader, fileName string, extra ...string) {
	if len(extra)%2 != 0 {
		panic("len(extra) must be a multiple of 2")
	}
	if fileName == "" {
		fileName = "<unknown>"
	}
	r.cr = csv.NewReader(ior)
	r.cr.FieldsPerRecord = -1
	r.cr.TrimLeadingSpace = true
	r.cr.ReuseRecord = true
	r.err = nil
	r.fileName = fileName
	r.line = 0
	r.extra = append(r.extra[:0], extra...)
	r.header = nil
	r.rec = nil
}

// Headerless declares that the input has no header line. The first
// record's width selects the header from headers; a first record
// whose width matches none of them is read as a header instead.
func (r *Reader) Headerless(headers ...[]string) {
	r.headerless = headers
}

// Header returns the column names of the current input, or nil if no
// record has been read yet.
func (r *Reader) Header() []string {
	return r.header
}

// Scan advances the reader to the next record and reports whether a
// record was read. The caller should use the Result method to get
// the record. If Scan reaches EOF or an I/O error occurs, it returns
// false, in which case the caller should use the Err method to check
// for errors.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	for {
		fields, err := r.cr.Read()
		if err == io.EOF {
			return false
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				// Bad quoting only spoils one line.
				r.rec = &SyntaxError{r.fileName, perr.Line, perr.Err.Error()}
				return true
			}
			r.err = fmt.Errorf("%s:%d: %w", r.fileName, r.line, err)
			return false
		}
		r.line, _ = r.cr.FieldPos(0)
		if isBlank(fields) {
			continue
		}

		if r.header == nil {
			if h := r.pickHeader(len(fields)); h != nil {
				r.setHeader(h)
			} else {
				r.setHeader(trimAll(fields))
				continue
			}
		}

		if r.isHeader(fields) {
			r.rec = &SyntaxError{r.fileName, r.line, "repeated header line"}
			return true
		}
		if n := len(r.header) - len(r.extra)/2; len(fields) != n {
			r.rec = &SyntaxError{r.fileName, r.line, fmt.Sprintf("expected %d fields, got %d", n, len(fields))}
			return true
		}

		r.row.Columns = r.header
		r.row.Cells = r.row.Cells[:0]
		for _, f := range fields {
			r.row.Cells = append(r.row.Cells, strings.TrimSpace(f))
		}
		for i := 1; i < len(r.extra); i += 2 {
			r.row.Cells = append(r.row.Cells, r.extra[i])
		}
		r.row.fileName, r.row.line = r.fileName, r.line
		r.rec = &r.row
		return true
	}
}

func (r *Reader) pickHeader(width int) []string {
	for _, h := range r.headerless {
		if len(h) == width {
			return h
		}
	}
	return nil
}

func (r *Reader) setHeader(h []string) {
	hdr := append([]string(nil), h...)
	for i := 0; i < len(r.extra); i += 2 {
		hdr = append(hdr, r.extra[i])
	}
	r.header = hdr
}

// isHeader reports whether fields repeats the header line.
func (r *Reader) isHeader(fields []string) bool {
	n := len(r.header) - len(r.extra)/2
	if len(fields) != n {
		return false
	}
	for i, f := range fields {
		if strings.TrimSpace(f) != r.header[i] {
			return false
		}
	}
	return true
}

// Result returns the record that was just read by Scan. This is
// either a *Row or a *SyntaxError.
//
// Syntax errors are non-fatal, so the caller can continue to call
// Scan.
//
// If this returns a *Row, the caller should not retain it, as it
// will be overwritten by the next call to Scan.
func (r *Reader) Result() Record {
	if r.rec == nil {
		return noResult
	}
	return r.rec
}

// Err returns the first non-EOF I/O error that was encountered by
// the Reader.
func (r *Reader) Err() error {
	return r.err
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func trimAll(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimSpace(f)
	}
	return out
}

// ReadTable reads every row of r into a Table. Syntax errors are
// returned separately from I/O errors, which abort the read.
func ReadTable(r *Reader) (*Table, []*SyntaxError, error) {
	t := NewTable()
	var serrs []*SyntaxError
	for r.Scan() {
		switch rec := r.Result().(type) {
		case *Row:
			t.Add(rec)
		case *SyntaxError:
			serrs = append(serrs, rec)
		}
	}
	if err := r.Err(); err != nil {
		return nil, serrs, err
	}
	if len(t.Columns) == 0 && r.Header() != nil {
		// Header without data.
		t = NewTable(r.Header()...)
	}
	return t, serrs, nil
}
