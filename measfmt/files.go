// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measfmt

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// FileColumn is the column Files adds to every row to record which
// input the row came from.
const FileColumn = ".file"

// Files reads several measurement files into a single Table.
//
// Each file may have its own header. Columns are aligned by name, so
// a column missing from one file reads as empty in that file's rows.
// Every row also gets a FileColumn cell holding the label of its
// input: the path itself, or "path#N" when the same path is given more
// than once. With AllowLabels, a path of the form label=path is
// labeled by the part before "=".
type Files struct {
	Paths []string

	// AllowStdin treats the path "-" as standard input, and an empty
	// Paths as a single "-".
	AllowStdin bool

	AllowLabels bool

	// Headerless, if non-empty, is passed to each file's Reader.
	Headerless [][]string
}

// A FileResult summarizes what Files.Read took from one input.
type FileResult struct {
	Label string
	Path  string

	// Rows counts the rows of the input, whether kept or not.
	Rows int

	// Errors lists the malformed lines of the input, which were
	// skipped.
	Errors []*SyntaxError
}

// Read reads every input into one Table, keeping the rows for which
// keep returns true. A nil keep keeps every row. The returned results
// are in input order. An input that cannot be opened or read stops
// Read with an error naming it.
func (f *Files) Read(keep func(row *Row) bool) (*Table, []*FileResult, error) {
	inputs := f.inputs()
	t := NewTable()
	var r Reader
	r.Headerless(f.Headerless...)
	for _, res := range inputs {
		if err := f.readOne(&r, res, t, keep); err != nil {
			return nil, inputs, err
		}
	}
	return t, inputs, nil
}

func (f *Files) readOne(r *Reader, res *FileResult, t *Table, keep func(row *Row) bool) error {
	var in io.Reader
	if f.AllowStdin && res.Path == "-" {
		in = os.Stdin
	} else {
		file, err := os.Open(res.Path)
		if err != nil {
			return err
		}
		defer file.Close()
		in = file
	}

	r.Reset(in, res.Path, FileColumn, res.Label)
	for r.Scan() {
		switch rec := r.Result().(type) {
		case *Row:
			res.Rows++
			if keep == nil || keep(rec) {
				t.Add(rec)
			}
		case *SyntaxError:
			res.Errors = append(res.Errors, rec)
		}
	}
	if err := r.Err(); err != nil {
		return err
	}
	// A file with only a header still contributes its columns.
	for _, col := range r.Header() {
		if _, ok := t.Index(col); !ok {
			t.addColumn(col)
		}
	}
	return nil
}

// inputs splits labels off Paths and disambiguates repeated paths.
func (f *Files) inputs() []*FileResult {
	paths := f.Paths
	if f.AllowStdin && len(paths) == 0 {
		paths = []string{"-"}
	}

	var out []*FileResult
	count := make(map[string]int)
	labeled := make(map[*FileResult]bool)
	for _, path := range paths {
		res := &FileResult{Label: path, Path: path}
		if i := strings.Index(path, "="); f.AllowLabels && i >= 0 {
			res.Label, res.Path = path[:i], path[i+1:]
			labeled[res] = true
		} else {
			count[path]++
		}
		out = append(out, res)
	}

	seq := make(map[string]int)
	for _, res := range out {
		if labeled[res] || count[res.Path] <= 1 {
			continue
		}
		res.Label = fmt.Sprintf("%s#%d", res.Path, seq[res.Path])
		seq[res.Path]++
	}
	return out
}
