// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measfmt

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

func parseAll(t *testing.T, data string, setup ...func(r *Reader)) []Record {
	r := NewReader(strings.NewReader(data), "test")
	for _, f := range setup {
		f(r)
	}
	var out []Record
	for r.Scan() {
		switch rec := r.Result().(type) {
		case *Row:
			out = append(out, rec.Clone())
		case *SyntaxError:
			out = append(out, rec)
		default:
			t.Fatalf("unexpected result type %T", rec)
		}
	}
	if err := r.Err(); err != nil {
		t.Fatal("parsing failed: ", err)
	}
	return out
}

func printRecords(recs []Record) string {
	var b strings.Builder
	for _, rec := range recs {
		switch rec := rec.(type) {
		case *Row:
			for i, c := range rec.Columns {
				fmt.Fprintf(&b, "{%s: %s} ", c, rec.Cells[i])
			}
			_, line := rec.Pos()
			fmt.Fprintf(&b, "@%d\n", line)
		case *SyntaxError:
			fmt.Fprintf(&b, "SyntaxError: %s\n", rec)
		}
	}
	return b.String()
}

func TestReader(t *testing.T) {
	type testCase struct {
		name  string
		input string
		setup func(r *Reader)
		want  string
	}
	for _, test := range []testCase{
		{
			"basic",
			"N,Threads,Tempo\n100,1,10.0\n100,2,5.0\n",
			nil,
			"{N: 100} {Threads: 1} {Tempo: 10.0} @2\n{N: 100} {Threads: 2} {Tempo: 5.0} @3\n",
		},
		{
			"spaces",
			"N, Threads , Tempo\n 100 , 1, 10.0 \n",
			nil,
			"{N: 100} {Threads: 1} {Tempo: 10.0} @2\n",
		},
		{
			"blank lines",
			"N,Tempo\n\n100,1\n\n",
			nil,
			"{N: 100} {Tempo: 1} @3\n",
		},
		{
			"repeated header",
			"N,Tempo\n100,1\nN,Tempo\n200,2\n",
			nil,
			"{N: 100} {Tempo: 1} @2\nSyntaxError: test:3: repeated header line\n{N: 200} {Tempo: 2} @4\n",
		},
		{
			"short row",
			"N,K,Tempo\n100,1\n",
			nil,
			"SyntaxError: test:2: expected 3 fields, got 2\n",
		},
		{
			"headerless",
			"100,20,256,4,static,0.1,0.2,0.3\n",
			func(r *Reader) {
				r.Headerless(
					[]string{"N", "K", "B", "Threads", "Schedule", "Critical", "Atomic", "Local"},
					[]string{"N", "K", "B", "Threads", "Schedule", "Naive", "Critical", "Atomic", "Local", "SIMD"},
				)
			},
			"{N: 100} {K: 20} {B: 256} {Threads: 4} {Schedule: static} {Critical: 0.1} {Atomic: 0.2} {Local: 0.3} @1\n",
		},
		{
			"headerless fallback to header",
			"N,Tempo\n1,2\n",
			func(r *Reader) { r.Headerless([]string{"A", "B", "C"}) },
			"{N: 1} {Tempo: 2} @2\n",
		},
		{
			"extra columns",
			"N\n1\n",
			func(r *Reader) { r.Reset(strings.NewReader("N\n1\n"), "test", ".file", "a.csv") },
			"{N: 1} {.file: a.csv} @2\n",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			var setup []func(*Reader)
			if test.setup != nil {
				setup = append(setup, test.setup)
			}
			got := printRecords(parseAll(t, test.input, setup...))
			if got != test.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, test.want)
			}
		})
	}
}

func TestReaderBeforeScan(t *testing.T) {
	r := NewReader(strings.NewReader(""), "test")
	if _, ok := r.Result().(*SyntaxError); !ok {
		t.Errorf("Result before Scan: got %T, want *SyntaxError", r.Result())
	}
	if r.Scan() {
		t.Errorf("Scan on empty input returned true")
	}
}

func TestReadTable(t *testing.T) {
	in := "N,Threads,Tempo\n100,1,10.0\nN,Threads,Tempo\n100,2,oops\n100,4,2.5\n"
	tab, serrs, err := ReadTable(NewReader(strings.NewReader(in), "t.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if len(serrs) != 1 {
		t.Errorf("got %d syntax errors, want 1", len(serrs))
	}
	if tab.Len() != 3 {
		t.Fatalf("got %d rows, want 3", tab.Len())
	}
	if v := tab.Float(tab.Rows[1], "Tempo"); !math.IsNaN(v) {
		t.Errorf("unparseable cell: got %v, want NaN", v)
	}
	clean, dropped := tab.DropMissing("Tempo", "Threads")
	if dropped != 1 || clean.Len() != 2 {
		t.Errorf("DropMissing: dropped %d, kept %d; want 1, 2", dropped, clean.Len())
	}
	if got := clean.Column("Threads"); strings.Join(got, ",") != "1,4" {
		t.Errorf("DropMissing reordered rows: %v", got)
	}
}

func TestReadTableHeaderOnly(t *testing.T) {
	tab, _, err := ReadTable(NewReader(strings.NewReader("N,Tempo\n"), "t.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if tab.Len() != 0 || !tab.Has("N", "Tempo") {
		t.Errorf("got %d rows, columns %v", tab.Len(), tab.Columns)
	}
}
