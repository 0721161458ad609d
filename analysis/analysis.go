// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package analysis implements the benchmark analyses that turn the
// CSV results of the OpenMP experiments into charts, annotated
// tables, and summaries.
//
// Each Analysis reads one input file, normalizes durations into
// speedups where that makes sense, and describes its charts. A Runner
// executes analyses in order and writes their outputs.
package analysis

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/ompbench/ompplot/chart"
	"github.com/ompbench/ompplot/measfmt"
	"github.com/ompbench/ompplot/measproc"
	"github.com/ompbench/ompplot/measstat"
	"github.com/ompbench/ompplot/speedup"
	"go.uber.org/zap"
)

// Env is what an analysis needs to know about the run.
type Env struct {
	// Ideal is the height of the ideal speedup reference line.
	Ideal float64

	// RegionFilter selects the rows of the region summary.
	RegionFilter string

	Log *zap.SugaredLogger
}

// A Source is one candidate input file of an analysis.
type Source struct {
	Name string

	// Headerless lists the headers to assume for raw output with
	// no header line, selected by record width.
	Headerless [][]string

	// Numeric lists columns that must hold numbers. Rows where one
	// does not are dropped.
	Numeric []string
}

// An Input is a loaded Source.
type Input struct {
	Source *Source
	Path   string
	Table  *measfmt.Table

	// Dropped counts rows removed for missing numeric cells.
	Dropped int
}

// An Analysis describes one figure family.
type Analysis struct {
	ID    string
	Title string

	// Notes is a Markdown description for the report.
	Notes string

	// Sources are tried in order; the first that exists is read.
	Sources []*Source

	plan func(env *Env, in *Input) (*Output, error)
}

// Output is what an analysis produces from its input.
type Output struct {
	Charts []*chart.Chart

	// Table is the annotated table written to {id}_speedup.csv.
	Table *measfmt.Table

	// Speedup is the normalization of Table, if any.
	Speedup *speedup.Result

	// Summary configures {id}_summary.txt. Nil means no summary.
	Summary *measstat.Options

	Warnings []string
}

func (o *Output) warnf(format string, args ...interface{}) {
	o.Warnings = append(o.Warnings, fmt.Sprintf(format, args...))
}

// fallbackRows returns the per-row fallback flags of o.Table.
func (o *Output) fallbackRows() []bool {
	if o.Speedup == nil || o.Speedup.Table != o.Table {
		return nil
	}
	return o.Speedup.FallbackRows()
}

// All returns the analyses in the order they run.
func All() []*Analysis {
	return []*Analysis{TaskA(), TaskB(), TaskC(), TaskD(), Region(), RegionVariants()}
}

// ByID returns the analysis with the given ID from list.
func ByID(list []*Analysis, id string) *Analysis {
	for _, a := range list {
		if strings.EqualFold(a.ID, id) {
			return a
		}
	}
	return nil
}

// load reads path according to src.
func load(src *Source, path string, log *zap.SugaredLogger) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := measfmt.NewReader(f, path)
	if len(src.Headerless) > 0 {
		r.Headerless(src.Headerless...)
	}
	t, serrs, err := measfmt.ReadTable(r)
	if err != nil {
		return nil, err
	}
	for _, serr := range serrs {
		log.Warnw("skipping malformed record", "error", serr)
	}
	if err := t.Require(src.Numeric...); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t, dropped := t.DropMissing(src.Numeric...)
	if dropped > 0 {
		log.Warnw("dropped rows with missing values", "file", path, "rows", dropped)
	}
	return &Input{Source: src, Path: path, Table: t, Dropped: dropped}, nil
}

// groupBy partitions t by the values of cols, in order of first
// appearance.
func groupBy(t *measfmt.Table, cols ...string) ([]measproc.Key, map[measproc.Key][]int, error) {
	if err := t.Require(cols...); err != nil {
		return nil, nil, err
	}
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = strconv.Quote(c)
	}
	var pp measproc.ProjectionParser
	proj, err := pp.Parse(strings.Join(quoted, ","), nil)
	if err != nil {
		return nil, nil, err
	}
	keys, groups := proj.Group(t)
	return keys, groups, nil
}

// subset returns the rows of t at the given indexes.
func subset(t *measfmt.Table, rows []int) *measfmt.Table {
	keep := make(map[*measfmt.Row]bool, len(rows))
	for _, i := range rows {
		keep[t.Rows[i]] = true
	}
	return t.Select(func(row *measfmt.Row) bool { return keep[row] })
}

// project returns a table with only the named columns of t.
func project(t *measfmt.Table, cols ...string) *measfmt.Table {
	out := measfmt.NewTable(cols...)
	cells := make([]string, len(cols))
	for _, row := range t.Rows {
		for i, c := range cols {
			cells[i] = t.Value(row, c)
		}
		out.Append(cells...)
	}
	return out
}

// derive returns t with column name computed from each row.
func derive(t *measfmt.Table, name string, f func(row *measfmt.Row) string) *measfmt.Table {
	vals := make([]string, t.Len())
	for i, row := range t.Rows {
		vals[i] = f(row)
	}
	return t.WithColumn(name, vals)
}

// Reference line colors.
var (
	red    = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
	green  = color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
	orange = color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff}
	purple = color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff}
)

func sequentialRef(label string) chart.Ref {
	return chart.Ref{Y: 1, Label: label, Color: red}
}

func idealRef(ideal float64) chart.Ref {
	return chart.Ref{Y: ideal, Label: fmt.Sprintf("Ideal (%gx)", ideal), Color: green, Dotted: true}
}
