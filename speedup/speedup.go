// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package speedup annotates timing measurements with their speedup
// over a per-configuration baseline.
//
// Rows are partitioned into configuration groups by equality of the
// group-key columns. A group's baseline is the smallest duration
// among its rows at the baseline parallelism level (normally one
// thread). A group with no such row falls back to the largest
// duration in the group, a deliberate approximation of a sequential
// run. Every row then gets speedup = baseline / duration.
package speedup

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aclements/go-moremath/stats"
	"github.com/ompbench/ompplot/measfmt"
	"github.com/ompbench/ompplot/measproc"
)

// Options configures Normalize. Zero fields take the defaults shown.
type Options struct {
	// GroupBy lists the configuration-key columns. With no
	// columns, the whole table is one group.
	GroupBy []string

	// Parallelism is the column selecting baseline rows
	// ("Threads").
	Parallelism string

	// Baseline is the Parallelism value of baseline rows ("1").
	// Values that both parse as numbers are compared numerically,
	// others as strings, so a label such as "Base" works too.
	Baseline string

	// Duration is the measured time column ("Tempo").
	Duration string

	// Column names the added speedup column ("Speedup"). An
	// existing column of that name is replaced.
	Column string
}

func (o Options) withDefaults() Options {
	if o.Parallelism == "" {
		o.Parallelism = "Threads"
	}
	if o.Baseline == "" {
		o.Baseline = "1"
	}
	if o.Duration == "" {
		o.Duration = "Tempo"
	}
	if o.Column == "" {
		o.Column = "Speedup"
	}
	return o
}

// A Group is one configuration group and its baseline.
type Group struct {
	Key measproc.Key

	// Rows are the indexes of the group's rows, in table order.
	Rows []int

	// Baseline is the duration every row of the group is divided
	// into.
	Baseline float64

	// Fallback is set when the group had no baseline-level row and
	// Baseline is the group's maximum duration.
	Fallback bool
}

// A Result is an annotated table.
type Result struct {
	// Table is the input table with the speedup column added. It
	// has the same rows in the same order.
	Table *measfmt.Table

	// Speedups holds the speedup of each row of Table.
	Speedups []float64

	// Groups are the configuration groups in order of first
	// appearance.
	Groups []Group
}

// Fallbacks returns the groups that used the fallback baseline.
func (r *Result) Fallbacks() []Group {
	var out []Group
	for _, g := range r.Groups {
		if g.Fallback {
			out = append(out, g)
		}
	}
	return out
}

// FallbackRows reports, for each row of r.Table, whether its group
// used the fallback baseline.
func (r *Result) FallbackRows() []bool {
	out := make([]bool, len(r.Speedups))
	for _, g := range r.Groups {
		if !g.Fallback {
			continue
		}
		for _, i := range g.Rows {
			out[i] = true
		}
	}
	return out
}

// Normalize computes the speedup of every row of t. It does not
// modify t. Zero durations yield +Inf (or NaN for a zero baseline)
// and missing durations yield NaN; neither is an error.
func Normalize(t *measfmt.Table, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	if err := t.Require(append([]string{opts.Parallelism, opts.Duration}, opts.GroupBy...)...); err != nil {
		return nil, fmt.Errorf("speedup: %w", err)
	}

	proj, err := groupProjection(opts.GroupBy)
	if err != nil {
		return nil, fmt.Errorf("speedup: %w", err)
	}
	keys, members := proj.Group(t)

	durations := t.Floats(opts.Duration)
	res := &Result{Speedups: make([]float64, t.Len())}
	for _, k := range keys {
		g := Group{Key: k, Rows: members[k]}
		g.Baseline, g.Fallback = baseline(t, g.Rows, durations, opts)
		for _, i := range g.Rows {
			res.Speedups[i] = g.Baseline / durations[i]
		}
		res.Groups = append(res.Groups, g)
	}

	cells := make([]string, len(res.Speedups))
	for i, v := range res.Speedups {
		cells[i] = measfmt.FormatFloat(v)
	}
	res.Table = t.WithColumn(opts.Column, cells)
	return res, nil
}

func groupProjection(cols []string) (*measproc.Projection, error) {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = strconv.Quote(c)
	}
	var pp measproc.ProjectionParser
	return pp.Parse(strings.Join(quoted, ","), nil)
}

// baseline returns the baseline duration of the rows of one group.
func baseline(t *measfmt.Table, rows []int, durations []float64, opts Options) (float64, bool) {
	var atBase, all []float64
	for _, i := range rows {
		d := durations[i]
		if math.IsNaN(d) {
			continue
		}
		all = append(all, d)
		if isBaseline(t.Value(t.Rows[i], opts.Parallelism), opts.Baseline) {
			atBase = append(atBase, d)
		}
	}
	if len(atBase) > 0 {
		min, _ := stats.Bounds(atBase)
		return min, false
	}
	if len(all) == 0 {
		return math.NaN(), true
	}
	_, max := stats.Bounds(all)
	return max, true
}

func isBaseline(cell, want string) bool {
	a, aok := measfmt.ParseFloat(cell)
	b, bok := measfmt.ParseFloat(want)
	if aok && bok {
		return a == b
	}
	return strings.TrimSpace(cell) == strings.TrimSpace(want)
}
