// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package measstat builds per-configuration summary tables of timing
// measurements.
//
// A summary has one section per chart key (such as N and K). Each
// section has one row per (hue, x) cell: the center time with its
// relative range, the number of trials, the mean speedup if the
// table is annotated, and a comparison against the same hue's cell
// at the smallest x.
package measstat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ompbench/ompplot/measfmt"
	"github.com/ompbench/ompplot/measmath"
	"github.com/ompbench/ompplot/measproc"
)

// Options configures Build.
type Options struct {
	// Key names the columns that split the table into sections.
	Key []string

	// Hue optionally names a column that separates series within a
	// section.
	Hue string

	// X names the parallelism column ("Threads").
	X string

	// Duration names the time column ("Tempo").
	Duration string

	// Speedup optionally names a speedup column to summarize.
	Speedup string

	// Assumption selects the summary statistic. The default is
	// measmath.AssumeNothing.
	Assumption measmath.Assumption

	// Confidence is the confidence level of summary intervals. The
	// default is 0.95.
	Confidence float64

	Thresholds *measmath.Thresholds

	// Exclude names further measurement columns, which may differ
	// between the trials of a cell without a warning. Duration and
	// Speedup are always excluded.
	Exclude []string
}

// A Summary is the result of Build.
type Summary struct {
	Options  Options
	Sections []*Section
}

// A Section summarizes the rows sharing one chart key.
type Section struct {
	Key  measproc.Key
	Rows []*Row
}

// A Row summarizes the trials of one (hue, x) cell.
type Row struct {
	Hue, X string

	Time measmath.Summary

	// Speedup is set if Options.Speedup is.
	Speedup *measmath.Summary

	// Fallback reports that some trial's speedup used the fallback
	// baseline.
	Fallback bool

	// Mixed lists the configuration columns whose values differ
	// between the trials of this cell.
	Mixed []string

	// Ref is the row this one is compared against: the first row
	// of the same hue. It is nil for that first row.
	Ref     *Row
	Compare measmath.Comparison

	sample *measmath.Sample
}

// Build summarizes t. fallback, if non-nil, flags the rows of t whose
// speedup used the fallback baseline.
func Build(t *measfmt.Table, opts Options, fallback []bool) (*Summary, error) {
	if opts.X == "" {
		opts.X = "Threads"
	}
	if opts.Duration == "" {
		opts.Duration = "Tempo"
	}
	if opts.Assumption == nil {
		opts.Assumption = measmath.AssumeNothing
	}
	if opts.Confidence == 0 {
		opts.Confidence = 0.95
	}
	if opts.Thresholds == nil {
		opts.Thresholds = &measmath.DefaultThresholds
	}
	need := append([]string{opts.X, opts.Duration}, opts.Key...)
	if opts.Hue != "" {
		need = append(need, opts.Hue)
	}
	if opts.Speedup != "" {
		need = append(need, opts.Speedup)
	}
	if err := t.Require(need...); err != nil {
		return nil, err
	}
	if fallback != nil && len(fallback) != t.Len() {
		return nil, fmt.Errorf("fallback flags for %d rows, table has %d", len(fallback), t.Len())
	}

	var pp measproc.ProjectionParser
	pp.Exclude(opts.Duration)
	if opts.Speedup != "" {
		pp.Exclude(opts.Speedup)
	}
	pp.Exclude(opts.Exclude...)
	keyProj, err := pp.Parse(quoteAll(opts.Key), nil)
	if err != nil {
		return nil, err
	}
	cellExpr := strconv.Quote(opts.X) + "@num"
	if opts.Hue != "" {
		cellExpr = strconv.Quote(opts.Hue) + "," + cellExpr
	}
	cellProj, err := pp.Parse(cellExpr, nil)
	if err != nil {
		return nil, err
	}

	residue := pp.Residue()

	type cell struct {
		times, speedups []float64
		fallback        bool
		residues        []measproc.Key
		seen            map[measproc.Key]bool
	}
	sum := &Summary{Options: opts}
	sections := make(map[measproc.Key]map[measproc.Key]*cell)
	var keys []measproc.Key
	for i, row := range t.Rows {
		k := keyProj.Project(row)
		cells := sections[k]
		if cells == nil {
			cells = make(map[measproc.Key]*cell)
			sections[k] = cells
			keys = append(keys, k)
		}
		ck := cellProj.Project(row)
		c := cells[ck]
		if c == nil {
			c = &cell{seen: make(map[measproc.Key]bool)}
			cells[ck] = c
		}
		if rk := residue.Project(row); !c.seen[rk] {
			c.seen[rk] = true
			c.residues = append(c.residues, rk)
		}
		c.times = append(c.times, t.Float(row, opts.Duration))
		if opts.Speedup != "" {
			c.speedups = append(c.speedups, t.Float(row, opts.Speedup))
		}
		if fallback != nil && fallback[i] {
			c.fallback = true
		}
	}

	for _, k := range keys {
		sec := &Section{Key: k}
		cells := sections[k]
		cks := make([]measproc.Key, 0, len(cells))
		for ck := range cells {
			cks = append(cks, ck)
		}
		measproc.SortKeys(cks)
		first := make(map[string]*Row)
		for _, ck := range cks {
			c := cells[ck]
			r := &Row{X: ck.Value(opts.X), Fallback: c.fallback}
			for _, f := range measproc.NonSingularFields(c.residues) {
				r.Mixed = append(r.Mixed, f.Name)
			}
			if opts.Hue != "" {
				r.Hue = ck.Value(opts.Hue)
			}
			r.sample = measmath.NewSample(c.times, opts.Thresholds)
			r.Time = opts.Assumption.Summary(r.sample, opts.Confidence)
			if opts.Speedup != "" {
				s := measmath.AssumeNormal.Summary(measmath.NewSample(c.speedups, opts.Thresholds), opts.Confidence)
				r.Speedup = &s
			}
			if ref := first[r.Hue]; ref != nil {
				r.Ref = ref
				r.Compare = opts.Assumption.Compare(ref.sample, r.sample)
			} else {
				first[r.Hue] = r
			}
			sec.Rows = append(sec.Rows, r)
		}
		sum.Sections = append(sum.Sections, sec)
	}
	return sum, nil
}

func quoteAll(cols []string) string {
	q := make([]string, len(cols))
	for i, c := range cols {
		q[i] = strconv.Quote(c)
	}
	return strings.Join(q, ",")
}

// Warnings returns the distinct warnings of every row of s, each
// prefixed by its section and cell.
func (s *Summary) Warnings() []string {
	var out []string
	seen := make(map[string]bool)
	add := func(sec *Section, r *Row, errs []error) {
		for _, err := range errs {
			cell := fmt.Sprintf("%s=%s", s.Options.X, r.X)
			if r.Hue != "" {
				cell = fmt.Sprintf("%s=%s %s", s.Options.Hue, r.Hue, cell)
			}
			w := strings.TrimSpace(sec.Key.String()+" "+cell) + ": " + err.Error()
			if !seen[w] {
				seen[w] = true
				out = append(out, w)
			}
		}
	}
	for _, sec := range s.Sections {
		for _, r := range sec.Rows {
			add(sec, r, r.sample.Warnings)
			add(sec, r, r.Time.Warnings)
			add(sec, r, r.Compare.Warnings)
			if len(r.Mixed) > 0 {
				add(sec, r, []error{fmt.Errorf("trials differ in %s", strings.Join(r.Mixed, ", "))})
			}
		}
	}
	return out
}
