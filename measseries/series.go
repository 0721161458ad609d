// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package measseries aggregates a table of measurements into plot
// series: one series per hue value, one point per x value.
package measseries

import (
	"fmt"
	"math"

	"github.com/aclements/go-gg/ggstat"
	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-moremath/stats"
	"github.com/ompbench/ompplot/measfmt"
)

// A Point is the aggregate of the rows of one series at one x value.
type Point struct {
	// X is the numeric x value. For a categorical x it is the
	// category's position in order of first appearance.
	X float64

	// Label is the x value as it appeared in the table.
	Label string

	Mean, Min, Max float64

	// StdDev is the sample standard deviation, or 0 for a single
	// row.
	StdDev float64

	N int
}

// A Series is a sequence of points sharing a hue value.
type Series struct {
	Name   string
	Points []Point
}

// Xs and Ys return the x values and means of s.
func (s *Series) Xs() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.X
	}
	return out
}

func (s *Series) Ys() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Mean
	}
	return out
}

// At returns the point of s with the given x label.
func (s *Series) At(label string) (Point, bool) {
	for _, p := range s.Points {
		if p.Label == label {
			return p, true
		}
	}
	return Point{}, false
}

// A Builder configures how a table is aggregated into series.
type Builder struct {
	// X and Y name the x and value columns.
	X, Y string

	// Hue names the column that splits rows into series. If empty,
	// all rows form a single series named Y.
	Hue string

	// Categorical forces x to be treated as labels even if every
	// value is numeric. Otherwise x is numeric when every cell
	// parses.
	Categorical bool
}

const (
	colX   = "x"
	colY   = "y"
	colHue = "hue"
)

// Build aggregates t into series, one per distinct hue value in
// order of first appearance. Rows whose y (or numeric x) is missing
// are skipped. Numeric points are sorted by x; categorical points
// keep their order of first appearance.
func (b *Builder) Build(t *measfmt.Table) ([]*Series, error) {
	cols := []string{b.X, b.Y}
	if b.Hue != "" {
		cols = append(cols, b.Hue)
	}
	if err := t.Require(cols...); err != nil {
		return nil, err
	}

	numeric := !b.Categorical
	if numeric {
		for _, v := range t.Column(b.X) {
			if _, ok := measfmt.ParseFloat(v); !ok {
				numeric = false
				break
			}
		}
	}

	var (
		xs     []float64
		labels []string
		ys     []float64
		hues   []string
	)
	catPos := make(map[string]int)
	for _, row := range t.Rows {
		y := t.Float(row, b.Y)
		if math.IsNaN(y) {
			continue
		}
		label := t.Value(row, b.X)
		var x float64
		if numeric {
			x = t.Float(row, b.X)
		} else {
			pos, ok := catPos[label]
			if !ok {
				pos = len(catPos)
				catPos[label] = pos
			}
			x = float64(pos)
		}
		hue := b.Y
		if b.Hue != "" {
			hue = t.Value(row, b.Hue)
		}
		xs = append(xs, x)
		labels = append(labels, label)
		ys = append(ys, y)
		hues = append(hues, hue)
	}
	if len(ys) == 0 {
		return nil, nil
	}

	tab := table.NewBuilder(nil).
		Add(colX, xs).
		Add("label", labels).
		Add(colY, ys).
		Add(colHue, hues).
		Done()

	g := table.GroupBy(tab, colHue)
	g = ggstat.Agg(colX)(
		ggstat.AggMean(colY),
		ggstat.AggMin(colY),
		ggstat.AggMax(colY),
		aggStdDev(colY),
		ggstat.AggCount(""),
	).F(g)
	g = table.SortBy(g, colX)

	var out []*Series
	for _, gid := range g.Tables() {
		at := g.Table(gid)
		s := &Series{Name: fmt.Sprint(gid.Label())}
		px := at.MustColumn(colX).([]float64)
		mean := at.MustColumn("mean " + colY).([]float64)
		min := at.MustColumn("min " + colY).([]float64)
		max := at.MustColumn("max " + colY).([]float64)
		sd := at.MustColumn("stddev " + colY).([]float64)
		count := at.MustColumn("count").([]int)
		for i := range px {
			s.Points = append(s.Points, Point{
				X:      px[i],
				Label:  labelOf(at, i, px[i], numeric),
				Mean:   mean[i],
				Min:    min[i],
				Max:    max[i],
				StdDev: sd[i],
				N:      count[i],
			})
		}
		out = append(out, s)
	}
	return out, nil
}

// labelOf recovers the x label of aggregated row i. The label column
// survives aggregation only when it is constant within each x group,
// which holds unless numerically equal x cells were spelled
// differently.
func labelOf(t *table.Table, i int, x float64, numeric bool) string {
	if c := t.Column("label"); c != nil {
		return c.([]string)[i]
	}
	if numeric {
		return measfmt.FormatFloat(x)
	}
	return ""
}

func aggStdDev(col string) ggstat.Aggregator {
	return func(input table.Grouping, b *table.Builder) {
		sds := make([]float64, 0, len(input.Tables()))
		for _, gid := range input.Tables() {
			xs := input.Table(gid).MustColumn(col).([]float64)
			sd := 0.0
			if len(xs) > 1 {
				sd = stats.StdDev(xs)
			}
			sds = append(sds, sd)
		}
		b.Add("stddev "+col, sds)
	}
}

// Categories returns the union of the point labels of series, in
// order of first appearance across them.
func Categories(series []*Series) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range series {
		for _, p := range s.Points {
			if !seen[p.Label] {
				seen[p.Label] = true
				out = append(out, p.Label)
			}
		}
	}
	return out
}
