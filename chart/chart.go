// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chart draws aggregated measurement series as line and
// grouped bar charts.
package chart

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/ompbench/ompplot/measfmt"
	"github.com/ompbench/ompplot/measseries"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// A Kind selects how a Chart draws its series.
type Kind int

const (
	// Lines draws each series as a line with a marker at every
	// point, over a numeric x axis.
	Lines Kind = iota
	// Bars draws one bar per series at every x category, grouped
	// side by side.
	Bars
)

// ErrorBars selects the interval drawn around each point of a line
// chart.
type ErrorBars int

const (
	NoErrorBars ErrorBars = iota
	// StdDevBars spans one standard deviation either side of the
	// mean.
	StdDevBars
	// RangeBars spans the minimum to the maximum.
	RangeBars
)

// A Ref is a horizontal reference line, such as the 1x speedup line.
type Ref struct {
	Y     float64
	Label string
	Color color.Color
	// Dotted draws a dotted line instead of a dashed one.
	Dotted bool
}

// A Chart describes one output figure.
type Chart struct {
	// Name is the output file name without extension.
	Name string

	Title, XLabel, YLabel string

	Kind   Kind
	Series []*measseries.Series

	ErrorBars ErrorBars
	Refs      []Ref

	// Color, if set, overrides the palette for a single-series
	// chart.
	Color color.Color
}

// Points returns the total number of points across c's series.
func (c *Chart) Points() int {
	n := 0
	for _, s := range c.Series {
		n += len(s.Points)
	}
	return n
}

// Plot builds the gonum plot for c.
func (c *Chart) Plot() (*plot.Plot, error) {
	if c.Points() == 0 {
		return nil, fmt.Errorf("chart %s: no data", c.Name)
	}
	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Legend.Top = true
	p.Legend.Padding = 1 * vg.Millimeter

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	p.Add(grid)

	colors := palette(len(c.Series))
	if c.Color != nil && len(c.Series) == 1 {
		colors[0] = c.Color
	}

	var err error
	switch c.Kind {
	case Lines:
		err = c.addLines(p, colors)
	case Bars:
		err = c.addBars(p, colors)
	default:
		err = fmt.Errorf("unknown chart kind %d", c.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", c.Name, err)
	}

	for _, r := range c.Refs {
		addRef(p, r)
	}
	return p, nil
}

func (c *Chart) addLines(p *plot.Plot, colors []color.Color) error {
	var xs []float64
	seen := make(map[float64]bool)
	for i, s := range c.Series {
		pts := finitePoints(s.Points)
		if len(pts) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(pts))
		for j, pt := range pts {
			xys[j].X, xys[j].Y = pt.X, pt.Mean
			if !seen[pt.X] {
				seen[pt.X] = true
				xs = append(xs, pt.X)
			}
		}
		line, scatter, err := plotter.NewLinePoints(xys)
		if err != nil {
			return err
		}
		line.LineStyle.Color = colors[i]
		line.LineStyle.Width = vg.Points(1.5)
		scatter.GlyphStyle.Color = colors[i]
		scatter.GlyphStyle.Shape = plotutil.Shape(i)
		scatter.GlyphStyle.Radius = vg.Points(3)
		p.Add(line, scatter)
		if len(c.Series) > 1 || len(c.Refs) > 0 {
			p.Legend.Add(s.Name, line, scatter)
		}

		if c.ErrorBars == NoErrorBars {
			continue
		}
		eb, err := plotter.NewYErrorBars(errorPoints(pts, c.ErrorBars))
		if err != nil {
			return err
		}
		eb.LineStyle.Color = colors[i]
		p.Add(eb)
	}
	if len(xs) == 0 {
		return fmt.Errorf("no finite points")
	}
	sort.Float64s(xs)
	ticks := make([]plot.Tick, len(xs))
	for i, x := range xs {
		ticks[i] = plot.Tick{Value: x, Label: measfmt.FormatFloat(x)}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	return nil
}

func (c *Chart) addBars(p *plot.Plot, colors []color.Color) error {
	cats := measseries.Categories(c.Series)
	n := len(c.Series)
	barWidth := vg.Points(60 / float64(n))
	if barWidth > vg.Points(24) {
		barWidth = vg.Points(24)
	}
	groupWidth := barWidth * vg.Length(n-1)
	for i, s := range c.Series {
		vals := make(plotter.Values, len(cats))
		for j, cat := range cats {
			if pt, ok := s.At(cat); ok && !math.IsNaN(pt.Mean) && !math.IsInf(pt.Mean, 0) {
				vals[j] = pt.Mean
			}
		}
		bc, err := plotter.NewBarChart(vals, barWidth)
		if err != nil {
			return err
		}
		bc.Offset = barWidth*vg.Length(i) - groupWidth/2
		bc.Color = colors[i]
		bc.LineStyle.Width = 0
		p.Add(bc)
		p.Legend.Add(s.Name, bc)
	}
	p.NominalX(cats...)
	return nil
}

// addRef draws r across the plot's x range and widens the y range to
// show it.
func addRef(p *plot.Plot, r Ref) {
	y := r.Y
	f := plotter.NewFunction(func(float64) float64 { return y })
	f.LineStyle.Width = vg.Points(1.5)
	f.LineStyle.Color = r.Color
	if f.LineStyle.Color == nil {
		f.LineStyle.Color = color.Gray{128}
	}
	if r.Dotted {
		f.LineStyle.Dashes = []vg.Length{vg.Points(1.5), vg.Points(3)}
	} else {
		f.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
	}
	p.Add(f)
	if r.Label != "" {
		p.Legend.Add(r.Label, f)
	}
	if p.Y.Min > y {
		p.Y.Min = y
	}
	if p.Y.Max < y {
		p.Y.Max = y
	}
}

type errPoints struct {
	plotter.XYs
	plotter.YErrors
}

func errorPoints(pts []measseries.Point, kind ErrorBars) errPoints {
	e := errPoints{
		XYs:     make(plotter.XYs, len(pts)),
		YErrors: make(plotter.YErrors, len(pts)),
	}
	for i, pt := range pts {
		e.XYs[i].X, e.XYs[i].Y = pt.X, pt.Mean
		switch kind {
		case StdDevBars:
			e.YErrors[i].Low, e.YErrors[i].High = pt.StdDev, pt.StdDev
		case RangeBars:
			e.YErrors[i].Low, e.YErrors[i].High = pt.Mean-pt.Min, pt.Max-pt.Mean
		}
	}
	return e
}

// finitePoints drops points that gonum cannot place, such as the
// infinite speedup of a zero duration.
func finitePoints(pts []measseries.Point) []measseries.Point {
	out := pts[:0:0]
	for _, pt := range pts {
		if math.IsNaN(pt.Mean) || math.IsInf(pt.Mean, 0) || math.IsNaN(pt.X) || math.IsInf(pt.X, 0) {
			continue
		}
		out = append(out, pt)
	}
	return out
}

// palette returns n distinct series colors.
func palette(n int) []color.Color {
	out := make([]color.Color, n)
	if n <= 12 {
		// Brewer's qualitative palettes start at 3 colors.
		k := n
		if k < 3 {
			k = 3
		}
		if pal, err := brewer.GetPalette(brewer.TypeQualitative, "Paired", k); err == nil {
			copy(out, pal.Colors())
			return out
		}
	}
	for i := range out {
		out[i] = plotutil.Color(i)
	}
	return out
}
