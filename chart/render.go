// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"
)

// A Format is an output image format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
	PDF Format = "pdf"
)

// ParseFormat parses a format name such as "png" or ".SVG".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(s), ".")); f {
	case PNG, SVG, PDF:
		return f, nil
	}
	return "", fmt.Errorf("unknown image format %q (want png, svg or pdf)", s)
}

// Ext returns the file name extension for f, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// A Renderer writes charts in one image format.
type Renderer struct {
	Format Format

	// DPI is the resolution of raster formats. Zero means 96.
	DPI int

	// Width and Height are the figure size. Zero means 10 by 6
	// inches.
	Width, Height vg.Length
}

// Render draws c to w.
func (r *Renderer) Render(w io.Writer, c *Chart) error {
	p, err := c.Plot()
	if err != nil {
		return err
	}
	width, height := r.Width, r.Height
	if width == 0 {
		width = 10 * vg.Inch
	}
	if height == 0 {
		height = 6 * vg.Inch
	}
	dpi := r.DPI
	if dpi <= 0 {
		dpi = 96
	}

	var can vg.CanvasWriterTo
	switch r.Format {
	case PNG, "":
		can = vgimg.PngCanvas{Canvas: vgimg.NewWith(
			vgimg.UseWH(width, height),
			vgimg.UseDPI(dpi),
			vgimg.UseBackgroundColor(color.White),
		)}
	case SVG:
		can = vgsvg.New(width, height)
	case PDF:
		can = vgpdf.New(width, height)
	default:
		return fmt.Errorf("unknown image format %q", r.Format)
	}
	p.Draw(draw.New(can))
	if _, err := can.WriteTo(w); err != nil {
		return fmt.Errorf("writing chart %s: %w", c.Name, err)
	}
	return nil
}

// FileName returns the output file name of c.
func (r *Renderer) FileName(c *Chart) string {
	f := r.Format
	if f == "" {
		f = PNG
	}
	return c.Name + f.Ext()
}
