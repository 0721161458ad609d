// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measstat

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ompbench/ompplot/measunit"
)

// WriteText writes s to w as fixed-width text tables, one per
// section.
func (s *Summary) WriteText(w io.Writer) error {
	var buf strings.Builder
	for i, sec := range s.Sections {
		if i > 0 {
			buf.WriteString("\n")
		}
		if title := sec.Key.String(); title != "" {
			fmt.Fprintf(&buf, "%s\n", title)
		}
		formatRows(&buf, s.textRows(sec))
	}
	if warns := s.Warnings(); len(warns) > 0 {
		buf.WriteString("\n")
		for _, w := range warns {
			fmt.Fprintf(&buf, "warning: %s\n", w)
		}
	}
	_, err := io.WriteString(w, buf.String())
	return err
}

// A textRow is a row of printed text columns.
type textRow struct {
	cols []string
}

func newTextRow(cols ...string) *textRow {
	return &textRow{cols: cols}
}

func (s *Summary) textRows(sec *Section) []*textRow {
	o := s.Options
	var centers []float64
	for _, r := range sec.Rows {
		centers = append(centers, r.Time.Center)
	}
	scaler := measunit.CommonScale(centers, measunit.ClassOf(o.Duration))
	ratio := measunit.CommonScale(nil, measunit.Ratio)

	var head []string
	if o.Hue != "" {
		head = append(head, o.Hue)
	}
	head = append(head, o.X, fmt.Sprintf("%s (%s)", o.Duration, o.Assumption.SummaryLabel()), "n")
	if o.Speedup != "" {
		head = append(head, o.Speedup)
	}
	head = append(head, "vs first", "")
	rows := []*textRow{newTextRow(head...)}

	for _, r := range sec.Rows {
		var cols []string
		if o.Hue != "" {
			cols = append(cols, r.Hue)
		}
		cols = append(cols, r.X, scaler.Format(r.Time.Center)+" ± "+r.Time.PctRangeString(), fmt.Sprint(r.Time.N))
		if r.Speedup != nil {
			sp := ratio.Format(r.Speedup.Center)
			if r.Fallback {
				sp += "*"
			}
			cols = append(cols, sp)
		}
		if r.Ref == nil {
			cols = append(cols, "base", "")
		} else {
			cols = append(cols, r.Compare.FormatDelta(r.Ref.Time.Center, r.Time.Center), "("+r.Compare.String()+")")
		}
		rows = append(rows, newTextRow(cols...))
	}
	return rows
}

// formatRows lays out rows with the first column left-aligned, the
// others right-aligned, and the last column left-aligned after two
// spaces.
func formatRows(buf *strings.Builder, rows []*textRow) {
	var max []int
	for _, row := range rows {
		for len(max) < len(row.cols) {
			max = append(max, 0)
		}
		for i, s := range row.cols {
			if n := utf8.RuneCountInString(s); max[i] < n {
				max[i] = n
			}
		}
	}
	for ri, row := range rows {
		var line strings.Builder
		for i, s := range row.cols {
			switch {
			case i == 0:
				fmt.Fprintf(&line, "%s%*s", s, max[i]-utf8.RuneCountInString(s), "")
			case i == len(row.cols)-1:
				fmt.Fprintf(&line, "  %s", s)
			case ri == 0:
				fmt.Fprintf(&line, "  %s%*s", s, max[i]-utf8.RuneCountInString(s), "")
			default:
				fmt.Fprintf(&line, "  %*s%s", max[i]-utf8.RuneCountInString(s), "", s)
			}
		}
		buf.WriteString(strings.TrimRight(line.String(), " "))
		buf.WriteString("\n")
	}
}
