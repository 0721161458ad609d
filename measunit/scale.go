// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package measunit formats measured durations and speedup ratios
// for people to read.
package measunit

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// A Class is the kind of quantity a column holds.
type Class int

const (
	// Seconds is a duration in seconds, rendered with an SI prefix
	// ("12.3ms").
	Seconds Class = iota
	// Ratio is a dimensionless ratio such as a speedup, rendered
	// with an "x" suffix ("2.05x").
	Ratio
	// Plain is any other number, rendered without a unit.
	Plain
)

func (c Class) String() string {
	switch c {
	case Seconds:
		return "sec"
	case Ratio:
		return "x"
	case Plain:
		return ""
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// ClassOf guesses the Class of a column from its name.
func ClassOf(column string) Class {
	c := strings.ToLower(column)
	switch {
	case strings.Contains(c, "speedup"), strings.Contains(c, "ratio"):
		return Ratio
	case c == "tempo", c == "time", strings.HasPrefix(c, "t_"), strings.HasSuffix(c, "sec"), strings.HasSuffix(c, "seconds"):
		return Seconds
	}
	return Plain
}

// A Scaler represents a scaling factor for a number and the unit it
// is rendered with.
type Scaler struct {
	Prec   int     // Digits after the decimal point
	Factor float64 // Unscaled value of 1 Unit (e.g., 1 ms => 0.001)
	Unit   string  // Unit suffix ("ms", "x", etc)
}

// Format formats val scaled by s and appends the unit. NaN formats
// as "?" and infinities as "∞" with the unit.
func (s Scaler) Format(val float64) string {
	switch {
	case math.IsNaN(val):
		return "?"
	case math.IsInf(val, 1):
		return "∞" + s.Unit
	case math.IsInf(val, -1):
		return "-∞" + s.Unit
	}
	buf := make([]byte, 0, 20)
	buf = strconv.AppendFloat(buf, val/s.Factor, 'f', s.Prec, 64)
	buf = append(buf, s.Unit...)
	return string(buf)
}

// NoOpScaler formats numbers with the smallest number of digits
// necessary to capture the exact value and no unit, for output
// consumed by other programs.
var NoOpScaler = Scaler{-1, 1, ""}

type prefix struct {
	factor float64
	unit   string
	// Thresholds for 100.0, 10.00, 1.000.
	t100, t10, t1 float64
}

var secPrefixes = mkSecPrefixes()

func mkSecPrefixes() []prefix {
	// Thresholds come from parsing printed values so that they
	// round exactly the way Format does.
	var out []prefix
	exp := 0
	for _, u := range []string{"s", "ms", "µs", "ns"} {
		t100, _ := strconv.ParseFloat(fmt.Sprintf("99.995e%d", exp), 64)
		t10, _ := strconv.ParseFloat(fmt.Sprintf("9.9995e%d", exp), 64)
		t1, _ := strconv.ParseFloat(fmt.Sprintf(".99995e%d", exp), 64)
		out = append(out, prefix{math.Pow(10, float64(exp)), u, t100, t10, t1})
		exp -= 3
	}
	return out
}

// Scale formats val using at least three significant digits in the
// unit of cls.
func Scale(val float64, cls Class) string {
	return CommonScale([]float64{val}, cls).Format(val)
}

// CommonScale returns a common Scaler to apply to all values in vals.
// The scale shows at least three significant digits for every finite
// value.
func CommonScale(vals []float64, cls Class) Scaler {
	switch cls {
	case Ratio:
		return Scaler{2, 1, "x"}
	case Plain:
		return Scaler{-1, 1, ""}
	case Seconds:
	default:
		panic(fmt.Sprintf("bad Class %v", cls))
	}

	// The common scale is set by the finite non-zero value
	// closest to zero.
	var min float64
	for _, v := range vals {
		v = math.Abs(v)
		if v != 0 && !math.IsInf(v, 0) && !math.IsNaN(v) && (min == 0 || v < min) {
			min = v
		}
	}
	if min == 0 {
		return Scaler{3, 1, "s"}
	}
	for _, p := range secPrefixes {
		switch {
		case min >= p.t100:
			return Scaler{1, p.factor, p.unit}
		case min >= p.t10:
			return Scaler{2, p.factor, p.unit}
		case min >= p.t1:
			return Scaler{3, p.factor, p.unit}
		}
	}
	// Sub-nanosecond: stay in ns with more digits.
	p := secPrefixes[len(secPrefixes)-1]
	return Scaler{6, p.factor, p.unit}
}
