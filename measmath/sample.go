// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package measmath computes statistics over repeated timing
// measurements.
//
// Callers state a distributional assumption and this package picks
// the summary statistic and test to go with it. All results carry a
// list of warnings: problems that do not prevent the analysis but
// should be shown to the user alongside it.
package measmath

import (
	"fmt"
	"math"
	"sort"

	"github.com/aclements/go-moremath/mathx"
	"github.com/aclements/go-moremath/stats"
)

// A Sample is a set of repeated measurements of one configuration.
type Sample struct {
	// Values are the measured values, in ascending order. NaNs
	// are removed by NewSample.
	Values []float64

	// Thresholds stores the statistical thresholds used by tests
	// on this sample.
	Thresholds *Thresholds

	// Warnings is a list of warnings about this sample.
	Warnings []error
}

// NewSample constructs a Sample from a set of measurements. It sorts
// values in place and drops NaNs with a warning.
func NewSample(values []float64, t *Thresholds) *Sample {
	s := &Sample{Thresholds: t}
	nan := 0
	for _, v := range values {
		if math.IsNaN(v) {
			nan++
			continue
		}
		s.Values = append(s.Values, v)
	}
	if nan > 0 {
		s.Warnings = append(s.Warnings, fmt.Errorf("dropped %d missing values", nan))
	}
	sort.Float64s(s.Values)
	return s
}

func (s *Sample) sample() stats.Sample {
	return stats.Sample{Xs: s.Values, Sorted: true}
}

// Min and Max return the extremes of s, or NaN for an empty sample.
func (s *Sample) Min() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return s.Values[0]
}

func (s *Sample) Max() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return s.Values[len(s.Values)-1]
}

// A Thresholds configures the statistical tests.
//
// This should be initialized to DefaultThresholds.
type Thresholds struct {
	// CompareAlpha is the alpha level below which
	// Assumption.Compare rejects the null hypothesis that two
	// samples come from the same distribution.
	CompareAlpha float64
}

// DefaultThresholds contains a reasonable set of defaults for
// Thresholds.
var DefaultThresholds = Thresholds{
	CompareAlpha: 0.05,
}

// An Assumption indicates a distributional assumption about a sample.
type Assumption interface {
	// SummaryLabel names the summary statistic, such as "mean".
	SummaryLabel() string

	// Summary returns a summary statistic and an interval around
	// it at the given confidence level in [0,1].
	Summary(s *Sample, confidence float64) Summary

	// Compare tests whether s1 and s2 come from the same
	// distribution.
	Compare(s1, s2 *Sample) Comparison
}

// A Summary summarizes a Sample.
type Summary struct {
	// Center is the central tendency of the sample.
	Center float64

	// Lo and Hi bound the interval around Center.
	Lo, Hi float64

	// Confidence is the confidence level of [Lo, Hi]. It is 0 for
	// intervals that are not confidence intervals, such as a
	// standard deviation band.
	Confidence float64

	// N is the number of values summarized.
	N int

	Warnings []error
}

// PctRangeString returns the half-width of the interval as a
// percentage of Center, such as "4%".
func (s Summary) PctRangeString() string {
	if math.IsInf(s.Lo, 0) || math.IsInf(s.Hi, 0) || math.IsNaN(s.Lo) || math.IsNaN(s.Hi) {
		return "∞"
	}
	c := mathx.Sign(s.Center)
	if c != mathx.Sign(s.Lo) || c != mathx.Sign(s.Hi) {
		return "?"
	}
	if s.Center == 0 {
		return "0%"
	}
	v := math.Max(s.Hi/s.Center-1, 1-s.Lo/s.Center)
	return fmt.Sprintf("%.0f%%", 100*v)
}

// Spread summarizes s as its mean plus or minus one standard
// deviation. This is the band the coursework scripts draw as error
// bars.
func Spread(s *Sample) Summary {
	if len(s.Values) == 0 {
		return Summary{Center: math.NaN(), Lo: math.NaN(), Hi: math.NaN(), Warnings: []error{fmt.Errorf("empty sample")}}
	}
	sample := s.sample()
	mean := sample.Mean()
	sd := 0.0
	if len(s.Values) > 1 {
		sd = sample.StdDev()
	}
	return Summary{Center: mean, Lo: mean - sd, Hi: mean + sd, N: len(s.Values)}
}

// A Comparison is the result of testing whether two samples come
// from the same distribution.
type Comparison struct {
	// P is the p-value of the null hypothesis that the samples
	// come from the same distribution. P can be 0 for exact
	// results.
	P float64

	N1, N2 int

	// Alpha is the rejection threshold: P < Alpha rejects the null
	// hypothesis.
	Alpha float64

	Warnings []error
}

// String summarizes the comparison as "p=0.PPP n=N1+N2", shortened
// where possible.
func (c Comparison) String() string {
	var s string
	if c.P != 0 {
		s = fmt.Sprintf("p=%0.3f ", c.P)
	}
	if c.N1 == c.N2 {
		return s + fmt.Sprintf("n=%d", c.N1)
	}
	return s + fmt.Sprintf("n=%d+%d", c.N1, c.N2)
}

// Significant reports whether the comparison rejects the null
// hypothesis.
func (c Comparison) Significant() bool {
	return c.P <= c.Alpha
}

// FormatDelta formats the difference of two centers as a percentage,
// or "~" if the comparison found no significant difference.
func (c Comparison) FormatDelta(old, new float64) string {
	if c.P > c.Alpha {
		return "~"
	}
	if old == new {
		return "0.00%"
	}
	if old == 0 {
		return "?"
	}
	return fmt.Sprintf("%+.2f%%", (new/old-1)*100)
}
