// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measmath

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
)

// AssumeNormal is an assumption that a sample is normally
// distributed. The summary is the mean with a t-based confidence
// interval and comparisons use Welch's t-test.
var AssumeNormal = assumeNormal{}

type assumeNormal struct{}

var _ Assumption = assumeNormal{}

func (assumeNormal) SummaryLabel() string { return "mean" }

func (assumeNormal) Summary(s *Sample, confidence float64) Summary {
	switch len(s.Values) {
	case 0:
		return Summary{Center: math.NaN(), Lo: math.NaN(), Hi: math.NaN(), Warnings: []error{fmt.Errorf("empty sample")}}
	case 1:
		v := s.Values[0]
		return Summary{Center: v, Lo: v, Hi: v, N: 1, Warnings: []error{fmt.Errorf("need >= 2 samples for a confidence interval")}}
	}
	mean, lo, hi := s.sample().MeanCI(confidence)
	return Summary{Center: mean, Lo: lo, Hi: hi, Confidence: confidence, N: len(s.Values)}
}

func (assumeNormal) Compare(s1, s2 *Sample) Comparison {
	c := Comparison{N1: len(s1.Values), N2: len(s2.Values), Alpha: alpha(s1)}
	t, err := stats.TwoSampleWelchTTest(s1.sample(), s2.sample(), stats.LocationDiffers)
	if err != nil {
		// Report as no significant difference.
		c.P = 1
		c.Warnings = []error{err}
		return c
	}
	c.P = t.P
	return c
}

// AssumeNothing makes no distributional assumption. The summary is
// the median with the sample's range as its interval and comparisons
// use the Mann-Whitney U-test.
var AssumeNothing = assumeNothing{}

type assumeNothing struct{}

var _ Assumption = assumeNothing{}

func (assumeNothing) SummaryLabel() string { return "median" }

func (assumeNothing) Summary(s *Sample, confidence float64) Summary {
	if len(s.Values) == 0 {
		return Summary{Center: math.NaN(), Lo: math.NaN(), Hi: math.NaN(), Warnings: []error{fmt.Errorf("empty sample")}}
	}
	lo, hi := stats.Bounds(s.Values)
	return Summary{Center: s.sample().Quantile(0.5), Lo: lo, Hi: hi, Confidence: 1, N: len(s.Values)}
}

func (assumeNothing) Compare(s1, s2 *Sample) Comparison {
	c := Comparison{N1: len(s1.Values), N2: len(s2.Values), Alpha: alpha(s1)}
	u, err := stats.MannWhitneyUTest(s1.Values, s2.Values, stats.LocationDiffers)
	if err != nil {
		c.P = 1
		c.Warnings = []error{err}
		return c
	}
	c.P = u.P
	return c
}

// AssumeExact is an assumption that a value is measured exactly,
// such as a speedup already averaged by the benchmark harness. It
// warns if the values of a sample differ.
var AssumeExact = assumeExact{}

type assumeExact struct{}

var _ Assumption = assumeExact{}

func (assumeExact) SummaryLabel() string { return "exact" }

func (assumeExact) Summary(s *Sample, confidence float64) Summary {
	if len(s.Values) == 0 {
		return Summary{Center: math.NaN(), Lo: math.NaN(), Hi: math.NaN(), Warnings: []error{fmt.Errorf("empty sample")}}
	}
	// The mode, which for the expected case is the only value.
	mode, modeCount := s.Values[0], 0
	for i := 0; i < len(s.Values); {
		j := i
		for j < len(s.Values) && s.Values[j] == s.Values[i] {
			j++
		}
		if j-i > modeCount {
			mode, modeCount = s.Values[i], j-i
		}
		i = j
	}
	sum := Summary{Center: mode, Lo: s.Min(), Hi: s.Max(), Confidence: 1, N: len(s.Values)}
	if modeCount != len(s.Values) {
		sum.Warnings = []error{fmt.Errorf("exact value expected, but values range from %v to %v", s.Min(), s.Max())}
	}
	return sum
}

func (assumeExact) Compare(s1, s2 *Sample) Comparison {
	return Comparison{P: 0, N1: len(s1.Values), N2: len(s2.Values), Alpha: alpha(s1)}
}

func alpha(s *Sample) float64 {
	if s.Thresholds == nil {
		return DefaultThresholds.CompareAlpha
	}
	return s.Thresholds.CompareAlpha
}
