// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/aclements/go-moremath/stats"
	"github.com/ompbench/ompplot/chart"
	"github.com/ompbench/ompplot/measfmt"
	"github.com/ompbench/ompplot/measmath"
	"github.com/ompbench/ompplot/measproc"
	"github.com/ompbench/ompplot/measseries"
	"github.com/ompbench/ompplot/measstat"
	"github.com/ompbench/ompplot/speedup"
)

// Headers of the raw region benchmark output, by field count.
var (
	regionHeader8  = []string{"N", "K", "B", "Threads", "Schedule", "Critical", "Atomic", "Local"}
	regionHeader10 = []string{"N", "K", "B", "Threads", "Schedule", "Naive", "Critical", "Atomic", "Local", "SIMD"}
)

// regionVariants returns the duration columns of a raw region table.
func regionVariants(raw *measfmt.Table) ([]string, error) {
	for _, h := range [][]string{regionHeader10, regionHeader8} {
		if raw.Has(h...) {
			return h[5:], nil
		}
	}
	return nil, fmt.Errorf("unrecognized region columns %v", raw.Columns)
}

// Columns of the region summary table.
const (
	colThreads    = "THREADS"
	colSchedule   = "SCHEDULE"
	colNaiveMean  = "T_NAIVE_MEAN"
	colNaiveStd   = "T_NAIVE_STD"
	colOrgMean    = "T_ORG_MEAN"
	colOrgStd     = "T_ORG_STD"
	colSpeedupAvg = "SPEEDUP_MEAN"
)

var summaryColumns = []string{"N", "K", "B", colThreads, colSchedule, colNaiveMean, colNaiveStd, colOrgMean, colOrgStd, colSpeedupAvg}

func rawRegionSource() *Source {
	return &Source{
		Name:       "resultados_regiao.csv",
		Headerless: [][]string{regionHeader8, regionHeader10},
		Numeric:    []string{"Threads"},
	}
}

// Region plots the parallel region organization summary.
func Region() *Analysis {
	return &Analysis{
		ID:    "R",
		Title: "Organização da região paralela",
		Notes: "Naive and organized region times with one standard deviation, " +
			"and the organized speedup over the naive single-thread run.",
		Sources: []*Source{
			{
				Name:    "results.csv",
				Numeric: []string{colThreads, colNaiveMean, colOrgMean, colSpeedupAvg},
			},
			rawRegionSource(),
		},
		plan: planRegion,
	}
}

func planRegion(env *Env, in *Input) (*Output, error) {
	out := &Output{
		// Each row is already a mean over trials.
		Summary: &measstat.Options{
			Key:        []string{"N", "K", "B"},
			Hue:        colSchedule,
			X:          colThreads,
			Duration:   colOrgMean,
			Speedup:    colSpeedupAvg,
			Assumption: measmath.AssumeExact,
			Exclude:    []string{colNaiveMean, colNaiveStd, colOrgStd},
		},
	}
	t := in.Table
	if in.Source.Headerless != nil {
		var err error
		out.Table, out.Speedup, err = regionSummary(t)
		if err != nil {
			return nil, err
		}
		t = out.Table
	} else {
		if err := t.Require(summaryColumns...); err != nil {
			return nil, err
		}
		out.Table = t
	}

	if env.RegionFilter != "" {
		f, err := measproc.NewFilter(env.RegionFilter)
		if err != nil {
			return nil, fmt.Errorf("region filter: %w", err)
		}
		t = f.Apply(t)
		if t.Len() == 0 {
			out.warnf("no region rows match %q", env.RegionFilter)
			return out, nil
		}
	}

	var times []*measseries.Series
	for _, sched := range t.Unique(colSchedule) {
		rows := t.Where(colSchedule, sched)
		times = append(times,
			stdDevSeries("Naive - "+sched, rows, colNaiveMean, colNaiveStd),
			stdDevSeries("Organized - "+sched, rows, colOrgMean, colOrgStd))
	}
	out.Charts = append(out.Charts, &chart.Chart{
		Name:      "tempo_vs_threads",
		Title:     "Organização da Região Paralela",
		XLabel:    "Threads",
		YLabel:    "Tempo (s)",
		Series:    times,
		ErrorBars: chart.StdDevBars,
	})

	speedups, err := (&measseries.Builder{X: colThreads, Y: colSpeedupAvg, Hue: colSchedule}).Build(t)
	if err != nil {
		return nil, err
	}
	out.Charts = append(out.Charts, &chart.Chart{
		Name:   "speedup_vs_threads",
		Title:  "Speedup vs Threads",
		XLabel: "Threads",
		YLabel: "Speedup (Organizada)",
		Series: speedups,
	})
	return out, nil
}

// stdDevSeries makes a series from precomputed mean and standard
// deviation columns, one point per row, sorted by thread count.
func stdDevSeries(name string, t *measfmt.Table, mean, std string) *measseries.Series {
	s := &measseries.Series{Name: name}
	for _, row := range t.Rows {
		m, sd := t.Float(row, mean), t.Float(row, std)
		if math.IsNaN(sd) {
			sd = 0
		}
		s.Points = append(s.Points, measseries.Point{
			X:      t.Float(row, colThreads),
			Label:  t.Value(row, colThreads),
			Mean:   m,
			Min:    m - sd,
			Max:    m + sd,
			StdDev: sd,
			N:      1,
		})
	}
	sort.SliceStable(s.Points, func(i, j int) bool { return s.Points[i].X < s.Points[j].X })
	return s
}

// regionSummary aggregates raw region trials into the results.csv
// layout. The first variant column is the naive time and Local the
// organized time. SPEEDUP_MEAN divides the naive single-thread mean
// of each N, K, B, schedule by the organized mean.
func regionSummary(raw *measfmt.Table) (*measfmt.Table, *speedup.Result, error) {
	variants, err := regionVariants(raw)
	if err != nil {
		return nil, nil, err
	}
	naiveCol, orgCol := variants[0], "Local"

	keys, groups, err := groupBy(raw, "N", "K", "B", "Threads", "Schedule")
	if err != nil {
		return nil, nil, err
	}
	sum := measfmt.NewTable(summaryColumns[:len(summaryColumns)-1]...)
	for _, k := range keys {
		trials := subset(raw, groups[k])
		naiveMean, naiveStd := meanStd(trials.Floats(naiveCol))
		orgMean, orgStd := meanStd(trials.Floats(orgCol))
		sum.Append(k.Value("N"), k.Value("K"), k.Value("B"), k.Value("Threads"), k.Value("Schedule"),
			measfmt.FormatFloat(naiveMean), measfmt.FormatFloat(naiveStd),
			measfmt.FormatFloat(orgMean), measfmt.FormatFloat(orgStd))
	}

	sp, err := speedup.Normalize(sum, speedup.Options{
		GroupBy:     []string{"N", "K", "B", colSchedule},
		Parallelism: colThreads,
		Duration:    colNaiveMean,
		Column:      colSpeedupAvg,
	})
	if err != nil {
		return nil, nil, err
	}
	// Normalize divides by the naive mean; rescale to the organized
	// mean while keeping the group baselines.
	vals := make([]string, sum.Len())
	for _, g := range sp.Groups {
		for _, i := range g.Rows {
			vals[i] = measfmt.FormatFloat(g.Baseline / sum.Float(sum.Rows[i], colOrgMean))
		}
	}
	out := sum.WithColumn(colSpeedupAvg, vals)
	sp.Table = out
	for i, row := range out.Rows {
		sp.Speedups[i] = out.Float(row, colSpeedupAvg)
	}
	return out, sp, nil
}

// meanStd returns the mean and sample standard deviation of the
// non-NaN values of xs. A single value has deviation 0.
func meanStd(xs []float64) (mean, std float64) {
	var vals []float64
	for _, x := range xs {
		if !math.IsNaN(x) {
			vals = append(vals, x)
		}
	}
	switch len(vals) {
	case 0:
		return math.NaN(), math.NaN()
	case 1:
		return vals[0], 0
	}
	return stats.Mean(vals), stats.StdDev(vals)
}

// RegionVariants plots every raw region variant with normalized
// speedup.
func RegionVariants() *Analysis {
	return &Analysis{
		ID:    "V",
		Title: "Variantes da região paralela",
		Notes: "Mean time of each reduction variant and schedule over repeated trials, " +
			"and speedup relative to the fastest `Threads == 1` trial of the same variant and schedule.",
		Sources: []*Source{rawRegionSource()},
		plan:    planVariants,
	}
}

func planVariants(env *Env, in *Input) (*Output, error) {
	raw := in.Table
	variants, err := regionVariants(raw)
	if err != nil {
		return nil, err
	}
	long, err := measseries.Unpivot(raw, "Variant", "Tempo", variants...)
	if err != nil {
		return nil, err
	}
	long, _ = long.DropMissing("Tempo")
	long = derive(long, "Serie", func(row *measfmt.Row) string {
		return long.Value(row, "Variant") + " - " + long.Value(row, "Schedule")
	})
	sp, err := speedup.Normalize(long, speedup.Options{GroupBy: []string{"N", "K", "B", "Schedule", "Variant"}})
	if err != nil {
		return nil, err
	}
	out := &Output{
		Table:   sp.Table,
		Speedup: sp,
		Summary: &measstat.Options{Key: []string{"N", "K", "B"}, Hue: "Serie", Speedup: "Speedup"},
	}
	for _, g := range sp.Fallbacks() {
		out.warnf("%s: no single-thread trial, speedup is relative to the slowest trial", g.Key)
	}

	keys, groups, err := groupBy(sp.Table, "N", "K", "B")
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		sub := subset(sp.Table, groups[k])
		times, err := (&measseries.Builder{X: "Threads", Y: "Tempo", Hue: "Serie"}).Build(sub)
		if err != nil {
			return nil, err
		}
		out.Charts = append(out.Charts, &chart.Chart{
			Name:      "V_Tempo_" + k.FileName(),
			Title:     "Variantes da Região Paralela: Tempo - " + k.String(),
			XLabel:    "Threads",
			YLabel:    "Tempo (s)",
			Series:    times,
			ErrorBars: chart.StdDevBars,
		})
		speedups, err := (&measseries.Builder{X: "Threads", Y: "Speedup", Hue: "Serie"}).Build(sub)
		if err != nil {
			return nil, err
		}
		out.Charts = append(out.Charts, &chart.Chart{
			Name:      "V_Speedup_" + k.FileName(),
			Title:     "Variantes da Região Paralela: Speedup - " + k.String(),
			XLabel:    "Threads",
			YLabel:    "Speedup",
			Series:    speedups,
			ErrorBars: chart.StdDevBars,
			Refs:      []chart.Ref{sequentialRef("Sequencial (1x)"), idealRef(env.Ideal)},
		})
	}
	return out, nil
}
