// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/ompbench/ompplot/chart"
	"github.com/ompbench/ompplot/measfmt"
	"github.com/ompbench/ompplot/measseries"
	"github.com/ompbench/ompplot/measstat"
	"github.com/ompbench/ompplot/speedup"
)

// TaskA compares loop scheduling strategies.
func TaskA() *Analysis {
	return &Analysis{
		ID:    "A",
		Title: "Tarefa A: scheduling",
		Notes: "Time and speedup per `schedule (chunk)` strategy. " +
			"Speedup is relative to the fastest `Threads == 1` run of each `N, K`.",
		Sources: []*Source{{
			Name:    "resultados_tarefaA.csv",
			Numeric: []string{"Threads", "Tempo"},
		}},
		plan: planA,
	}
}

func planA(env *Env, in *Input) (*Output, error) {
	t := in.Table
	if err := t.Require("N", "K", "Schedule", "Chunk"); err != nil {
		return nil, err
	}
	t = derive(t, "Estrategia", func(row *measfmt.Row) string {
		return t.Value(row, "Schedule") + " (" + t.Value(row, "Chunk") + ")"
	})
	sp, err := speedup.Normalize(t, speedup.Options{GroupBy: []string{"N", "K"}})
	if err != nil {
		return nil, err
	}
	out := &Output{
		Table:   sp.Table,
		Speedup: sp,
		Summary: &measstat.Options{Key: []string{"N", "K"}, Hue: "Estrategia", Speedup: "Speedup"},
	}
	for _, g := range sp.Groups {
		sub := subset(sp.Table, g.Rows)
		n, k := g.Key.Value("N"), g.Key.Value("K")

		times, err := (&measseries.Builder{X: "Threads", Y: "Tempo", Hue: "Estrategia"}).Build(sub)
		if err != nil {
			return nil, err
		}
		out.Charts = append(out.Charts, &chart.Chart{
			Name:      "A_Tempo_" + g.Key.FileName(),
			Title:     fmt.Sprintf("Tarefa A: Tempo de Execução - N=%s, K=%s", n, k),
			XLabel:    "Threads",
			YLabel:    "Tempo (s)",
			Series:    times,
			ErrorBars: chart.RangeBars,
		})

		speedups, err := (&measseries.Builder{X: "Threads", Y: "Speedup", Hue: "Estrategia"}).Build(sub)
		if err != nil {
			return nil, err
		}
		out.Charts = append(out.Charts, &chart.Chart{
			Name:      "A_Speedup_" + g.Key.FileName(),
			Title:     fmt.Sprintf("Tarefa A: Speedup - N=%s, K=%s", n, k),
			XLabel:    "Threads",
			YLabel:    "Speedup",
			Series:    speedups,
			ErrorBars: chart.RangeBars,
			Refs:      []chart.Ref{sequentialRef("Sequencial (1x)"), idealRef(env.Ideal)},
		})
	}
	return out, nil
}

// TaskB compares histogram update strategies under contention.
func TaskB() *Analysis {
	return &Analysis{
		ID:    "B",
		Title: "Tarefa B: histogram",
		Notes: "Time per variant. Fewer than 100 buckets is high contention.",
		Sources: []*Source{{
			Name:    "resultados_tarefaB.csv",
			Numeric: []string{"B", "Threads", "Tempo"},
		}},
		plan: planB,
	}
}

// contention names the contention regime of a bucket count.
func contention(buckets float64) string {
	if buckets < 100 {
		return "Alta Contenção"
	}
	return "Baixa Contenção"
}

func planB(env *Env, in *Input) (*Output, error) {
	sp, err := speedup.Normalize(in.Table, speedup.Options{GroupBy: []string{"N", "B", "Variante"}})
	if err != nil {
		return nil, err
	}
	out := &Output{
		Table:   sp.Table,
		Speedup: sp,
		Summary: &measstat.Options{Key: []string{"N", "B"}, Hue: "Variante", Speedup: "Speedup"},
	}
	keys, groups, err := groupBy(sp.Table, "N", "B")
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		sub := subset(sp.Table, groups[k])
		series, err := (&measseries.Builder{X: "Threads", Y: "Tempo", Hue: "Variante"}).Build(sub)
		if err != nil {
			return nil, err
		}
		b := k.Value("B")
		nb, _ := measfmt.ParseFloat(b)
		out.Charts = append(out.Charts, &chart.Chart{
			Name:      "B_Tempo_" + k.FileName(),
			Title:     fmt.Sprintf("Tarefa B: %s - N=%s, Buckets=%s", contention(nb), k.Value("N"), b),
			XLabel:    "Threads",
			YLabel:    "Tempo (s)",
			Series:    series,
			ErrorBars: chart.RangeBars,
		})
	}
	return out, nil
}

const (
	variantBase = "Base"
	variantV2   = "SIMD_V2"
	variantV3   = "Parallel_SIMD_V3"
)

// TaskC measures the effect of SIMD vectorization.
func TaskC() *Analysis {
	return &Analysis{
		ID:    "C",
		Title: "Tarefa C: SIMD",
		Notes: "Speedup of each variant relative to the fastest `Base` run of each `N`.",
		Sources: []*Source{{
			Name:    "resultados_tarefaC.csv",
			Numeric: []string{"Threads", "Tempo"},
		}},
		plan: planC,
	}
}

func planC(env *Env, in *Input) (*Output, error) {
	sp, err := speedup.Normalize(in.Table, speedup.Options{
		GroupBy:     []string{"N"},
		Parallelism: "Variante",
		Baseline:    variantBase,
	})
	if err != nil {
		return nil, err
	}
	out := &Output{
		Table:   sp.Table,
		Speedup: sp,
		Summary: &measstat.Options{Key: []string{"N"}, Hue: "Variante", Speedup: "Speedup"},
	}
	for _, g := range sp.Groups {
		n := g.Key.Value("N")
		if g.Fallback {
			out.warnf("N=%s: no %s rows, speedup is relative to the slowest run", n, variantBase)
		}
		sub := subset(sp.Table, g.Rows)

		bars, err := (&measseries.Builder{X: "Variante", Y: "Speedup", Hue: "Threads", Categorical: true}).Build(sub)
		if err != nil {
			return nil, err
		}
		out.Charts = append(out.Charts, &chart.Chart{
			Name:   "C_Comparacao_" + g.Key.FileName(),
			Title:  fmt.Sprintf("Tarefa C: Impacto SIMD - N=%s", n),
			XLabel: "Variante",
			YLabel: "Speedup (vs Base)",
			Kind:   chart.Bars,
			Series: bars,
			Refs:   []chart.Ref{sequentialRef("")},
		})

		v3 := sub.Where("Variante", variantV3)
		if v3.Len() == 0 {
			continue
		}
		line, err := (&measseries.Builder{X: "Threads", Y: "Speedup"}).Build(v3)
		if err != nil {
			return nil, err
		}
		c := &chart.Chart{
			Name:      "C_Escalabilidade_" + g.Key.FileName(),
			Title:     fmt.Sprintf("Tarefa C: Escalabilidade Parallel SIMD - N=%s", n),
			XLabel:    "Threads",
			YLabel:    "Speedup Total",
			Series:    line,
			ErrorBars: chart.RangeBars,
		}
		if v2, ok := maxFinite(sub.Where("Variante", variantV2).Floats("Speedup")); ok {
			c.Refs = append(c.Refs, chart.Ref{Y: v2, Label: fmt.Sprintf("SIMD single (%.2fx)", v2), Color: orange})
		}
		out.Charts = append(out.Charts, c)
	}
	return out, nil
}

// maxFinite returns the largest finite value of xs.
func maxFinite(xs []float64) (float64, bool) {
	max, ok := math.Inf(-1), false
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		if x > max {
			max, ok = x, true
		}
	}
	return max, ok
}

// TaskD measures the fork/join overhead of parallel regions.
func TaskD() *Analysis {
	return &Analysis{
		ID:    "D",
		Title: "Tarefa D: parallel region overhead",
		Notes: "Time per variant, and the naive over optimized time ratio. " +
			"A ratio above 1 means the optimized region is faster.",
		Sources: []*Source{{
			Name:    "resultados_tarefaD.csv",
			Numeric: []string{"Threads", "Tempo"},
		}},
		plan: planD,
	}
}

func planD(env *Env, in *Input) (*Output, error) {
	if err := in.Table.Require("N", "Variante"); err != nil {
		return nil, err
	}
	t := in.Table.SortBy("N", "Threads", "Variante")
	sp, err := speedup.Normalize(t, speedup.Options{GroupBy: []string{"N", "Variante"}})
	if err != nil {
		return nil, err
	}
	out := &Output{
		Table:   sp.Table,
		Speedup: sp,
		Summary: &measstat.Options{Key: []string{"N"}, Hue: "Variante", Speedup: "Speedup"},
	}
	keys, groups, err := groupBy(sp.Table, "N")
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		n := k.Value("N")
		sub := subset(sp.Table, groups[k])
		series, err := (&measseries.Builder{X: "Threads", Y: "Tempo", Hue: "Variante"}).Build(sub)
		if err != nil {
			return nil, err
		}
		out.Charts = append(out.Charts, &chart.Chart{
			Name:      "D_Tempo_" + k.FileName(),
			Title:     fmt.Sprintf("Tarefa D: Impacto do Overhead (Fork/Join) - N=%s", n),
			XLabel:    "Threads",
			YLabel:    "Tempo (segundos)",
			Series:    series,
			ErrorBars: chart.RangeBars,
		})

		c, err := ratioChart(sub, "D_Ratio_"+k.FileName(), n)
		if err != nil {
			out.warnf("D_Ratio_%s: %v", k.FileName(), err)
			continue
		}
		if c != nil {
			out.Charts = append(out.Charts, c)
		}
	}
	return out, nil
}

// pickVariant returns the first of variants containing any of subs.
func pickVariant(variants []string, subs ...string) string {
	for _, v := range variants {
		for _, s := range subs {
			if strings.Contains(v, s) {
				return v
			}
		}
	}
	return ""
}

// ratioChart plots the naive over smart time ratio per thread count.
// It returns nil if t lacks a naive or a smart variant.
func ratioChart(t *measfmt.Table, name, n string) (*chart.Chart, error) {
	variants := t.Unique("Variante")
	naive := pickVariant(variants, "Naive", "V1")
	smart := pickVariant(variants, "Smart", "V2")
	if naive == "" || smart == "" || naive == smart {
		return nil, nil
	}
	seen := make(map[[2]string]bool)
	for _, row := range t.Rows {
		cell := [2]string{t.Value(row, "Threads"), t.Value(row, "Variante")}
		if seen[cell] {
			return nil, fmt.Errorf("duplicate measurement for Threads=%s Variante=%s", cell[0], cell[1])
		}
		seen[cell] = true
	}

	wide, err := measseries.Pivot(project(t, "Threads", "Variante", "Tempo"), "Variante", "Tempo")
	if err != nil {
		return nil, err
	}
	wide = derive(wide, "Ratio", func(row *measfmt.Row) string {
		return measfmt.FormatFloat(wide.Float(row, naive) / wide.Float(row, smart))
	})
	series, err := (&measseries.Builder{X: "Threads", Y: "Ratio"}).Build(wide)
	if err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("no thread count has both %s and %s", naive, smart)
	}
	return &chart.Chart{
		Name:   name,
		Title:  fmt.Sprintf("Tarefa D: Ganho da Versão Otimizada vs Ingênua - N=%s", n),
		XLabel: "Threads",
		YLabel: "Quantas vezes mais rápido (Speedup Relativo)",
		Series: series,
		Color:  purple,
		Refs:   []chart.Ref{sequentialRef("Igualdade (1x)")},
	}, nil
}
