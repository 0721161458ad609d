// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analysis

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ompbench/ompplot/archive"
	"github.com/ompbench/ompplot/archive/archivetest"
	"github.com/ompbench/ompplot/chart"
	"github.com/ompbench/ompplot/internal/fs"
	"github.com/ompbench/ompplot/measfmt"
	"github.com/ompbench/ompplot/measseries"
	"github.com/ompbench/ompplot/measstat"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var nopLog = zap.NewNop().Sugar()

// inputDir copies the named testdata files into a fresh directory.
func inputDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join("testdata", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o666))
	}
	return dir
}

func newRunner(t *testing.T, dir string, analyses ...*Analysis) (*Runner, *fs.MemFS) {
	out := fs.NewMemFS()
	r := &Runner{
		Env:         Env{Ideal: 2, RegionFilter: "N:1000000 K:20 B:256"},
		InputDir:    dir,
		Out:         out,
		Renderer:    &chart.Renderer{Format: chart.SVG},
		Analyses:    analyses,
		WriteCSV:    true,
		WriteReport: true,
	}
	return r, out
}

func chartFiles(res *Result) []string {
	var names []string
	for _, c := range res.Charts {
		names = append(names, c.File)
	}
	return names
}

// readTable parses a CSV file written to out.
func readTable(t *testing.T, out *fs.MemFS, name string) *measfmt.Table {
	t.Helper()
	data, ok := out.ReadFile(name)
	require.True(t, ok, "missing %s", name)
	tab, _, err := measfmt.ReadTable(measfmt.NewReader(strings.NewReader(string(data)), name))
	require.NoError(t, err)
	return tab
}

func requireFloats(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.InDelta(t, want[i], got[i], 1e-9, "index %d", i)
	}
}

func TestTaskA(t *testing.T) {
	r, out := newRunner(t, inputDir(t, "resultados_tarefaA.csv"), TaskA())
	results, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	res := results[0]
	require.NoError(t, res.Err)

	require.Equal(t, []string{
		"A_Tempo_N40_K20.svg", "A_Speedup_N40_K20.svg",
		"A_Tempo_N45_K20.svg", "A_Speedup_N45_K20.svg",
	}, chartFiles(res))
	require.Equal(t, "Tarefa A: Tempo de Execução - N=40, K=20", res.Charts[0].Title)
	require.Equal(t, []string{"A_speedup.csv", "A_summary.txt"}, res.Files)

	tab := readTable(t, out, "A_speedup.csv")
	require.Equal(t, []string{"N", "K", "Schedule", "Chunk", "Threads", "Tempo", "Estrategia", "Speedup"}, tab.Columns)
	requireFloats(t, []float64{1, 2, 4, 10.0 / 12, 10.0 / 6, 2.5, 1, 2}, tab.Floats("Speedup"))
	require.Equal(t, "dynamic (4)", tab.Rows[3].Cells[6])

	require.Len(t, res.Groups, 2)
	require.False(t, res.Groups[0].Fallback)
	require.True(t, res.Groups[1].Fallback)
	require.Equal(t, 8.0, res.Groups[1].Baseline)

	summary, ok := out.ReadFile("A_summary.txt")
	require.True(t, ok)
	require.Contains(t, string(summary), "N:45 K:20")
	require.Contains(t, string(summary), "*")

	index, ok := out.ReadFile("index.html")
	require.True(t, ok)
	require.Contains(t, string(index), "A_Speedup_N45_K20.svg")
	require.Contains(t, string(index), "fallback (max duration)")
}

func TestTaskB(t *testing.T) {
	r, _ := newRunner(t, inputDir(t, "resultados_tarefaB.csv"), TaskB())
	results, err := r.Run(context.Background())
	require.NoError(t, err)
	res := results[0]
	require.Equal(t, []string{"B_Tempo_N1000_B32.svg", "B_Tempo_N1000_B1024.svg"}, chartFiles(res))
	require.Equal(t, "Tarefa B: Alta Contenção - N=1000, Buckets=32", res.Charts[0].Title)
	require.Equal(t, "Tarefa B: Baixa Contenção - N=1000, Buckets=1024", res.Charts[1].Title)
}

func TestContention(t *testing.T) {
	require.Equal(t, "Alta Contenção", contention(99))
	require.Equal(t, "Baixa Contenção", contention(100))
}

func TestTaskC(t *testing.T) {
	in := loadTestInput(t, TaskC(), "resultados_tarefaC.csv")
	out, err := planC(&Env{Ideal: 2}, in)
	require.NoError(t, err)
	requireFloats(t, []float64{1, 4, 4, 8, 16}, out.Speedup.Speedups)
	require.Empty(t, out.Warnings)

	require.Len(t, out.Charts, 2)
	cmp, scal := out.Charts[0], out.Charts[1]
	require.Equal(t, "C_Comparacao_N1000", cmp.Name)
	require.Equal(t, chart.Bars, cmp.Kind)
	require.Equal(t, "C_Escalabilidade_N1000", scal.Name)
	require.Len(t, scal.Refs, 1)
	require.Equal(t, 4.0, scal.Refs[0].Y)
	require.Equal(t, "SIMD single (4.00x)", scal.Refs[0].Label)
	require.Equal(t, []float64{4, 8, 16}, scal.Series[0].Ys())
}

func TestTaskCNoBase(t *testing.T) {
	in := loadTestInput(t, TaskC(), "resultados_tarefaC.csv")
	in.Table = in.Table.Select(func(row *measfmt.Row) bool { return in.Table.Value(row, "Variante") != "Base" })
	out, err := planC(&Env{Ideal: 2}, in)
	require.NoError(t, err)
	require.Len(t, out.Warnings, 1)
	require.True(t, out.Speedup.Groups[0].Fallback)
	require.Equal(t, 2.0, out.Speedup.Groups[0].Baseline)
}

func TestTaskD(t *testing.T) {
	in := loadTestInput(t, TaskD(), "resultados_tarefaD.csv")
	out, err := planD(&Env{Ideal: 2}, in)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "1", "2", "2"}, out.Table.Column("Threads"))
	require.Equal(t, []string{"Naive_V1", "Smart_V2", "Naive_V1", "Smart_V2"}, out.Table.Column("Variante"))

	require.Len(t, out.Charts, 2)
	ratio := out.Charts[1]
	require.Equal(t, "D_Ratio_N100", ratio.Name)
	require.Len(t, ratio.Series, 1)
	require.Equal(t, []float64{1, 2}, ratio.Series[0].Xs())
	requireFloats(t, []float64{2, 3}, ratio.Series[0].Ys())
}

func TestRatioChart(t *testing.T) {
	tab := measfmt.NewTable("Threads", "Variante", "Tempo")
	tab.Append("1", "Naive", "2")
	tab.Append("1", "Other", "1")
	c, err := ratioChart(tab, "r", "1")
	require.NoError(t, err)
	require.Nil(t, c, "no smart variant")

	tab.Append("1", "Smart", "1")
	tab.Append("1", "Smart", "1")
	_, err = ratioChart(tab, "r", "1")
	require.ErrorContains(t, err, "duplicate")
}

func TestPickVariant(t *testing.T) {
	vs := []string{"Base", "V2_fast", "Naive_V1"}
	require.Equal(t, "Naive_V1", pickVariant(vs, "Naive", "V1"))
	require.Equal(t, "V2_fast", pickVariant(vs, "Smart", "V2"))
	require.Equal(t, "", pickVariant(vs, "SIMD"))
}

func TestRegionResults(t *testing.T) {
	r, out := newRunner(t, inputDir(t, "results.csv", "resultados_regiao.csv"), Region())
	results, err := r.Run(context.Background())
	require.NoError(t, err)
	res := results[0]
	require.True(t, strings.HasSuffix(res.Input, "results.csv"))
	require.Equal(t, []string{"tempo_vs_threads.svg", "speedup_vs_threads.svg"}, chartFiles(res))

	// The annotated table keeps the unfiltered rows.
	require.Equal(t, 5, readTable(t, out, "R_speedup.csv").Len())
}

func TestRegionPlan(t *testing.T) {
	in := loadTestInput(t, Region(), "results.csv")
	out, err := planRegion(&Env{RegionFilter: "N:1000000 K:20 B:256"}, in)
	require.NoError(t, err)
	times := out.Charts[0].Series
	require.Len(t, times, 4)
	require.Equal(t, "Naive - static", times[0].Name)
	require.Equal(t, "Organized - guided", times[3].Name)
	require.Equal(t, 0.02, times[0].Points[0].StdDev)

	require.Equal(t, "exact", out.Summary.Assumption.SummaryLabel())
	s, err := measstat.Build(out.Table, *out.Summary, nil)
	require.NoError(t, err)
	for _, w := range s.Warnings() {
		require.NotContains(t, w, "trials differ")
	}

	out, err = planRegion(&Env{RegionFilter: "N:1"}, in)
	require.NoError(t, err)
	require.Empty(t, out.Charts)
	require.Len(t, out.Warnings, 1)
}

func TestRegionFromRaw(t *testing.T) {
	r, out := newRunner(t, inputDir(t, "resultados_regiao.csv"), Region())
	results, err := r.Run(context.Background())
	require.NoError(t, err)
	res := results[0]
	require.True(t, strings.HasSuffix(res.Input, "resultados_regiao.csv"))
	require.Len(t, res.Charts, 2)

	tab := readTable(t, out, "R_speedup.csv")
	require.Equal(t, summaryColumns, tab.Columns)
	require.Equal(t, []string{"static", "static", "dynamic", "dynamic", "static"}, tab.Column(colSchedule))
	requireFloats(t, []float64{0.42, 0.30, 0.50, 0.35, 0.01}, tab.Floats(colNaiveMean))
	requireFloats(t, []float64{2.1, 4.2, 2, 4, 1}, tab.Floats(colSpeedupAvg))
	require.InDelta(t, math.Sqrt(0.0008), tab.Floats(colNaiveStd)[0], 1e-9)
}

func TestRegionVariants(t *testing.T) {
	in := loadTestInput(t, RegionVariants(), "resultados_regiao.csv")
	out, err := planVariants(&Env{Ideal: 2}, in)
	require.NoError(t, err)
	require.Equal(t, 21, out.Table.Len())

	var names []string
	for _, c := range out.Charts {
		names = append(names, c.Name)
	}
	require.Equal(t, []string{
		"V_Tempo_N1000000_K20_B256", "V_Speedup_N1000000_K20_B256",
		"V_Tempo_N10_K20_B256", "V_Speedup_N10_K20_B256",
	}, names)

	// Critical, static, 2 threads: fastest single-thread trial 0.40.
	crit := out.Table.Where("Serie", "Critical - static").Where("Threads", "2")
	requireFloats(t, []float64{0.40 / 0.30, 0.40 / 0.30}, crit.Floats("Speedup"))

	var speedup *measseries.Series
	for _, s := range out.Charts[1].Series {
		if s.Name == "Local - dynamic" {
			speedup = s
		}
	}
	require.NotNil(t, speedup)
	requireFloats(t, []float64{1, 2}, speedup.Ys())
}

func TestRunNoInput(t *testing.T) {
	r, out := newRunner(t, t.TempDir())
	results, err := r.Run(context.Background())
	require.True(t, errors.Is(err, ErrNoInput))
	require.Len(t, results, len(All()))
	for _, res := range results {
		require.True(t, res.Skipped())
	}
	require.Empty(t, out.Files())
}

func TestRunRequired(t *testing.T) {
	r, out := newRunner(t, inputDir(t, "resultados_tarefaB.csv"))
	r.Required = func(id string) bool { return id == "A" }
	results, err := r.Run(context.Background())
	require.True(t, errors.Is(err, ErrRequiredMissing))
	require.ErrorContains(t, err, "[A]")

	// The analyses that had input still ran.
	require.False(t, results[1].Skipped())
	require.Contains(t, out.Files(), "B_Tempo_N1000_B32.svg")
	require.Contains(t, out.Files(), "index.html")
}

func TestRunArchive(t *testing.T) {
	ctx := context.Background()
	db := archivetest.NewDB(t)
	run, err := db.NewRun(ctx, archive.RunInfo{Host: "test"})
	require.NoError(t, err)

	r, _ := newRunner(t, inputDir(t, "resultados_tarefaA.csv", "resultados_tarefaD.csv"), TaskA(), TaskD())
	r.Recorder = run
	_, err = r.Run(ctx)
	require.NoError(t, err)

	n, err := db.CountRecords(ctx, "A")
	require.NoError(t, err)
	require.Equal(t, 8, n)
	n, err = db.CountRecords(ctx, "D")
	require.NoError(t, err)
	require.Equal(t, 4, n)
}

func TestChartFailureIsolated(t *testing.T) {
	a := &Analysis{
		ID:      "X",
		Sources: []*Source{{Name: "resultados_tarefaC.csv"}},
		plan: func(env *Env, in *Input) (*Output, error) {
			s, err := (&measseries.Builder{X: "Threads", Y: "Tempo"}).Build(in.Table)
			if err != nil {
				return nil, err
			}
			return &Output{Charts: []*chart.Chart{
				{Name: "empty"},
				{Name: "good", Series: s},
			}}, nil
		},
	}
	r, out := newRunner(t, inputDir(t, "resultados_tarefaC.csv"), a)
	results, err := r.Run(context.Background())
	require.NoError(t, err)
	res := results[0]
	require.Equal(t, []string{"good.svg"}, chartFiles(res))
	require.Len(t, res.Warnings, 1)
	require.Contains(t, res.Warnings[0], "chart empty: no data")
	require.NotContains(t, out.Files(), "empty.svg")
}

func TestAnalysisFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "resultados_tarefaA.csv"), []byte("N,Threads,Tempo\n1,1,1\n"), 0o666))
	r, _ := newRunner(t, dir, TaskA())
	results, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Error(t, results[0].Err)
	require.Contains(t, results[0].Err.Error(), `"K"`)
}

func TestByID(t *testing.T) {
	require.Equal(t, "V", ByID(All(), "v").ID)
	require.Nil(t, ByID(All(), "Z"))
}

func loadTestInput(t *testing.T, a *Analysis, name string) *Input {
	t.Helper()
	for _, src := range a.Sources {
		if src.Name == name {
			in, err := load(src, filepath.Join("testdata", name), nopLog)
			require.NoError(t, err)
			return in
		}
	}
	t.Fatalf("analysis %s has no source %s", a.ID, name)
	return nil
}
