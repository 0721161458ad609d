// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measseries

import (
	"math"
	"testing"

	"github.com/ompbench/ompplot/measfmt"
	"github.com/stretchr/testify/require"
)

func newTable(cols []string, rows ...[]string) *measfmt.Table {
	t := measfmt.NewTable(cols...)
	for _, r := range rows {
		t.Append(r...)
	}
	return t
}

func TestBuild(t *testing.T) {
	in := newTable([]string{"Threads", "Tempo", "Schedule"},
		[]string{"4", "1.0", "static"},
		[]string{"1", "4.0", "static"},
		[]string{"1", "6.0", "static"},
		[]string{"2", "2.5", "dynamic"},
		[]string{"2", "x", "dynamic"},
		[]string{"1", "5.0", "dynamic"},
	)
	b := Builder{X: "Threads", Y: "Tempo", Hue: "Schedule"}
	series, err := b.Build(in)
	require.NoError(t, err)
	require.Len(t, series, 2)

	st := series[0]
	require.Equal(t, "static", st.Name)
	require.Equal(t, []float64{1, 4}, st.Xs())
	require.Equal(t, []float64{5, 1}, st.Ys())
	p := st.Points[0]
	require.Equal(t, "1", p.Label)
	require.Equal(t, 4.0, p.Min)
	require.Equal(t, 6.0, p.Max)
	require.Equal(t, 2, p.N)
	require.InDelta(t, math.Sqrt2, p.StdDev, 1e-12)
	require.Equal(t, 0.0, st.Points[1].StdDev)

	dy := series[1]
	require.Equal(t, "dynamic", dy.Name)
	require.Equal(t, []float64{1, 2}, dy.Xs())
	pt, ok := dy.At("2")
	require.True(t, ok)
	require.Equal(t, 1, pt.N)
}

func TestBuildCategorical(t *testing.T) {
	in := newTable([]string{"Variante", "Speedup", "Threads"},
		[]string{"Base", "1", "1"},
		[]string{"SIMD_V2", "3", "1"},
		[]string{"Parallel_SIMD_V3", "5", "4"},
		[]string{"Parallel_SIMD_V3", "3", "2"},
	)
	b := Builder{X: "Variante", Y: "Speedup", Hue: "Threads"}
	series, err := b.Build(in)
	require.NoError(t, err)
	require.Len(t, series, 3)
	require.Equal(t, []string{"1", "4", "2"}, []string{series[0].Name, series[1].Name, series[2].Name})
	require.Equal(t, []string{"Base", "SIMD_V2"}, []string{series[0].Points[0].Label, series[0].Points[1].Label})
	require.Equal(t, []string{"Base", "SIMD_V2", "Parallel_SIMD_V3"}, Categories(series))
	require.Equal(t, 2.0, series[1].Points[0].X)
}

func TestBuildNoHue(t *testing.T) {
	in := newTable([]string{"Threads", "Ratio"},
		[]string{"2", "1.5"},
		[]string{"1", "1.0"},
	)
	series, err := (&Builder{X: "Threads", Y: "Ratio"}).Build(in)
	require.NoError(t, err)
	require.Len(t, series, 1)
	require.Equal(t, "Ratio", series[0].Name)
	require.Equal(t, []float64{1, 2}, series[0].Xs())
}

func TestBuildEmpty(t *testing.T) {
	in := newTable([]string{"Threads", "Tempo"}, []string{"1", ""})
	series, err := (&Builder{X: "Threads", Y: "Tempo"}).Build(in)
	require.NoError(t, err)
	require.Empty(t, series)

	_, err = (&Builder{X: "Threads", Y: "Speedup"}).Build(in)
	require.Error(t, err)
}

func TestUnpivot(t *testing.T) {
	in := newTable([]string{"N", "Threads", "Critical", "Atomic"},
		[]string{"100", "1", "0.5", "0.4"},
		[]string{"100", "2", "0.3", "0.2"},
	)
	out, err := Unpivot(in, "Variant", "Tempo", "Critical", "Atomic")
	require.NoError(t, err)
	require.Equal(t, []string{"N", "Threads", "Variant", "Tempo"}, out.Columns)
	require.Equal(t, []string{"Critical", "Atomic", "Critical", "Atomic"}, out.Column("Variant"))
	require.Equal(t, []string{"0.5", "0.4", "0.3", "0.2"}, out.Column("Tempo"))
	require.Equal(t, []string{"1", "1", "2", "2"}, out.Column("Threads"))

	empty, err := Unpivot(measfmt.NewTable(in.Columns...), "Variant", "Tempo", "Critical", "Atomic")
	require.NoError(t, err)
	require.Equal(t, []string{"N", "Threads", "Variant", "Tempo"}, empty.Columns)

	back, err := Pivot(out, "Variant", "Tempo")
	require.NoError(t, err)
	require.Equal(t, []string{"N", "Threads", "Critical", "Atomic"}, back.Columns)
	require.Equal(t, []string{"0.5", "0.3"}, back.Column("Critical"))
}

func TestPivotMissing(t *testing.T) {
	in := newTable([]string{"Threads", "Variante", "Tempo"},
		[]string{"1", "Naive", "2"},
		[]string{"1", "Smart", "1"},
		[]string{"2", "Naive", "3"},
	)
	out, err := Pivot(in, "Variante", "Tempo")
	require.NoError(t, err)
	require.Equal(t, []string{"Threads", "Naive", "Smart"}, out.Columns)
	require.Equal(t, []string{"1", ""}, out.Column("Smart"))
}
