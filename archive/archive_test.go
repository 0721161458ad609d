// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package archive_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ompbench/ompplot/archive"
	"github.com/ompbench/ompplot/archive/archivetest"
	"github.com/ompbench/ompplot/measfmt"
	"github.com/stretchr/testify/require"
)

func TestInsertTable(t *testing.T) {
	ctx := context.Background()
	db := archivetest.NewDB(t)

	run, err := db.NewRun(ctx, archive.RunInfo{Host: "box", Platform: "linux", CPUs: 4, Started: time.Unix(0, 0)})
	require.NoError(t, err)

	tab := measfmt.NewTable("N", "Threads", "Tempo", "Speedup")
	tab.Append("100", "1", "10", "1")
	tab.Append("100", "2", "5", "2")
	tab.Append("100", "4", "", "")
	require.NoError(t, run.InsertTable(ctx, "A", tab))

	n, err := db.CountRecords(ctx, "A")
	require.NoError(t, err)
	require.Equal(t, 3, n)
	n, err = db.CountRecords(ctx, "B")
	require.NoError(t, err)
	require.Equal(t, 0, n)

	threads, err := db.Values(ctx, run.ID, "Threads")
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "4"}, threads)

	tempo, err := db.Values(ctx, run.ID, "Tempo")
	require.NoError(t, err)
	require.Equal(t, []string{"10", "5"}, tempo)
}

func TestRunsAreSeparate(t *testing.T) {
	ctx := context.Background()
	db := archivetest.NewDB(t)

	tab := measfmt.NewTable("Variante", "Tempo")
	tab.Append("Base", "1")

	r1, err := db.NewRun(ctx, archive.RunInfo{Started: time.Now()})
	require.NoError(t, err)
	r2, err := db.NewRun(ctx, archive.RunInfo{Started: time.Now()})
	require.NoError(t, err)
	require.NotEqual(t, r1.ID, r2.ID)

	require.NoError(t, r1.InsertTable(ctx, "C", tab))
	require.NoError(t, r2.InsertTable(ctx, "C", tab))

	n, err := db.CountRecords(ctx, "")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	vals, err := db.Values(ctx, r2.ID, "Variante")
	require.NoError(t, err)
	require.Equal(t, []string{"Base"}, vals)
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	db := archivetest.NewDB(t)

	tab := measfmt.NewTable("N", "Threads", "Tempo")
	tab.Append("100", "1", "10")
	tab.Append("100", "2", "5")
	tab.Append("200", "2", "8")

	r1, err := db.NewRun(ctx, archive.RunInfo{Started: time.Now()})
	require.NoError(t, err)
	require.NoError(t, r1.InsertTable(ctx, "A", tab))
	r2, err := db.NewRun(ctx, archive.RunInfo{Started: time.Now()})
	require.NoError(t, err)
	require.NoError(t, r2.InsertTable(ctx, "A", tab))

	got, err := db.Search(ctx, "A", "N:100 Threads:2")
	require.NoError(t, err)
	require.Equal(t, []string{archive.RunColumn, "N", "Threads", "Tempo"}, got.Columns)
	require.Equal(t, 2, got.Len())
	require.Equal(t, []string{"5", "5"}, got.Column("Tempo"))
	require.Equal(t, []string{fmt.Sprint(r1.ID), fmt.Sprint(r2.ID)}, got.Column(archive.RunColumn))

	all, err := db.Search(ctx, "A", "")
	require.NoError(t, err)
	require.Equal(t, 6, all.Len())

	none, err := db.Search(ctx, "B", "")
	require.NoError(t, err)
	require.Equal(t, 0, none.Len())

	_, err = db.Search(ctx, "A", "N=100")
	require.Error(t, err)
}
