// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build cgo

package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ompbench/ompplot/archive"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunArchive(t *testing.T) {
	cfg := testConfig(t, filepath.Join("..", "..", "analysis", "testdata"))
	cfg.ArchiveDriver = "sqlite3"
	cfg.ArchiveDSN = filepath.Join(t.TempDir(), "archive.db")
	ctx := context.Background()
	require.NoError(t, run(ctx, cfg, zap.NewNop().Sugar()))
	require.NoError(t, run(ctx, cfg, zap.NewNop().Sugar()))

	db, err := archive.OpenSQL(cfg.ArchiveDriver, cfg.ArchiveDSN)
	require.NoError(t, err)
	defer db.Close()
	n, err := db.CountRecords(ctx, "A")
	require.NoError(t, err)
	require.Equal(t, 16, n)
}
