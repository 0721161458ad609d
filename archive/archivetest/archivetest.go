// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package archivetest opens empty archives for tests.
package archivetest

import (
	"testing"

	"github.com/ompbench/ompplot/archive"
	_ "github.com/ompbench/ompplot/archive/sqlite3"
)

// NewDB opens an empty in-memory sqlite3 archive. It is closed when
// the test finishes.
func NewDB(t *testing.T) *archive.DB {
	t.Helper()
	d, err := archive.OpenSQL("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}
