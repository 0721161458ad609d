// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build cgo

package main

import "github.com/ompbench/ompplot/archive/sqlite3"

func init() {
	sqliteVersion = sqlite3.Version
}
