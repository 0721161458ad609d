// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package measproc provides tools for filtering, grouping, and
// sorting measurement rows.
//
// A Filter selects rows with a boolean expression over columns:
//
//	N:1000000 K:20 B:256
//	Schedule:(static OR dynamic) -Variante:/^Base$/
//
// Juxtaposition and AND are conjunction, OR is disjunction, and "-"
// negates. "key:/re/" matches a regular expression and "*" matches
// every row.
//
// A Projection maps rows to Keys by a list of columns, such as
// "N,K" or "Threads@num". Keys are comparable and can be used as map
// keys for grouping. The order of each field's values is given after
// "@": "first" (the default, order of first appearance), "alpha",
// "num", or a fixed list "(static dynamic guided)", which also drops
// rows with other values.
//
// The special field ".rest" stands for every column not named by a
// sibling projection. ProjectionParser.Residue and NonSingularFields
// use it to detect rows that were grouped together but differ in
// some other column.
package measproc
