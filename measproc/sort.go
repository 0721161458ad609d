// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measproc

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Less reports whether k comes before o in the sort order implied by
// their projection. It panics if k and o have different Projections.
func (k Key) Less(o Key) bool {
	if k.k.proj != o.k.proj {
		panic("cannot compare Keys from different Projections")
	}
	return less(k.k.proj.FlattenedFields(), k.k.vals, o.k.vals)
}

func less(flat []*Field, a, b []string) bool {
	for _, f := range flat {
		var aa, bb string
		if f.idx < len(a) {
			aa = a[f.idx]
		}
		if f.idx < len(b) {
			bb = b[f.idx]
		}
		if aa == bb {
			continue
		}
		if c := f.cmp(aa, bb); c != 0 {
			return c < 0
		}
		// Unordered but different strings: Keys are only equal
		// when their strings are, so break the tie lexically.
		return aa < bb
	}
	return false
}

// SortKeys sorts a slice of Keys using Key.Less.
// All Keys must have the same Projection.
func SortKeys(keys []Key) {
	if len(keys) == 0 {
		return
	}
	flat := commonProjection(keys).FlattenedFields()
	sort.Slice(keys, func(i, j int) bool {
		return less(flat, keys[i].k.vals, keys[j].k.vals)
	})
}

// builtinOrders are the named orders usable after "@" in a
// projection.
var builtinOrders = map[string]func(a, b string) int{
	"alpha": strings.Compare,
	"num":   compareNum,
}

// compareNum orders numbers numerically with NaN after other
// numbers, and all numbers before non-numbers.
func compareNum(a, b string) int {
	aa, erra := strconv.ParseFloat(strings.TrimSpace(a), 64)
	bb, errb := strconv.ParseFloat(strings.TrimSpace(b), 64)
	switch {
	case erra == nil && errb == nil:
		switch {
		case aa < bb, !math.IsNaN(aa) && math.IsNaN(bb):
			return -1
		case aa > bb, math.IsNaN(aa) && !math.IsNaN(bb):
			return 1
		}
		return 0
	case erra != nil && errb != nil:
		return 0
	case erra == nil:
		return -1
	}
	return 1
}
