// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measproc

import "strings"

// A Key is an immutable tuple mapping from Fields to strings whose
// structure is given by a Projection. Two Keys are == if they come
// from the same Projection and have identical values, so Keys can be
// used as map keys to group rows.
type Key struct {
	k *keyNode
}

// IsZero reports whether k is a zeroed Key with no projection.
func (k Key) IsZero() bool {
	return k.k == nil
}

// Get returns the value of Field f in this Key.
//
// It panics if f does not come from the same Projection as the Key
// or if f is a tuple Field.
func (k Key) Get(f *Field) string {
	if k.IsZero() {
		panic("zero Key has no fields")
	}
	if k.k.proj != f.proj {
		panic("Key and Field have different Projections")
	}
	if f.IsTuple {
		panic(f.Name + " is a tuple field")
	}
	if f.idx >= len(k.k.vals) {
		return ""
	}
	return k.k.vals[f.idx]
}

// Value returns the value of the field named name, or "" if the
// Projection has no such field.
func (k Key) Value(name string) string {
	if k.IsZero() {
		return ""
	}
	f := k.k.proj.FieldByName(name)
	if f == nil {
		return ""
	}
	return k.Get(f)
}

// Projection returns the Projection describing Key k.
func (k Key) Projection() *Projection {
	if k.IsZero() {
		return nil
	}
	return k.k.proj
}

// String returns k as a space-separated sequence of key:value pairs
// in field order. Empty values are omitted.
func (k Key) String() string {
	return k.join(" ", func(f *Field, v string) string { return f.Name + ":" + v })
}

// FileName returns k in a form usable inside a file name: each
// non-empty field as Name followed by its value, joined by "_".
// For a Key with N=100 and K=20 this is "N100_K20".
func (k Key) FileName() string {
	return k.join("_", func(f *Field, v string) string { return sanitize(f.Name) + sanitize(v) })
}

func (k Key) join(sep string, format func(f *Field, v string) string) string {
	if k.IsZero() {
		return "<zero>"
	}
	var buf strings.Builder
	for _, f := range k.k.proj.FlattenedFields() {
		if f.idx >= len(k.k.vals) || k.k.vals[f.idx] == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString(sep)
		}
		buf.WriteString(format(f, k.k.vals[f.idx]))
	}
	return buf.String()
}

// sanitize replaces characters that are unsafe in file names.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '+':
			return r
		}
		return '-'
	}, s)
}

// commonProjection returns the Projection that all Keys have, or
// panics if any Key has a different Projection. It returns nil if
// len(keys) == 0.
func commonProjection(keys []Key) *Projection {
	if len(keys) == 0 {
		return nil
	}
	s := keys[0].Projection()
	for _, k := range keys[1:] {
		if k.Projection() != s {
			panic("Keys must all have the same Projection")
		}
	}
	return s
}

// keyNode backs a Key. Key equality is pointer equality of keyNodes,
// which Projection interns.
type keyNode struct {
	proj *Projection
	// vals are indexed by Field.idx, with trailing ""s trimmed.
	vals []string
}

func (n *keyNode) equalRow(row []string) bool {
	if len(n.vals) != len(row) {
		return false
	}
	for i, v := range n.vals {
		if row[i] != v {
			return false
		}
	}
	return true
}
