// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measproc

import (
	"fmt"
	"hash/maphash"
	"sync"

	"github.com/ompbench/ompplot/measfmt"
	"github.com/ompbench/ompplot/measproc/internal/parse"
)

// RestField is the tuple field that projects every column not named
// by any other projection from the same ProjectionParser.
const RestField = ".rest"

// A ProjectionParser parses one or more related projection
// expressions.
type ProjectionParser struct {
	named    map[string]bool // columns named in some projection
	haveRest bool
}

// Exclude marks columns that hold measurements rather than
// configuration, such as the duration. They never appear in ".rest".
func (p *ProjectionParser) Exclude(cols ...string) {
	if p.named == nil {
		p.named = make(map[string]bool)
	}
	for _, c := range cols {
		p.named[c] = true
	}
}

// Parse parses a projection expression such as "N,K" or
// "Threads@num,Schedule@(static dynamic guided)". The resulting
// Projection extracts those columns of a row into a Key and orders
// Keys lexicographically by field.
//
// A fixed order implies a filter: rows whose value is not in the
// list are rejected. Parse adds such filters to filter, which must
// then be non-nil.
//
// Projections parsed by the same ProjectionParser are mutually
// exclusive: a column named in one of them is left out of ".rest" in
// all of them.
func (p *ProjectionParser) Parse(projection string, filter *Filter) (*Projection, error) {
	if p.named == nil {
		p.named = make(map[string]bool)
	}
	fields, err := parse.ParseProjection(projection)
	if err != nil {
		return nil, err
	}
	proj := newProjection()
	var filters []func(*measfmt.Row) bool
	for _, f := range fields {
		fl, err := p.makeProjection(proj, projection, f)
		if err != nil {
			return nil, err
		}
		if fl != nil {
			filters = append(filters, fl)
		}
	}
	if len(filters) > 0 {
		if filter == nil {
			panic(fmt.Sprintf("projection expression %s contains a filter, but Parse was passed a nil *Filter", projection))
		}
		if filter.match != nil {
			filters = append(filters, filter.match)
		}
		filter.match = and(filters)
	}
	return proj, nil
}

// Residue returns a projection of every column not named by any
// projection parsed by p, nor excluded.
//
// Rows that are aggregated together should normally have the same
// residue. NonSingularFields over their residue Keys reports the
// columns that differ.
func (p *ProjectionParser) Residue() *Projection {
	s := newProjection()
	if !p.haveRest {
		p.makeProjection(s, "", parse.Field{Key: RestField, Order: "first"})
	}
	return s
}

func (p *ProjectionParser) makeProjection(s *Projection, q string, pf parse.Field) (func(*measfmt.Row) bool, error) {
	var initField func(*Field)
	var filter func(*measfmt.Row) bool
	switch pf.Order {
	case "fixed":
		pos := make(map[string]int, len(pf.Fixed))
		for i, v := range pf.Fixed {
			pos[v] = i
		}
		initField = func(f *Field) {
			f.cmp = func(a, b string) int { return pos[a] - pos[b] }
		}
		if pf.Key != RestField {
			key := pf.Key
			filter = func(row *measfmt.Row) bool {
				v, _ := row.Get(key)
				_, ok := pos[v]
				return ok
			}
		}
	case "first":
		initField = func(f *Field) {
			f.order = make(map[string]int)
			f.cmp = func(a, b string) int { return f.order[a] - f.order[b] }
		}
	default:
		cmp, ok := builtinOrders[pf.Order]
		if !ok {
			return nil, &parse.SyntaxError{Query: q, Off: pf.OrderOff, Msg: fmt.Sprintf("unknown order %q", pf.Order)}
		}
		initField = func(f *Field) { f.cmp = cmp }
	}

	if pf.Key == RestField {
		if pf.Order == "fixed" {
			return nil, &parse.SyntaxError{Query: q, Off: pf.OrderOff, Msg: "fixed order not allowed for " + RestField}
		}
		p.haveRest = true
		group := s.addGroup(s.root, RestField)
		seen := make(map[string]*Field)
		s.project = append(s.project, func(r *measfmt.Row, vals *[]string) {
			for i, col := range r.Columns {
				f, ok := seen[col]
				if !ok {
					// Runs after all projections are parsed, so
					// p.named is complete.
					if p.named[col] {
						continue
					}
					f = s.addField(group, col)
					initField(f)
					seen[col] = f
				}
				if i < len(r.Cells) {
					(*vals)[f.idx] = s.intern(r.Cells[i])
				}
			}
		})
		return nil, nil
	}

	p.named[pf.Key] = true
	f := s.addField(s.root, pf.Key)
	initField(f)
	key := pf.Key
	s.project = append(s.project, func(r *measfmt.Row, vals *[]string) {
		v, _ := r.Get(key)
		(*vals)[f.idx] = s.intern(v)
	})
	return filter, nil
}

// A Projection extracts some subset of the columns of a row into a
// Key.
//
// A Projection also implies a sort order over Keys that is
// lexicographic over its fields. Each field's order comes from the
// projection expression and defaults to the order in which values
// were first observed.
type Projection struct {
	root    *Field
	nFields int

	// project fills a value buffer from a row. It takes a pointer
	// because projecting may add fields and grow the buffer.
	project []func(r *measfmt.Row, vals *[]string)

	vals []string

	flatCache     []*Field
	flatCacheOnce *sync.Once

	interns map[string]string
	keys    map[uint64][]*keyNode
}

func newProjection() *Projection {
	return &Projection{
		root:          &Field{idx: -1},
		flatCacheOnce: new(sync.Once),
		interns:       make(map[string]string),
		keys:          make(map[uint64][]*keyNode),
	}
}

func (p *Projection) addField(group *Field, name string) *Field {
	if group.idx != -1 {
		panic("field's parent is not a group")
	}
	f := &Field{Name: name, proj: p, idx: p.nFields}
	p.nFields++
	group.Sub = append(group.Sub, f)
	if p.flatCache != nil {
		p.flatCache = nil
		p.flatCacheOnce = new(sync.Once)
	}
	p.vals = append(p.vals, "")
	return f
}

func (p *Projection) addGroup(group *Field, name string) *Field {
	f := &Field{Name: name, IsTuple: true, proj: p, idx: -1}
	group.Sub = append(group.Sub, f)
	return f
}

// Fields returns the fields of p, one per element of the projection
// expression. The caller must not modify the returned slice.
func (p *Projection) Fields() []*Field {
	return p.root.Sub
}

// FlattenedFields is like Fields, but expands ".rest" into its
// sub-Fields. This is the field sequence used to sort Keys.
func (p *Projection) FlattenedFields() []*Field {
	p.flatCacheOnce.Do(func() {
		p.flatCache = []*Field{}
		var walk func(f *Field)
		walk = func(f *Field) {
			if f.idx != -1 {
				p.flatCache = append(p.flatCache, f)
				return
			}
			for _, sub := range f.Sub {
				walk(sub)
			}
		}
		walk(p.root)
	})
	return p.flatCache
}

// FieldByName returns the non-tuple field called name, or nil.
func (p *Projection) FieldByName(name string) *Field {
	for _, f := range p.FlattenedFields() {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// A Field is a single field of a Projection. A tuple Field, such as
// ".rest", has sub-Fields instead of a value.
type Field struct {
	Name string

	IsTuple bool
	Sub     []*Field

	proj *Projection

	// idx indexes this field's value in a keyNode. It is -1 for
	// tuple fields and the root.
	idx int

	// cmp orders values of this field: <0, 0 (equal or
	// unorderable), >0.
	cmp func(a, b string) int

	// order, if non-nil, records observation order.
	order map[string]int
}

// String returns the name of Field f.
func (f Field) String() string {
	return f.Name
}

var keySeed = maphash.MakeSeed()

// Project extracts fields from row r according to p and returns them
// as a Key. Two Keys from Project are == exactly when their projected
// values are equal.
func (p *Projection) Project(r *measfmt.Row) Key {
	for i := range p.vals {
		p.vals[i] = ""
	}
	for _, proj := range p.project {
		proj(r, &p.vals)
	}
	return p.internVals()
}

func (p *Projection) internVals() Key {
	// Keys must hash the same no matter how many trailing empty
	// fields were added since they were made.
	vals := p.vals
	for len(vals) > 0 && vals[len(vals)-1] == "" {
		vals = vals[:len(vals)-1]
	}
	var h maphash.Hash
	h.SetSeed(keySeed)
	for _, v := range vals {
		h.WriteString(v)
		h.WriteByte(0)
	}
	hash := h.Sum64()
	for _, n := range p.keys[hash] {
		if n.equalRow(vals) {
			return Key{n}
		}
	}

	for _, f := range p.FlattenedFields() {
		if f.order == nil {
			continue
		}
		var v string
		if f.idx < len(vals) {
			v = vals[f.idx]
		}
		if _, ok := f.order[v]; !ok {
			f.order[v] = len(f.order)
		}
	}

	n := &keyNode{p, append([]string(nil), vals...)}
	p.keys[hash] = append(p.keys[hash], n)
	return Key{n}
}

func (p *Projection) intern(s string) string {
	if str, ok := p.interns[s]; ok {
		return str
	}
	p.interns[s] = s
	return s
}

// Group partitions the rows of t by their projected Key. It returns
// the Keys in order of first appearance and, for each Key, the
// indexes of its rows in t in their original order.
func (p *Projection) Group(t *measfmt.Table) ([]Key, map[Key][]int) {
	var keys []Key
	groups := make(map[Key][]int)
	for i, row := range t.Rows {
		k := p.Project(row)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], i)
	}
	return keys, groups
}
