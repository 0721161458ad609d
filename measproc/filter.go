// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package measproc

import (
	"fmt"

	"github.com/ompbench/ompplot/measfmt"
	"github.com/ompbench/ompplot/measproc/internal/parse"
)

// A Filter selects measurement rows.
type Filter struct {
	match func(*measfmt.Row) bool
}

// NewFilter constructs a row filter from a boolean filter expression
// such as "N:1000000 K:20 B:256" or "Schedule:(static OR guided)
// -Variante:Base". A match against a column the row lacks compares
// against "".
//
// To create a filter that matches everything, pass "*" for query.
func NewFilter(query string) (*Filter, error) {
	q, err := parse.ParseFilter(query)
	if err != nil {
		return nil, err
	}
	var walk func(q parse.Filter) func(*measfmt.Row) bool
	walk = func(q parse.Filter) func(*measfmt.Row) bool {
		switch q := q.(type) {
		case *parse.FilterOp:
			subs := make([]func(*measfmt.Row) bool, len(q.Exprs))
			for i, sub := range q.Exprs {
				subs[i] = walk(sub)
			}
			switch q.Op {
			case parse.OpNot:
				return func(r *measfmt.Row) bool { return !subs[0](r) }
			case parse.OpAnd:
				return and(subs)
			case parse.OpOr:
				return or(subs)
			}
		case *parse.FilterMatch:
			return func(r *measfmt.Row) bool {
				v, _ := r.Get(q.Key)
				return q.MatchString(v)
			}
		}
		panic(fmt.Sprintf("unknown query node type %T", q))
	}
	return &Filter{walk(q)}, nil
}

func and(subs []func(*measfmt.Row) bool) func(*measfmt.Row) bool {
	return func(r *measfmt.Row) bool {
		for _, sub := range subs {
			if !sub(r) {
				return false
			}
		}
		return true
	}
}

func or(subs []func(*measfmt.Row) bool) func(*measfmt.Row) bool {
	return func(r *measfmt.Row) bool {
		for _, sub := range subs {
			if sub(r) {
				return true
			}
		}
		return false
	}
}

// Match reports whether f matches row r.
func (f *Filter) Match(r *measfmt.Row) bool {
	if f == nil || f.match == nil {
		return true
	}
	return f.match(r)
}

// Apply returns the rows of t matched by f, in their original order.
func (f *Filter) Apply(t *measfmt.Table) *measfmt.Table {
	return t.Select(f.Match)
}
