// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

import (
	"regexp"
	"strconv"
	"strings"
)

// A Filter is a node in a boolean filter tree: a *FilterOp or a
// *FilterMatch.
type Filter interface {
	isFilter()
	String() string
}

// A FilterMatch tests one column of a row.
type FilterMatch struct {
	Key string

	// Regexp, if non-nil, is matched against the value.
	// Otherwise the value must equal Lit.
	Regexp *regexp.Regexp
	Lit    string

	// Off is the byte offset of Key in the query.
	Off int
}

func (m *FilterMatch) isFilter() {}

func (m *FilterMatch) String() string {
	if m.Regexp != nil {
		return quoteWord(m.Key) + ":/" + m.Regexp.String() + "/"
	}
	return quoteWord(m.Key) + ":" + quoteWord(m.Lit)
}

// MatchString reports whether value satisfies m.
func (m *FilterMatch) MatchString(value string) bool {
	if m.Regexp != nil {
		return m.Regexp.MatchString(value)
	}
	return m.Lit == value
}

// Op is a boolean operator.
type Op int

const (
	OpAnd Op = 1 + iota
	OpOr
	OpNot
)

// A FilterOp combines sub-filters. OpNot has exactly one operand.
// An OpAnd with no operands matches everything, an OpOr with none
// matches nothing.
type FilterOp struct {
	Op    Op
	Exprs []Filter
}

func (f *FilterOp) isFilter() {}

func (f *FilterOp) String() string {
	var sep string
	switch f.Op {
	case OpNot:
		return "-" + f.Exprs[0].String()
	case OpAnd:
		if len(f.Exprs) == 0 {
			return "*"
		}
		sep = " AND "
	case OpOr:
		if len(f.Exprs) == 0 {
			return "-*"
		}
		sep = " OR "
	}
	parts := make([]string, len(f.Exprs))
	for i, e := range f.Exprs {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// ParseFilter parses a filter expression such as
//
//	N:1000000 Schedule:(static OR dynamic) -Variante:/^Base/
func ParseFilter(q string) (Filter, error) {
	p := &filterParser{lexer{q: q}}
	f := p.or()
	if t := p.l.next(false); t.kind != tEOF {
		p.l.fail(t.off, "unexpected "+strconv.Quote(t.text))
	}
	if p.l.err != nil {
		return nil, p.l.err
	}
	return f, nil
}

type filterParser struct {
	l lexer
}

func (p *filterParser) or() Filter {
	terms := []Filter{p.and()}
	for p.l.peek(false).kind == tOr {
		p.l.next(false)
		terms = append(terms, p.and())
	}
	if len(terms) == 1 {
		return terms[0]
	}
	return &FilterOp{OpOr, terms}
}

func (p *filterParser) and() Filter {
	terms := []Filter{p.unary()}
	for {
		switch p.l.peek(false).kind {
		case tAnd:
			p.l.next(false)
		case '(', '-', '*', tWord, tQuoted:
			terms = append(terms, p.unary())
		default:
			if len(terms) == 1 {
				return terms[0]
			}
			return &FilterOp{OpAnd, terms}
		}
	}
}

func (p *filterParser) unary() Filter {
	t := p.l.next(false)
	switch t.kind {
	case '(':
		f := p.or()
		if c := p.l.next(false); c.kind != ')' {
			p.l.fail(c.off, `missing ")"`)
		}
		return f
	case '-':
		return &FilterOp{OpNot, []Filter{p.unary()}}
	case '*':
		return &FilterOp{OpAnd, nil}
	case tWord, tQuoted:
		if c := p.l.next(false); c.kind != ':' {
			p.l.fail(t.off, "expected key:value")
			return nil
		}
		return p.values(t)
	}
	p.l.fail(t.off, "expected key:value or subexpression")
	return nil
}

// values parses the right side of key:..., either one value or a
// parenthesized OR list of values.
func (p *filterParser) values(key token) Filter {
	v := p.l.next(true)
	switch v.kind {
	case tWord, tQuoted, tRegexp:
		return match(key, v)
	case '(':
	default:
		p.l.fail(key.off, "expected key:value")
		return nil
	}
	var terms []Filter
	for {
		v := p.l.next(true)
		switch v.kind {
		case tWord, tQuoted, tRegexp:
			terms = append(terms, match(key, v))
		default:
			p.l.fail(v.off, "expected value")
			return nil
		}
		switch sep := p.l.next(true); sep.kind {
		case ')':
			return &FilterOp{OpOr, terms}
		case tOr:
		default:
			p.l.fail(sep.off, "value list must be separated by OR")
			return nil
		}
	}
}

func match(key, val token) *FilterMatch {
	if val.kind == tRegexp {
		return &FilterMatch{Key: key.text, Regexp: val.re, Off: key.off}
	}
	return &FilterMatch{Key: key.text, Lit: val.text, Off: key.off}
}
