// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

import (
	"fmt"
	"strings"
)

// A Field is one element of a projection expression: a column and
// the order to sort its values in.
type Field struct {
	Key string

	// Order is "first" (order of first appearance), "fixed" (the
	// order of Fixed), or a named order such as "num".
	Order string

	// Fixed lists the allowed values in order for "fixed". Rows
	// with other values are filtered out.
	Fixed []string

	// KeyOff and OrderOff are byte offsets for error reporting.
	KeyOff, OrderOff int
}

// String returns f as a projection expression.
func (f Field) String() string {
	switch f.Order {
	case "first":
		return quoteWord(f.Key)
	case "fixed":
		words := make([]string, len(f.Fixed))
		for i, w := range f.Fixed {
			words[i] = quoteWord(w)
		}
		return fmt.Sprintf("%s@(%s)", quoteWord(f.Key), strings.Join(words, " "))
	}
	return quoteWord(f.Key) + "@" + quoteWord(f.Order)
}

// ParseProjection parses a comma- or space-separated list of fields
// such as "N@num,Schedule@(static dynamic guided),Chunk".
func ParseProjection(q string) ([]Field, error) {
	l := &lexer{q: q}
	var fields []Field
	for {
		t := l.next(false)
		if t.kind == ',' && len(fields) > 0 {
			t = l.next(false)
		}
		if t.kind == tEOF {
			break
		}
		if t.kind != tWord && t.kind != tQuoted {
			l.fail(t.off, "expected key")
			break
		}
		f := Field{Key: t.text, Order: "first", KeyOff: t.off, OrderOff: t.off + len(t.text)}
		if l.peek(false).kind == '@' {
			l.next(false)
			parseOrder(l, &f)
		}
		fields = append(fields, f)
	}
	if l.err != nil {
		return nil, l.err
	}
	return fields, nil
}

func parseOrder(l *lexer, f *Field) {
	t := l.next(false)
	f.OrderOff = t.off
	switch t.kind {
	case tWord, tQuoted:
		f.Order = t.text
		return
	case '(':
	default:
		l.fail(t.off, "expected named sort order or parenthesized list")
		return
	}
	f.Order = "fixed"
	for {
		t := l.next(false)
		switch t.kind {
		case tWord, tQuoted:
			f.Fixed = append(f.Fixed, t.text)
			continue
		case ')':
			if len(f.Fixed) == 0 {
				l.fail(t.off, "nothing to match")
			}
		default:
			l.fail(t.off, "missing )")
		}
		return
	}
}
