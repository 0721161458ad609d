// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package parse implements the filter and projection expression
// languages used by measproc.
package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// A SyntaxError is an error produced by parsing a malformed expression.
type SyntaxError struct {
	Query string // The original query string
	Off   int    // Byte offset of the error in Query
	Msg   string // Error message
}

func (e *SyntaxError) Error() string {
	col := utf8.RuneCountInString(e.Query[:min(e.Off, len(e.Query))])
	return fmt.Sprintf("syntax error: %s\n\t%s\n\t%*s^", e.Msg, e.Query, col, "")
}

// Token kinds. Operators use their own character as the kind.
const (
	tEOF    = 0
	tWord   = 'w'
	tQuoted = 'q'
	tRegexp = 'r'
	tAnd    = 'A'
	tOr     = 'O'
)

type token struct {
	kind byte
	off  int
	text string // unescaped for quoted words, the expression for regexps
	re   *regexp.Regexp
}

func isOp(r rune) bool {
	switch r {
	case '(', ')', ':', '@', ',':
		return true
	}
	return false
}

// lexer splits a query into tokens on demand. Regexps are only
// recognized where a value may appear, so the parser tells next
// whether to look for one.
type lexer struct {
	q   string
	pos int
	err *SyntaxError
}

func (l *lexer) fail(off int, msg string) {
	if l.err == nil {
		l.err = &SyntaxError{l.q, off, msg}
	}
	l.pos = len(l.q)
}

// peek returns the next token without consuming it.
func (l *lexer) peek(values bool) token {
	save, serr := l.pos, l.err
	t := l.next(values)
	if l.err == serr {
		// Errors are sticky, positions are not.
		l.pos = save
	}
	return t
}

func (l *lexer) next(values bool) token {
	for l.pos < len(l.q) {
		r, size := utf8.DecodeRuneInString(l.q[l.pos:])
		switch {
		case unicode.IsSpace(r):
			l.pos += size
			continue
		case isOp(r) || r == '-' || r == '*':
			// "-" and "*" are operators only at the start of a
			// word, so "a-b" stays one word.
			t := token{kind: byte(r), off: l.pos, text: string(r)}
			l.pos += size
			return t
		case r == '"':
			return l.quoted()
		case values && r == '/':
			return l.regexp()
		}
		return l.word()
	}
	return token{kind: tEOF, off: len(l.q)}
}

func (l *lexer) word() token {
	start := l.pos
	end := strings.IndexFunc(l.q[start:], func(r rune) bool {
		return unicode.IsSpace(r) || isOp(r)
	})
	if end < 0 {
		end = len(l.q)
	} else {
		end += start
	}
	l.pos = end
	w := l.q[start:end]
	switch w {
	case "AND":
		return token{kind: tAnd, off: start, text: w}
	case "OR":
		return token{kind: tOr, off: start, text: w}
	}
	return token{kind: tWord, off: start, text: w}
}

func (l *lexer) quoted() token {
	start := l.pos
	i := start + 1
	for i < len(l.q) && l.q[i] != '"' {
		if l.q[i] == '\\' {
			i++
		}
		i++
	}
	if i >= len(l.q) {
		l.fail(start, "missing end quote")
		return token{kind: tEOF, off: len(l.q)}
	}
	w, err := strconv.Unquote(l.q[start : i+1])
	if err != nil {
		l.fail(start, "bad escape sequence")
		return token{kind: tEOF, off: len(l.q)}
	}
	l.pos = i + 1
	return token{kind: tQuoted, off: start, text: w}
}

func (l *lexer) regexp() token {
	start := l.pos
	expr, ok := splitRegexp(l.q[start+1:])
	if !ok {
		l.fail(start, `missing close "/"`)
		return token{kind: tEOF, off: len(l.q)}
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		l.fail(start, err.Error())
		return token{kind: tEOF, off: len(l.q)}
	}
	l.pos = start + 1 + len(expr) + 1
	if l.pos < len(l.q) {
		r, _ := utf8.DecodeRuneInString(l.q[l.pos:])
		if !unicode.IsSpace(r) && !isOp(r) {
			l.fail(l.pos, `regexp must be followed by space or an operator (unescaped "/"?)`)
			return token{kind: tEOF, off: len(l.q)}
		}
	}
	return token{kind: tRegexp, off: start, text: expr, re: re}
}

// splitRegexp returns the prefix of s up to the first "/" that is not
// escaped and not inside a character class.
func splitRegexp(s string) (string, bool) {
	inClass := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				return s[:i], true
			}
		}
	}
	return s, false
}

// quoteWord returns a string that lexes as the word s.
func quoteWord(s string) string {
	if s == "" {
		return `""`
	}
	if s == "AND" || s == "OR" {
		return strconv.Quote(s)
	}
	for i, r := range s {
		if r == '"' || !unicode.IsPrint(r) || unicode.IsSpace(r) || isOp(r) || (i == 0 && (r == '-' || r == '*' || r == '/')) {
			return strconv.Quote(s)
		}
	}
	return s
}
