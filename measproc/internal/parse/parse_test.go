// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

import (
	"fmt"
	"testing"
)

func TestParseFilter(t *testing.T) {
	check := func(query string, want string) {
		t.Helper()
		q, err := ParseFilter(query)
		if err != nil {
			t.Errorf("%s: unexpected error %s", query, err)
		} else if got := q.String(); got != want {
			t.Errorf("%s: got %s, want %s", query, got, want)
		}
	}
	checkErr := func(query, msg string, pos int) {
		t.Helper()
		_, err := ParseFilter(query)
		if se, _ := err.(*SyntaxError); se == nil || se.Msg != msg || se.Off != pos {
			t.Errorf("%s: want error %s at %d; got %v", query, msg, pos, err)
		}
	}

	check(`*`, `*`)
	check(`N:100`, `N:100`)
	check(`N : 100`, `N:100`)
	check(`"Variante":"SIMD V2"`, `Variante:"SIMD V2"`)
	check(`Schedule:static-64`, `Schedule:static-64`)
	check(`N:1000000 K:20 B:256`, `(N:1000000 AND K:20 AND B:256)`)
	check(`N:1 AND K:2`, `(N:1 AND K:2)`)
	check(`N:1 OR N:2`, `(N:1 OR N:2)`)
	check(`-Variante:Base`, `-Variante:Base`)
	check(`-*`, `-*`)
	check(`a:b AND c:d OR e:f`, `((a:b AND c:d) OR e:f)`)
	check(`a:b AND (c:d OR e:f)`, `(a:b AND (c:d OR e:f))`)
	check(`Schedule:(static OR dynamic)`, `(Schedule:static OR Schedule:dynamic)`)
	check(`Variante:/^Parallel/`, `Variante:/^Parallel/`)
	check(`Variante:/a[/]b/`, `Variante:/a[/]b/`)
	check(`"a\\":x N:1`, `(a\:x AND N:1)`)

	checkErr(``, "expected key:value or subexpression", 0)
	checkErr(`()`, "expected key:value or subexpression", 1)
	checkErr(`N`, "expected key:value", 0)
	checkErr(`N:`, "expected key:value", 0)
	checkErr(`(N:1`, `missing ")"`, 4)
	checkErr(`(N:1))`, `unexpected ")"`, 5)
	checkErr(`N "x`, "missing end quote", 2)
	checkErr(`N:"x\"`, "missing end quote", 2)
	checkErr(`N:(a b)`, "value list must be separated by OR", 5)
	checkErr(`N:(a OR)`, "expected value", 7)
	checkErr(`N:/abc`, `missing close "/"`, 2)
	checkErr(`N:/a/b`, `regexp must be followed by space or an operator (unescaped "/"?)`, 5)
}

func TestParseProjection(t *testing.T) {
	check := func(proj string, want ...string) {
		t.Helper()
		fields, err := ParseProjection(proj)
		if err != nil {
			t.Errorf("%s: unexpected error %s", proj, err)
			return
		}
		var got []string
		for _, f := range fields {
			got = append(got, f.String())
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Errorf("%s: got %v, want %v", proj, got, want)
		}
	}
	checkErr := func(proj, msg string, pos int) {
		t.Helper()
		_, err := ParseProjection(proj)
		if se, _ := err.(*SyntaxError); se == nil || se.Msg != msg || se.Off != pos {
			t.Errorf("%s: want error %s at %d; got %v", proj, msg, pos, err)
		}
	}

	check("")
	check("N", "N")
	check("N,K", "N", "K")
	check("N K", "N", "K")
	check("Threads@num", "Threads@num")
	check("Schedule@(static dynamic guided)", "Schedule@(static dynamic guided)")
	check(`"a b"@alpha`, `"a b"@alpha`)
	check(`"a\\",N`, `a\`, "N")
	check(`"\"a\"",N`, `"\"a\""`, "N")

	checkErr(",", "expected key", 0)
	checkErr("N@", "expected named sort order or parenthesized list", 2)
	checkErr("N@()", "nothing to match", 3)
	checkErr("N@(a", "missing )", 4)
}

func TestSyntaxErrorString(t *testing.T) {
	_, err := ParseFilter("N:1 )")
	want := "syntax error: unexpected \")\"\n\tN:1 )\n\t    ^"
	if err == nil || err.Error() != want {
		t.Errorf("got %q, want %q", err, want)
	}
}
