// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gcs

import "testing"

func TestObjectName(t *testing.T) {
	for _, tc := range []struct{ prefix, name, want string }{
		{"", "index.html", "index.html"},
		{"runs/2025", "A_Tempo_N100_K20.png", "runs/2025/A_Tempo_N100_K20.png"},
		{"runs/", "x.csv", "runs/x.csv"},
	} {
		if got := objectName(tc.prefix, tc.name); got != tc.want {
			t.Errorf("objectName(%q, %q) = %q, want %q", tc.prefix, tc.name, got, tc.want)
		}
	}
}

func TestContentType(t *testing.T) {
	for name, want := range map[string]string{
		"a.png":         "image/png",
		"a.svg":         "image/svg+xml",
		"a.pdf":         "application/pdf",
		"a.csv":         "text/csv; charset=utf-8",
		"index.html":    "text/html; charset=utf-8",
		"A_summary.txt": "text/plain; charset=utf-8",
	} {
		if got := contentType(name); got != want {
			t.Errorf("contentType(%q) = %q, want %q", name, got, want)
		}
	}
}
