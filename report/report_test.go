// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWriteHTML(t *testing.T) {
	r := &Report{
		Title:     "ompplot",
		Generated: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Host:      "box",
		Sections: []*Section{
			{
				ID:    "A",
				Title: "Tarefa A",
				Notes: "Speedup relative to `Threads == 1`.",
				Charts: []Chart{
					{File: "A_Tempo_N100_K20.png", Title: "time"},
					{File: "A_Speedup_N100_K20.png", Title: "speedup"},
				},
				Files:    []string{"A_speedup.csv"},
				Warnings: []string{"chart D_Ratio: <no data>"},
				Groups: []Group{
					{Key: "N:100 K:20", Baseline: 10},
					{Key: "N:200 K:20", Baseline: 8, Fallback: true},
				},
			},
			{ID: "B", Title: "Tarefa B", Skipped: true},
		},
	}
	var buf strings.Builder
	require.NoError(t, r.WriteHTML(&buf))
	out := buf.String()

	for _, want := range []string{
		`<h2>Tarefa A</h2>`,
		`<code>Threads == 1</code>`,
		`<img src="A_Tempo_N100_K20.png"`,
		`<a href="A_speedup.csv">A_speedup.csv</a>`,
		`chart D_Ratio: &lt;no data&gt;`,
		`class="fallback"`,
		`fallback (max duration)`,
		`Skipped: no input found.`,
		`2025-03-01 12:00:00 UTC on box`,
	} {
		require.Contains(t, out, want)
	}
	require.NotContains(t, out, "<no data>")
	require.Equal(t, 1, r.Sections[0].Fallbacks())
}

func TestNotesDropRawHTML(t *testing.T) {
	s := &Section{Notes: "hello <script>alert(1)</script> *world*"}
	got := s.NotesHTML().String()
	require.Contains(t, got, "<em>world</em>")
	require.NotContains(t, got, "<script>")
}

func TestNotesEmpty(t *testing.T) {
	require.Equal(t, "", (&Section{}).NotesHTML().String())
}
