// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report renders the index page that links every chart of a
// plotting run.
package report

import (
	"io"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/google/safehtml"
	"github.com/google/safehtml/template"
	"github.com/google/safehtml/uncheckedconversions"
)

// A Report is the content of index.html.
type Report struct {
	Title     string
	Generated time.Time
	Host      string
	Sections  []*Section
}

// A Section describes one analysis.
type Section struct {
	ID    string
	Title string
	// Notes is Markdown. Raw HTML in it is dropped.
	Notes string
	// Skipped is set when the analysis found no input.
	Skipped bool

	Charts   []Chart
	Files    []string
	Warnings []string
	Groups   []Group
}

// A Chart is one image file with its title.
type Chart struct {
	File  string
	Title string
}

// A Group is the baseline chosen for one configuration.
type Group struct {
	Key      string
	Baseline float64
	Fallback bool
}

// Fallbacks returns the number of groups in s that used the
// fallback baseline.
func (s *Section) Fallbacks() int {
	n := 0
	for _, g := range s.Groups {
		if g.Fallback {
			n++
		}
	}
	return n
}

// NotesHTML renders s.Notes.
func (s *Section) NotesHTML() safehtml.HTML {
	return markdownHTML(s.Notes)
}

func markdownHTML(md string) safehtml.HTML {
	if md == "" {
		return safehtml.HTML{}
	}
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	out := markdown.ToHTML([]byte(md), nil, r)
	// The renderer escapes text and SkipHTML drops raw HTML blocks.
	return uncheckedconversions.HTMLFromStringKnownToSatisfyTypeContract(string(out))
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
img { max-width: 48%; margin: 0.5em 0; }
table.groups td, table.groups th { padding: 0 1em; text-align: left; }
.fallback { color: #a33; }
.warning { color: #a60; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>Generated {{.Generated.Format "2006-01-02 15:04:05 MST"}}{{with .Host}} on {{.}}{{end}}.</p>
{{range .Sections -}}
<h2>{{.Title}}</h2>
{{if .Skipped -}}
<p>Skipped: no input found.</p>
{{else -}}
{{.NotesHTML}}
{{range .Warnings -}}
<p class="warning">warning: {{.}}</p>
{{end -}}
{{range .Charts -}}
<a href="{{.File}}"><img src="{{.File}}" alt="{{.Title}}" title="{{.Title}}"></a>
{{end -}}
{{with .Files -}}
<p>Data:{{range .}} <a href="{{.}}">{{.}}</a>{{end}}</p>
{{end -}}
{{with .Groups -}}
<table class="groups">
<tr><th>configuration</th><th>baseline</th><th></th></tr>
{{range . -}}
<tr{{if .Fallback}} class="fallback"{{end}}><td>{{.Key}}</td><td>{{printf "%.4g" .Baseline}}</td><td>{{if .Fallback}}fallback (max duration){{end}}</td></tr>
{{end -}}
</table>
{{end -}}
{{end -}}
{{end -}}
</body>
</html>
`))

// WriteHTML writes r as an HTML page to w.
func (r *Report) WriteHTML(w io.Writer) error {
	return indexTemplate.Execute(w, r)
}
