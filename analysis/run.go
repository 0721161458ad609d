// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gvallee/go_util/pkg/util"
	"github.com/ompbench/ompplot/chart"
	"github.com/ompbench/ompplot/internal/fs"
	"github.com/ompbench/ompplot/measfmt"
	"github.com/ompbench/ompplot/measstat"
	"github.com/ompbench/ompplot/report"
	"github.com/ompbench/ompplot/speedup"
	"go.uber.org/zap"
)

var (
	// ErrRequiredMissing is returned by Runner.Run when a required
	// analysis found no input.
	ErrRequiredMissing = errors.New("required input missing")

	// ErrNoInput is returned by Runner.Run when no analysis found
	// any input.
	ErrNoInput = errors.New("no input files found")
)

// A Recorder archives annotated tables.
type Recorder interface {
	InsertTable(ctx context.Context, analysis string, t *measfmt.Table) error
}

// A Runner executes analyses and writes their outputs.
type Runner struct {
	Env

	// InputDir is where input files are looked up.
	InputDir string

	// Out receives charts, tables, and the report.
	Out      fs.FS
	Renderer *chart.Renderer

	// Analyses defaults to All().
	Analyses []*Analysis

	// Required reports whether a missing input for analysis id is
	// fatal. Nil means nothing is required.
	Required func(id string) bool

	WriteCSV    bool
	WriteReport bool

	// Recorder, if set, receives every annotated table.
	Recorder Recorder

	// Host is shown in the report.
	Host string
}

// A Result records what one analysis did.
type Result struct {
	Analysis *Analysis

	// Input is the path read, or "" if no input was found.
	Input string

	Charts   []report.Chart
	Files    []string
	Warnings []string
	Groups   []speedup.Group

	// Err is set if the analysis could not run on its input.
	Err error
}

// Skipped reports whether the analysis found no input.
func (r *Result) Skipped() bool {
	return r.Input == ""
}

// Run executes every analysis in order. Failures inside an analysis
// are logged and recorded in its Result; Run itself fails only when
// a required input is missing, when no input was found at all, or
// when the report cannot be written.
func (r *Runner) Run(ctx context.Context) ([]*Result, error) {
	log := r.Log
	if log == nil {
		log = zap.NewNop().Sugar()
		r.Log = log
	}
	analyses := r.Analyses
	if analyses == nil {
		analyses = All()
	}

	var results []*Result
	var missing []string
	found := 0
	for _, a := range analyses {
		res := r.runOne(ctx, a)
		results = append(results, res)
		if !res.Skipped() {
			found++
			continue
		}
		if r.Required != nil && r.Required(a.ID) {
			log.Errorw("required input missing", "analysis", a.ID, "files", sourceNames(a))
			missing = append(missing, a.ID)
		} else {
			log.Infow("no input found, skipping", "analysis", a.ID, "files", sourceNames(a))
		}
	}

	if found > 0 && r.WriteReport {
		if err := r.writeReport(ctx, results); err != nil {
			return results, fmt.Errorf("writing report: %w", err)
		}
	}
	switch {
	case len(missing) > 0:
		return results, fmt.Errorf("%w: analyses %v", ErrRequiredMissing, missing)
	case found == 0:
		return results, ErrNoInput
	}
	return results, nil
}

func sourceNames(a *Analysis) []string {
	names := make([]string, len(a.Sources))
	for i, s := range a.Sources {
		names[i] = s.Name
	}
	return names
}

// resolve returns the first source of a that exists in the input
// directory.
func (r *Runner) resolve(a *Analysis) (*Source, string) {
	for _, src := range a.Sources {
		path := filepath.Join(r.InputDir, src.Name)
		if util.FileExists(path) {
			return src, path
		}
	}
	return nil, ""
}

func (r *Runner) runOne(ctx context.Context, a *Analysis) *Result {
	res := &Result{Analysis: a}
	src, path := r.resolve(a)
	if src == nil {
		return res
	}
	res.Input = path
	log := r.Log.With("analysis", a.ID)
	log.Infow("generating charts", "input", path)

	fail := func(err error) *Result {
		res.Err = err
		res.Warnings = append(res.Warnings, err.Error())
		log.Errorw("analysis failed", "error", err)
		return res
	}

	in, err := load(src, path, log)
	if err != nil {
		return fail(err)
	}
	if in.Dropped > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: dropped %d rows with missing values", src.Name, in.Dropped))
	}
	out, err := a.plan(&r.Env, in)
	if err != nil {
		return fail(err)
	}
	res.Warnings = append(res.Warnings, out.Warnings...)
	for _, w := range out.Warnings {
		log.Warn(w)
	}
	if out.Speedup != nil {
		res.Groups = out.Speedup.Groups
		for _, g := range out.Speedup.Fallbacks() {
			log.Warnw("no baseline row, using the group's maximum duration", "group", g.Key.String(), "baseline", g.Baseline)
		}
	}

	meta := map[string]string{"analysis": a.ID, "input": src.Name}
	for _, c := range out.Charts {
		name, err := r.writeChart(ctx, c, meta)
		if err != nil {
			log.Warnw("chart failed", "chart", c.Name, "error", err)
			res.Warnings = append(res.Warnings, err.Error())
			continue
		}
		log.Debugw("wrote chart", "file", name)
		res.Charts = append(res.Charts, report.Chart{File: name, Title: c.Title})
	}

	if out.Table == nil {
		return res
	}
	if r.WriteCSV {
		name := a.ID + "_speedup.csv"
		if err := r.writeFile(ctx, name, meta, func(buf *bytes.Buffer) error {
			return measfmt.NewWriter(buf).WriteTable(out.Table)
		}); err != nil {
			log.Warnw("writing annotated table", "error", err)
			res.Warnings = append(res.Warnings, err.Error())
		} else {
			res.Files = append(res.Files, name)
		}
	}
	if out.Summary != nil {
		name := a.ID + "_summary.txt"
		if err := r.writeFile(ctx, name, meta, func(buf *bytes.Buffer) error {
			s, err := measstat.Build(out.Table, *out.Summary, out.fallbackRows())
			if err != nil {
				return err
			}
			return s.WriteText(buf)
		}); err != nil {
			log.Warnw("writing summary", "error", err)
			res.Warnings = append(res.Warnings, err.Error())
		} else {
			res.Files = append(res.Files, name)
		}
	}
	if r.Recorder != nil {
		if err := r.Recorder.InsertTable(ctx, a.ID, out.Table); err != nil {
			log.Warnw("archiving rows", "error", err)
			res.Warnings = append(res.Warnings, fmt.Sprintf("archive: %v", err))
		}
	}
	return res
}

// writeChart renders c to r.Out. A panic while drawing becomes an
// error for this chart only.
func (r *Runner) writeChart(ctx context.Context, c *chart.Chart, meta map[string]string) (name string, err error) {
	name = r.Renderer.FileName(c)
	err = r.writeFile(ctx, name, meta, func(buf *bytes.Buffer) (err error) {
		defer func() {
			if e := recover(); e != nil {
				err = fmt.Errorf("chart %s: panic: %v", c.Name, e)
			}
		}()
		return r.Renderer.Render(buf, c)
	})
	return name, err
}

// writeFile fills a buffer with fill and stores it as name. Nothing
// is written if fill fails.
func (r *Runner) writeFile(ctx context.Context, name string, meta map[string]string, fill func(*bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := fill(&buf); err != nil {
		return err
	}
	return fs.WriteFile(ctx, r.Out, name, buf.Bytes(), meta)
}

func (r *Runner) writeReport(ctx context.Context, results []*Result) error {
	rep := &report.Report{
		Title:     "ompplot",
		Generated: time.Now(),
		Host:      r.Host,
	}
	for _, res := range results {
		a := res.Analysis
		sec := &report.Section{
			ID:       a.ID,
			Title:    a.Title,
			Notes:    a.Notes,
			Skipped:  res.Skipped(),
			Charts:   res.Charts,
			Files:    res.Files,
			Warnings: res.Warnings,
		}
		for _, g := range res.Groups {
			sec.Groups = append(sec.Groups, report.Group{Key: g.Key.String(), Baseline: g.Baseline, Fallback: g.Fallback})
		}
		rep.Sections = append(rep.Sections, sec)
	}
	return r.writeFile(ctx, "index.html", map[string]string{"analysis": "report"}, func(buf *bytes.Buffer) error {
		return rep.WriteHTML(buf)
	})
}
