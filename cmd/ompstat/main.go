// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Ompstat summarizes OpenMP benchmark timings.
//
// Usage:
//
//	ompstat [flags] file.csv [more.csv ...]
//
// Each input file is a CSV table with a header line and one trial per
// row. Ompstat splits the rows into sections by the -group columns
// and, within a section, into series by the -hue column. For each
// series and each value of the -x column it prints the median
// duration with its confidence interval, the number of trials, and
// the change relative to the first x value of the series.
//
// With -speedup, ompstat first normalizes durations into speedups.
// Within each -group and -hue combination the baseline is the fastest
// trial whose -x column equals -baseline, or the slowest trial if
// there is none. Speedups computed from such a fallback baseline are
// marked with "*".
//
// The -filter flag selects rows before anything else, using the same
// syntax as the region filter of ompplot:
//
//	ompstat -filter 'N:1000000 K:20' -hue Schedule results.csv
//
// The -stat flag selects the summary statistic: the median with a
// Mann-Whitney U-test (the default), the mean with a Welch t-test, or
// "exact" for inputs whose rows are already averages, which warns if
// the trials of a cell differ.
//
// Rows whose -x or -duration cell is not a number are dropped with a
// warning on standard error.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ompbench/ompplot/measfmt"
	"github.com/ompbench/ompplot/measmath"
	"github.com/ompbench/ompplot/measproc"
	"github.com/ompbench/ompplot/measstat"
	"github.com/ompbench/ompplot/speedup"
)

var exit = os.Exit // replaced during testing

var assumptions = map[string]measmath.Assumption{
	"median": measmath.AssumeNothing,
	"mean":   measmath.AssumeNormal,
	"exact":  measmath.AssumeExact,
}

func main() {
	if err := ompstat(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "ompstat: %s\n", err)
		exit(1)
	}
}

func ompstat(w, wErr io.Writer, args []string) error {
	flags := flag.NewFlagSet("ompstat", flag.ContinueOnError)
	flags.SetOutput(wErr)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), `Usage: ompstat [flags] file.csv [more.csv ...]

Ompstat summarizes benchmark durations per group, series, and
parallelism level. See "go doc github.com/ompbench/ompplot/cmd/ompstat"
for details.

Flags:
`)
		flags.PrintDefaults()
	}
	flagGroup := flags.String("group", "", "split sections by comma-separated `columns`; default is the input file")
	flagHue := flags.String("hue", "", "split series within a section by `column`")
	flagX := flags.String("x", "Threads", "parallelism `column`")
	flagDuration := flags.String("duration", "Tempo", "duration `column`")
	flagY := flags.String("y", "", "speedup `column` to summarize; implied \"Speedup\" with -speedup")
	flagFilter := flags.String("filter", "", "select rows matching `query`")
	flagSpeedup := flags.Bool("speedup", false, "normalize durations into speedups before summarizing")
	flagBaseline := flags.String("baseline", "1", "`value` of the -x column that marks a baseline trial")
	flagStat := flags.String("stat", "median", "summary `statistic`: median, mean, or exact")
	flagConfidence := flags.Float64("confidence", 0.95, "confidence `level` for summary intervals")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if flags.NArg() == 0 {
		flags.Usage()
		exit(2)
		return nil
	}

	var filter *measproc.Filter
	if *flagFilter != "" {
		var err error
		filter, err = measproc.NewFilter(*flagFilter)
		if err != nil {
			return fmt.Errorf("parsing -filter: %w", err)
		}
	}
	group := []string{measfmt.FileColumn}
	if *flagGroup != "" {
		group = splitList(*flagGroup)
	}

	// Read the inputs.
	files := measfmt.Files{Paths: flags.Args(), AllowStdin: true, AllowLabels: true}
	var keep func(*measfmt.Row) bool
	if filter != nil {
		keep = func(row *measfmt.Row) bool { return filter.Match(row) }
	}
	t, results, err := files.Read(keep)
	if err != nil {
		return err
	}
	for _, res := range results {
		for _, serr := range res.Errors {
			fmt.Fprintln(wErr, serr)
		}
		if len(res.Errors) > 0 {
			fmt.Fprintf(wErr, "%s: skipped %d malformed lines of %d\n", res.Label, len(res.Errors), len(res.Errors)+res.Rows)
		}
	}
	if err := t.Require(append([]string{*flagX, *flagDuration}, group...)...); err != nil {
		return err
	}
	t, dropped := t.DropMissing(*flagX, *flagDuration)
	if dropped > 0 {
		fmt.Fprintf(wErr, "dropped %d rows with missing %s or %s\n", dropped, *flagX, *flagDuration)
	}

	opts := measstat.Options{
		Key:        group,
		Hue:        *flagHue,
		X:          *flagX,
		Duration:   *flagDuration,
		Speedup:    *flagY,
		Confidence: *flagConfidence,
	}
	assumption, ok := assumptions[*flagStat]
	if !ok {
		return fmt.Errorf("unknown -stat %q", *flagStat)
	}
	opts.Assumption = assumption

	var fallback []bool
	if *flagSpeedup {
		if opts.Speedup == "" {
			opts.Speedup = "Speedup"
		}
		by := group
		if opts.Hue != "" {
			by = append(append([]string(nil), group...), opts.Hue)
		}
		res, err := speedup.Normalize(t, speedup.Options{
			GroupBy:     by,
			Parallelism: *flagX,
			Baseline:    *flagBaseline,
			Duration:    *flagDuration,
			Column:      opts.Speedup,
		})
		if err != nil {
			return err
		}
		t, fallback = res.Table, res.FallbackRows()
	}

	s, err := measstat.Build(t, opts, fallback)
	if err != nil {
		return err
	}
	return s.WriteText(w)
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
