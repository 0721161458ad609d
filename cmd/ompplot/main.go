// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Ompplot draws the charts of the OpenMP benchmark experiments.
//
// Usage:
//
//	ompplot
//
// Ompplot looks for the CSV results of each experiment in the input
// directory, normalizes durations into speedups, and writes one image
// per chart to the output directory, along with an annotated
// {id}_speedup.csv table, an {id}_summary.txt statistics summary, and
// an index.html report linking everything. Experiments whose input is
// missing are skipped.
//
// Ompplot takes no arguments. It is configured by environment
// variables, optionally loaded from a .env file in the working
// directory:
//
//	OMPPLOT_INPUT_DIR      directory holding the CSV files (default ".")
//	OMPPLOT_OUTPUT_DIR     directory receiving the charts (default "imagens")
//	OMPPLOT_FORMAT         chart format: png, svg, or pdf (default png)
//	OMPPLOT_DPI            raster resolution (default 96)
//	OMPPLOT_IDEAL_SPEEDUP  height of the ideal speedup line (default: CPU count)
//	OMPPLOT_REQUIRE        comma-separated experiments whose input must exist
//	OMPPLOT_REGION_FILTER  rows of the region summary to chart
//	OMPPLOT_CSV            write annotated tables (default true)
//	OMPPLOT_REPORT         write index.html (default true)
//	OMPPLOT_ARCHIVE_DRIVER database/sql driver for the result archive: sqlite3 or mysql
//	OMPPLOT_ARCHIVE_DSN    data source name of the archive
//	OMPPLOT_GCS_BUCKET     write outputs to this Cloud Storage bucket instead
//	OMPPLOT_GCS_PREFIX     object name prefix within the bucket
//	LOG_LEVEL              debug, info, warn, or error (default info)
//
// A MySQL archive may be reached through Cloud SQL with a DSN such as
// "user:password@cloudsql(project:region:instance)/ompplot".
//
// Ompplot exits with status 1 if a required input is missing or if no
// input was found at all.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ompbench/ompplot/analysis"
	"github.com/ompbench/ompplot/archive"
	"github.com/ompbench/ompplot/chart"
	"github.com/ompbench/ompplot/internal/config"
	"github.com/ompbench/ompplot/internal/fs"
	"github.com/ompbench/ompplot/internal/fs/gcs"
	"github.com/ompbench/ompplot/internal/fs/local"
	"github.com/ompbench/ompplot/internal/hostinfo"
	"github.com/ompbench/ompplot/internal/logging"
	"go.uber.org/zap"
)

var exit = os.Exit // replaced during testing

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ompplot: %v\n", err)
		exit(2)
		return
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ompplot: %v\n", err)
		exit(2)
		return
	}
	defer log.Sync()

	if err := run(context.Background(), cfg, log); err != nil {
		log.Errorw("ompplot failed", "error", err)
		log.Sync()
		exit(1)
	}
}

// run executes every analysis according to cfg.
func run(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) error {
	host := hostinfo.Stat()
	ideal := hostinfo.IdealSpeedup(cfg.IdealSpeedup, host)
	log.Infow("starting", "host", host.Hostname, "platform", host.Platform, "cpus", host.CPUs, "ideal", ideal)

	out, err := openOutput(ctx, cfg)
	if err != nil {
		return err
	}
	log.Infow("writing outputs", "location", out.Location(), "format", cfg.Format)

	r := &analysis.Runner{
		Env: analysis.Env{
			Ideal:        ideal,
			RegionFilter: cfg.RegionFilter,
			Log:          log,
		},
		InputDir:    cfg.InputDir,
		Out:         out,
		Renderer:    &chart.Renderer{Format: cfg.Format, DPI: cfg.DPI},
		Required:    cfg.Required,
		WriteCSV:    cfg.WriteCSV,
		WriteReport: cfg.WriteReport,
		Host:        host.Hostname,
	}

	if cfg.ArchiveDriver != "" {
		db, err := archive.OpenSQL(cfg.ArchiveDriver, cfg.ArchiveDSN)
		if err != nil {
			return fmt.Errorf("opening archive: %w", err)
		}
		defer db.Close()
		if cfg.ArchiveDriver == "sqlite3" {
			log.Debugw("opened archive", "sqlite", sqliteVersion())
		}
		ar, err := db.NewRun(ctx, archive.RunInfo{
			Host:     host.Hostname,
			Platform: host.Platform,
			CPUs:     host.CPUs,
			Started:  time.Now(),
		})
		if err != nil {
			return fmt.Errorf("starting archive run: %w", err)
		}
		log.Infow("archiving rows", "driver", cfg.ArchiveDriver, "run", ar.ID)
		r.Recorder = ar
	}

	results, err := r.Run(ctx)
	charts, skipped := 0, 0
	for _, res := range results {
		charts += len(res.Charts)
		if res.Skipped() {
			skipped++
		}
	}
	log.Infow("done", "charts", charts, "skipped", skipped)
	return err
}

func openOutput(ctx context.Context, cfg *config.Config) (fs.FS, error) {
	if cfg.GCSBucket != "" {
		out, err := gcs.NewFS(ctx, cfg.GCSBucket, cfg.GCSPrefix)
		if err != nil {
			return nil, fmt.Errorf("opening bucket %s: %w", cfg.GCSBucket, err)
		}
		return out, nil
	}
	return local.NewFS(cfg.OutputDir), nil
}
