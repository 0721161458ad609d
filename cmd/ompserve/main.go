// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Ompserve serves ompplot output and the result archive over HTTP.
//
// Usage:
//
//	ompserve [-addr address]
//
// The chart directory (OMPPLOT_OUTPUT_DIR) is served at /, so the
// report is at /index.html. If OMPPLOT_ARCHIVE_DRIVER is set, the
// archive is served at /upload and /search; see package
// github.com/ompbench/ompplot/archive/app. Uploaded files are kept
// under the output directory. The other settings are read as in
// ompplot.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/ompbench/ompplot/archive"
	"github.com/ompbench/ompplot/archive/app"
	"github.com/ompbench/ompplot/internal/config"
	"github.com/ompbench/ompplot/internal/fs/local"
	"github.com/ompbench/ompplot/internal/logging"
	"go.uber.org/zap"

	_ "github.com/GoogleCloudPlatform/cloudsql-proxy/proxy/dialers/mysql"
	_ "github.com/go-sql-driver/mysql"
)

var addr = flag.String("addr", "localhost:8080", "serve HTTP on `address`")

func usage() {
	fmt.Fprintf(os.Stderr, `Usage of ompserve:
	ompserve [flags]
`)
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 0 {
		flag.Usage()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ompserve: %v\n", err)
		os.Exit(2)
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ompserve: %v\n", err)
		os.Exit(2)
	}
	defer log.Sync()

	mux, closeDB, err := newMux(cfg, log)
	if err != nil {
		log.Fatalw("setting up", "error", err)
	}
	defer closeDB()

	log.Infow("listening", "addr", *addr, "dir", cfg.OutputDir)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		log.Errorw("serving", "error", err)
	}
}

// newMux builds the handlers for cfg. The returned func releases the
// archive, if one was opened.
func newMux(cfg *config.Config, log *zap.SugaredLogger) (*http.ServeMux, func(), error) {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(cfg.OutputDir)))
	if cfg.ArchiveDriver == "" {
		return mux, func() {}, nil
	}
	db, err := archive.OpenSQL(cfg.ArchiveDriver, cfg.ArchiveDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("opening archive: %w", err)
	}
	a := &app.App{DB: db, FS: local.NewFS(cfg.OutputDir), Log: log}
	a.RegisterOnMux(mux)
	return mux, func() { db.Close() }, nil
}
