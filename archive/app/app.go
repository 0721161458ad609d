// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package app implements the HTTP interface to the result archive.
//
// POST /upload?analysis=ID stores annotated CSV files as a new run.
// GET /search?analysis=ID&q=name:value... returns matching records as
// CSV.
package app

import (
	"net/http"

	"github.com/ompbench/ompplot/archive"
	"github.com/ompbench/ompplot/internal/fs"
	"go.uber.org/zap"
)

// App serves the archive over HTTP.
type App struct {
	DB *archive.DB

	// FS receives a copy of every uploaded file.
	FS fs.FS

	Log *zap.SugaredLogger
}

// RegisterOnMux registers the app's URLs on mux.
func (a *App) RegisterOnMux(mux *http.ServeMux) {
	if a.Log == nil {
		a.Log = zap.NewNop().Sugar()
	}
	mux.HandleFunc("/upload", a.upload)
	mux.HandleFunc("/search", a.search)
}
