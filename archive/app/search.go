// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"net/http"

	"github.com/ompbench/ompplot/measfmt"
)

func (a *App) search(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	analysis := r.Form.Get("analysis")
	if analysis == "" {
		http.Error(w, "missing analysis parameter", http.StatusBadRequest)
		return
	}

	t, err := a.DB.Search(r.Context(), analysis, r.Form.Get("q"))
	if err != nil {
		a.Log.Warnw("search failed", "analysis", analysis, "q", r.Form.Get("q"), "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	if err := measfmt.NewWriter(w).WriteTable(t); err != nil {
		a.Log.Errorw("writing search results", "error", err)
	}
}
