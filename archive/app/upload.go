// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/ompbench/ompplot/archive"
	"github.com/ompbench/ompplot/measfmt"
)

// upload is the handler for the /upload endpoint. It processes the
// files of a multipart/form-data POST request.
func (a *App) upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodPost {
		http.Error(w, "/upload must be called as a POST request", http.StatusMethodNotAllowed)
		return
	}
	analysis := r.URL.Query().Get("analysis")
	if analysis == "" {
		http.Error(w, "missing analysis parameter", http.StatusBadRequest)
		return
	}

	// We use r.MultipartReader instead of r.ParseForm to avoid
	// storing uploaded data in memory.
	mr, err := r.MultipartReader()
	if err != nil {
		a.Log.Warnw("upload", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := a.processUpload(ctx, analysis, r.RemoteAddr, mr)
	if err != nil {
		a.Log.Errorw("upload failed", "analysis", analysis, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	a.Log.Infow("upload", "analysis", analysis, "run", result.Run, "records", result.Records)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		a.Log.Errorw("writing upload status", "error", err)
	}
}

// uploadStatus is the response to an /upload POST served as JSON.
type uploadStatus struct {
	// Run is the archive run the records were stored under.
	Run int64 `json:"run"`
	// Files lists the stored copies of the uploaded files.
	Files []string `json:"files"`
	// Records counts the rows archived.
	Records int `json:"records"`
}

// processUpload takes one or more CSV files from a multipart.Reader,
// writes them to the filesystem, and archives their rows.
func (a *App) processUpload(ctx context.Context, analysis, remote string, mr *multipart.Reader) (*uploadStatus, error) {
	var run *archive.Run
	var status uploadStatus

	for i := 0; ; i++ {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if name := p.FormName(); name != "file" {
			return nil, fmt.Errorf("unexpected field %q", name)
		}

		if run == nil {
			run, err = a.DB.NewRun(ctx, archive.RunInfo{Host: remote, Started: time.Now()})
			if err != nil {
				return nil, err
			}
			status.Run = run.ID
		}

		// The file is stored and parsed in one pass. A file with
		// no valid rows is rejected and its copy discarded.
		name := fmt.Sprintf("uploads/%d/%d.csv", run.ID, i)
		meta := map[string]string{
			"analysis": analysis,
			"run":      fmt.Sprint(run.ID),
			"filename": p.FileName(),
		}
		fw, err := a.FS.NewWriter(ctx, name, meta)
		if err != nil {
			return nil, err
		}
		t, serrs, err := measfmt.ReadTable(measfmt.NewReader(io.TeeReader(p, fw), p.FileName()))
		if err == nil && t.Len() == 0 {
			err = fmt.Errorf("%s: no valid rows", p.FileName())
		}
		if err != nil {
			fw.CloseWithError(err)
			return nil, err
		}
		for _, serr := range serrs {
			a.Log.Warnw("skipping malformed record", "error", serr)
		}
		if err := fw.Close(); err != nil {
			return nil, err
		}
		if err := run.InsertTable(ctx, analysis, t); err != nil {
			return nil, err
		}
		status.Files = append(status.Files, name)
		status.Records += t.Len()
	}
	if run == nil {
		return nil, fmt.Errorf("no files")
	}
	return &status, nil
}
