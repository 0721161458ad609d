// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/ompbench/ompplot/archive/archivetest"
	"github.com/ompbench/ompplot/internal/fs"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	*App
	mem *fs.MemFS
	srv *httptest.Server
}

func createTestApp(t *testing.T) *testApp {
	mem := fs.NewMemFS()
	app := &App{DB: archivetest.NewDB(t), FS: mem}
	mux := http.NewServeMux()
	app.RegisterOnMux(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &testApp{app, mem, srv}
}

// uploadFiles posts files, a map from file name to contents, to
// /upload.
func (a *testApp) uploadFiles(t *testing.T, analysis string, files map[string]string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mpw := multipart.NewWriter(&body)
	for name, content := range files {
		w, err := mpw.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = io.WriteString(w, content)
		require.NoError(t, err)
	}
	require.NoError(t, mpw.Close())
	u := a.srv.URL + "/upload?" + url.Values{"analysis": {analysis}}.Encode()
	resp, err := http.Post(u, mpw.FormDataContentType(), &body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

const sample = `N,Threads,Tempo,Speedup
100,1,10,1
100,2,5,2
N,Threads,Tempo,Speedup
200,2,8,1
`

func TestUpload(t *testing.T) {
	app := createTestApp(t)
	resp := app.uploadFiles(t, "A", map[string]string{"a.csv": sample})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status uploadStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	require.Equal(t, 3, status.Records)
	require.Len(t, status.Files, 1)

	require.Equal(t, status.Files, app.mem.Files())
	data, ok := app.mem.ReadFile(status.Files[0])
	require.True(t, ok)
	require.Equal(t, sample, string(data))
	require.Equal(t, "a.csv", app.mem.Metadata(status.Files[0])["filename"])
}

func TestUploadRejectsEmpty(t *testing.T) {
	app := createTestApp(t)
	resp := app.uploadFiles(t, "A", map[string]string{"empty.csv": "N,Threads,Tempo\n"})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Empty(t, app.mem.Files())
}

func TestUploadMethod(t *testing.T) {
	app := createTestApp(t)
	resp, err := http.Get(app.srv.URL + "/upload?analysis=A")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestSearch(t *testing.T) {
	app := createTestApp(t)
	resp := app.uploadFiles(t, "A", map[string]string{"a.csv": sample})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	tests := []struct {
		q    string
		want string
	}{
		{"Threads:2", "Run,N,Threads,Tempo,Speedup\n1,100,2,5,2\n1,200,2,8,1\n"},
		{"N:100 Threads:1", "Run,N,Threads,Tempo,Speedup\n1,100,1,10,1\n"},
		{"N:300", "Run\n"},
	}
	for _, test := range tests {
		t.Run("q="+test.q, func(t *testing.T) {
			u := app.srv.URL + "/search?" + url.Values{"analysis": {"A"}, "q": {test.q}}.Encode()
			resp, err := http.Get(u)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			require.Equal(t, test.want, string(body))
		})
	}
}

func TestSearchErrors(t *testing.T) {
	app := createTestApp(t)
	for _, q := range []string{"", "analysis=A&q=bad"} {
		resp, err := http.Get(app.srv.URL + "/search?" + q)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, "query %q", q)
	}
}
