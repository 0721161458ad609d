// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fs

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestMemFS(t *testing.T) {
	ctx := context.Background()
	fs := NewMemFS()

	if err := WriteFile(ctx, fs, "b.csv", []byte("N,Tempo\n"), map[string]string{"analysis": "A"}); err != nil {
		t.Fatal(err)
	}
	w, err := fs.NewWriter(ctx, "a.png", nil)
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(w, "png")
	if got := fs.Files(); len(got) != 1 {
		t.Errorf("uncommitted file visible: %v", got)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	if got, want := fs.Files(), []string{"a.png", "b.csv"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Files() = %v, want %v", got, want)
	}
	if data, ok := fs.ReadFile("b.csv"); !ok || string(data) != "N,Tempo\n" {
		t.Errorf("ReadFile(b.csv) = %q, %v", data, ok)
	}
	if got := fs.Metadata("b.csv")["analysis"]; got != "A" {
		t.Errorf("metadata analysis = %q", got)
	}
}

func TestMemFSCloseWithError(t *testing.T) {
	fs := NewMemFS()
	w, err := fs.NewWriter(context.Background(), "x", nil)
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(w, "partial")
	w.CloseWithError(errors.New("abort"))
	w.Close()
	if _, ok := fs.ReadFile("x"); ok {
		t.Errorf("aborted file was committed")
	}
}
