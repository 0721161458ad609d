// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package local implements the fs.FS interface on a local directory.
package local

import (
	"context"
	"os"
	"path/filepath"

	"github.com/ompbench/ompplot/internal/fs"
)

// FS is a filesystem rooted at a local directory. Metadata is not
// stored.
type FS struct {
	dir string
}

// NewFS returns an FS writing under dir. The directory is created
// on the first write.
func NewFS(dir string) *FS {
	return &FS{dir: dir}
}

// Location implements fs.FS.
func (fsys *FS) Location() string { return fsys.dir }

// NewWriter creates name under the root directory. Data goes to a
// temporary file that is renamed into place on Close.
func (fsys *FS) NewWriter(ctx context.Context, name string, metadata map[string]string) (fs.Writer, error) {
	path := filepath.Join(fsys.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o777); err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, err
	}
	return &writer{File: f, path: path}, nil
}

type writer struct {
	*os.File
	path string
	done bool
}

func (w *writer) Close() error {
	if w.done {
		return nil
	}
	w.done = true
	if err := w.File.Close(); err != nil {
		os.Remove(w.File.Name())
		return err
	}
	if err := os.Rename(w.File.Name(), w.path); err != nil {
		os.Remove(w.File.Name())
		return err
	}
	return nil
}

func (w *writer) CloseWithError(error) error {
	if w.done {
		return nil
	}
	w.done = true
	w.File.Close()
	return os.Remove(w.File.Name())
}
