// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fs provides the output filesystem abstraction used by
// ompplot. Charts, annotated tables and the report are written
// through an FS so they can land in a local directory or a bucket.
package fs

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
)

// An FS stores files.
type FS interface {
	// NewWriter creates a new file called name. The file is
	// visible once Close returns without error.
	NewWriter(ctx context.Context, name string, metadata map[string]string) (Writer, error)

	// Location describes where files end up, for log messages.
	Location() string
}

// Writer writes data to a file.
type Writer interface {
	io.Writer
	// Close commits the file.
	io.Closer
	// CloseWithError discards the file.
	CloseWithError(error) error
}

// WriteFile writes data to name on fs in one call.
func WriteFile(ctx context.Context, fs FS, name string, data []byte, metadata map[string]string) error {
	w, err := fs.NewWriter(ctx, name, metadata)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.CloseWithError(err)
		return err
	}
	return w.Close()
}

// MemFS is an in-memory filesystem implementing the FS interface.
type MemFS struct {
	mu      sync.Mutex
	content map[string]*memFile
}

// NewMemFS constructs a new, empty MemFS.
func NewMemFS() *MemFS {
	return &MemFS{
		content: make(map[string]*memFile),
	}
}

// NewWriter returns a Writer for a given file name. When the Writer
// is closed, the file will be stored in the MemFS.
func (fs *MemFS) NewWriter(ctx context.Context, name string, metadata map[string]string) (Writer, error) {
	meta := make(map[string]string, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}
	return &memFile{fs: fs, name: name, metadata: meta}, nil
}

// Location implements FS.
func (fs *MemFS) Location() string { return "memory" }

// Files returns the names of the committed files, sorted.
func (fs *MemFS) Files() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	var names []string
	for name := range fs.content {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReadFile returns the contents of name and whether it exists.
func (fs *MemFS) ReadFile(name string) ([]byte, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	f, ok := fs.content[name]
	if !ok {
		return nil, false
	}
	return f.data.Bytes(), true
}

// Metadata returns the metadata stored with name.
func (fs *MemFS) Metadata(name string) map[string]string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if f, ok := fs.content[name]; ok {
		return f.metadata
	}
	return nil
}

// memFile represents a file in a MemFS. While the file is being
// written, fs points to the filesystem. Close writes the file's
// content to fs and sets fs to nil.
type memFile struct {
	fs       *MemFS
	name     string
	metadata map[string]string
	data     bytes.Buffer
}

func (f *memFile) Write(p []byte) (int, error) {
	return f.data.Write(p)
}

func (f *memFile) Close() error {
	if f.fs == nil {
		return nil
	}
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	f.fs.content[f.name] = f
	f.fs = nil
	return nil
}

func (f *memFile) CloseWithError(error) error {
	f.fs = nil
	return nil
}
