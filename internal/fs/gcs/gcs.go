// Copyright 2025 The ompplot Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gcs implements the fs.FS interface using Google Cloud Storage.
package gcs

import (
	"context"
	"path"

	"cloud.google.com/go/storage"
	"github.com/ompbench/ompplot/internal/fs"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// impl is an fs.FS backed by Google Cloud Storage.
type impl struct {
	bucket *storage.BucketHandle
	name   string
	prefix string
}

// NewFS constructs an FS that writes objects named prefix/name to
// the named bucket. It uses the application default credentials.
func NewFS(ctx context.Context, bucketName, prefix string) (fs.FS, error) {
	creds, err := google.FindDefaultCredentials(ctx, storage.ScopeReadWrite)
	if err != nil {
		return nil, err
	}
	client, err := storage.NewClient(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, err
	}
	return &impl{
		bucket: client.Bucket(bucketName),
		name:   bucketName,
		prefix: prefix,
	}, nil
}

func (fs *impl) Location() string {
	return "gs://" + path.Join(fs.name, fs.prefix)
}

func (fs *impl) NewWriter(ctx context.Context, name string, metadata map[string]string) (fs.Writer, error) {
	ctx, cancel := context.WithCancel(ctx)
	w := fs.bucket.Object(objectName(fs.prefix, name)).NewWriter(ctx)
	w.ContentType = contentType(name)
	w.Metadata = metadata
	return &wrapper{w, cancel}, nil
}

// objectName joins prefix and name with a single slash.
func objectName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

func contentType(name string) string {
	switch path.Ext(name) {
	case ".png":
		return "image/png"
	case ".svg":
		return "image/svg+xml"
	case ".pdf":
		return "application/pdf"
	case ".csv":
		return "text/csv; charset=utf-8"
	case ".html":
		return "text/html; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// wrapper cancels the upload when CloseWithError is called.
type wrapper struct {
	*storage.Writer
	cancel context.CancelFunc
}

func (w *wrapper) Close() error {
	defer w.cancel()
	return w.Writer.Close()
}

func (w *wrapper) CloseWithError(error) error {
	w.cancel()
	// Close reports the cancellation; the object is not created.
	w.Writer.Close()
	return nil
}
