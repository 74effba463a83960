// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cloud provides the object store used to mirror exercise media.
//
// The mirror is optional. When a bucket is configured, the media resolution
// proxy consults it before any upstream provider, and a background workflow
// copies media served by the upstream tiers into it.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// ErrObjectNotFound is returned by ObjectStore.Open for missing objects.
var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo describes an opened object.
type ObjectInfo struct {
	ContentType string
	Size        int64
}

// ObjectWriter streams a new object. Close commits what was written; Abort
// discards it and nothing becomes visible. Close after Abort is a no-op.
type ObjectWriter interface {
	io.WriteCloser
	Abort(cause error)
}

// ObjectStore is a minimal blob store abstraction.
type ObjectStore interface {
	// Open returns a reader for the named object or ErrObjectNotFound.
	Open(ctx context.Context, name string) (io.ReadCloser, ObjectInfo, error)
	// Create returns a writer for the named object. The object becomes visible
	// once the writer is closed without error and without a prior Abort.
	Create(ctx context.Context, name string, contentType string) ObjectWriter
	// Location returns a human readable address of the named object.
	Location(name string) string
}

// GCSObjectStore is an ObjectStore backed by a Google Cloud Storage bucket.
type GCSObjectStore struct {
	bucket       *storage.BucketHandle
	bucketName   string
	cacheControl string
}

// NewGCSObjectStore binds an ObjectStore to a bucket.
func NewGCSObjectStore(client *storage.Client, bucketName string, cacheControl string) *GCSObjectStore {
	return &GCSObjectStore{
		bucket:       client.Bucket(bucketName),
		bucketName:   bucketName,
		cacheControl: cacheControl,
	}
}

func (s *GCSObjectStore) Open(ctx context.Context, name string) (io.ReadCloser, ObjectInfo, error) {
	reader, err := s.bucket.Object(name).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return nil, ObjectInfo{}, ErrObjectNotFound
	}
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("failed to open %s: %w", s.Location(name), err)
	}
	return reader, ObjectInfo{ContentType: reader.Attrs.ContentType, Size: reader.Attrs.Size}, nil
}

func (s *GCSObjectStore) Create(ctx context.Context, name string, contentType string) ObjectWriter {
	// Cancelling the writer's context is the only way to stop GCS from
	// committing a partial upload.
	writeCtx, cancel := context.WithCancel(ctx)
	writer := s.bucket.Object(name).NewWriter(writeCtx)
	writer.ContentType = contentType
	writer.CacheControl = s.cacheControl
	return &gcsObjectWriter{Writer: writer, cancel: cancel}
}

type gcsObjectWriter struct {
	*storage.Writer
	cancel  context.CancelFunc
	aborted bool
}

func (w *gcsObjectWriter) Abort(error) {
	w.aborted = true
	w.cancel()
	_ = w.Writer.Close()
}

func (w *gcsObjectWriter) Close() error {
	if w.aborted {
		return nil
	}
	defer w.cancel()
	return w.Writer.Close()
}

func (s *GCSObjectStore) Location(name string) string {
	return fmt.Sprintf("gs://%s/%s", s.bucketName, name)
}
