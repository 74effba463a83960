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

package test

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/jaycherian/gcp-go-workout-content/internal/cloud"
)

// StoredObject is an object held by MemoryObjectStore.
type StoredObject struct {
	Data        []byte
	ContentType string
}

// MemoryObjectStore is an in-memory cloud.ObjectStore.
type MemoryObjectStore struct {
	mu      sync.Mutex
	objects map[string]StoredObject
}

func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{objects: make(map[string]StoredObject)}
}

// Put stores an object directly.
func (s *MemoryObjectStore) Put(name string, data []byte, contentType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = StoredObject{Data: bytes.Clone(data), ContentType: contentType}
}

// Get returns a stored object.
func (s *MemoryObjectStore) Get(name string) (StoredObject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[name]
	return o, ok
}

func (s *MemoryObjectStore) Open(_ context.Context, name string) (io.ReadCloser, cloud.ObjectInfo, error) {
	o, ok := s.Get(name)
	if !ok {
		return nil, cloud.ObjectInfo{}, cloud.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(o.Data)), cloud.ObjectInfo{ContentType: o.ContentType, Size: int64(len(o.Data))}, nil
}

func (s *MemoryObjectStore) Create(_ context.Context, name string, contentType string) cloud.ObjectWriter {
	return &memoryWriter{store: s, name: name, contentType: contentType}
}

func (s *MemoryObjectStore) Location(name string) string {
	return "mem://" + name
}

// memoryWriter publishes its buffer on Close, like a GCS writer committing
// an upload, unless it was aborted first.
type memoryWriter struct {
	bytes.Buffer
	store       *MemoryObjectStore
	name        string
	contentType string
	aborted     bool
}

func (w *memoryWriter) Abort(error) {
	w.aborted = true
	w.Reset()
}

func (w *memoryWriter) Close() error {
	if w.aborted {
		return nil
	}
	w.store.Put(w.name, w.Bytes(), w.contentType)
	return nil
}
