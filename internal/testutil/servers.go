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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-workout-content/internal/core/model"
)

// CatalogServer is an httptest double of the keyed exercise catalog.
type CatalogServer struct {
	*httptest.Server
	Hits        atomic.Int32
	LastPath    atomic.Value   // string
	FailStatus  atomic.Int32   // When non-zero every exercise call answers with this status.
	FailedLists sync.Map       // list name ("bodyPartList", ...) -> status code
	records     []model.Exercise
}

// NewCatalogServer serves records through the catalog endpoints. The server
// is closed when the test ends.
func NewCatalogServer(t *testing.T, records []model.Exercise) *CatalogServer {
	t.Helper()
	cs := &CatalogServer{records: records}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /exercises", func(w http.ResponseWriter, r *http.Request) {
		cs.serve(w, r, func(model.Exercise) bool { return true })
	})
	mux.HandleFunc("GET /exercises/name/{q}", func(w http.ResponseWriter, r *http.Request) {
		q := strings.ToLower(r.PathValue("q"))
		cs.serve(w, r, func(e model.Exercise) bool { return strings.Contains(strings.ToLower(e.Name), q) })
	})
	mux.HandleFunc("GET /exercises/target/{t}", func(w http.ResponseWriter, r *http.Request) {
		target := r.PathValue("t")
		cs.serve(w, r, func(e model.Exercise) bool { return strings.EqualFold(e.Target, target) })
	})
	mux.HandleFunc("GET /exercises/bodyPart/{b}", func(w http.ResponseWriter, r *http.Request) {
		bodyPart := r.PathValue("b")
		cs.serve(w, r, func(e model.Exercise) bool { return strings.EqualFold(e.BodyPart, bodyPart) })
	})
	for list, field := range map[string]func(model.Exercise) string{
		"bodyPartList":  func(e model.Exercise) string { return e.BodyPart },
		"targetList":    func(e model.Exercise) string { return e.Target },
		"equipmentList": func(e model.Exercise) string { return e.Equipment },
	} {
		mux.HandleFunc("GET /exercises/"+list, func(w http.ResponseWriter, r *http.Request) {
			cs.Hits.Add(1)
			if status, failed := cs.FailedLists.Load(list); failed {
				http.Error(w, "list unavailable", status.(int))
				return
			}
			values := make([]string, 0)
			for _, e := range cs.records {
				if v := field(e); v != "" && !slices.Contains(values, v) {
					values = append(values, v)
				}
			}
			writeJSON(w, values)
		})
	}
	cs.Server = httptest.NewServer(mux)
	t.Cleanup(cs.Close)
	return cs
}

func (cs *CatalogServer) serve(w http.ResponseWriter, r *http.Request, keep func(model.Exercise) bool) {
	cs.Hits.Add(1)
	cs.LastPath.Store(r.URL.EscapedPath())
	if r.Header.Get("X-RapidAPI-Key") != TestAPIKey {
		http.Error(w, `{"message":"You are not subscribed to this API."}`, http.StatusForbidden)
		return
	}
	if status := cs.FailStatus.Load(); status != 0 {
		http.Error(w, strings.Repeat("x", 2048), int(status))
		return
	}
	out := make([]model.Exercise, 0)
	for _, e := range cs.records {
		if keep(e) {
			out = append(out, e)
		}
	}
	writeJSON(w, out)
}

// Path returns the escaped path of the last exercise call.
func (cs *CatalogServer) Path() string {
	v, _ := cs.LastPath.Load().(string)
	return v
}

// EnrichmentServer is an httptest double of the description source. It
// counts lookups per lower-cased name.
type EnrichmentServer struct {
	*httptest.Server
	mu           sync.Mutex
	hits         map[string]int
	descriptions map[string]string
	delays       map[string]time.Duration
	// Translated moves descriptions into an English translation entry.
	Translated bool
	// FailStatus, when non-zero, is returned for every lookup.
	FailStatus atomic.Int32
}

// NewEnrichmentServer serves descriptions keyed by lower-cased exercise name.
func NewEnrichmentServer(t *testing.T, descriptions map[string]string) *EnrichmentServer {
	t.Helper()
	es := &EnrichmentServer{
		hits:         make(map[string]int),
		descriptions: make(map[string]string),
		delays:       make(map[string]time.Duration),
	}
	for k, v := range descriptions {
		es.descriptions[strings.ToLower(k)] = v
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /exerciseinfo/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.ToLower(r.URL.Query().Get("name"))
		es.mu.Lock()
		es.hits[name]++
		delay := es.delays[name]
		description, found := es.descriptions[name]
		es.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if status := es.FailStatus.Load(); status != 0 {
			http.Error(w, "unavailable", int(status))
			return
		}

		results := make([]map[string]any, 0)
		if found {
			// A blank candidate first checks that empty descriptions are skipped.
			results = append(results, map[string]any{"id": 1, "name": name, "description": "   "})
			if es.Translated {
				results = append(results, map[string]any{"id": 2, "name": name, "description": "",
					"translations": []map[string]any{
						{"language": 4, "description": "<p>nicht englisch</p>"},
						{"language": 2, "description": description},
					}})
			} else {
				results = append(results, map[string]any{"id": 2, "name": name, "description": description})
			}
		}
		writeJSON(w, map[string]any{"count": len(results), "results": results})
	})
	es.Server = httptest.NewServer(mux)
	t.Cleanup(es.Close)
	return es
}

// Hits returns the number of upstream lookups for name.
func (es *EnrichmentServer) Hits(name string) int {
	es.mu.Lock()
	defer es.mu.Unlock()
	return es.hits[strings.ToLower(name)]
}

// TotalHits returns the number of upstream lookups.
func (es *EnrichmentServer) TotalHits() int {
	es.mu.Lock()
	defer es.mu.Unlock()
	total := 0
	for _, n := range es.hits {
		total += n
	}
	return total
}

// Delay makes lookups for name wait d before answering.
func (es *EnrichmentServer) Delay(name string, d time.Duration) {
	es.mu.Lock()
	defer es.mu.Unlock()
	es.delays[strings.ToLower(name)] = d
}

// MediaServer is an httptest double for the provider image endpoint, the
// legacy CDN and arbitrary source hosts.
type MediaServer struct {
	*httptest.Server
	mu       sync.Mutex
	status   map[string]int    // path -> status
	types    map[string]string // path -> Content-Type
	requests []*http.Request
}

// NewMediaServer answers 200 with GIFBytes for every path unless configured otherwise.
func NewMediaServer(t *testing.T) *MediaServer {
	t.Helper()
	ms := &MediaServer{status: make(map[string]int), types: make(map[string]string)}
	ms.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ms.mu.Lock()
		ms.requests = append(ms.requests, r.Clone(r.Context()))
		status, hasStatus := ms.status[r.URL.Path]
		contentType, hasType := ms.types[r.URL.Path]
		ms.mu.Unlock()

		if hasStatus && status != http.StatusOK {
			http.Error(w, "no such media", status)
			return
		}
		if !hasType {
			contentType = "image/gif"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Upstream-Secret", "do-not-forward")
		_, _ = w.Write(GIFBytes)
	}))
	t.Cleanup(ms.Close)
	return ms
}

// SetStatus makes path answer with status.
func (ms *MediaServer) SetStatus(path string, status int) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.status[path] = status
}

// SetContentType makes path answer with the given Content-Type header.
func (ms *MediaServer) SetContentType(path string, contentType string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.types[path] = contentType
}

// Requests returns copies of the requests received so far.
func (ms *MediaServer) Requests() []*http.Request {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return slices.Clone(ms.requests)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
