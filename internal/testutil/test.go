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

// Package test provides shared helpers for the package tests: a configuration
// pointing at local doubles, httptest doubles for the exercise catalog, the
// enrichment source and the media hosts, fixture records, and an in-memory
// object store.
package test

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/jaycherian/gcp-go-workout-content/internal/cloud"
)

// TestAPIKey is the catalog credential expected by CatalogServer.
const TestAPIKey = "test-key"

// GIFBytes is a minimal GIF89a header, enough for content sniffing.
var GIFBytes = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\xff\xff\xff\x00\x00\x00!\xf9\x04\x01\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")

// PNGBytes is a PNG signature followed by an IHDR chunk header.
var PNGBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

// HandleErr fails the test when err is not nil.
func HandleErr(err error, t *testing.T) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// NewTestConfig returns a configuration whose collaborators all live on
// local test servers. Empty URLs keep the defaults.
func NewTestConfig(catalogURL string, enrichmentURL string, legacyURL string) *cloud.Config {
	config := cloud.NewConfig()
	config.Application.Name = "workout-content-test"
	config.Application.ThreadPoolSize = 4
	config.Catalog.APIKey = TestAPIKey
	config.Catalog.TimeoutInSeconds = 2
	config.Enrichment.TimeoutInSeconds = 1
	config.Enrichment.RateLimit = 0
	config.Media.TimeoutInSeconds = 2
	config.Telemetry.Enabled = false
	if catalogURL != "" {
		config.Catalog.BaseURL = catalogURL
		config.Catalog.Host = hostOf(catalogURL)
	}
	if enrichmentURL != "" {
		config.Enrichment.BaseURL = enrichmentURL
	}
	if legacyURL != "" {
		config.Media.LegacyBaseURL = legacyURL
	}
	return config
}

// NewTestClients returns service clients that only carry the HTTP client of
// srv (or a plain client when srv is nil) and the given mirror store.
func NewTestClients(srv *httptest.Server, store cloud.ObjectStore) *cloud.ServiceClients {
	clients := &cloud.ServiceClients{
		HTTPClient:      cloud.NewHTTPClient(0),
		PubSubListeners: make(map[string]*cloud.PubSubListener),
	}
	if srv != nil {
		clients.HTTPClient = srv.Client()
	}
	if store != nil {
		clients.MirrorStore = store
	}
	return clients
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host
}
