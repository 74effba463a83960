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

// Package cloud provides wrappers around outbound HTTP access.
//
// Every collaborator of the service (catalog, enrichment source, media
// providers) is reached through an HTTPDoer so that tests can substitute
// httptest servers and production can layer tracing and quotas on top of
// a single shared *http.Client.
//
// Structs:
//   - RateLimitedDoer: A decorator that blocks on a token bucket before
//     delegating each request, so bursts against a public source are paced
//     rather than rejected.
package cloud

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// HTTPDoer is the subset of *http.Client used by the outbound adapters.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient returns a client whose transport emits OpenTelemetry spans
// for every outbound call. The timeout is a hard ceiling; adapters apply
// their own, shorter, per-call deadlines through the request context.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// RateLimitedDoer paces requests to a wrapped HTTPDoer.
type RateLimitedDoer struct {
	wrapped HTTPDoer
	limiter *rate.Limiter
}

// NewRateLimitedDoer creates a new RateLimitedDoer.
//
// Inputs:
//   - wrapped: The doer that actually performs requests.
//   - requestsPerSecond: Sustained rate, also used as the burst size. A
//     non-positive value disables pacing.
//
// Outputs:
//   - *RateLimitedDoer: The decorator.
func NewRateLimitedDoer(wrapped HTTPDoer, requestsPerSecond int) *RateLimitedDoer {
	limit := rate.Inf
	burst := 1
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
		burst = requestsPerSecond
	}
	return &RateLimitedDoer{
		wrapped: wrapped,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Do waits for a token, honouring the request context, then delegates.
func (d *RateLimitedDoer) Do(req *http.Request) (*http.Response, error) {
	if err := d.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return d.wrapped.Do(req)
}
