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

// Package services contains the business logic for interacting with data sources.
// This file, `enrichment.go`, defines the EnrichmentService, which looks up a
// free-text description for an exercise name in the secondary source.
//
// Lookups go through an explicit, process-wide cache keyed by the
// lower-cased name. Only hits are cached; a miss (no match, upstream failure
// or timeout) is returned as nil and retried on the next request. Concurrent
// lookups of the same name share one upstream call.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jaycherian/gcp-go-workout-content/internal/cloud"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/model"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// EnrichmentCache holds enrichment hits for the lifetime of the process.
// Entries are write-once.
type EnrichmentCache interface {
	Get(key string) (*model.Enrichment, bool)
	Add(key string, enrichment *model.Enrichment)
	Len() int
}

// MemoryEnrichmentCache is the default EnrichmentCache: a go-cache instance
// without expiration or janitor.
type MemoryEnrichmentCache struct {
	items *cache.Cache
}

func NewMemoryEnrichmentCache() *MemoryEnrichmentCache {
	return &MemoryEnrichmentCache{items: cache.New(cache.NoExpiration, 0)}
}

func (c *MemoryEnrichmentCache) Get(key string) (*model.Enrichment, bool) {
	v, found := c.items.Get(key)
	if !found {
		return nil, false
	}
	e, ok := v.(*model.Enrichment)
	return e, ok
}

// Add stores the entry unless the key is already present.
func (c *MemoryEnrichmentCache) Add(key string, enrichment *model.Enrichment) {
	_ = c.items.Add(key, enrichment, cache.NoExpiration)
}

func (c *MemoryEnrichmentCache) Len() int {
	return c.items.ItemCount()
}

// EnrichmentKey is the cache key of an exercise name.
func EnrichmentKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// EnrichmentService looks up descriptions in the secondary source.
type EnrichmentService struct {
	Client  cloud.HTTPDoer
	Config  cloud.Enrichment
	Cache   EnrichmentCache
	Timeout time.Duration
	group   singleflight.Group
}

// NewEnrichmentService creates the service. Calls to the source are paced
// at Config.RateLimit requests per second.
func NewEnrichmentService(client cloud.HTTPDoer, config cloud.Enrichment, enrichmentCache EnrichmentCache) *EnrichmentService {
	return &EnrichmentService{
		Client:  cloud.NewRateLimitedDoer(client, config.RateLimit),
		Config:  config,
		Cache:   enrichmentCache,
		Timeout: cloud.Seconds(config.TimeoutInSeconds, 4*time.Second),
	}
}

func (s *EnrichmentService) Name() string {
	return s.Config.Name
}

// Lookup returns the enrichment for name, or nil on a miss. It never fails.
//
// The upstream call is detached from ctx so that a caller giving up does not
// abort a lookup other callers are waiting on; it is still bounded by the
// service timeout.
func (s *EnrichmentService) Lookup(ctx context.Context, name string) *model.Enrichment {
	key := EnrichmentKey(name)
	if key == "" {
		return nil
	}
	if e, ok := s.Cache.Get(key); ok {
		return e
	}

	result := s.group.DoChan(key, func() (any, error) {
		if e, ok := s.Cache.Get(key); ok {
			return e, nil
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.Timeout)
		defer cancel()
		e, err := s.fetch(fetchCtx, key)
		if err != nil {
			return nil, err
		}
		if e != nil {
			s.Cache.Add(key, e)
		}
		return e, nil
	})

	select {
	case <-ctx.Done():
		return nil
	case res := <-result:
		if res.Err != nil {
			slog.DebugContext(ctx, "enrichment lookup failed", "name", key, "error", res.Err)
			return nil
		}
		e, _ := res.Val.(*model.Enrichment)
		return e
	}
}

type exerciseInfoPage struct {
	Count   int            `json:"count"`
	Results []exerciseInfo `json:"results"`
}

type exerciseInfo struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Translations []struct {
		Language    int    `json:"language"`
		Description string `json:"description"`
	} `json:"translations"`
}

// candidates returns the descriptions worth sanitizing, in preference order.
func (i exerciseInfo) candidates(language int) []string {
	out := []string{i.Description}
	for _, t := range i.Translations {
		if t.Language == language {
			out = append(out, t.Description)
		}
	}
	return out
}

func (s *EnrichmentService) fetch(ctx context.Context, key string) (*model.Enrichment, error) {
	params := url.Values{}
	params.Set("name", key)
	params.Set("language", strconv.Itoa(s.Config.Language))
	params.Set("limit", strconv.Itoa(max(s.Config.ResultLimit, 1)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimRight(s.Config.BaseURL, "/")+"/exerciseinfo/?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.New("malformed enrichment url")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, &model.UpstreamError{Source: s.Name(), Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.UpstreamError{Source: s.Name(), StatusCode: resp.StatusCode}
	}

	var page exerciseInfoPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, &model.UpstreamError{Source: s.Name(), Err: unwrapURLError(err)}
	}
	for _, info := range page.Results {
		for _, candidate := range info.candidates(s.Config.Language) {
			if safeHTML, text := SanitizeDescription(candidate); text != "" {
				return &model.Enrichment{DescriptionHTML: safeHTML, DescriptionText: text}, nil
			}
		}
	}
	return nil, nil
}
