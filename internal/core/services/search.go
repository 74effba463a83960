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
// This file, `search.go`, defines the SearchService, the orchestrator behind
// the workout search endpoint. For one request it:
//
//  1. clamps the page size and offset,
//  2. fetches limit+FetchMargin records at the offset from the catalog,
//  3. drops records whose equipment does not match (case-insensitive),
//  4. keeps the first limit records,
//  5. enriches and normalizes them concurrently, preserving catalog order.
//
// The catalog only filters on one selector, so the equipment filter is
// applied locally and a page may come back short even when more matches
// exist further on.
package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jaycherian/gcp-go-workout-content/internal/cloud"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/model"
	"golang.org/x/sync/errgroup"
)

// Enricher looks up descriptions by exercise name. A nil result is a miss.
type Enricher interface {
	Name() string
	Lookup(ctx context.Context, name string) *model.Enrichment
}

// SearchService orchestrates catalog, enrichment and normalization.
type SearchService struct {
	Catalog     ExerciseCatalog
	Enrichment  Enricher
	Normalizer  *Normalizer
	Bounds      cloud.Search
	Concurrency int // Bound on concurrent enrichment lookups.
	fallback    bool
}

// NewSearchService wires the orchestrator from configuration.
func NewSearchService(catalog ExerciseCatalog, enrichment Enricher, normalizer *Normalizer, config *cloud.Config) *SearchService {
	return &SearchService{
		Catalog:     catalog,
		Enrichment:  enrichment,
		Normalizer:  normalizer,
		Bounds:      config.Search,
		Concurrency: config.Application.ThreadPoolSize,
	}
}

// WithFallbackCatalog returns a copy of the service that reads from the
// embedded static catalog and reports itself as a fallback.
func (s *SearchService) WithFallbackCatalog() *SearchService {
	out := *s
	out.Catalog = NewStaticCatalog()
	out.fallback = true
	return &out
}

// ClampLimit bounds limit to [MinLimit, MaxLimit].
func ClampLimit(limit int, bounds cloud.Search) int {
	return min(max(limit, bounds.MinLimit), bounds.MaxLimit)
}

// ParseLimit reads a limit query value. Missing or non-numeric values yield
// the default; numbers are clamped.
func ParseLimit(raw string, bounds cloud.Search) int {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		limit = bounds.DefaultLimit
	}
	return ClampLimit(limit, bounds)
}

// ParseOffset reads an offset query value. Missing, non-numeric and negative
// values yield 0.
func ParseOffset(raw string) int {
	offset, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}

// Search runs one search request.
//
// Errors:
//   - *model.ValidationError when a filter value is rejected.
//   - *model.UpstreamError when the catalog fails. Enrichment failures never
//     fail a search.
func (s *SearchService) Search(ctx context.Context, filters model.SearchFilters, limit int, offset int) (*model.SearchResult, error) {
	start := time.Now()

	filters = filters.Normalize()
	if err := filters.Validate(); err != nil {
		return nil, err
	}
	limit = ClampLimit(limit, s.Bounds)
	offset = max(offset, 0)

	records, err := s.Catalog.Fetch(ctx, model.CatalogQuery{
		Search:   filters.Query,
		Target:   filters.Target,
		BodyPart: filters.BodyPart,
		Offset:   offset,
		Limit:    limit + max(s.Bounds.FetchMargin, 0),
	})
	if err != nil {
		return nil, err
	}

	if filters.Equipment != "" {
		matching := make([]model.Exercise, 0, len(records))
		for _, r := range records {
			if strings.EqualFold(strings.TrimSpace(r.Equipment), filters.Equipment) {
				matching = append(matching, r)
			}
		}
		records = matching
	}
	if len(records) > limit {
		records = records[:limit]
	}

	items := s.normalizeAll(ctx, records)

	var nextOffset *int
	if len(items) == limit {
		next := offset + limit
		nextOffset = &next
	}

	return &model.SearchResult{
		Items: items,
		Meta: model.SearchMeta{
			Limit:      limit,
			Offset:     offset,
			NextOffset: nextOffset,
			Filters:    filters,
			Sources: model.SearchSources{
				Catalog:    s.Catalog.Name(),
				Enrichment: s.enrichmentName(),
				Fallback:   s.fallback,
			},
			TookMs: time.Since(start).Milliseconds(),
		},
	}, nil
}

// normalizeAll enriches records with a bounded fan-out. Each goroutine owns
// one slot of the result so catalog order is kept.
func (s *SearchService) normalizeAll(ctx context.Context, records []model.Exercise) []*model.WorkoutContent {
	items := make([]*model.WorkoutContent, len(records))
	enrichmentName := s.enrichmentName()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Concurrency, 1))
	for i, record := range records {
		g.Go(func() error {
			var enrichment *model.Enrichment
			if s.Enrichment != nil {
				enrichment = s.Enrichment.Lookup(gctx, record.Name)
			}
			items[i] = s.Normalizer.Normalize(s.Catalog.Name(), enrichmentName, record, enrichment)
			return nil
		})
	}
	_ = g.Wait()
	return items
}

func (s *SearchService) enrichmentName() string {
	if s.Enrichment == nil {
		return ""
	}
	return s.Enrichment.Name()
}
