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

// Package services_test exercises the search orchestrator end to end against
// httptest doubles of the exercise catalog and the enrichment source.
package services_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-workout-content/internal/cloud"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/model"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/services"
	test "github.com/jaycherian/gcp-go-workout-content/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchFixture struct {
	service    *services.SearchService
	catalog    *test.CatalogServer
	enrichment *test.EnrichmentServer
	config     *cloud.Config
}

func newSearchFixture(t *testing.T, records []model.Exercise, descriptions map[string]string) *searchFixture {
	cs := test.NewCatalogServer(t, records)
	es := test.NewEnrichmentServer(t, descriptions)
	config := test.NewTestConfig(cs.URL, es.URL, "")

	catalog := services.NewCatalogService(cs.Client(), config.Catalog)
	enrichment := services.NewEnrichmentService(es.Client(), config.Enrichment, services.NewMemoryEnrichmentCache())
	return &searchFixture{
		service:    services.NewSearchService(catalog, enrichment, services.NewNormalizer(config.Media.ProxyPath), config),
		catalog:    cs,
		enrichment: es,
		config:     config,
	}
}

func ids(items []*model.WorkoutContent) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestSearchCardioPages(t *testing.T) {
	f := newSearchFixture(t, test.CardioExercises(8), nil)
	ctx := context.Background()

	first, err := f.service.Search(ctx, model.SearchFilters{BodyPart: "cardio"}, 6, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"c001", "c002", "c003", "c004", "c005", "c006"}, ids(first.Items))
	require.NotNil(t, first.Meta.NextOffset)
	assert.Equal(t, 6, *first.Meta.NextOffset)
	assert.Equal(t, "/exercises/bodyPart/cardio", f.catalog.Path())
	assert.Equal(t, model.SearchSources{Catalog: "exercisedb", Enrichment: "wger"}, first.Meta.Sources)

	second, err := f.service.Search(ctx, model.SearchFilters{BodyPart: "cardio"}, 6, *first.Meta.NextOffset)
	require.NoError(t, err)
	assert.Equal(t, []string{"c007", "c008"}, ids(second.Items))
	assert.Nil(t, second.Meta.NextOffset)
	assert.Equal(t, 6, second.Meta.Offset)
}

func TestSearchEquipmentFilterUnderFills(t *testing.T) {
	f := newSearchFixture(t, test.ChestExercisesWithBarbells(20, 2, 9, 15), nil)

	result, err := f.service.Search(context.Background(), model.SearchFilters{BodyPart: "chest", Equipment: "barbell"}, 6, 0)
	require.NoError(t, err)
	// Only the first limit+6 records are examined, so the match at 15 is not reached.
	assert.Equal(t, []string{"0102", "0109"}, ids(result.Items))
	assert.Nil(t, result.Meta.NextOffset)
}

func TestSearchEquipmentFilterLaw(t *testing.T) {
	f := newSearchFixture(t, test.MixedExercises(), nil)

	result, err := f.service.Search(context.Background(), model.SearchFilters{Equipment: "  BODY WEIGHT "}, 12, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"0652", "0662", "1373"}, ids(result.Items))
	for _, item := range result.Items {
		assert.True(t, strings.EqualFold(item.Equipment, "body weight"))
	}
	assert.Equal(t, "BODY WEIGHT", result.Meta.Filters.Equipment)
}

func TestSearchLimitClamping(t *testing.T) {
	f := newSearchFixture(t, test.CardioExercises(40), nil)

	for requested, want := range map[int]int{-5: 6, 0: 6, 3: 6, 6: 6, 12: 12, 24: 24, 100: 24} {
		result, err := f.service.Search(context.Background(), model.SearchFilters{}, requested, 0)
		require.NoError(t, err)
		assert.Equal(t, want, result.Meta.Limit, "requested %d", requested)
		assert.Len(t, result.Items, want)
	}

	negative, err := f.service.Search(context.Background(), model.SearchFilters{}, 6, -4)
	require.NoError(t, err)
	assert.Equal(t, 0, negative.Meta.Offset)
}

func TestParseLimitAndOffset(t *testing.T) {
	bounds := cloud.NewConfig().Search
	assert.Equal(t, 12, services.ParseLimit("", bounds))
	assert.Equal(t, 12, services.ParseLimit("many", bounds))
	assert.Equal(t, 6, services.ParseLimit("3", bounds))
	assert.Equal(t, 18, services.ParseLimit(" 18 ", bounds))
	assert.Equal(t, 24, services.ParseLimit("50", bounds))

	assert.Equal(t, 0, services.ParseOffset(""))
	assert.Equal(t, 0, services.ParseOffset("-3"))
	assert.Equal(t, 0, services.ParseOffset("x"))
	assert.Equal(t, 7, services.ParseOffset("7"))
}

func TestSearchDescriptionsAreNeverEmpty(t *testing.T) {
	f := newSearchFixture(t, test.MixedExercises(), map[string]string{"push-up": "<p>Keep a <em>straight</em> line.</p>"})

	result, err := f.service.Search(context.Background(), model.SearchFilters{}, 24, 0)
	require.NoError(t, err)
	require.Len(t, result.Items, 6)
	for _, item := range result.Items {
		assert.NotEmpty(t, strings.TrimSpace(item.Description), item.ID)
		if item.ID == "0662" {
			assert.Equal(t, "exercisedb+wger", item.Source)
			assert.Equal(t, "Keep a straight line.", item.Description)
		} else {
			assert.Equal(t, "exercisedb+synthesized", item.Source)
		}
	}
}

func TestSearchEnrichesEachNameOnce(t *testing.T) {
	records := []model.Exercise{
		{ID: "a", Name: "Push-Up", BodyPart: "chest", Equipment: "body weight"},
		{ID: "b", Name: "push-up", BodyPart: "chest", Equipment: "body weight"},
		{ID: "c", Name: "PUSH-UP ", BodyPart: "chest", Equipment: "body weight"},
	}
	f := newSearchFixture(t, records, map[string]string{"push-up": "Lower and press."})

	for i := 0; i < 3; i++ {
		result, err := f.service.Search(context.Background(), model.SearchFilters{BodyPart: "chest"}, 6, 0)
		require.NoError(t, err)
		for _, item := range result.Items {
			assert.Equal(t, "Lower and press.", item.Description)
		}
	}
	assert.Equal(t, 1, f.enrichment.Hits("push-up"))
}

func TestSearchSurvivesOneSlowEnrichment(t *testing.T) {
	records := test.CardioExercises(6)
	descriptions := make(map[string]string)
	for _, r := range records {
		descriptions[r.Name] = "Move steadily."
	}
	f := newSearchFixture(t, records, descriptions)
	f.enrichment.Delay("cardio move 3", 3*time.Second)

	start := time.Now()
	result, err := f.service.Search(context.Background(), model.SearchFilters{BodyPart: "cardio"}, 6, 0)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2500*time.Millisecond)

	require.Len(t, result.Items, 6)
	for i, item := range result.Items {
		if i == 2 {
			assert.Equal(t, "exercisedb+synthesized", item.Source)
			assert.NotEmpty(t, item.Description)
			continue
		}
		assert.Equal(t, "exercisedb+wger", item.Source)
	}
}

func TestSearchCatalogFailure(t *testing.T) {
	f := newSearchFixture(t, test.MixedExercises(), nil)
	f.catalog.FailStatus.Store(http.StatusServiceUnavailable)

	_, err := f.service.Search(context.Background(), model.SearchFilters{BodyPart: "chest"}, 6, 0)
	var upstream *model.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusServiceUnavailable, upstream.StatusCode)
	assert.LessOrEqual(t, len(upstream.Body), 512)

	fallback, err := f.service.WithFallbackCatalog().Search(context.Background(), model.SearchFilters{BodyPart: "chest"}, 6, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"0025", "0662"}, ids(fallback.Items))
	assert.Equal(t, model.SearchSources{Catalog: "static", Enrichment: "wger", Fallback: true}, fallback.Meta.Sources)
	assert.Equal(t, "static+synthesized", fallback.Items[0].Source)
}

func TestSearchRejectsInvalidFilters(t *testing.T) {
	f := newSearchFixture(t, test.MixedExercises(), nil)

	for _, filters := range []model.SearchFilters{
		{Query: strings.Repeat("a", model.MaxFilterLength+1)},
		{Target: "abs\x00"},
	} {
		_, err := f.service.Search(context.Background(), filters, 6, 0)
		var validation *model.ValidationError
		assert.True(t, errors.As(err, &validation))
	}
	assert.Equal(t, int32(0), f.catalog.Hits.Load())
}
