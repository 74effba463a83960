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

package services_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-workout-content/internal/core/model"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/services"
	test "github.com/jaycherian/gcp-go-workout-content/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeDescription(t *testing.T) {
	cases := []struct {
		raw      string
		wantHTML string
		wantText string
	}{
		{
			raw:      `<p onclick="steal()">Lie <strong class="x">flat</strong></p><script>alert(1)</script>`,
			wantHTML: "<p>Lie <strong>flat</strong></p>",
			wantText: "Lie flat",
		},
		{
			raw:      `<div><h2>Setup</h2><ul><li>Grip</li><li>Pull</li></ul></div><!-- note -->`,
			wantHTML: "Setup<ul><li>Grip</li><li>Pull</li></ul>",
			wantText: "Setup Grip Pull",
		},
		{
			raw:      `<a href="javascript:x()">Brace</a> your <em>core</em>`,
			wantHTML: "Brace your <em>core</em>",
			wantText: "Brace your core",
		},
		{
			raw:      "Line one<br/>line two",
			wantHTML: "Line one<br>line two",
			wantText: "Line one line two",
		},
		{
			raw:      "Sets & reps <3",
			wantHTML: "Sets &amp; reps &lt;3",
			wantText: "Sets & reps <3",
		},
		{
			raw:      `<iframe src="https://evil.example"></iframe><object data="x"></object><noscript>hi</noscript>`,
			wantHTML: "",
			wantText: "",
		},
		{raw: "   ", wantHTML: "", wantText: ""},
	}
	for _, c := range cases {
		gotHTML, gotText := services.SanitizeDescription(c.raw)
		assert.Equal(t, c.wantHTML, gotHTML)
		assert.Equal(t, c.wantText, gotText)
	}
}

func newEnrichment(t *testing.T, descriptions map[string]string) (*services.EnrichmentService, *test.EnrichmentServer) {
	es := test.NewEnrichmentServer(t, descriptions)
	config := test.NewTestConfig("", es.URL, "")
	return services.NewEnrichmentService(es.Client(), config.Enrichment, services.NewMemoryEnrichmentCache()), es
}

func TestEnrichmentLookupFetchesOncePerName(t *testing.T) {
	enrichment, es := newEnrichment(t, map[string]string{"push-up": "<p>Keep your body <em>straight</em>.</p>"})

	names := []string{"push-up", "Push-Up", "PUSH-UP", "  push-up  "}
	texts := make([]string, 20)
	var wg sync.WaitGroup
	for i := range texts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if e := enrichment.Lookup(context.Background(), names[i%len(names)]); e != nil {
				texts[i] = e.DescriptionText
			}
		}()
	}
	wg.Wait()

	for _, text := range texts {
		assert.Equal(t, "Keep your body straight.", text)
	}
	assert.Equal(t, 1, es.Hits("push-up"))
	assert.Equal(t, 1, enrichment.Cache.Len())
	assert.Equal(t, "<p>Keep your body <em>straight</em>.</p>", enrichment.Lookup(context.Background(), "push-up").DescriptionHTML)
}

func TestEnrichmentLookupUsesEnglishTranslation(t *testing.T) {
	enrichment, es := newEnrichment(t, map[string]string{"pull-up": "Hang from the bar."})
	es.Translated = true

	e := enrichment.Lookup(context.Background(), "Pull-Up")
	assert.NotNil(t, e)
	assert.Equal(t, "Hang from the bar.", e.DescriptionText)
}

func TestEnrichmentMissesAreNotCached(t *testing.T) {
	enrichment, es := newEnrichment(t, map[string]string{"burpee": "Jump."})

	assert.Nil(t, enrichment.Lookup(context.Background(), "unknown move"))
	assert.Nil(t, enrichment.Lookup(context.Background(), "unknown move"))
	assert.Equal(t, 2, es.Hits("unknown move"))

	es.FailStatus.Store(http.StatusBadGateway)
	assert.Nil(t, enrichment.Lookup(context.Background(), "burpee"))
	es.FailStatus.Store(0)
	assert.NotNil(t, enrichment.Lookup(context.Background(), "burpee"))
	assert.Equal(t, 2, es.Hits("burpee"))

	assert.Nil(t, enrichment.Lookup(context.Background(), "   "))
	assert.Equal(t, 1, enrichment.Cache.Len())
}

func TestEnrichmentLookupTimesOut(t *testing.T) {
	enrichment, es := newEnrichment(t, map[string]string{"slow move": "Eventually."})
	es.Delay("slow move", 3*time.Second)

	start := time.Now()
	assert.Nil(t, enrichment.Lookup(context.Background(), "slow move"))
	assert.True(t, time.Since(start) < 2500*time.Millisecond)
}

func TestEnrichmentLookupHonoursCallerContext(t *testing.T) {
	enrichment, es := newEnrichment(t, map[string]string{"slow move": "Eventually."})
	es.Delay("slow move", 3*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	assert.Nil(t, enrichment.Lookup(ctx, "slow move"))
	assert.True(t, time.Since(start) < 500*time.Millisecond)
}

func TestMemoryEnrichmentCacheIsWriteOnce(t *testing.T) {
	c := services.NewMemoryEnrichmentCache()
	c.Add("squat", &model.Enrichment{DescriptionText: "first"})
	c.Add("squat", &model.Enrichment{DescriptionText: "second"})
	got, ok := c.Get("squat")
	assert.True(t, ok)
	assert.Equal(t, "first", got.DescriptionText)
	assert.Equal(t, 1, c.Len())

	_, ok = c.Get("lunge")
	assert.False(t, ok)
}
